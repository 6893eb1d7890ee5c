package ledger

import "github.com/shopspring/decimal"

// maxScale is the finest monetary granularity accepted from callers:
// two fractional digits.
const maxScale = 2

// ValidateAmount checks a deposit/withdrawal amount: strictly positive,
// at most two decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || amount.Exponent() < -maxScale {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateOpeningBalance checks an account-opening balance: non-negative,
// at most two decimal places.
func ValidateOpeningBalance(balance decimal.Decimal) error {
	if balance.IsNegative() || balance.Exponent() < -maxScale {
		return ErrInvalidOpeningBalance
	}
	return nil
}
