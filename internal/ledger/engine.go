package ledger

import "github.com/shopspring/decimal"

// Engine applies one monetary movement to one account. It is a pure
// decision/mutation step: it validates the movement, updates the balance on
// the working copy and constructs the transaction record, but persists
// nothing; the store commits both as a single atomic unit. Conflict
// detection and retries belong to the caller and the store, never here.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Apply validates amount against account's current balance, mutates the
// balance on the working copy and returns the transaction record to commit
// alongside it. On any error the account is left untouched and no record is
// created.
func (e *Engine) Apply(account *Account, amount decimal.Decimal, txType TransactionType) (*Transaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	if !txType.Valid() {
		return nil, ErrInvalidTransactionType
	}

	switch txType {
	case Deposit:
		account.Balance = account.Balance.Add(amount)
	case Withdrawal:
		if account.Balance.LessThan(amount) {
			return nil, &InsufficientFundsError{
				AccountID: account.ID,
				Requested: amount,
				Balance:   account.Balance,
			}
		}
		account.Balance = account.Balance.Sub(amount)
	}

	return &Transaction{
		AccountID: account.ID,
		Amount:    amount,
		Type:      txType,
	}, nil
}
