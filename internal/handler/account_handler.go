package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mahShtayeh/axis/internal/cqrs"
	"github.com/mahShtayeh/axis/internal/ledger"
	"github.com/mahShtayeh/axis/internal/middleware"
	"github.com/mahShtayeh/axis/internal/models"
)

// AccountCommander defines the write-side operations used by AccountHandler.
type AccountCommander interface {
	OpenAccount(ctx context.Context, cmd cqrs.OpenAccountCommand) (uuid.UUID, error)
	Deposit(ctx context.Context, cmd cqrs.DepositCommand) (uuid.UUID, error)
	Withdraw(ctx context.Context, cmd cqrs.WithdrawCommand) (uuid.UUID, error)
}

// AccountQuerier defines the read-side operations used by AccountHandler.
type AccountQuerier interface {
	GetBalance(ctx context.Context, q cqrs.GetBalanceQuery) (decimal.Decimal, error)
	GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.AccountView, error)
	GetTransaction(ctx context.Context, q cqrs.GetTransactionQuery) (*models.TransactionView, error)
	ListTransactions(ctx context.Context, q cqrs.ListTransactionsQuery) ([]models.TransactionView, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	commands AccountCommander
	queries  AccountQuerier
}

func NewAccountHandler(commands AccountCommander, queries AccountQuerier) *AccountHandler {
	return &AccountHandler{commands: commands, queries: queries}
}

// Amounts bind through pointers so that an explicit zero is distinguishable
// from a missing field; sign and scale rules live in the ledger package.
type OpenAccountRequest struct {
	Username string           `json:"username" validate:"required,email"`
	Balance  *decimal.Decimal `json:"balance" validate:"required"`
}

type TransactionRequest struct {
	Amount *decimal.Decimal `json:"amount" validate:"required"`
}

type OpenAccountResponse struct {
	AccountID uuid.UUID `json:"accountId"`
}

type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

type TransactionResponse struct {
	TransactionID uuid.UUID `json:"transactionId"`
}

type ListTransactionsResponse struct {
	Transactions []models.TransactionView `json:"transactions"`
}

func (h *AccountHandler) OpenAccount(c *gin.Context) {
	var req OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	accountID, err := h.commands.OpenAccount(c.Request.Context(), cqrs.OpenAccountCommand{
		Username:       req.Username,
		OpeningBalance: *req.Balance,
	})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, OpenAccountResponse{AccountID: accountID})
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	accountID, ok := accountIDParam(c)
	if !ok {
		return
	}
	username, _ := middleware.GetUsername(c)

	view, err := h.queries.GetAccount(c.Request.Context(), cqrs.GetAccountQuery{
		AccountID:          accountID,
		RequestingUsername: username,
	})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *AccountHandler) CheckBalance(c *gin.Context) {
	accountID, ok := accountIDParam(c)
	if !ok {
		return
	}
	username, _ := middleware.GetUsername(c)

	balance, err := h.queries.GetBalance(c.Request.Context(), cqrs.GetBalanceQuery{
		AccountID:          accountID,
		RequestingUsername: username,
	})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{Balance: balance})
}

func (h *AccountHandler) Deposit(c *gin.Context) {
	accountID, ok := accountIDParam(c)
	if !ok {
		return
	}
	username, _ := middleware.GetUsername(c)

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	transactionID, err := h.commands.Deposit(c.Request.Context(), cqrs.DepositCommand{
		AccountID:          accountID,
		RequestingUsername: username,
		Amount:             *req.Amount,
	})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, TransactionResponse{TransactionID: transactionID})
}

func (h *AccountHandler) Withdraw(c *gin.Context) {
	accountID, ok := accountIDParam(c)
	if !ok {
		return
	}
	username, _ := middleware.GetUsername(c)

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	transactionID, err := h.commands.Withdraw(c.Request.Context(), cqrs.WithdrawCommand{
		AccountID:          accountID,
		RequestingUsername: username,
		Amount:             *req.Amount,
	})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, TransactionResponse{TransactionID: transactionID})
}

func (h *AccountHandler) GetTransaction(c *gin.Context) {
	accountID, ok := accountIDParam(c)
	if !ok {
		return
	}
	transactionID, err := uuid.Parse(c.Param("transactionId"))
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid transaction ID")
		return
	}
	username, _ := middleware.GetUsername(c)

	view, err := h.queries.GetTransaction(c.Request.Context(), cqrs.GetTransactionQuery{
		AccountID:          accountID,
		TransactionID:      transactionID,
		RequestingUsername: username,
	})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *AccountHandler) ListTransactions(c *gin.Context) {
	accountID, ok := accountIDParam(c)
	if !ok {
		return
	}
	username, _ := middleware.GetUsername(c)

	views, err := h.queries.ListTransactions(c.Request.Context(), cqrs.ListTransactionsQuery{
		AccountID:          accountID,
		RequestingUsername: username,
	})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}
	if views == nil {
		views = []models.TransactionView{}
	}

	c.JSON(http.StatusOK, ListTransactionsResponse{Transactions: views})
}

func accountIDParam(c *gin.Context) (uuid.UUID, bool) {
	accountID, err := uuid.Parse(c.Param("accountId"))
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid account ID")
		return uuid.Nil, false
	}
	return accountID, true
}

// respondWithDomainError maps typed domain failures onto HTTP outcomes.
// Anything unrecognised is an infrastructure failure: logged and reported as
// a generic 500 so no storage detail leaks to the client.
func respondWithDomainError(c *gin.Context, err error) {
	var notFound *ledger.AccountNotFoundError
	var insufficient *ledger.InsufficientFundsError

	switch {
	case errors.As(err, &notFound):
		middleware.RespondWithError(c, http.StatusNotFound, "Account not found")
	case errors.Is(err, ledger.ErrTransactionNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, "Transaction not found")
	case errors.As(err, &insufficient):
		c.JSON(http.StatusBadRequest, gin.H{
			"message":   "Insufficient funds",
			"accountId": insufficient.AccountID,
			"requested": insufficient.Requested,
			"balance":   insufficient.Balance,
		})
	case errors.Is(err, cqrs.ErrForbidden):
		middleware.RespondWithError(c, http.StatusForbidden, "You can only access your own accounts")
	case errors.Is(err, ledger.ErrConcurrentModification):
		middleware.RespondWithError(c, http.StatusConflict, "Account is being modified concurrently, please retry")
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidOpeningBalance),
		errors.Is(err, ledger.ErrMissingUsername):
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("Internal error: %v", err)
		middleware.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}
