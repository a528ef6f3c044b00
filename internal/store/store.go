package store

import (
	"context"
	"errors"

	"smartpay-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

// SystemAccountID is the reserved sender id used for top-up transactions.
// It never appears in the account registry.
const SystemAccountID = "system"

// Transaction statuses. The core writes only StatusCompleted; pending and
// failed are reserved for asynchronous settlement.
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
	StatusFailed    = "failed"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrAccountNotFound        = errors.New("account not found")
	ErrDuplicateIdentifier    = errors.New("identifier already registered")
	ErrSelfTransfer           = errors.New("sender and recipient are the same account")
	ErrRecipientNotFound      = errors.New("no account matches recipient identifier")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// CreateAccountParams contains the parameters for registering an account.
type CreateAccountParams struct {
	DisplayName    string
	Email          string
	Phone          string
	OpeningBalance decimal.Decimal
}

// LedgerStore defines the contract the ledger backend must satisfy. The
// store owns the account registry and the append-only transaction log and
// is the sole writer of both.
type LedgerStore interface {
	// --- Accounts ---
	CreateAccount(ctx context.Context, params CreateAccountParams) (*models.Account, error)
	GetAccountById(ctx context.Context, accountId string) (*models.Account, error)
	GetAccounts(ctx context.Context) ([]models.Account, error)
	FindAccountByIdentifier(ctx context.Context, identifier string) (*models.Account, error)

	// --- Balances ---
	GetBalance(ctx context.Context, accountId string) (decimal.Decimal, error)
	ReconcileBalance(ctx context.Context, accountId string) error

	// --- Transactions ---
	AtomicTransfer(ctx context.Context, senderAccountId, recipientAccountId string, amount decimal.Decimal, note string) (*models.Transaction, error)
	TopUp(ctx context.Context, accountId string, amount decimal.Decimal, note string) (*models.Transaction, error)
	ListTransactionsFor(ctx context.Context, accountId string) ([]models.Transaction, error)
	ListAllTransactions(ctx context.Context) ([]models.Transaction, error)

	// --- Lifecycle ---
	Close()
}
