package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a registered holder of funds. The opening balance is
// fixed at creation; every later balance change flows through the
// transaction log.
type Account struct {
	Id             string          `db:"id"`
	DisplayName    string          `db:"display_name"`
	Email          string          `db:"email"`
	Phone          string          `db:"phone"`
	OpeningBalance decimal.Decimal `db:"opening_balance"`
	CreatedAt      time.Time       `db:"created_at"`
}

// AccountBalance represents current balance state (hot data)
type AccountBalance struct {
	AccountId         string          `db:"account_id"`
	Balance           decimal.Decimal `db:"balance"`
	LastTransactionId string          `db:"last_transaction_id"`
	Version           int64           `db:"version"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

// Transaction represents immutable transfer history (cold data). Seq is
// append order; Id is the stable external identifier.
type Transaction struct {
	Seq                int64           `db:"seq"`
	Id                 string          `db:"id"`
	SenderAccountId    string          `db:"sender_account_id"`
	RecipientAccountId string          `db:"recipient_account_id"`
	Amount             decimal.Decimal `db:"amount"`
	Status             string          `db:"status"`
	Note               string          `db:"note"`
	CreatedAt          time.Time       `db:"created_at"`
}
