package database

import (
	"context"
	"database/sql"
	"fmt"

	"smartpay-ledger-go/internal/models"

	"go.uber.org/zap"
)

// ListTransactionsFor returns every transaction where the account is sender
// or recipient, in insertion order. Callers may re-sort.
func (s *Service) ListTransactionsFor(ctx context.Context, accountId string) ([]models.Transaction, error) {
	if _, err := s.GetAccountById(ctx, accountId); err != nil {
		return nil, err
	}

	zap.L().Debug("Getting transaction history", zap.String("account_id", accountId))
	return s.queryTransactions(ctx, queryGetTransactionsForAccount, accountId, accountId)
}

// ListAllTransactions returns the full log in insertion order, for
// administrative inspection. Search and status filtering are caller concerns.
func (s *Service) ListAllTransactions(ctx context.Context) ([]models.Transaction, error) {
	zap.L().Debug("Getting full transaction log")
	return s.queryTransactions(ctx, queryGetAllTransactions)
}

func (s *Service) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var amountStr string
		var note sql.NullString
		err := rows.Scan(&tx.Seq, &tx.Id, &tx.SenderAccountId, &tx.RecipientAccountId,
			&amountStr, &tx.Status, &note, &tx.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		if tx.Amount, err = parseAmount(amountStr); err != nil {
			return nil, err
		}
		tx.Note = note.String

		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during transaction row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}
