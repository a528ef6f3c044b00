package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smartpay-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetBalance returns the current balance for an account (O(1) lookup).
// A balance row is written with every account, so a missing row means the
// account does not exist.
func (s *Service) GetBalance(ctx context.Context, accountId string) (decimal.Decimal, error) {
	zap.L().Debug("Getting balance", zap.String("account_id", accountId))

	var balanceStr string
	err := s.db.QueryRowContext(ctx, queryGetBalance, accountId).Scan(&balanceStr)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("%w: %s", store.ErrAccountNotFound, accountId)
	}
	if err != nil {
		zap.L().Error("Failed to get balance", zap.String("account_id", accountId), zap.Error(err))
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}

	balance, err := parseAmount(balanceStr)
	if err != nil {
		return decimal.Zero, err
	}

	zap.L().Debug("Retrieved balance", zap.String("account_id", accountId), zap.String("balance", balance.String()))
	return balance, nil
}

// RecomputeBalance folds the full transaction log for an account: opening
// balance plus completed credits minus completed debits. The fold runs in Go
// because SQL SUM() would coerce the stored decimal strings to float.
func (s *Service) RecomputeBalance(ctx context.Context, accountId string) (decimal.Decimal, error) {
	account, err := s.GetAccountById(ctx, accountId)
	if err != nil {
		return decimal.Zero, err
	}

	rows, err := s.db.QueryContext(ctx, queryGetCompletedEntriesForAccount, accountId, accountId)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query log entries: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	balance := account.OpeningBalance
	for rows.Next() {
		var senderId, recipientId, amountStr string
		if err := rows.Scan(&senderId, &recipientId, &amountStr); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan log entry: %w", err)
		}

		amount, err := parseAmount(amountStr)
		if err != nil {
			return decimal.Zero, err
		}

		if recipientId == accountId {
			balance = balance.Add(amount)
		}
		if senderId == accountId {
			balance = balance.Sub(amount)
		}
	}

	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("error iterating log entries: %w", err)
	}

	return balance, nil
}

// ReconcileBalance verifies that the running balance matches a from-scratch
// fold of the log. The log is authoritative; a mismatch is a defect.
func (s *Service) ReconcileBalance(ctx context.Context, accountId string) error {
	zap.L().Info("Reconciling balance", zap.String("account_id", accountId))

	currentBalance, err := s.GetBalance(ctx, accountId)
	if err != nil {
		return fmt.Errorf("failed to get current balance: %w", err)
	}

	calculatedBalance, err := s.RecomputeBalance(ctx, accountId)
	if err != nil {
		return fmt.Errorf("failed to recompute balance from log: %w", err)
	}

	if !currentBalance.Equal(calculatedBalance) {
		zap.L().Error("Balance reconciliation failed",
			zap.String("account_id", accountId),
			zap.String("current_balance", currentBalance.String()),
			zap.String("calculated_balance", calculatedBalance.String()),
			zap.String("difference", currentBalance.Sub(calculatedBalance).String()))
		return fmt.Errorf("balance mismatch: current=%s, calculated=%s", currentBalance.String(), calculatedBalance.String())
	}

	zap.L().Info("Balance reconciliation successful",
		zap.String("account_id", accountId),
		zap.String("balance", currentBalance.String()))
	return nil
}

func parseAmount(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount %q: %w", value, err)
	}
	return amount, nil
}
