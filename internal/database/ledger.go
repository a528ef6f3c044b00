/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"smartpay-ledger-go/internal/models"
	"smartpay-ledger-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AtomicTransfer moves amount from sender to recipient. The sender's balance
// is re-read and validated inside the same critical section that appends the
// transaction row, so two concurrent transfers can never both pass the check
// against a stale balance and jointly overdraw the account.
//
// Preconditions fail fast in order: amount, account existence, self-transfer,
// funds. A failed precondition leaves the log and both balances untouched.
func (s *Service) AtomicTransfer(ctx context.Context, senderAccountId, recipientAccountId string, amount decimal.Decimal, note string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: transfer amount %s must be positive", store.ErrInvalidAmount, amount.String())
	}

	zap.L().Info("Processing transfer",
		zap.String("sender", senderAccountId),
		zap.String("recipient", recipientAccountId),
		zap.String("amount", amount.String()))

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := accountExistsTx(ctx, tx, senderAccountId); err != nil {
		return nil, err
	}
	if err := accountExistsTx(ctx, tx, recipientAccountId); err != nil {
		return nil, err
	}
	if senderAccountId == recipientAccountId {
		return nil, fmt.Errorf("%w: %s", store.ErrSelfTransfer, senderAccountId)
	}

	senderBalance, senderVersion, err := balanceForUpdateTx(ctx, tx, senderAccountId)
	if err != nil {
		return nil, err
	}
	if senderBalance.LessThan(amount) {
		zap.L().Warn("Transfer rejected, insufficient funds",
			zap.String("sender", senderAccountId),
			zap.String("balance", senderBalance.String()),
			zap.String("amount", amount.String()))
		return nil, fmt.Errorf("%w: balance %s, requested %s", store.ErrInsufficientFunds, senderBalance.String(), amount.String())
	}

	recipientBalance, recipientVersion, err := balanceForUpdateTx(ctx, tx, recipientAccountId)
	if err != nil {
		return nil, err
	}

	transaction, err := appendTransactionTx(ctx, tx, senderAccountId, recipientAccountId, amount, note)
	if err != nil {
		return nil, err
	}

	if err := updateBalanceTx(ctx, tx, senderAccountId, senderBalance.Sub(amount), transaction.Id, senderVersion); err != nil {
		return nil, err
	}
	if err := updateBalanceTx(ctx, tx, recipientAccountId, recipientBalance.Add(amount), transaction.Id, recipientVersion); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Transfer completed",
		zap.String("transaction_id", transaction.Id),
		zap.String("sender", senderAccountId),
		zap.String("recipient", recipientAccountId),
		zap.String("amount", amount.String()))
	return transaction, nil
}

// TopUp credits an account from the system source. The system sentinel is
// unconstrained, so only the recipient side is validated and updated.
func (s *Service) TopUp(ctx context.Context, accountId string, amount decimal.Decimal, note string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: top-up amount %s must be positive", store.ErrInvalidAmount, amount.String())
	}

	zap.L().Info("Processing top-up",
		zap.String("account_id", accountId),
		zap.String("amount", amount.String()))

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := accountExistsTx(ctx, tx, accountId); err != nil {
		return nil, err
	}

	balance, version, err := balanceForUpdateTx(ctx, tx, accountId)
	if err != nil {
		return nil, err
	}

	transaction, err := appendTransactionTx(ctx, tx, store.SystemAccountID, accountId, amount, note)
	if err != nil {
		return nil, err
	}

	if err := updateBalanceTx(ctx, tx, accountId, balance.Add(amount), transaction.Id, version); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Top-up completed",
		zap.String("transaction_id", transaction.Id),
		zap.String("account_id", accountId),
		zap.String("amount", amount.String()))
	return transaction, nil
}

// appendTransactionTx writes one completed log row and returns it with its
// assigned seq. Log rows are immutable once written.
func appendTransactionTx(ctx context.Context, tx *sql.Tx, senderAccountId, recipientAccountId string, amount decimal.Decimal, note string) (*models.Transaction, error) {
	transaction := &models.Transaction{
		Id:                 uuid.New().String(),
		SenderAccountId:    senderAccountId,
		RecipientAccountId: recipientAccountId,
		Amount:             amount,
		Status:             store.StatusCompleted,
		Note:               note,
		CreatedAt:          time.Now(),
	}

	err := tx.QueryRowContext(ctx, queryInsertTransaction,
		transaction.Id, transaction.SenderAccountId, transaction.RecipientAccountId,
		transaction.Amount.String(), transaction.Status, transaction.Note, transaction.CreatedAt).
		Scan(&transaction.Seq)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	return transaction, nil
}

func balanceForUpdateTx(ctx context.Context, tx *sql.Tx, accountId string) (decimal.Decimal, int64, error) {
	var balanceStr string
	var version int64
	if err := tx.QueryRowContext(ctx, queryGetBalanceForUpdate, accountId).Scan(&balanceStr, &version); err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to get balance for %s: %w", accountId, err)
	}

	balance, err := parseAmount(balanceStr)
	if err != nil {
		return decimal.Zero, 0, err
	}
	return balance, version, nil
}

// updateBalanceTx writes the new running balance with an optimistic version
// check. Writers serialize through Service.mu, so a version miss means a
// write bypassed the lock.
func updateBalanceTx(ctx context.Context, tx *sql.Tx, accountId string, newBalance decimal.Decimal, transactionId string, version int64) error {
	result, err := tx.ExecContext(ctx, queryUpdateBalance, newBalance.String(), transactionId, accountId, version)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("balance update for %s failed - %w", accountId, store.ErrConcurrentModification)
	}
	return nil
}
