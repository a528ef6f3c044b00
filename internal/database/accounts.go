package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"smartpay-ledger-go/internal/models"
	"smartpay-ledger-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateAccount registers a new account and its opening balance. The account
// row and its balance row are written in the same SQL transaction so no
// reader ever sees an account without a balance.
func (s *Service) CreateAccount(ctx context.Context, params store.CreateAccountParams) (*models.Account, error) {
	if params.OpeningBalance.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance %s is negative", store.ErrInvalidAmount, params.OpeningBalance.String())
	}

	zap.L().Info("Creating account",
		zap.String("name", params.DisplayName),
		zap.String("email", params.Email),
		zap.String("phone", params.Phone))

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, queryCountEmail, params.Email).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: email %s", store.ErrDuplicateIdentifier, params.Email)
	}

	if err := tx.QueryRowContext(ctx, queryCountPhone, params.Phone).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to check phone: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: phone %s", store.ErrDuplicateIdentifier, params.Phone)
	}

	account := &models.Account{
		Id:             uuid.New().String(),
		DisplayName:    params.DisplayName,
		Email:          params.Email,
		Phone:          params.Phone,
		OpeningBalance: params.OpeningBalance,
		CreatedAt:      time.Now(),
	}

	if _, err := tx.ExecContext(ctx, queryInsertAccount,
		account.Id, account.DisplayName, account.Email, account.Phone,
		account.OpeningBalance.String(), account.CreatedAt); err != nil {
		return nil, fmt.Errorf("unable to insert account: %w", err)
	}

	if _, err := tx.ExecContext(ctx, queryInsertBalance, account.Id, account.OpeningBalance.String()); err != nil {
		return nil, fmt.Errorf("unable to insert balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Account created", zap.String("id", account.Id), zap.String("name", account.DisplayName))
	return account, nil
}

func (s *Service) GetAccountById(ctx context.Context, accountId string) (*models.Account, error) {
	zap.L().Debug("Querying account by id", zap.String("account_id", accountId))
	return s.scanAccount(s.db.QueryRowContext(ctx, queryGetAccountById, accountId), accountId)
}

// FindAccountByIdentifier resolves an exact email or phone match, email
// first. Partial matching is a presentation concern and does not happen here.
func (s *Service) FindAccountByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	zap.L().Debug("Resolving account identifier", zap.String("identifier", identifier))

	account, err := s.scanAccount(s.db.QueryRowContext(ctx, queryGetAccountByEmail, identifier), identifier)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, store.ErrAccountNotFound) {
		return nil, err
	}

	return s.scanAccount(s.db.QueryRowContext(ctx, queryGetAccountByPhone, identifier), identifier)
}

func (s *Service) GetAccounts(ctx context.Context) ([]models.Account, error) {
	zap.L().Debug("Querying all accounts")

	rows, err := s.db.QueryContext(ctx, queryGetAccounts)
	if err != nil {
		zap.L().Error("Failed to query accounts", zap.Error(err))
		return nil, fmt.Errorf("unable to query accounts: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		var openingStr string
		if err := rows.Scan(&account.Id, &account.DisplayName, &account.Email, &account.Phone,
			&openingStr, &account.CreatedAt); err != nil {
			return nil, fmt.Errorf("unable to scan account row: %w", err)
		}
		if account.OpeningBalance, err = parseAmount(openingStr); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during account row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}

	zap.L().Info("Retrieved accounts", zap.Int("count", len(accounts)))
	return accounts, nil
}

func (s *Service) scanAccount(row *sql.Row, key string) (*models.Account, error) {
	var account models.Account
	var openingStr string
	err := row.Scan(&account.Id, &account.DisplayName, &account.Email, &account.Phone,
		&openingStr, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrAccountNotFound, key)
		}
		zap.L().Error("Failed to query account", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("unable to query account: %w", err)
	}

	if account.OpeningBalance, err = parseAmount(openingStr); err != nil {
		return nil, err
	}
	return &account, nil
}

// accountExistsTx checks registry membership inside the caller's SQL
// transaction so transfer precondition checks see the same snapshot as the
// append.
func accountExistsTx(ctx context.Context, tx *sql.Tx, accountId string) error {
	var one int
	err := tx.QueryRowContext(ctx, queryAccountExists, accountId).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", store.ErrAccountNotFound, accountId)
	}
	if err != nil {
		return fmt.Errorf("unable to check account %s: %w", accountId, err)
	}
	return nil
}
