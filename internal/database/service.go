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
	"sync"

	"smartpay-ledger-go/internal/models"
	"smartpay-ledger-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.LedgerStore.
var _ store.LedgerStore = (*Service)(nil)

// Service is the SQLite-backed ledger store. All mutations (account
// creation, transfers, top-ups) serialize through mu so a balance check and
// its log append form one critical section; reads go straight to the pool.
type Service struct {
	db *sql.DB
	mu sync.Mutex
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db}
	if err := service.initSchema(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	if cfg.CreateDemoAccounts {
		service.seedDemoAccounts(ctx)
	}

	zap.L().Info("Ledger store initialized successfully")
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) initSchema() error {
	schema := `
	-- Account registry. opening_balance is immutable after insert; every
	-- later balance change is a transaction row.
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL UNIQUE,
		opening_balance TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_email ON accounts(email);
	CREATE INDEX IF NOT EXISTS idx_accounts_phone ON accounts(phone);

	-- Running balances (hot data). Amounts are canonical decimal strings,
	-- never REAL.
	CREATE TABLE IF NOT EXISTS account_balances (
		account_id TEXT PRIMARY KEY REFERENCES accounts(id),
		balance TEXT NOT NULL DEFAULT '0',
		last_transaction_id TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Append-only transaction log (cold data, authoritative). seq fixes
	-- insertion order; rows are never updated or deleted.
	CREATE TABLE IF NOT EXISTS transactions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		sender_account_id TEXT NOT NULL,
		recipient_account_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'completed',
		note TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_sender ON transactions(sender_account_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_recipient ON transactions(recipient_account_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_status ON transactions(status);
	CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// seedDemoAccounts inserts the demo accounts used for local testing.
// Duplicates are skipped so re-running setup is harmless.
func (s *Service) seedDemoAccounts(ctx context.Context) {
	demo := []struct {
		name    string
		email   string
		phone   string
		opening string
	}{
		{"John Doe", "john@example.com", "+15551234567", "1250.75"},
		{"Jane Smith", "jane@example.com", "+15559876543", "850.50"},
		{"Alice Johnson", "alice@example.com", "+15553334444", "0"},
		{"Bob Williams", "bob@example.com", "+15556667777", "0"},
	}

	for _, d := range demo {
		opening, err := decimal.NewFromString(d.opening)
		if err != nil {
			zap.L().Error("Invalid demo opening balance", zap.String("name", d.name), zap.Error(err))
			continue
		}

		account, err := s.CreateAccount(ctx, store.CreateAccountParams{
			DisplayName:    d.name,
			Email:          d.email,
			Phone:          d.phone,
			OpeningBalance: opening,
		})
		if err != nil {
			zap.L().Debug("Skipping demo account", zap.String("name", d.name), zap.Error(err))
			continue
		}
		zap.L().Info("Demo account created",
			zap.String("id", account.Id),
			zap.String("name", account.DisplayName),
			zap.String("opening_balance", account.OpeningBalance.String()))
	}
}
