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
	"errors"
	"sync"
	"testing"

	"smartpay-ledger-go/internal/models"
	"smartpay-ledger-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

func setupTestService(t *testing.T) (*Service, func()) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// A second pool connection would see a different in-memory database.
	db.SetMaxOpenConns(1)

	service := &Service{db: db}
	if err := service.initSchema(); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return service, cleanup
}

func mustCreateAccount(t *testing.T, service *Service, name, email, phone, opening string) *models.Account {
	t.Helper()

	openingBalance, err := decimal.NewFromString(opening)
	if err != nil {
		t.Fatalf("Invalid opening balance %q: %v", opening, err)
	}

	account, err := service.CreateAccount(context.Background(), store.CreateAccountParams{
		DisplayName:    name,
		Email:          email,
		Phone:          phone,
		OpeningBalance: openingBalance,
	})
	if err != nil {
		t.Fatalf("Failed to create account %s: %v", name, err)
	}
	return account
}

func mustGetBalance(t *testing.T, service *Service, accountId string) decimal.Decimal {
	t.Helper()

	balance, err := service.GetBalance(context.Background(), accountId)
	if err != nil {
		t.Fatalf("GetBalance failed for %s: %v", accountId, err)
	}
	return balance
}

func TestAtomicTransfer_Simple(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	sender := mustCreateAccount(t, service, "John Doe", "john@example.com", "+15551234567", "1250.75")
	recipient := mustCreateAccount(t, service, "Jane Smith", "jane@example.com", "+15559876543", "850.50")

	amount := decimal.RequireFromString("150.00")
	transaction, err := service.AtomicTransfer(ctx, sender.Id, recipient.Id, amount, "dinner")
	if err != nil {
		t.Fatalf("AtomicTransfer failed: %v", err)
	}

	if transaction.SenderAccountId != sender.Id {
		t.Errorf("Expected sender %s, got %s", sender.Id, transaction.SenderAccountId)
	}
	if transaction.RecipientAccountId != recipient.Id {
		t.Errorf("Expected recipient %s, got %s", recipient.Id, transaction.RecipientAccountId)
	}
	if !transaction.Amount.Equal(amount) {
		t.Errorf("Expected amount %s, got %s", amount.String(), transaction.Amount.String())
	}
	if transaction.Status != store.StatusCompleted {
		t.Errorf("Expected status %s, got %s", store.StatusCompleted, transaction.Status)
	}

	senderBalance := mustGetBalance(t, service, sender.Id)
	if !senderBalance.Equal(decimal.RequireFromString("1100.75")) {
		t.Errorf("Expected sender balance 1100.75, got %s", senderBalance.String())
	}

	recipientBalance := mustGetBalance(t, service, recipient.Id)
	if !recipientBalance.Equal(decimal.RequireFromString("1000.50")) {
		t.Errorf("Expected recipient balance 1000.50, got %s", recipientBalance.String())
	}

	log, err := service.ListAllTransactions(ctx)
	if err != nil {
		t.Fatalf("ListAllTransactions failed: %v", err)
	}
	if len(log) != 1 {
		t.Errorf("Expected exactly one log entry, got %d", len(log))
	}
}

func TestAtomicTransfer_InsufficientFunds(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	sender := mustCreateAccount(t, service, "John Doe", "john@example.com", "+15551234567", "100.00")
	recipient := mustCreateAccount(t, service, "Jane Smith", "jane@example.com", "+15559876543", "0")

	_, err := service.AtomicTransfer(ctx, sender.Id, recipient.Id, decimal.RequireFromString("150.00"), "")
	if !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got: %v", err)
	}

	if balance := mustGetBalance(t, service, sender.Id); !balance.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("Sender balance changed after failed transfer: %s", balance.String())
	}
	if balance := mustGetBalance(t, service, recipient.Id); !balance.IsZero() {
		t.Errorf("Recipient balance changed after failed transfer: %s", balance.String())
	}

	log, err := service.ListAllTransactions(ctx)
	if err != nil {
		t.Fatalf("ListAllTransactions failed: %v", err)
	}
	if len(log) != 0 {
		t.Errorf("Expected empty log after failed transfer, got %d entries", len(log))
	}
}

func TestAtomicTransfer_InvalidAmount(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	sender := mustCreateAccount(t, service, "John Doe", "john@example.com", "+15551234567", "100")
	recipient := mustCreateAccount(t, service, "Jane Smith", "jane@example.com", "+15559876543", "0")

	for _, amount := range []string{"0", "-25.50"} {
		_, err := service.AtomicTransfer(ctx, sender.Id, recipient.Id, decimal.RequireFromString(amount), "")
		if !errors.Is(err, store.ErrInvalidAmount) {
			t.Errorf("Amount %s: expected ErrInvalidAmount, got: %v", amount, err)
		}
	}
}

func TestAtomicTransfer_SelfTransfer(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	account := mustCreateAccount(t, service, "John Doe", "john@example.com", "+15551234567", "100")

	_, err := service.AtomicTransfer(ctx, account.Id, account.Id, decimal.NewFromInt(10), "")
	if !errors.Is(err, store.ErrSelfTransfer) {
		t.Fatalf("Expected ErrSelfTransfer, got: %v", err)
	}

	log, err := service.ListAllTransactions(ctx)
	if err != nil {
		t.Fatalf("ListAllTransactions failed: %v", err)
	}
	if len(log) != 0 {
		t.Errorf("Expected empty log after rejected self-transfer, got %d entries", len(log))
	}
}

func TestAtomicTransfer_UnknownAccounts(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	account := mustCreateAccount(t, service, "John Doe", "john@example.com", "+15551234567", "100")

	_, err := service.AtomicTransfer(ctx, "missing", account.Id, decimal.NewFromInt(10), "")
	if !errors.Is(err, store.ErrAccountNotFound) {
		t.Errorf("Unknown sender: expected ErrAccountNotFound, got: %v", err)
	}

	_, err = service.AtomicTransfer(ctx, account.Id, "missing", decimal.NewFromInt(10), "")
	if !errors.Is(err, store.ErrAccountNotFound) {
		t.Errorf("Unknown recipient: expected ErrAccountNotFound, got: %v", err)
	}
}

func TestTopUp(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	account := mustCreateAccount(t, service, "Alice Johnson", "alice@example.com", "+15553334444", "0")

	transaction, err := service.TopUp(ctx, account.Id, decimal.RequireFromString("50.00"), "Top up")
	if err != nil {
		t.Fatalf("TopUp failed: %v", err)
	}

	if transaction.SenderAccountId != store.SystemAccountID {
		t.Errorf("Expected system sender, got %s", transaction.SenderAccountId)
	}
	if transaction.RecipientAccountId != account.Id {
		t.Errorf("Expected recipient %s, got %s", account.Id, transaction.RecipientAccountId)
	}

	if balance := mustGetBalance(t, service, account.Id); !balance.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("Expected balance 50.00, got %s", balance.String())
	}
}

func TestTopUp_Validation(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	account := mustCreateAccount(t, service, "Alice Johnson", "alice@example.com", "+15553334444", "0")

	_, err := service.TopUp(ctx, account.Id, decimal.Zero, "")
	if !errors.Is(err, store.ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount for zero top-up, got: %v", err)
	}

	_, err = service.TopUp(ctx, "missing", decimal.NewFromInt(10), "")
	if !errors.Is(err, store.ErrAccountNotFound) {
		t.Errorf("Expected ErrAccountNotFound for unknown account, got: %v", err)
	}
}

// Two concurrent debits that are individually covered but jointly overdraw
// must not both succeed.
func TestAtomicTransfer_ConcurrentOverdraw(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	sender := mustCreateAccount(t, service, "John Doe", "john@example.com", "+15551234567", "100.00")
	recipient := mustCreateAccount(t, service, "Jane Smith", "jane@example.com", "+15559876543", "0")

	amounts := []string{"60.00", "70.00"}
	results := make([]error, len(amounts))

	var wg sync.WaitGroup
	for i, raw := range amounts {
		wg.Add(1)
		go func(i int, amount decimal.Decimal) {
			defer wg.Done()
			_, results[i] = service.AtomicTransfer(ctx, sender.Id, recipient.Id, amount, "")
		}(i, decimal.RequireFromString(raw))
	}
	wg.Wait()

	succeeded := 0
	for i, err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, store.ErrInsufficientFunds) {
			t.Errorf("Transfer %d failed with unexpected error: %v", i, err)
		}
	}
	if succeeded != 1 {
		t.Errorf("Expected exactly one transfer to succeed, got %d", succeeded)
	}

	senderBalance := mustGetBalance(t, service, sender.Id)
	if senderBalance.IsNegative() {
		t.Errorf("Sender overdrawn: %s", senderBalance.String())
	}

	if err := service.ReconcileBalance(ctx, sender.Id); err != nil {
		t.Errorf("Sender reconciliation failed: %v", err)
	}
	if err := service.ReconcileBalance(ctx, recipient.Id); err != nil {
		t.Errorf("Recipient reconciliation failed: %v", err)
	}
}

// The sum of all balances only changes by top-up injections.
func TestConservation(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	a := mustCreateAccount(t, service, "John Doe", "john@example.com", "+15551234567", "500")
	b := mustCreateAccount(t, service, "Jane Smith", "jane@example.com", "+15559876543", "300")

	total := func() decimal.Decimal {
		return mustGetBalance(t, service, a.Id).Add(mustGetBalance(t, service, b.Id))
	}

	before := total()
	if _, err := service.AtomicTransfer(ctx, a.Id, b.Id, decimal.RequireFromString("123.45"), ""); err != nil {
		t.Fatalf("AtomicTransfer failed: %v", err)
	}
	if _, err := service.AtomicTransfer(ctx, b.Id, a.Id, decimal.RequireFromString("0.01"), ""); err != nil {
		t.Fatalf("AtomicTransfer failed: %v", err)
	}
	if !total().Equal(before) {
		t.Errorf("Transfers changed total balance: before=%s after=%s", before.String(), total().String())
	}

	topUp := decimal.RequireFromString("25.00")
	if _, err := service.TopUp(ctx, a.Id, topUp, ""); err != nil {
		t.Fatalf("TopUp failed: %v", err)
	}
	if !total().Equal(before.Add(topUp)) {
		t.Errorf("Expected total %s after top-up, got %s", before.Add(topUp).String(), total().String())
	}
}

func TestTransactionIds_Unique(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	a := mustCreateAccount(t, service, "John Doe", "john@example.com", "+15551234567", "1000")
	b := mustCreateAccount(t, service, "Jane Smith", "jane@example.com", "+15559876543", "0")

	for i := 0; i < 20; i++ {
		if _, err := service.AtomicTransfer(ctx, a.Id, b.Id, decimal.NewFromInt(1), ""); err != nil {
			t.Fatalf("Transfer %d failed: %v", i, err)
		}
	}

	log, err := service.ListAllTransactions(ctx)
	if err != nil {
		t.Fatalf("ListAllTransactions failed: %v", err)
	}

	seen := make(map[string]bool, len(log))
	lastSeq := int64(0)
	for _, tx := range log {
		if seen[tx.Id] {
			t.Errorf("Duplicate transaction id: %s", tx.Id)
		}
		seen[tx.Id] = true

		if tx.Seq <= lastSeq {
			t.Errorf("Log out of insertion order: seq %d after %d", tx.Seq, lastSeq)
		}
		lastSeq = tx.Seq
	}
}

func TestListTransactionsFor(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	a := mustCreateAccount(t, service, "John Doe", "john@example.com", "+15551234567", "1000")
	b := mustCreateAccount(t, service, "Jane Smith", "jane@example.com", "+15559876543", "1000")
	c := mustCreateAccount(t, service, "Alice Johnson", "alice@example.com", "+15553334444", "1000")

	if _, err := service.AtomicTransfer(ctx, a.Id, b.Id, decimal.NewFromInt(10), ""); err != nil {
		t.Fatalf("AtomicTransfer failed: %v", err)
	}
	if _, err := service.AtomicTransfer(ctx, b.Id, c.Id, decimal.NewFromInt(20), ""); err != nil {
		t.Fatalf("AtomicTransfer failed: %v", err)
	}
	if _, err := service.TopUp(ctx, a.Id, decimal.NewFromInt(5), ""); err != nil {
		t.Fatalf("TopUp failed: %v", err)
	}

	forA, err := service.ListTransactionsFor(ctx, a.Id)
	if err != nil {
		t.Fatalf("ListTransactionsFor failed: %v", err)
	}
	if len(forA) != 2 {
		t.Errorf("Expected 2 transactions for account A, got %d", len(forA))
	}

	forC, err := service.ListTransactionsFor(ctx, c.Id)
	if err != nil {
		t.Fatalf("ListTransactionsFor failed: %v", err)
	}
	if len(forC) != 1 {
		t.Errorf("Expected 1 transaction for account C, got %d", len(forC))
	}

	if _, err := service.ListTransactionsFor(ctx, "missing"); !errors.Is(err, store.ErrAccountNotFound) {
		t.Errorf("Expected ErrAccountNotFound for unknown account, got: %v", err)
	}
}
