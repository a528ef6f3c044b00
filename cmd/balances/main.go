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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"smartpay-ledger-go/internal/common"
	"smartpay-ledger-go/internal/config"
	"smartpay-ledger-go/internal/database"
	"smartpay-ledger-go/internal/models"
	"smartpay-ledger-go/internal/store"

	"go.uber.org/zap"
)

// resolveAccount accepts either an account id or an email/phone identifier.
func resolveAccount(ctx context.Context, ledger *database.Service, key string) (*models.Account, error) {
	account, err := ledger.GetAccountById(ctx, key)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, store.ErrAccountNotFound) {
		return nil, err
	}
	return ledger.FindAccountByIdentifier(ctx, key)
}

func printAccountBalance(ctx context.Context, ledger *database.Service, account *models.Account) error {
	balance, err := ledger.GetBalance(ctx, account.Id)
	if err != nil {
		return fmt.Errorf("failed to get balance: %w", err)
	}

	transactions, err := ledger.ListTransactionsFor(ctx, account.Id)
	if err != nil {
		return fmt.Errorf("failed to get transactions: %w", err)
	}

	fmt.Printf("\n┌─ Account: %s (%s)\n", account.DisplayName, account.Email)
	fmt.Printf("│  ID: %s\n", account.Id)
	fmt.Printf("│  Balance: %s\n", common.FormatAmount(balance))
	fmt.Printf("│  Transactions: %d\n", len(transactions))

	if err := ledger.ReconcileBalance(ctx, account.Id); err != nil {
		fmt.Printf("└  Reconciliation: FAILED (%v)\n", err)
		return err
	}
	fmt.Printf("└  Reconciliation: OK\n")
	return nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	accountFlag := flag.String("account", "", "Account id, email or phone (default: all accounts)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ledger, err := common.InitializeLedgerOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize ledger store", zap.Error(err))
	}
	defer ledger.Close()

	var accounts []models.Account
	if *accountFlag != "" {
		account, err := resolveAccount(ctx, ledger, *accountFlag)
		if err != nil {
			logger.Fatal("Account not found", zap.String("account", *accountFlag), zap.Error(err))
		}
		accounts = append(accounts, *account)
	} else {
		accounts, err = ledger.GetAccounts(ctx)
		if err != nil {
			logger.Fatal("Failed to list accounts", zap.Error(err))
		}
	}

	common.PrintHeader("ACCOUNT BALANCES", common.DefaultWidth)

	failed := 0
	for i := range accounts {
		if err := printAccountBalance(ctx, ledger, &accounts[i]); err != nil {
			logger.Error("Failed to report balance",
				zap.String("account_id", accounts[i].Id),
				zap.Error(err))
			failed++
		}
	}

	if failed > 0 {
		common.PrintFooter(fmt.Sprintf("Report complete: %d account(s), %d failure(s)", len(accounts), failed), common.DefaultWidth)
		return
	}
	common.PrintFooter(fmt.Sprintf("Report complete: %d account(s)", len(accounts)), common.DefaultWidth)
}
