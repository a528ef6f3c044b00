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
	"flag"
	"fmt"
	"strings"

	"smartpay-ledger-go/internal/common"
	"smartpay-ledger-go/internal/config"
	"smartpay-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type seedStats struct {
	created int
	skipped []string
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	accountsFile := flag.String("accounts", "accounts.yaml", "Seed accounts file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	zap.L().Info("Initializing ledger store", zap.String("database", cfg.Database.Path))
	ledger, err := common.InitializeLedgerOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize ledger store", zap.Error(err))
	}
	defer ledger.Close()

	seedAccounts, err := common.LoadSeedAccounts(*accountsFile)
	if err != nil {
		zap.L().Fatal("Failed to load seed accounts", zap.Error(err))
	}

	if len(seedAccounts) == 0 {
		fmt.Println("No accounts configured in", *accountsFile)
		fmt.Println("Database initialized with an empty registry")
		return
	}

	stats := seedStats{}
	for _, seed := range seedAccounts {
		opening := decimal.Zero
		if seed.OpeningBalance != "" {
			opening, err = decimal.NewFromString(seed.OpeningBalance)
			if err != nil {
				zap.L().Fatal("Invalid opening balance in seed file",
					zap.String("name", seed.Name),
					zap.String("opening_balance", seed.OpeningBalance),
					zap.Error(err))
			}
		}

		account, err := ledger.CreateAccount(ctx, store.CreateAccountParams{
			DisplayName:    seed.Name,
			Email:          seed.Email,
			Phone:          seed.Phone,
			OpeningBalance: opening,
		})
		if err != nil {
			zap.L().Warn("Skipping seed account", zap.String("name", seed.Name), zap.Error(err))
			fmt.Printf("✗ %s: skipped (%v)\n", seed.Name, err)
			stats.skipped = append(stats.skipped, seed.Name)
			continue
		}

		fmt.Printf("✓ %s: %s (%s)\n", account.DisplayName, account.Id, common.FormatAmount(account.OpeningBalance))
		stats.created++
	}

	common.PrintHeader("SEED SUMMARY", common.DefaultWidth)
	fmt.Printf("Total Accounts:    %d\n", len(seedAccounts))
	fmt.Printf("Created:           %d\n", stats.created)
	fmt.Printf("Skipped:           %d\n", len(stats.skipped))
	if len(stats.skipped) > 0 {
		fmt.Printf("Skipped Accounts:  %s\n", strings.Join(stats.skipped, ", "))
	}
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()
}
