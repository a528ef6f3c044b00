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
	"smartpay-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	accountFlag := flag.String("account", "", "Account id to credit (required)")
	amountFlag := flag.String("amount", "", "Top-up amount (required)")
	cardFlag := flag.String("card", "", "Card number, simulated only; masked into the note")
	flag.Parse()

	if *accountFlag == "" || *amountFlag == "" {
		zap.L().Fatal("Required flags: --account and --amount")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		zap.L().Fatal("Invalid amount", zap.String("value", *amountFlag), zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	// Top-up minimum mirrors the card form, not the ledger core.
	if amount.LessThan(cfg.Transfer.MinTopUpAmount) {
		zap.L().Fatal("Amount below the minimum top-up",
			zap.String("amount", amount.String()),
			zap.String("minimum", cfg.Transfer.MinTopUpAmount.String()))
	}

	ledger, err := common.InitializeLedgerOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize ledger store", zap.Error(err))
	}
	defer ledger.Close()

	note := "Top up"
	if *cardFlag != "" {
		// No card network is contacted; only the masked number is recorded.
		note = fmt.Sprintf("Top up via card %s", common.MaskCardNumber(*cardFlag))
	}

	transaction, err := ledger.TopUp(ctx, *accountFlag, amount, note)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrAccountNotFound):
			zap.L().Fatal("No account with this id", zap.String("account", *accountFlag))
		case errors.Is(err, store.ErrInvalidAmount):
			zap.L().Fatal("Top-up amount must be positive", zap.String("amount", amount.String()))
		default:
			zap.L().Fatal("Top-up failed", zap.Error(err))
		}
	}

	balance, err := ledger.GetBalance(ctx, *accountFlag)
	if err != nil {
		zap.L().Fatal("Failed to read new balance", zap.Error(err))
	}

	common.PrintHeader("TOP-UP COMPLETE", common.DefaultWidth)
	fmt.Printf("Transaction: %s\n", transaction.Id)
	fmt.Printf("Account:     %s\n", transaction.RecipientAccountId)
	fmt.Printf("Amount:      %s\n", common.FormatAmount(transaction.Amount))
	fmt.Printf("Note:        %s\n", transaction.Note)
	fmt.Printf("New Balance: %s\n", common.FormatAmount(balance))
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()
}
