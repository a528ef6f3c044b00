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

// failureMessage maps each error kind to a specific user-facing message
// rather than a generic "transfer failed".
func failureMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrRecipientNotFound):
		return "No account matches that email or phone number"
	case errors.Is(err, store.ErrInsufficientFunds):
		return "Your balance is too low for this transfer"
	case errors.Is(err, store.ErrSelfTransfer):
		return "You cannot send funds to yourself"
	case errors.Is(err, store.ErrInvalidAmount):
		return "The transfer amount is not valid"
	case errors.Is(err, store.ErrAccountNotFound):
		return "The sending account does not exist"
	default:
		return "The transfer could not be completed"
	}
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	fromFlag := flag.String("from", "", "Sender account id (required)")
	toFlag := flag.String("to", "", "Recipient email or phone (required)")
	amountFlag := flag.String("amount", "", "Transfer amount (required)")
	noteFlag := flag.String("note", "", "Optional note attached to the transfer")
	flag.Parse()

	if *fromFlag == "" || *toFlag == "" || *amountFlag == "" {
		zap.L().Fatal("Required flags: --from, --to and --amount")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		zap.L().Fatal("Invalid amount", zap.String("value", *amountFlag), zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	transaction, err := services.Transfer.Transfer(ctx, *fromFlag, *toFlag, amount, *noteFlag)
	if err != nil {
		fmt.Printf("\n✗ %s\n\n", failureMessage(err))
		zap.L().Fatal("Transfer failed", zap.Error(err))
	}

	balance, err := services.Ledger.GetBalance(ctx, *fromFlag)
	if err != nil {
		zap.L().Fatal("Failed to read new balance", zap.Error(err))
	}

	common.PrintHeader("TRANSFER COMPLETE", common.DefaultWidth)
	fmt.Printf("Transaction: %s\n", transaction.Id)
	fmt.Printf("From:        %s\n", transaction.SenderAccountId)
	fmt.Printf("To:          %s\n", transaction.RecipientAccountId)
	fmt.Printf("Amount:      %s\n", common.FormatAmount(transaction.Amount))
	if transaction.Note != "" {
		fmt.Printf("Note:        %s\n", transaction.Note)
	}
	fmt.Printf("New Balance: %s\n", common.FormatAmount(balance))
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()
}
