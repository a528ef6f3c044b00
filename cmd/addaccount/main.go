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
	"regexp"

	"smartpay-ledger-go/internal/common"
	"smartpay-ledger-go/internal/config"
	"smartpay-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) < 2 {
		return fmt.Errorf("name must be at least 2 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

func validatePhone(phone string) error {
	if phone == "" {
		return fmt.Errorf("phone cannot be empty")
	}
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("invalid phone format: %s", phone)
	}
	return nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	nameFlag := flag.String("name", "", "Account holder's full name (required)")
	emailFlag := flag.String("email", "", "Account holder's email address (required)")
	phoneFlag := flag.String("phone", "", "Account holder's phone number (required)")
	openingFlag := flag.String("opening-balance", "0", "Opening balance, non-negative")
	flag.Parse()

	if *nameFlag == "" || *emailFlag == "" || *phoneFlag == "" {
		zap.L().Fatal("Required flags: --name, --email and --phone")
	}

	if err := validateName(*nameFlag); err != nil {
		zap.L().Fatal("Invalid name", zap.Error(err))
	}
	if err := validateEmail(*emailFlag); err != nil {
		zap.L().Fatal("Invalid email", zap.Error(err))
	}
	if err := validatePhone(*phoneFlag); err != nil {
		zap.L().Fatal("Invalid phone", zap.Error(err))
	}

	opening, err := decimal.NewFromString(*openingFlag)
	if err != nil {
		zap.L().Fatal("Invalid opening balance", zap.String("value", *openingFlag), zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	ledger, err := common.InitializeLedgerOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize ledger store", zap.Error(err))
	}
	defer ledger.Close()

	account, err := ledger.CreateAccount(ctx, store.CreateAccountParams{
		DisplayName:    *nameFlag,
		Email:          *emailFlag,
		Phone:          *phoneFlag,
		OpeningBalance: opening,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateIdentifier) {
			zap.L().Fatal("An account already exists with this email or phone",
				zap.String("email", *emailFlag),
				zap.String("phone", *phoneFlag))
		}
		if errors.Is(err, store.ErrInvalidAmount) {
			zap.L().Fatal("Opening balance cannot be negative", zap.String("value", *openingFlag))
		}
		zap.L().Fatal("Failed to create account", zap.Error(err))
	}

	common.PrintHeader("ACCOUNT CREATED", common.DefaultWidth)
	fmt.Printf("ID:              %s\n", account.Id)
	fmt.Printf("Name:            %s\n", account.DisplayName)
	fmt.Printf("Email:           %s\n", account.Email)
	fmt.Printf("Phone:           %s\n", account.Phone)
	fmt.Printf("Opening Balance: %s\n", common.FormatAmount(account.OpeningBalance))
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()

	zap.L().Info("Account created successfully", zap.String("id", account.Id))
}
