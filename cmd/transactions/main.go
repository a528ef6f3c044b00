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
	"smartpay-ledger-go/internal/models"

	"go.uber.org/zap"
)

// matchesFilters applies the administrative search and status filters. The
// ledger returns raw rows; filtering stays on this side of the boundary.
func matchesFilters(tx models.Transaction, search, status string) bool {
	if status != "" && status != "all" && tx.Status != status {
		return false
	}
	if search == "" {
		return true
	}

	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(tx.Id), needle) ||
		strings.Contains(strings.ToLower(tx.SenderAccountId), needle) ||
		strings.Contains(strings.ToLower(tx.RecipientAccountId), needle) ||
		strings.Contains(strings.ToLower(tx.Note), needle)
}

func printTransaction(tx models.Transaction, isLast bool) {
	fmt.Printf("%s %s  %-9s  %s -> %s  %12s  %s\n",
		common.BoxPrefix(isLast),
		tx.CreatedAt.Format("2006-01-02 15:04:05"),
		tx.Status,
		shortId(tx.SenderAccountId),
		shortId(tx.RecipientAccountId),
		common.FormatAmount(tx.Amount),
		tx.Note)
}

func shortId(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	accountFlag := flag.String("account", "", "Limit to one account's history (default: full log)")
	statusFlag := flag.String("status", "all", "Filter by status: all, completed, pending, failed")
	searchFlag := flag.String("search", "", "Text filter on ids and notes")
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

	var transactions []models.Transaction
	if *accountFlag != "" {
		transactions, err = ledger.ListTransactionsFor(ctx, *accountFlag)
	} else {
		transactions, err = ledger.ListAllTransactions(ctx)
	}
	if err != nil {
		logger.Fatal("Failed to list transactions", zap.Error(err))
	}

	var filtered []models.Transaction
	for _, tx := range transactions {
		if matchesFilters(tx, *searchFlag, *statusFlag) {
			filtered = append(filtered, tx)
		}
	}

	common.PrintHeader("TRANSACTION LOG", common.DefaultWidth)
	if len(filtered) == 0 {
		fmt.Println("No transactions match the given filters")
	}
	for i, tx := range filtered {
		printTransaction(tx, i == len(filtered)-1)
	}
	common.PrintFooter(fmt.Sprintf("%d of %d transaction(s) shown", len(filtered), len(transactions)), common.DefaultWidth)
}
