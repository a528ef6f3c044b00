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

// Package transfer resolves human-entered recipient identifiers and
// request-level policy into id-based ledger store calls, keeping the store's
// contract identifier-agnostic.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"smartpay-ledger-go/internal/models"
	"smartpay-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service carries no ledger state of its own; every mutation goes through
// the store's atomic primitives.
type Service struct {
	ledger    store.LedgerStore
	minAmount decimal.Decimal
}

func NewService(ledger store.LedgerStore, cfg models.TransferConfig) *Service {
	return &Service{
		ledger:    ledger,
		minAmount: cfg.MinTransferAmount,
	}
}

// Transfer resolves recipientIdentifier (exact email or phone) and delegates
// to the store's AtomicTransfer, forwarding store errors unchanged. The only
// failure mode added here is ErrRecipientNotFound.
func (s *Service) Transfer(ctx context.Context, requesterAccountId, recipientIdentifier string, amount decimal.Decimal, note string) (*models.Transaction, error) {
	if amount.LessThan(s.minAmount) {
		return nil, fmt.Errorf("%w: amount %s is below the minimum transfer of %s",
			store.ErrInvalidAmount, amount.String(), s.minAmount.String())
	}

	identifier := strings.TrimSpace(recipientIdentifier)
	recipient, err := s.ledger.FindAccountByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			zap.L().Info("Transfer rejected, unknown recipient", zap.String("identifier", identifier))
			return nil, fmt.Errorf("%w: %s", store.ErrRecipientNotFound, identifier)
		}
		return nil, fmt.Errorf("failed to resolve recipient: %w", err)
	}

	zap.L().Info("Recipient resolved",
		zap.String("identifier", identifier),
		zap.String("recipient_id", recipient.Id),
		zap.String("recipient_name", recipient.DisplayName))

	return s.ledger.AtomicTransfer(ctx, requesterAccountId, recipient.Id, amount, note)
}
