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

const (
	// Account queries
	queryInsertAccount = `
		INSERT INTO accounts (id, display_name, email, phone, opening_balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	queryGetAccountById = `
		SELECT id, display_name, email, phone, opening_balance, created_at
		FROM accounts
		WHERE id = ?`

	queryGetAccounts = `
		SELECT id, display_name, email, phone, opening_balance, created_at
		FROM accounts
		ORDER BY created_at`

	queryGetAccountByEmail = `
		SELECT id, display_name, email, phone, opening_balance, created_at
		FROM accounts
		WHERE email = ?`

	queryGetAccountByPhone = `
		SELECT id, display_name, email, phone, opening_balance, created_at
		FROM accounts
		WHERE phone = ?`

	queryAccountExists = `
		SELECT 1 FROM accounts WHERE id = ?`

	queryCountEmail = `
		SELECT COUNT(*) FROM accounts WHERE email = ?`

	queryCountPhone = `
		SELECT COUNT(*) FROM accounts WHERE phone = ?`

	// Balance queries
	queryGetBalance = `
		SELECT balance
		FROM account_balances
		WHERE account_id = ?`

	queryGetBalanceForUpdate = `
		SELECT balance, version
		FROM account_balances
		WHERE account_id = ?`

	queryInsertBalance = `
		INSERT INTO account_balances (account_id, balance, version)
		VALUES (?, ?, 1)`

	queryUpdateBalance = `
		UPDATE account_balances
		SET balance = ?, last_transaction_id = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE account_id = ? AND version = ?`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions (id, sender_account_id, recipient_account_id, amount, status, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING seq`

	queryGetTransactionsForAccount = `
		SELECT seq, id, sender_account_id, recipient_account_id, amount, status, note, created_at
		FROM transactions
		WHERE sender_account_id = ? OR recipient_account_id = ?
		ORDER BY seq`

	queryGetAllTransactions = `
		SELECT seq, id, sender_account_id, recipient_account_id, amount, status, note, created_at
		FROM transactions
		ORDER BY seq`

	// Completed rows only: pending and failed rows never contribute to a balance.
	queryGetCompletedEntriesForAccount = `
		SELECT sender_account_id, recipient_account_id, amount
		FROM transactions
		WHERE (sender_account_id = ? OR recipient_account_id = ?) AND status = 'completed'
		ORDER BY seq`
)
