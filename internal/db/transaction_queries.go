package db

import (
	"context"
	"fmt"

	"github.com/oatsaysai/settle-up-in-discord/internal/models"
)

// GetUserTransactionHistory returns the most recent transactions that involve
// the user on either side, newest first.
func GetUserTransactionHistory(userDbID int, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT t.id, t.payer_id, t.payee_id, t.amount, COALESCE(t.description, ''), t.already_paid, t.created_at,
		       payer.discord_id, payee.discord_id
		FROM transactions t
		JOIN users payer ON t.payer_id = payer.id
		JOIN users payee ON t.payee_id = payee.id
		WHERE t.payer_id = $1 OR t.payee_id = $1
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $2`

	rows, err := Pool.Query(context.Background(), query, userDbID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying transaction history: %w", err)
	}
	defer rows.Close()

	var result []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		err := rows.Scan(
			&tx.ID, &tx.PayerID, &tx.PayeeID, &tx.Amount, &tx.Description,
			&tx.AlreadyPaid, &tx.CreatedAt, &tx.PayerDiscordID, &tx.PayeeDiscordID,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning transaction row: %w", err)
		}
		result = append(result, tx)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return result, nil
}

// GetRecentTransactionsBetween returns recent transactions from one user to
// another, optionally restricted to unpaid ones.
func GetRecentTransactionsBetween(debtorDbID, creditorDbID, limit int, includePaid bool) ([]models.Transaction, error) {
	whereClause := ""
	if !includePaid {
		whereClause = "AND t.already_paid = false"
	}

	query := fmt.Sprintf(`
		SELECT t.id, t.payer_id, t.payee_id, t.amount, COALESCE(t.description, ''), t.already_paid, t.created_at
		FROM transactions t
		WHERE t.payer_id = $1 AND t.payee_id = $2 %s
		ORDER BY t.created_at DESC LIMIT $3`, whereClause)

	rows, err := Pool.Query(context.Background(), query, debtorDbID, creditorDbID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying recent transactions: %w", err)
	}
	defer rows.Close()

	var result []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		err := rows.Scan(&tx.ID, &tx.PayerID, &tx.PayeeID, &tx.Amount, &tx.Description, &tx.AlreadyPaid, &tx.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning transaction row: %w", err)
		}
		result = append(result, tx)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return result, nil
}
