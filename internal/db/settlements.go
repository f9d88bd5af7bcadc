package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oatsaysai/settle-up-in-discord/internal/models"
)

// CreateSettlement stores one settlement run and its payment plan in a
// single database transaction. It returns the settlement ID and the IDs of
// the plan rows in input order, so callers can attach them to pay buttons.
func CreateSettlement(guildID, channelID, createdByDiscordID string, payments []models.SettlementPayment) (int, []int, error) {
	if len(payments) == 0 {
		return 0, nil, fmt.Errorf("settlement must contain at least one payment")
	}

	totalAmount := 0.0
	for _, p := range payments {
		totalAmount += p.Amount
	}

	tx, err := Pool.Begin(context.Background())
	if err != nil {
		return 0, nil, fmt.Errorf("failed to begin database transaction: %w", err)
	}
	defer tx.Rollback(context.Background())

	var settlementID int
	err = tx.QueryRow(context.Background(),
		`INSERT INTO settlements (guild_id, channel_id, created_by_discord_id, payment_count, total_amount)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		guildID, channelID, createdByDiscordID, len(payments), totalAmount).Scan(&settlementID)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create settlement: %w", err)
	}

	paymentIDs := make([]int, 0, len(payments))
	for _, p := range payments {
		var paymentID int
		err = tx.QueryRow(context.Background(),
			`INSERT INTO settlement_payments (settlement_id, debtor_id, creditor_id, amount)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			settlementID, p.DebtorID, p.CreditorID, p.Amount).Scan(&paymentID)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to create settlement payment: %w", err)
		}
		paymentIDs = append(paymentIDs, paymentID)
	}

	if err = tx.Commit(context.Background()); err != nil {
		return 0, nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	log.Printf("Created settlement %d with %d payments totaling %.2f", settlementID, len(payments), totalAmount)
	return settlementID, paymentIDs, nil
}

// GetSettlementPayment returns one plan row with both parties' Discord IDs
func GetSettlementPayment(paymentID int) (*models.SettlementPayment, error) {
	query := `
		SELECT sp.id, sp.settlement_id, sp.debtor_id, sp.creditor_id, sp.amount,
		       sp.settled, sp.settled_at, du.discord_id, cu.discord_id
		FROM settlement_payments sp
		JOIN users du ON sp.debtor_id = du.id
		JOIN users cu ON sp.creditor_id = cu.id
		WHERE sp.id = $1
	`

	var p models.SettlementPayment
	var settledAt *time.Time
	err := Pool.QueryRow(context.Background(), query, paymentID).Scan(
		&p.ID, &p.SettlementID, &p.DebtorID, &p.CreditorID, &p.Amount,
		&p.Settled, &settledAt, &p.DebtorDiscordID, &p.CreditorDiscordID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ไม่พบรายการชำระ (SettlePayID: %d)", paymentID)
		}
		return nil, fmt.Errorf("error getting settlement payment %d: %w", paymentID, err)
	}
	if settledAt != nil {
		p.SettledAt = *settledAt
	}

	return &p, nil
}

// GetSettlementPayments returns the full plan of one settlement in insertion order
func GetSettlementPayments(settlementID int) ([]models.SettlementPayment, error) {
	query := `
		SELECT sp.id, sp.settlement_id, sp.debtor_id, sp.creditor_id, sp.amount,
		       sp.settled, sp.settled_at, du.discord_id, cu.discord_id
		FROM settlement_payments sp
		JOIN users du ON sp.debtor_id = du.id
		JOIN users cu ON sp.creditor_id = cu.id
		WHERE sp.settlement_id = $1
		ORDER BY sp.id ASC
	`
	rows, err := Pool.Query(context.Background(), query, settlementID)
	if err != nil {
		return nil, fmt.Errorf("error querying settlement payments: %w", err)
	}
	defer rows.Close()

	var payments []models.SettlementPayment
	for rows.Next() {
		var p models.SettlementPayment
		var settledAt *time.Time
		if err := rows.Scan(
			&p.ID, &p.SettlementID, &p.DebtorID, &p.CreditorID, &p.Amount,
			&p.Settled, &settledAt, &p.DebtorDiscordID, &p.CreditorDiscordID,
		); err != nil {
			return nil, fmt.Errorf("error scanning settlement payment row: %w", err)
		}
		if settledAt != nil {
			p.SettledAt = *settledAt
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settlement payment rows: %w", err)
	}

	return payments, nil
}

// MarkSettlementPaymentSettled flags one plan row as settled and applies the
// payment to the pair balance. The pair row may go negative when the plan
// crosses pairs that never transacted directly; GetActiveDebts reads such a
// row as debt in the mirror direction, so every participant's net position
// still moves by exactly the paid amount.
func MarkSettlementPaymentSettled(paymentID int) error {
	var debtorDbID, creditorDbID int
	var amount float64
	var settled bool

	tx, err := Pool.Begin(context.Background())
	if err != nil {
		return fmt.Errorf("failed to begin database transaction: %w", err)
	}
	defer tx.Rollback(context.Background())

	err = tx.QueryRow(context.Background(),
		`SELECT debtor_id, creditor_id, amount, settled FROM settlement_payments WHERE id = $1 FOR UPDATE`,
		paymentID).Scan(&debtorDbID, &creditorDbID, &amount, &settled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("ไม่พบรายการชำระ (SettlePayID: %d)", paymentID)
		}
		return fmt.Errorf("failed to retrieve settlement payment %d: %w", paymentID, err)
	}
	if settled {
		return fmt.Errorf("รายการชำระนี้ถูกยืนยันไปแล้ว (SettlePayID: %d)", paymentID)
	}

	_, err = tx.Exec(context.Background(),
		`UPDATE settlement_payments SET settled = TRUE, settled_at = CURRENT_TIMESTAMP WHERE id = $1`, paymentID)
	if err != nil {
		return fmt.Errorf("failed to mark settlement payment %d settled: %w", paymentID, err)
	}

	// Apply the payment to the accumulated pair balance
	_, err = tx.Exec(context.Background(),
		`INSERT INTO user_debts (debtor_id, creditor_id, amount, created_at, updated_at)
		 VALUES ($1, $2, -$3::numeric, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		 ON CONFLICT (debtor_id, creditor_id)
		 DO UPDATE SET amount = user_debts.amount - $3, updated_at = CURRENT_TIMESTAMP`,
		debtorDbID, creditorDbID, amount)
	if err != nil {
		return fmt.Errorf("failed to apply settlement payment %d to user_debts: %w", paymentID, err)
	}

	if err = tx.Commit(context.Background()); err != nil {
		return fmt.Errorf("failed to commit settlement payment %d: %w", paymentID, err)
	}

	log.Printf("Settlement payment %d settled: debtor %d paid creditor %d amount %.2f", paymentID, debtorDbID, creditorDbID, amount)
	return nil
}

// GetRecentSettlements lists the most recent settlements for a guild
func GetRecentSettlements(guildID string, limit int) ([]models.Settlement, error) {
	if limit <= 0 {
		limit = 5
	}
	query := `
		SELECT id, guild_id, channel_id, created_by_discord_id, payment_count, total_amount, created_at
		FROM settlements
		WHERE guild_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := Pool.Query(context.Background(), query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying recent settlements: %w", err)
	}
	defer rows.Close()

	var settlements []models.Settlement
	for rows.Next() {
		var s models.Settlement
		if err := rows.Scan(&s.ID, &s.GuildID, &s.ChannelID, &s.CreatedByDiscordID, &s.PaymentCount, &s.TotalAmount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning settlement row: %w", err)
		}
		settlements = append(settlements, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settlement rows: %w", err)
	}

	return settlements, nil
}
