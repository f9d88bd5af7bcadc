package models

import (
	"time"
)

// Transaction represents a financial transaction between users
type Transaction struct {
	ID             int       `json:"id"`
	PayerID        int       `json:"payer_id"`
	PayeeID        int       `json:"payee_id"`
	Amount         float64   `json:"amount"`
	Description    string    `json:"description"`
	AlreadyPaid    bool      `json:"already_paid"`
	CreatedAt      time.Time `json:"created_at"`
	PayerDiscordID string    `json:"payer_discord_id,omitempty"`
	PayeeDiscordID string    `json:"payee_discord_id,omitempty"`
}

// UserDebt represents a debt between users
type UserDebt struct {
	DebtorID          int       `json:"debtor_id"`
	CreditorID        int       `json:"creditor_id"`
	Amount            float64   `json:"amount"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	DebtorDiscordID   string    `json:"debtor_discord_id,omitempty"`
	CreditorDiscordID string    `json:"creditor_discord_id,omitempty"`
}

// Settlement represents one settlement run over a group's open debts
type Settlement struct {
	ID                 int       `json:"id"`
	GuildID            string    `json:"guild_id"`
	ChannelID          string    `json:"channel_id"`
	CreatedByDiscordID string    `json:"created_by_discord_id"`
	PaymentCount       int       `json:"payment_count"`
	TotalAmount        float64   `json:"total_amount"`
	CreatedAt          time.Time `json:"created_at"`
}

// SettlementPayment represents one transfer in a settlement plan
type SettlementPayment struct {
	ID                int       `json:"id"`
	SettlementID      int       `json:"settlement_id"`
	DebtorID          int       `json:"debtor_id"`
	CreditorID        int       `json:"creditor_id"`
	Amount            float64   `json:"amount"`
	Settled           bool      `json:"settled"`
	SettledAt         time.Time `json:"settled_at,omitempty"`
	DebtorDiscordID   string    `json:"debtor_discord_id,omitempty"`
	CreditorDiscordID string    `json:"creditor_discord_id,omitempty"`
}
