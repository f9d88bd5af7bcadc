package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
)

// SetUserPromptPayID saves or replaces the PromptPay ID for a user
func SetUserPromptPayID(userDbID int, promptPayID string) error {
	query := `
		INSERT INTO user_promptpay (user_id, promptpay_id, created_at, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id)
		DO UPDATE SET promptpay_id = EXCLUDED.promptpay_id, updated_at = CURRENT_TIMESTAMP;
	`
	_, err := Pool.Exec(context.Background(), query, userDbID, promptPayID)
	if err != nil {
		log.Printf("Error saving PromptPay ID for user %d: %v", userDbID, err)
		return fmt.Errorf("ไม่สามารถบันทึก PromptPay ID ได้: %w", err)
	}
	return nil
}

// GetUserPromptPayID returns the stored PromptPay ID for a user
func GetUserPromptPayID(userDbID int) (string, error) {
	var promptPayID string
	query := `SELECT promptpay_id FROM user_promptpay WHERE user_id = $1`
	err := Pool.QueryRow(context.Background(), query, userDbID).Scan(&promptPayID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("ยังไม่พบ PromptPay ID สำหรับผู้ใช้นี้")
		}
		return "", fmt.Errorf("error getting PromptPay ID for user %d: %w", userDbID, err)
	}
	return promptPayID, nil
}

// GetPromptPayIDByDiscordID returns the stored PromptPay ID for a Discord user
func GetPromptPayIDByDiscordID(discordID string) (string, error) {
	userDbID, err := GetOrCreateUser(discordID)
	if err != nil {
		return "", err
	}
	return GetUserPromptPayID(userDbID)
}
