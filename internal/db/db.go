package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/viper"

	"github.com/oatsaysai/settle-up-in-discord/internal/models"
)

// Pool represents a connection pool to the PostgreSQL database
var Pool *pgxpool.Pool

// Initialize creates and initializes the PostgreSQL connection pool
func Initialize() {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable search_path=%s",
		viper.GetString("PostgreSQL.Host"),
		viper.GetString("PostgreSQL.Port"),
		viper.GetString("PostgreSQL.User"),
		viper.GetString("PostgreSQL.Password"),
		viper.GetString("PostgreSQL.DBName"),
		viper.GetString("PostgreSQL.Schema"),
	)

	var connectConf, err = pgxpool.ParseConfig(connStr)
	if err != nil {
		log.Fatalf("Unable to parse PostgreSQL config: %v", err)
	}

	connectConf.MaxConns = int32(viper.GetInt("PostgreSQL.PoolMaxConns"))
	connectConf.HealthCheckPeriod = 15 * time.Second
	connectConf.ConnConfig.ConnectTimeout = 5 * time.Second

	// Set timezone to PGX runtime
	if s := os.Getenv("TZ"); s != "" {
		connectConf.ConnConfig.RuntimeParams["timezone"] = s
	}

	Pool, err = pgxpool.NewWithConfig(context.Background(), connectConf)
	if err != nil {
		log.Fatalf("Unable to create PostgreSQL connection pool: %v", err)
	}

	log.Println("Connected to PostgreSQL successfully")
}

// Migrate sets up the database schema
func Migrate() {
	log.Println("Starting database migration...")

	// Trigger function to update 'updated_at' timestamp
	triggerFunction := `
    CREATE OR REPLACE FUNCTION update_modified_column()
    RETURNS TRIGGER AS $$
    BEGIN
       NEW.updated_at = NOW();
       RETURN NEW;
    END;
    $$ language 'plpgsql';`
	_, err := Pool.Exec(context.Background(), triggerFunction)
	if err != nil {
		log.Fatalf("Failed to create/update trigger function 'update_modified_column': %v", err)
	}

	// Schema for users table
	usersSchema := `
    CREATE TABLE IF NOT EXISTS users (
        id SERIAL PRIMARY KEY,
        discord_id VARCHAR(50) NOT NULL UNIQUE,
        created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
    );
    CREATE INDEX IF NOT EXISTS idx_users_discord_id ON users(discord_id);`
	_, err = Pool.Exec(context.Background(), usersSchema)
	if err != nil {
		log.Fatalf("Failed to migrate users table: %v", err)
	}

	// Schema for transactions table
	transactionsSchema := `
    CREATE TABLE IF NOT EXISTS transactions (
        id SERIAL PRIMARY KEY,
        payer_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        payee_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        amount NUMERIC(10, 2) NOT NULL,
        description TEXT,
        already_paid BOOLEAN DEFAULT FALSE,
        created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
        paid_at TIMESTAMPTZ
    );
    CREATE INDEX IF NOT EXISTS idx_transactions_payer_id ON transactions(payer_id);
    CREATE INDEX IF NOT EXISTS idx_transactions_payee_id ON transactions(payee_id);
    CREATE INDEX IF NOT EXISTS idx_transactions_payer_payee_paid ON transactions(payer_id, payee_id, already_paid);
    `
	_, err = Pool.Exec(context.Background(), transactionsSchema)
	if err != nil {
		log.Fatalf("Failed to migrate transactions table: %v", err)
	}

	// Schema for user_debts table
	userDebtsSchema := `
    CREATE TABLE IF NOT EXISTS user_debts (
        debtor_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        creditor_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        amount NUMERIC(10, 2) NOT NULL,
        created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
        PRIMARY KEY (debtor_id, creditor_id)
    );
    CREATE INDEX IF NOT EXISTS idx_user_debts_debtor_id ON user_debts(debtor_id);
    CREATE INDEX IF NOT EXISTS idx_user_debts_creditor_id ON user_debts(creditor_id);
    `
	_, err = Pool.Exec(context.Background(), userDebtsSchema)
	if err != nil {
		log.Fatalf("Failed to migrate user_debts table: %v", err)
	}

	// Apply trigger to user_debts
	userDebtsTrigger := `
    DROP TRIGGER IF EXISTS update_user_debts_modtime ON user_debts; -- idempotent
    CREATE TRIGGER update_user_debts_modtime
    BEFORE UPDATE ON user_debts
    FOR EACH ROW
    EXECUTE FUNCTION update_modified_column();`
	_, err = Pool.Exec(context.Background(), userDebtsTrigger)
	if err != nil {
		log.Fatalf("Failed to apply trigger to user_debts: %v", err)
	}

	// Schema for user_promptpay table
	userPromptPaySchema := `
	CREATE TABLE IF NOT EXISTS user_promptpay (
		user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		promptpay_id VARCHAR(50) NOT NULL,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id)
	);`
	_, err = Pool.Exec(context.Background(), userPromptPaySchema)
	if err != nil {
		log.Fatalf("Failed to migrate user_promptpay table: %v", err)
	}

	// Apply trigger to user_promptpay
	userPromptPayTrigger := `
	DROP TRIGGER IF EXISTS update_user_promptpay_modtime ON user_promptpay;
	CREATE TRIGGER update_user_promptpay_modtime
	BEFORE UPDATE ON user_promptpay
	FOR EACH ROW
	EXECUTE FUNCTION update_modified_column();`
	_, err = Pool.Exec(context.Background(), userPromptPayTrigger)
	if err != nil {
		log.Fatalf("Failed to apply trigger to user_promptpay: %v", err)
	}

	// Schema for settlements table
	settlementsSchema := `
	CREATE TABLE IF NOT EXISTS settlements (
		id SERIAL PRIMARY KEY,
		guild_id VARCHAR(50),
		channel_id VARCHAR(50),
		created_by_discord_id VARCHAR(50) NOT NULL,
		payment_count INT NOT NULL,
		total_amount NUMERIC(12, 2) NOT NULL,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_settlements_guild_id ON settlements(guild_id);
	`
	_, err = Pool.Exec(context.Background(), settlementsSchema)
	if err != nil {
		log.Fatalf("Failed to migrate settlements table: %v", err)
	}

	// Schema for settlement_payments table
	settlementPaymentsSchema := `
	CREATE TABLE IF NOT EXISTS settlement_payments (
		id SERIAL PRIMARY KEY,
		settlement_id INT NOT NULL REFERENCES settlements(id) ON DELETE CASCADE,
		debtor_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		creditor_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		amount NUMERIC(10, 2) NOT NULL,
		settled BOOLEAN DEFAULT FALSE,
		settled_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_settlement_payments_settlement_id ON settlement_payments(settlement_id);
	CREATE INDEX IF NOT EXISTS idx_settlement_payments_debtor_id ON settlement_payments(debtor_id, settled);
	`
	_, err = Pool.Exec(context.Background(), settlementPaymentsSchema)
	if err != nil {
		log.Fatalf("Failed to migrate settlement_payments table: %v", err)
	}

	log.Println("Database migration completed successfully")
}

// GetOrCreateUser retrieves a user from the database by Discord ID or creates a new one
func GetOrCreateUser(discordID string) (int, error) {
	var dbUserID int
	err := Pool.QueryRow(context.Background(), `SELECT id FROM users WHERE discord_id = $1`, discordID).Scan(&dbUserID)
	if err == nil {
		return dbUserID, nil
	}
	err = Pool.QueryRow(context.Background(), `INSERT INTO users (discord_id) VALUES ($1) RETURNING id`, discordID).Scan(&dbUserID)
	if err != nil {
		log.Printf("Failed to insert user %s: %v", discordID, err)
		// Attempt to fetch again in case of concurrent insert
		fetchErr := Pool.QueryRow(context.Background(), `SELECT id FROM users WHERE discord_id = $1`, discordID).Scan(&dbUserID)
		if fetchErr == nil {
			return dbUserID, nil
		}
		return 0, fmt.Errorf("unable to create or find user %s in database: %w (original insert error: %v)", discordID, fetchErr, err)
	}
	return dbUserID, nil
}

// UpdateUserDebt updates the summary user_debts table
// debtorDbID and creditorDbID are the integer IDs from the 'users' table.
// A negative amount reduces the pair balance; applying a settlement payment
// may legitimately push a pair negative, which readers interpret as debt in
// the mirror direction.
func UpdateUserDebt(debtorDbID, creditorDbID int, amount float64) error {
	query := `
        INSERT INTO user_debts (debtor_id, creditor_id, amount, created_at, updated_at)
        VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
        ON CONFLICT (debtor_id, creditor_id)
        DO UPDATE SET amount = user_debts.amount + EXCLUDED.amount, updated_at = CURRENT_TIMESTAMP;
    `
	_, err := Pool.Exec(context.Background(), query, debtorDbID, creditorDbID, amount)
	if err != nil {
		log.Printf("Error updating user_debts for debtor %d, creditor %d, amount %.2f: %v", debtorDbID, creditorDbID, amount, err)
		return fmt.Errorf("failed to update user_debts: %w", err)
	}
	return nil
}

// CreateTransaction creates a new transaction between users
func CreateTransaction(payerID, payeeID int, amount float64, description string) (int, error) {
	var txID int
	err := Pool.QueryRow(context.Background(),
		`INSERT INTO transactions (payer_id, payee_id, amount, description) VALUES ($1, $2, $3, $4) RETURNING id`,
		payerID, payeeID, amount, description).Scan(&txID)
	if err != nil {
		return 0, fmt.Errorf("failed to create transaction: %w", err)
	}
	return txID, nil
}

// DebtDetail represents a debt relationship with transaction details
type DebtDetail struct {
	Amount              float64
	OtherPartyDiscordID string
	OtherPartyName      string
	Details             string
}

// GetUserDebtsWithDetails gets all outstanding debts with transaction details for a user
func GetUserDebtsWithDetails(userID int, isDebtor bool) ([]DebtDetail, error) {
	// Subquery to get a comma-separated list of recent unpaid transaction details
	transactionDetailsSubquery := `
	WITH RankedTransactionDetails AS (
		SELECT
			t.payer_id,
			t.payee_id,
			t.description || ' (TxID:' || t.id::text || ')' as detail_text,
			ROW_NUMBER() OVER (PARTITION BY t.payer_id, t.payee_id ORDER BY t.created_at DESC, t.id DESC) as rn
		FROM transactions t
		WHERE t.already_paid = false
	)
	SELECT
		rtd.payer_id,
		rtd.payee_id,
		STRING_AGG(rtd.detail_text, '; ' ORDER BY rtd.rn) as details
	FROM RankedTransactionDetails rtd
	WHERE rtd.rn <= 5 -- Limit to 5 most recent details per pair
	GROUP BY rtd.payer_id, rtd.payee_id
	`

	var query string
	if isDebtor {
		query = fmt.Sprintf(`
			SELECT ud.amount, u_other.discord_id AS other_party_discord_id,
				   COALESCE(tx_details.details, 'หนี้สินรวม ไม่พบรายการธุรกรรมที่ยังไม่ได้ชำระที่เกี่ยวข้อง') as details
			FROM user_debts ud
			JOIN users u_other ON ud.creditor_id = u_other.id
			LEFT JOIN (
				%s
			) AS tx_details ON tx_details.payer_id = ud.debtor_id AND tx_details.payee_id = ud.creditor_id
			WHERE ud.debtor_id = $1 AND ud.amount > 0.009
			ORDER BY ud.amount DESC;`, transactionDetailsSubquery)
	} else {
		query = fmt.Sprintf(`
			SELECT ud.amount, u_other.discord_id AS other_party_discord_id,
				   COALESCE(tx_details.details, 'หนี้สินรวม ไม่พบรายการธุรกรรมที่ยังไม่ได้ชำระที่เกี่ยวข้อง') as details
			FROM user_debts ud
			JOIN users u_other ON ud.debtor_id = u_other.id
			LEFT JOIN (
				%s
			) AS tx_details ON tx_details.payer_id = ud.debtor_id AND tx_details.payee_id = ud.creditor_id
			WHERE ud.creditor_id = $1 AND ud.amount > 0.009
			ORDER BY ud.amount DESC;`, transactionDetailsSubquery)
	}

	rows, err := Pool.Query(context.Background(), query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying user debts/dues with details: %w", err)
	}
	defer rows.Close()

	var results []DebtDetail
	for rows.Next() {
		var debt DebtDetail
		if err := rows.Scan(&debt.Amount, &debt.OtherPartyDiscordID, &debt.Details); err != nil {
			return nil, fmt.Errorf("error scanning debt/due with details row: %w", err)
		}

		// ชื่อจริงจะถูกตั้งตอนดึงจาก Discord
		debt.OtherPartyName = ""

		results = append(results, debt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user debts/dues with details: %w", err)
	}

	return results, nil
}

// GetActiveDebts returns every open pair balance with both Discord IDs,
// normalized so Amount is always positive in the debtor -> creditor
// direction. Rows driven negative by settlement payments come back with the
// parties swapped. Ordering is fixed so repeated calls see the same rows in
// the same positions.
func GetActiveDebts() ([]models.UserDebt, error) {
	query := `
		SELECT ud.debtor_id, ud.creditor_id, ud.amount, du.discord_id, cu.discord_id
		FROM user_debts ud
		JOIN users du ON ud.debtor_id = du.id
		JOIN users cu ON ud.creditor_id = cu.id
		WHERE ABS(ud.amount) > 0.009
		ORDER BY ud.debtor_id, ud.creditor_id;
	`
	rows, err := Pool.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("error querying active debts: %w", err)
	}
	defer rows.Close()

	var debts []models.UserDebt
	for rows.Next() {
		var d models.UserDebt
		if err := rows.Scan(&d.DebtorID, &d.CreditorID, &d.Amount, &d.DebtorDiscordID, &d.CreditorDiscordID); err != nil {
			return nil, fmt.Errorf("error scanning active debt row: %w", err)
		}
		if d.Amount < 0 {
			d.DebtorID, d.CreditorID = d.CreditorID, d.DebtorID
			d.DebtorDiscordID, d.CreditorDiscordID = d.CreditorDiscordID, d.DebtorDiscordID
			d.Amount = -d.Amount
		}
		debts = append(debts, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active debt rows: %w", err)
	}

	return debts, nil
}

// GetTotalDebtAmount gets the total debt amount between two users
func GetTotalDebtAmount(debtorID, creditorID int) (float64, error) {
	var totalAmount float64
	query := `SELECT COALESCE(amount, 0) FROM user_debts WHERE debtor_id = $1 AND creditor_id = $2`
	err := Pool.QueryRow(context.Background(), query, debtorID, creditorID).Scan(&totalAmount)
	if err != nil {
		return 0, fmt.Errorf("error getting total debt amount: %w", err)
	}
	return totalAmount, nil
}

// GetDiscordIDFromDbID gets a Discord ID from a database user ID
func GetDiscordIDFromDbID(dbUserID int) (string, error) {
	var discordID string
	query := `SELECT discord_id FROM users WHERE id = $1`
	err := Pool.QueryRow(context.Background(), query, dbUserID).Scan(&discordID)
	if err != nil {
		return "", fmt.Errorf("error getting Discord ID for user %d: %w", dbUserID, err)
	}
	return discordID, nil
}

// GetTransactionInfo gets information about a transaction
func GetTransactionInfo(txID int) (*models.Transaction, error) {
	query := `
		SELECT t.id, t.payer_id, t.payee_id, t.amount, COALESCE(t.description, ''),
		       t.already_paid, t.created_at
		FROM transactions t
		WHERE t.id = $1
	`

	var tx models.Transaction
	err := Pool.QueryRow(context.Background(), query, txID).Scan(
		&tx.ID, &tx.PayerID, &tx.PayeeID, &tx.Amount, &tx.Description,
		&tx.AlreadyPaid, &tx.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("error getting transaction info: %w", err)
	}

	return &tx, nil
}
