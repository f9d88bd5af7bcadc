package commands

import (
	"github.com/oatsaysai/settle-up-in-discord/internal/discord/handlers"
)

// RegisterBillCommands registers all bill-related commands
func RegisterBillCommands() {
	// Register the bill command
	registerCommand(CommandDefinition{
		Name:        "bill",
		Description: "Create a bill to split expenses among users",
		Usage:       "!bill [promptpay_id]\n<amount> for <description> with @user1 @user2...\n...",
		Examples: []string{
			"!bill\n100 for dinner with @user1 @user2\n50 for drinks with @user1",
			"!bill 0812345678\n200 for lunch with @user1 @user2 @user3",
		},
		Handler: handlers.HandleBillCommand,
	})

	// Register the owe command
	registerCommand(CommandDefinition{
		Name:        "owe",
		Description: "Record that you owe another user",
		Usage:       "!owe @user <amount> [for <description>]",
		Examples: []string{
			"!owe @user 150",
			"!owe @user 80 for taxi",
		},
		Handler: handlers.HandleOweCommand,
	})

	// Register the billto command
	registerCommand(CommandDefinition{
		Name:        "billto",
		Description: "Record that another user owes you",
		Usage:       "!billto @user <amount> [for <description>]",
		Examples: []string{
			"!billto @user 150",
			"!billto @user 80 for taxi",
		},
		Handler: handlers.HandleBillToCommand,
	})

	// Register the qr command
	registerCommand(CommandDefinition{
		Name:        "qr",
		Description: "Generate a QR code for payment",
		Usage:       "!qr <amount> to @user [for <description>] [promptpay_id]",
		Examples: []string{
			"!qr 100 to @user for dinner",
			"!qr 50 to @user for drinks 0812345678",
		},
		Handler: handlers.HandleQrCommand,
	})
}
