package commands

import (
	"github.com/oatsaysai/settle-up-in-discord/internal/discord/handlers"
)

// RegisterSettleCommands registers all settlement-related commands
func RegisterSettleCommands() {
	// Register the settle command
	registerCommand(CommandDefinition{
		Name:        "settle",
		Description: "Collapse all outstanding debts into the shortest transfer plan",
		Usage:       "!settle",
		Examples: []string{
			"!settle",
		},
		Handler: handlers.HandleSettleCommand,
	})

	// Register the settlements command
	registerCommand(CommandDefinition{
		Name:        "settlements",
		Description: "Show recent settlement plans and their payment status",
		Usage:       "!settlements",
		Examples: []string{
			"!settlements",
		},
		Handler: handlers.HandleSettlementsCommand,
	})

	// Register the balances command
	registerCommand(CommandDefinition{
		Name:        "balances",
		Description: "Show everyone's net balance across all debts",
		Usage:       "!balances",
		Examples: []string{
			"!balances",
		},
		Handler: handlers.HandleBalancesCommand,
	})
}
