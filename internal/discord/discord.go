package discord

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/oatsaysai/settle-up-in-discord/internal/discord/handlers"
	"github.com/oatsaysai/settle-up-in-discord/pkg/verifier"
)

var (
	session *discordgo.Session
)

// SetVerifierClient sets the verifier client
func SetVerifierClient(client *verifier.Client) {
	handlers.SetVerifierClient(client)
}

// Initialize sets up the Discord session and registers handlers
func Initialize(token string) error {
	var err error
	session, err = discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("error creating Discord session: %w", err)
	}

	// Update the registry with all commands
	UpdateRegistry()

	// Register the message handler
	session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		ProcessCommand(s, m)
	})

	// Register component handlers for settlement plan buttons
	handlers.RegisterComponentHandlers(session)

	// Open connection to Discord
	err = session.Open()
	if err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	log.Println("Connected to Discord successfully")
	return nil
}

// Close closes the Discord session
func Close() {
	if session != nil {
		session.Close()
	}
}

// GetSession returns the Discord session
func GetSession() *discordgo.Session {
	return session
}
