package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/oatsaysai/settle-up-in-discord/internal/config"
	"github.com/oatsaysai/settle-up-in-discord/internal/db"
	"github.com/oatsaysai/settle-up-in-discord/internal/discord"
	"github.com/oatsaysai/settle-up-in-discord/pkg/verifier"
)

func main() {
	// Parse command-line flags
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Initialize configuration
	config.Initialize(*configFile)
	log.Printf("Using config file: %s", *configFile)

	// Initialize database
	db.Initialize()
	db.Migrate()

	// Initialize Slip Verifier client when an API URL is configured.
	// Without one, slips are checked locally from their QR payload.
	if apiURL := config.GetString("SlipVerifier.ApiUrl"); apiURL != "" {
		discord.SetVerifierClient(verifier.NewClient(apiURL))
		log.Printf("Slip Verifier client initialized with API URL: %s", apiURL)
	} else {
		log.Println("No Slip Verifier API configured, slips will be checked from their QR payload")
	}

	// Initialize Discord bot
	if err := discord.Initialize(config.GetString("DiscordBot.Token")); err != nil {
		log.Fatalf("Failed to initialize Discord bot: %v", err)
	}
	defer discord.Close()

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle termination signals
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for termination signal
	go func() {
		<-signalChan
		log.Println("Received termination signal, shutting down gracefully...")
		cancel()
	}()

	log.Println("Settle-up bot is now running. Press CTRL+C to exit.")
	// Keep the application running until context is cancelled
	<-ctx.Done()
	log.Println("Settle-up bot shutting down...")
}
