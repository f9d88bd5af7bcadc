package handlers

import (
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Component Custom IDs - shared constants for all interactive components
const (
	settlePayButtonPrefix     = "settle_pay_"
	settleNotifyButtonPrefix  = "settle_notify_"
	settleConfirmButtonPrefix = "settle_confirm_"
	settleRejectButtonPrefix  = "settle_reject_"
)

// RegisterComponentHandlers registers the interaction handlers for components
func RegisterComponentHandlers(s *discordgo.Session) {
	s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type == discordgo.InteractionMessageComponent {
			handleMessageComponentInteraction(s, i)
		}
	})
}

// handleMessageComponentInteraction routes component interactions to the appropriate handler
func handleMessageComponentInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID

	switch {
	case strings.HasPrefix(customID, settlePayButtonPrefix):
		handleSettlePayButton(s, i)
	case strings.HasPrefix(customID, settleNotifyButtonPrefix):
		handleSettleNotifyButton(s, i)
	case strings.HasPrefix(customID, settleConfirmButtonPrefix):
		handleSettleConfirmButton(s, i)
	case strings.HasPrefix(customID, settleRejectButtonPrefix):
		handleSettleRejectButton(s, i)
	default:
		log.Printf("Unknown component interaction: %s", customID)
		respondWithError(s, i, "ไม่รู้จัก interaction นี้ โปรดติดต่อผู้ดูแลระบบ")
	}
}

// respondWithError sends an ephemeral error message
func respondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "⚠️ " + message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
