package handlers

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/oatsaysai/settle-up-in-discord/internal/db"
	"github.com/oatsaysai/settle-up-in-discord/internal/utils"
	"github.com/oatsaysai/settle-up-in-discord/pkg/qrcode"
)

var userMentionRegex = utils.UserMentionRegex

// SendDirectMessage sends a direct message to a user
func SendDirectMessage(s *discordgo.Session, userID, message string) error {
	// Create a DM channel with the user
	channel, err := s.UserChannelCreate(userID)
	if err != nil {
		log.Printf("Could not create DM channel with %s: %v", userID, err)
		return err
	}

	// Send the message
	_, err = s.ChannelMessageSend(channel.ID, message)
	if err != nil {
		log.Printf("Failed to send DM to %s: %v", userID, err)
		return err
	}

	return nil
}

// SendErrorMessage sends an error message to the specified Discord channel
func SendErrorMessage(s *discordgo.Session, channelID, message string) {
	log.Printf("ERROR to user (Channel: %s): %s", channelID, message)
	_, err := s.ChannelMessageSend(channelID, fmt.Sprintf("⚠️ เกิดข้อผิดพลาด: %s", message))
	if err != nil {
		log.Printf("Failed to send error message to Discord: %v", err)
	}
}

// GenerateAndSendQrCode generates a payment QR code tied to journal
// transactions and sends it to the channel plus a copy to the debtor's DMs.
func GenerateAndSendQrCode(s *discordgo.Session, channelID, promptPayNum string, amount float64, targetUserDiscordID, description string, txIDs []int) {
	txIDString := ""
	if len(txIDs) == 1 {
		txIDString = fmt.Sprintf(" (TxID: %d)", txIDs[0])
	} else if len(txIDs) > 1 {
		var idStrs []string
		for _, id := range txIDs {
			idStrs = append(idStrs, fmt.Sprintf("%d", id))
		}
		txIDString = fmt.Sprintf(" (TxIDs: %s)", strings.Join(idStrs, ","))
	}

	sendQrWithReference(s, channelID, promptPayNum, amount, targetUserDiscordID, description, txIDString)
}

// GenerateAndSendSettlementQr generates a payment QR code tied to a
// settlement plan payment and sends it to the channel plus the debtor's DMs.
func GenerateAndSendSettlementQr(s *discordgo.Session, channelID, promptPayNum string, amount float64, targetUserDiscordID, description string, settlePayID int) {
	refSuffix := fmt.Sprintf(" (SettlePayID: %d)", settlePayID)
	sendQrWithReference(s, channelID, promptPayNum, amount, targetUserDiscordID, description, refSuffix)
}

// sendQrWithReference renders the QR image and posts it with the payment
// reference suffix that slip verification later parses back out.
func sendQrWithReference(s *discordgo.Session, channelID, promptPayNum string, amount float64, targetUserDiscordID, description, refSuffix string) {
	filename, err := qrcode.Generate(promptPayNum, amount)
	if err != nil {
		SendErrorMessage(s, channelID, fmt.Sprintf("ไม่สามารถสร้างรูปภาพ QR สำหรับ <@%s> ได้", targetUserDiscordID))
		log.Printf("Error generating QR code for %s: %v", targetUserDiscordID, err)
		return
	}
	defer qrcode.Remove(filename)

	file, err := os.Open(filename)
	if err != nil {
		SendErrorMessage(s, channelID, fmt.Sprintf("ไม่สามารถส่งรูปภาพ QR สำหรับ <@%s> ได้", targetUserDiscordID))
		log.Printf("Could not open QR image %s for sending: %v", filename, err)
		return
	}
	defer file.Close()

	msgContent := fmt.Sprintf("<@%s> กรุณาชำระ %.2f บาท %s\nหากต้องการยืนยันการชำระเงิน ตอบกลับข้อความนี้พร้อมแนบสลิปของคุณ", targetUserDiscordID, amount, refSuffix)
	if description != "" {
		msgContent = fmt.Sprintf("<@%s> กรุณาชำระ %.2f บาท สำหรับ %s%s\nหากต้องการยืนยันการชำระเงิน ตอบกลับข้อความนี้พร้อมแนบสลิปของคุณ", targetUserDiscordID, amount, description, refSuffix)
	}

	// Send to the channel
	_, err = s.ChannelFileSendWithMessage(channelID, msgContent, filename, file)
	if err != nil {
		log.Printf("Failed to send QR file for %s: %v", targetUserDiscordID, err)
	}

	// Also send a direct message to the debtor
	// We need to reopen the file as it was already read for the channel message
	file.Close()
	file, err = os.Open(filename)
	if err != nil {
		log.Printf("Could not reopen QR image for DM to %s: %v", targetUserDiscordID, err)
		return
	}
	defer file.Close()

	// Create a DM channel with the user
	channel, err := s.UserChannelCreate(targetUserDiscordID)
	if err != nil {
		log.Printf("Could not create DM channel with %s: %v", targetUserDiscordID, err)
		return
	}

	// Prepare the DM content (remove the mention since it's a direct message)
	dmContent := fmt.Sprintf("กรุณาชำระ %.2f บาท %s\nหากต้องการยืนยันการชำระเงิน ตอบกลับข้อความนี้พร้อมแนบสลิปของคุณ", amount, refSuffix)
	if description != "" {
		dmContent = fmt.Sprintf("กรุณาชำระ %.2f บาท สำหรับ %s%s\nหากต้องการยืนยันการชำระเงิน ตอบกลับข้อความนี้พร้อมแนบสลิปของคุณ", amount, description, refSuffix)
	}

	// Send the DM with the QR code
	_, err = s.ChannelFileSendWithMessage(channel.ID, dmContent, filename, file)
	if err != nil {
		log.Printf("Failed to send QR file via DM to %s: %v", targetUserDiscordID, err)
	}
}

// GetDiscordUsername retrieves a user's display name from their Discord ID
func GetDiscordUsername(s *discordgo.Session, discordID string) string {
	// Check if session is nil
	if s == nil {
		log.Println("ERROR: Discord session is nil in GetDiscordUsername")
		return "User"
	}

	// Fetch user info from Discord API
	user, err := s.User(discordID)
	if err != nil {
		log.Printf("Error fetching user info for ID %s: %v", discordID, err)
		return "User"
	}

	// Use global_name if available, otherwise username
	if user.GlobalName != "" {
		return user.GlobalName
	}
	if user.Username != "" {
		return user.Username
	}

	return "User"
}

// EnhanceDebtsWithUsernames adds Discord usernames to debt details
func EnhanceDebtsWithUsernames(s *discordgo.Session, debts []db.DebtDetail) {
	for i := range debts {
		// Remove @ or <> characters from Discord ID if present
		discordID := strings.TrimPrefix(debts[i].OtherPartyDiscordID, "@")
		discordID = strings.TrimPrefix(discordID, "<@")
		discordID = strings.TrimSuffix(discordID, ">")

		// Fetch username from Discord and set it in OtherPartyName
		debts[i].OtherPartyName = GetDiscordUsername(s, discordID)
	}
}
