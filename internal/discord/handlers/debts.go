package handlers

import (
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/oatsaysai/settle-up-in-discord/internal/db"
	"github.com/oatsaysai/settle-up-in-discord/internal/models"
)

// HandleMyDebts handles the !mydebts command
func HandleMyDebts(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	queryAndSendDebts(s, m, m.Author.ID, "debtor")
}

// HandleOwedToMe handles the !owedtome and !mydues commands
func HandleOwedToMe(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	queryAndSendDebts(s, m, m.Author.ID, "creditor")
}

// HandleDebtsOfUser handles the !debts command
func HandleDebtsOfUser(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 2 || !userMentionRegex.MatchString(args[1]) {
		SendErrorMessage(s, m.ChannelID, "รูปแบบไม่ถูกต้อง โปรดใช้ `!debts @user`")
		return
	}
	targetUserDiscordID := userMentionRegex.FindStringSubmatch(args[1])[1]
	queryAndSendDebts(s, m, targetUserDiscordID, "debtor")
}

// HandleDuesForUser handles the !dues command
func HandleDuesForUser(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 2 || !userMentionRegex.MatchString(args[1]) {
		SendErrorMessage(s, m.ChannelID, "รูปแบบไม่ถูกต้อง โปรดใช้ `!dues @user`")
		return
	}
	targetUserDiscordID := userMentionRegex.FindStringSubmatch(args[1])[1]
	queryAndSendDebts(s, m, targetUserDiscordID, "creditor")
}

// HandleHistoryCommand handles the !history command
func HandleHistoryCommand(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	// With a mention, show only transactions between the author and that user
	if len(args) >= 2 && userMentionRegex.MatchString(args[1]) {
		otherDiscordID := userMentionRegex.FindStringSubmatch(args[1])[1]
		sendPairHistory(s, m, otherDiscordID)
		return
	}

	userDbID, err := db.GetOrCreateUser(m.Author.ID)
	if err != nil {
		SendErrorMessage(s, m.ChannelID, fmt.Sprintf("เกิดข้อผิดพลาดกับฐานข้อมูลสำหรับคุณ (<@%s>)", m.Author.ID))
		return
	}

	transactions, err := db.GetUserTransactionHistory(userDbID, 10)
	if err != nil {
		SendErrorMessage(s, m.ChannelID, "ไม่สามารถดึงประวัติรายการได้")
		log.Printf("Error querying transaction history for %s (dbID %d): %v", m.Author.ID, userDbID, err)
		return
	}

	if len(transactions) == 0 {
		s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("<@%s> ยังไม่มีรายการในระบบ", m.Author.ID))
		return
	}

	var response strings.Builder
	response.WriteString(fmt.Sprintf("รายการล่าสุดของ <@%s>:\n", m.Author.ID))
	for _, tx := range transactions {
		description := tx.Description
		if description == "" {
			description = "-"
		}
		response.WriteString(fmt.Sprintf("- TxID %d: <@%s> → <@%s> **%.2f บาท** (%s) %s\n",
			tx.ID, tx.PayerDiscordID, tx.PayeeDiscordID, tx.Amount, description, transactionStatus(tx.AlreadyPaid)))
	}

	s.ChannelMessageSend(m.ChannelID, response.String())
}

// sendPairHistory sends recent transactions between the author and another
// user, in both directions.
func sendPairHistory(s *discordgo.Session, m *discordgo.MessageCreate, otherDiscordID string) {
	authorDbID, err := db.GetOrCreateUser(m.Author.ID)
	if err != nil {
		SendErrorMessage(s, m.ChannelID, fmt.Sprintf("เกิดข้อผิดพลาดกับฐานข้อมูลสำหรับคุณ (<@%s>)", m.Author.ID))
		return
	}
	otherDbID, err := db.GetOrCreateUser(otherDiscordID)
	if err != nil {
		SendErrorMessage(s, m.ChannelID, fmt.Sprintf("เกิดข้อผิดพลาดกับฐานข้อมูลสำหรับ <@%s>", otherDiscordID))
		return
	}

	outgoing, err := db.GetRecentTransactionsBetween(authorDbID, otherDbID, 5, true)
	if err != nil {
		SendErrorMessage(s, m.ChannelID, "ไม่สามารถดึงประวัติรายการได้")
		log.Printf("Error querying pair history %s -> %s: %v", m.Author.ID, otherDiscordID, err)
		return
	}
	incoming, err := db.GetRecentTransactionsBetween(otherDbID, authorDbID, 5, true)
	if err != nil {
		SendErrorMessage(s, m.ChannelID, "ไม่สามารถดึงประวัติรายการได้")
		log.Printf("Error querying pair history %s -> %s: %v", otherDiscordID, m.Author.ID, err)
		return
	}

	if len(outgoing) == 0 && len(incoming) == 0 {
		s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("ไม่มีรายการระหว่าง <@%s> กับ <@%s>", m.Author.ID, otherDiscordID))
		return
	}

	var response strings.Builder
	response.WriteString(fmt.Sprintf("รายการล่าสุดระหว่าง <@%s> กับ <@%s>:\n", m.Author.ID, otherDiscordID))
	writeTransactionLines(&response, outgoing, m.Author.ID, otherDiscordID)
	writeTransactionLines(&response, incoming, otherDiscordID, m.Author.ID)

	s.ChannelMessageSend(m.ChannelID, response.String())
}

func writeTransactionLines(response *strings.Builder, transactions []models.Transaction, payerDiscordID, payeeDiscordID string) {
	for _, tx := range transactions {
		description := tx.Description
		if description == "" {
			description = "-"
		}
		response.WriteString(fmt.Sprintf("- TxID %d: <@%s> → <@%s> **%.2f บาท** (%s) %s\n",
			tx.ID, payerDiscordID, payeeDiscordID, tx.Amount, description, transactionStatus(tx.AlreadyPaid)))
	}
}

func transactionStatus(alreadyPaid bool) string {
	if alreadyPaid {
		return "✅ ชำระแล้ว"
	}
	return "⏳ ค้างชำระ"
}

// queryAndSendDebts queries and sends debt information
func queryAndSendDebts(s *discordgo.Session, m *discordgo.MessageCreate, principalDiscordID string, mode string) {
	principalDbID, err := db.GetOrCreateUser(principalDiscordID)
	if err != nil {
		SendErrorMessage(s, m.ChannelID, fmt.Sprintf("ไม่พบ <@%s> ในฐานข้อมูล", principalDiscordID))
		return
	}

	// Get debts with transaction details from the db package
	isDebtor := mode == "debtor"
	debts, err := db.GetUserDebtsWithDetails(principalDbID, isDebtor)
	if err != nil {
		SendErrorMessage(s, m.ChannelID, "ไม่สามารถดึงข้อมูลหนี้สินได้")
		log.Printf("Error querying debts with details (mode: %s) for %s (dbID %d): %v",
			mode, principalDiscordID, principalDbID, err)
		return
	}

	// ดึงชื่อผู้ใช้จริงจาก Discord
	principalName := GetDiscordUsername(s, principalDiscordID)
	EnhanceDebtsWithUsernames(s, debts)

	// Format the title based on the mode
	var title string
	if isDebtor {
		title = fmt.Sprintf("หนี้สินของ %s (<@%s>) (ที่ต้องจ่ายคนอื่น):\n", principalName, principalDiscordID)
	} else {
		title = fmt.Sprintf("ยอดค้างชำระถึง %s (<@%s>) (ที่คนอื่นต้องจ่าย):\n", principalName, principalDiscordID)
	}

	// Build the response
	var response strings.Builder
	response.WriteString(title)

	// Handle case with no debts
	if len(debts) == 0 {
		if isDebtor {
			response.WriteString(fmt.Sprintf("%s ไม่มีหนี้สินค้างชำระ! 🎉\n", principalName))
		} else {
			response.WriteString(fmt.Sprintf("ดูเหมือนว่าทุกคนจะชำระหนี้ให้ %s หมดแล้ว 👍\n", principalName))
		}
	} else {
		// Format each debt with its details
		for _, debt := range debts {
			otherPartyName := debt.OtherPartyName

			// Truncate details if too long
			details := debt.Details
			maxDetailLen := 150 // Max length for details string in the summary
			if len(details) > maxDetailLen {
				details = details[:maxDetailLen-3] + "..."
			}

			// Format based on the mode
			if isDebtor {
				response.WriteString(fmt.Sprintf("- **%.2f บาท** ให้ %s (<@%s>) (รายละเอียดล่าสุด: %s)\n",
					debt.Amount, otherPartyName, debt.OtherPartyDiscordID, details))
			} else {
				response.WriteString(fmt.Sprintf("- %s (<@%s>) เป็นหนี้ **%.2f บาท** (รายละเอียดล่าสุด: %s)\n",
					otherPartyName, debt.OtherPartyDiscordID, debt.Amount, details))
			}
		}
	}

	// Send the response
	s.ChannelMessageSend(m.ChannelID, response.String())
}
