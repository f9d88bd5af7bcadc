package handlers

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"

	"github.com/oatsaysai/settle-up-in-discord/internal/db"
	"github.com/oatsaysai/settle-up-in-discord/internal/models"
	"github.com/oatsaysai/settle-up-in-discord/internal/utils"
	"github.com/oatsaysai/settle-up-in-discord/pkg/settle"
)

// Discord allows at most 5 action rows of 5 buttons per message.
const maxPlanButtons = 25

// HandleSettleCommand handles the !settle command. It folds every open debt
// into a simplified payment plan, persists the plan, and posts it with one
// pay button per transfer.
func HandleSettleCommand(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	debts, err := db.GetActiveDebts()
	if err != nil {
		SendErrorMessage(s, m.ChannelID, "ไม่สามารถดึงข้อมูลหนี้คงค้างได้")
		log.Printf("Error loading active debts for !settle: %v", err)
		return
	}

	if len(debts) == 0 {
		s.ChannelMessageSend(m.ChannelID, "ไม่มีหนี้คงค้างในระบบ ทุกคนเคลียร์กันหมดแล้ว 🎉")
		return
	}

	transactions, dbIDByDiscordID := debtsToTransactions(debts)

	plan, _, err := settle.Simplify(transactions)
	if err != nil {
		SendErrorMessage(s, m.ChannelID, "ไม่สามารถคำนวณแผนเคลียร์หนี้ได้")
		log.Printf("Error simplifying %d debts for !settle: %v", len(debts), err)
		return
	}

	if len(plan) == 0 {
		s.ChannelMessageSend(m.ChannelID, "ยอดหนี้ทั้งหมดหักล้างกันพอดี ไม่ต้องโอนเงินเพิ่ม 🎉")
		return
	}

	payments := make([]models.SettlementPayment, 0, len(plan))
	for _, payment := range plan {
		payments = append(payments, models.SettlementPayment{
			DebtorID:   dbIDByDiscordID[string(payment.From)],
			CreditorID: dbIDByDiscordID[string(payment.To)],
			Amount:     payment.Amount.InexactFloat64(),
		})
	}

	settlementID, paymentIDs, err := db.CreateSettlement(m.GuildID, m.ChannelID, m.Author.ID, payments)
	if err != nil {
		SendErrorMessage(s, m.ChannelID, "ไม่สามารถบันทึกแผนเคลียร์หนี้ได้")
		log.Printf("Error persisting settlement for !settle: %v", err)
		return
	}

	totalAmount := decimal.Zero
	var content strings.Builder
	content.WriteString(fmt.Sprintf("**แผนเคลียร์หนี้ #%d** (ยุบ %d คู่หนี้ เหลือ %d รายการโอน)\n", settlementID, len(debts), len(plan)))
	for idx, payment := range plan {
		totalAmount = totalAmount.Add(payment.Amount)
		content.WriteString(fmt.Sprintf("%d. <@%s> โอนให้ <@%s> **%s บาท**\n",
			idx+1, payment.From, payment.To, utils.FormatNumberWithCommas(payment.Amount.InexactFloat64())))
	}
	content.WriteString(fmt.Sprintf("รวมทั้งสิ้น **%s บาท**\n", utils.FormatNumberWithCommas(totalAmount.InexactFloat64())))
	content.WriteString("\nลูกหนี้กดปุ่มตามหมายเลขรายการของตนเพื่อรับ QR ชำระเงิน")
	if len(plan) > maxPlanButtons {
		content.WriteString(fmt.Sprintf("\n(แสดงปุ่มได้ %d รายการแรกเท่านั้น รายการที่เหลือดูได้จาก `!settlements`)", maxPlanButtons))
	}

	_, err = s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:    content.String(),
		Components: buildPlanButtons(paymentIDs),
	})
	if err != nil {
		log.Printf("Error sending settlement plan message: %v", err)
		// The plan is already persisted, fall back to plain text
		s.ChannelMessageSend(m.ChannelID, content.String())
	}
}

// HandleSettlementsCommand handles the !settlements command
func HandleSettlementsCommand(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	settlements, err := db.GetRecentSettlements(m.GuildID, 5)
	if err != nil {
		SendErrorMessage(s, m.ChannelID, "ไม่สามารถดึงประวัติการเคลียร์หนี้ได้")
		log.Printf("Error loading settlements for guild %s: %v", m.GuildID, err)
		return
	}

	if len(settlements) == 0 {
		s.ChannelMessageSend(m.ChannelID, "ยังไม่มีการเคลียร์หนี้ในเซิร์ฟเวอร์นี้ ใช้ `!settle` เพื่อสร้างแผน")
		return
	}

	var response strings.Builder
	response.WriteString("ประวัติการเคลียร์หนี้ล่าสุด:\n")
	for _, settlement := range settlements {
		response.WriteString(fmt.Sprintf("- **#%d** %d รายการโอน รวม %s บาท โดย <@%s> (%s)\n",
			settlement.ID, settlement.PaymentCount,
			utils.FormatNumberWithCommas(settlement.TotalAmount),
			settlement.CreatedByDiscordID,
			settlement.CreatedAt.Format("02/01/2006 15:04")))
	}

	// Show per-payment status for the most recent settlement
	latest := settlements[0]
	payments, err := db.GetSettlementPayments(latest.ID)
	if err != nil {
		log.Printf("Error loading payments of settlement %d: %v", latest.ID, err)
	} else if len(payments) > 0 {
		response.WriteString(fmt.Sprintf("\nสถานะแผน **#%d**:\n", latest.ID))
		for _, payment := range payments {
			status := "⏳ ค้างโอน"
			if payment.Settled {
				status = "✅ โอนแล้ว"
			}
			response.WriteString(fmt.Sprintf("  - [%d] <@%s> → <@%s> %s บาท %s\n",
				payment.ID, payment.DebtorDiscordID, payment.CreditorDiscordID,
				utils.FormatNumberWithCommas(payment.Amount), status))
		}
	}

	s.ChannelMessageSend(m.ChannelID, response.String())
}

// HandleBalancesCommand handles the !balances command
func HandleBalancesCommand(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	debts, err := db.GetActiveDebts()
	if err != nil {
		SendErrorMessage(s, m.ChannelID, "ไม่สามารถดึงข้อมูลหนี้คงค้างได้")
		log.Printf("Error loading active debts for !balances: %v", err)
		return
	}

	if len(debts) == 0 {
		s.ChannelMessageSend(m.ChannelID, "ไม่มีหนี้คงค้างในระบบ 🎉")
		return
	}

	transactions, _ := debtsToTransactions(debts)

	graph, err := settle.BuildGraph(transactions)
	if err != nil {
		SendErrorMessage(s, m.ChannelID, "ไม่สามารถคำนวณยอดสุทธิได้")
		log.Printf("Error building debt graph for !balances: %v", err)
		return
	}

	balances, err := graph.NetBalances()
	if err != nil {
		SendErrorMessage(s, m.ChannelID, "ไม่สามารถคำนวณยอดสุทธิได้")
		log.Printf("Error computing net balances for !balances: %v", err)
		return
	}

	outstanding := decimal.Zero
	var response strings.Builder
	response.WriteString("ยอดสุทธิของแต่ละคน:\n")
	for _, balance := range balances {
		switch {
		case balance.Total.IsPositive():
			outstanding = outstanding.Add(balance.Total)
			response.WriteString(fmt.Sprintf("🔻 <@%s> ติดหนี้สุทธิ **%s บาท**\n",
				balance.Person, utils.FormatNumberWithCommas(balance.Total.InexactFloat64())))
		case balance.Total.IsNegative():
			response.WriteString(fmt.Sprintf("🔺 <@%s> มีคนติดหนี้สุทธิ **%s บาท**\n",
				balance.Person, utils.FormatNumberWithCommas(balance.Total.Neg().InexactFloat64())))
		default:
			response.WriteString(fmt.Sprintf("⚖️ <@%s> หักล้างกันพอดี\n", balance.Person))
		}
	}
	response.WriteString(fmt.Sprintf("\nยอดค้างรวมในระบบ: **%s บาท** ใช้ `!settle` เพื่อสร้างแผนเคลียร์หนี้",
		utils.FormatNumberWithCommas(outstanding.InexactFloat64())))

	s.ChannelMessageSend(m.ChannelID, response.String())
}

// HandleOweCommand handles the !owe command (the author owes someone)
func HandleOweCommand(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	otherDiscordID, amount, description, err := parseDirectDebtArgs(args, "!owe @user <จำนวนเงิน> [for <รายละเอียด>]")
	if err != nil {
		SendErrorMessage(s, m.ChannelID, err.Error())
		return
	}
	if otherDiscordID == m.Author.ID {
		SendErrorMessage(s, m.ChannelID, "คุณไม่สามารถสร้างหนี้กับตัวเองได้")
		return
	}

	txID, err := recordDirectDebt(m.Author.ID, otherDiscordID, amount, description)
	if err != nil {
		SendErrorMessage(s, m.ChannelID, err.Error())
		return
	}

	s.ChannelMessageSend(m.ChannelID, fmt.Sprintf(
		"✅ บันทึกแล้ว: <@%s> เป็นหนี้ <@%s> **%.2f บาท** (TxID: %d)",
		m.Author.ID, otherDiscordID, amount, txID))
}

// HandleBillToCommand handles the !billto command (someone owes the author)
func HandleBillToCommand(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	otherDiscordID, amount, description, err := parseDirectDebtArgs(args, "!billto @user <จำนวนเงิน> [for <รายละเอียด>]")
	if err != nil {
		SendErrorMessage(s, m.ChannelID, err.Error())
		return
	}
	if otherDiscordID == m.Author.ID {
		SendErrorMessage(s, m.ChannelID, "คุณไม่สามารถสร้างหนี้กับตัวเองได้")
		return
	}

	txID, err := recordDirectDebt(otherDiscordID, m.Author.ID, amount, description)
	if err != nil {
		SendErrorMessage(s, m.ChannelID, err.Error())
		return
	}

	s.ChannelMessageSend(m.ChannelID, fmt.Sprintf(
		"✅ บันทึกแล้ว: <@%s> เป็นหนี้ <@%s> **%.2f บาท** (TxID: %d)\nใช้ `!request <@%s>` เพื่อส่ง QR เรียกเก็บ",
		otherDiscordID, m.Author.ID, amount, txID, otherDiscordID))
}

// debtsToTransactions converts active debt rows into settlement transactions
// keyed by Discord ID, and returns the Discord ID to DB ID mapping needed to
// persist a plan afterwards.
func debtsToTransactions(debts []models.UserDebt) ([]settle.Transaction, map[string]int) {
	transactions := make([]settle.Transaction, 0, len(debts))
	dbIDByDiscordID := make(map[string]int)
	for _, debt := range debts {
		transactions = append(transactions, settle.Transaction{
			Debtor:   settle.PersonID(debt.DebtorDiscordID),
			Creditor: settle.PersonID(debt.CreditorDiscordID),
			Amount:   decimal.NewFromFloat(debt.Amount),
		})
		dbIDByDiscordID[debt.DebtorDiscordID] = debt.DebtorID
		dbIDByDiscordID[debt.CreditorDiscordID] = debt.CreditorID
	}
	return transactions, dbIDByDiscordID
}

// buildPlanButtons lays out one pay button per plan payment, five per row.
func buildPlanButtons(paymentIDs []int) []discordgo.MessageComponent {
	if len(paymentIDs) > maxPlanButtons {
		paymentIDs = paymentIDs[:maxPlanButtons]
	}

	var components []discordgo.MessageComponent
	for start := 0; start < len(paymentIDs); start += 5 {
		end := start + 5
		if end > len(paymentIDs) {
			end = len(paymentIDs)
		}

		var buttons []discordgo.MessageComponent
		for idx := start; idx < end; idx++ {
			buttons = append(buttons, discordgo.Button{
				Label:    fmt.Sprintf("จ่ายรายการที่ %d", idx+1),
				Style:    discordgo.PrimaryButton,
				CustomID: fmt.Sprintf("%s%d", settlePayButtonPrefix, paymentIDs[idx]),
			})
		}
		components = append(components, discordgo.ActionsRow{Components: buttons})
	}
	return components
}

// parseDirectDebtArgs parses `@user <amount> [for <description>]` arguments
// shared by !owe and !billto.
func parseDirectDebtArgs(args []string, usage string) (otherDiscordID string, amount float64, description string, err error) {
	if len(args) < 3 || !userMentionRegex.MatchString(args[1]) {
		return "", 0, "", fmt.Errorf("รูปแบบไม่ถูกต้อง โปรดใช้: `%s`", usage)
	}

	otherDiscordID = userMentionRegex.FindStringSubmatch(args[1])[1]

	amount, parseErr := strconv.ParseFloat(args[2], 64)
	if parseErr != nil || amount <= 0 {
		return "", 0, "", fmt.Errorf("จำนวนเงิน '%s' ไม่ถูกต้อง", args[2])
	}

	if len(args) > 3 {
		descParts := args[3:]
		if strings.ToLower(descParts[0]) == "for" {
			descParts = descParts[1:]
		}
		description = strings.Join(descParts, " ")
	}

	return otherDiscordID, amount, description, nil
}

// recordDirectDebt writes the journal row and accumulates the pair debt.
func recordDirectDebt(debtorDiscordID, creditorDiscordID string, amount float64, description string) (int, error) {
	debtorDbID, err := db.GetOrCreateUser(debtorDiscordID)
	if err != nil {
		return 0, fmt.Errorf("เกิดข้อผิดพลาดกับฐานข้อมูลสำหรับ <@%s>", debtorDiscordID)
	}

	creditorDbID, err := db.GetOrCreateUser(creditorDiscordID)
	if err != nil {
		return 0, fmt.Errorf("เกิดข้อผิดพลาดกับฐานข้อมูลสำหรับ <@%s>", creditorDiscordID)
	}

	txID, err := db.CreateTransaction(debtorDbID, creditorDbID, amount, description)
	if err != nil {
		log.Printf("Failed to save direct debt from %s to %s: %v", debtorDiscordID, creditorDiscordID, err)
		return 0, fmt.Errorf("เกิดข้อผิดพลาดในการบันทึก Transaction")
	}

	if err := db.UpdateUserDebt(debtorDbID, creditorDbID, amount); err != nil {
		log.Printf("Failed to update debt from %s to %s: %v", debtorDiscordID, creditorDiscordID, err)
		return 0, fmt.Errorf("เกิดข้อผิดพลาดในการอัปเดตยอดหนี้")
	}

	return txID, nil
}
