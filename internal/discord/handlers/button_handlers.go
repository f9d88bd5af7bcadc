package handlers

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/oatsaysai/settle-up-in-discord/internal/db"
	"github.com/oatsaysai/settle-up-in-discord/internal/models"
)

// settlementPaymentFromCustomID resolves the plan payment referenced by a
// button custom ID, checking that it still exists.
func settlementPaymentFromCustomID(s *discordgo.Session, i *discordgo.InteractionCreate, prefix string) (*models.SettlementPayment, bool) {
	idStr := strings.TrimPrefix(i.MessageComponentData().CustomID, prefix)
	paymentID, err := strconv.Atoi(idStr)
	if err != nil {
		respondWithError(s, i, "รูปแบบ ID ไม่ถูกต้อง")
		return nil, false
	}

	payment, err := db.GetSettlementPayment(paymentID)
	if err != nil {
		respondWithError(s, i, fmt.Sprintf("ไม่พบรายการโอน #%d: %v", paymentID, err))
		return nil, false
	}
	return payment, true
}

// handleSettlePayButton handles a debtor pressing the pay button on a
// settlement plan. It sends the PromptPay QR for this transfer and offers a
// no-slip confirmation path.
func handleSettlePayButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	payment, ok := settlementPaymentFromCustomID(s, i, settlePayButtonPrefix)
	if !ok {
		return
	}

	presserDiscordID := interactionUserID(i)
	if presserDiscordID != payment.DebtorDiscordID {
		respondWithError(s, i, fmt.Sprintf("รายการนี้เป็นของ <@%s> เท่านั้น", payment.DebtorDiscordID))
		return
	}

	if payment.Settled {
		respondWithError(s, i, fmt.Sprintf("รายการโอน #%d ถูกทำเครื่องหมายว่าโอนแล้ว", payment.ID))
		return
	}

	promptPayID, promptPayErr := db.GetPromptPayIDByDiscordID(payment.CreditorDiscordID)

	var content strings.Builder
	content.WriteString(fmt.Sprintf("**รายการโอน #%d จากแผนเคลียร์หนี้ #%d**\n", payment.ID, payment.SettlementID))
	content.WriteString(fmt.Sprintf("โอน **%.2f บาท** ให้ <@%s>\n\n", payment.Amount, payment.CreditorDiscordID))
	if promptPayErr != nil {
		content.WriteString("ผู้รับยังไม่ได้ตั้งค่า PromptPay ID กรุณาโอนเงินโดยตรง แล้วกดปุ่มด้านล่างเพื่อแจ้งการโอน")
	} else {
		content.WriteString("QR สำหรับชำระเงินจะถูกส่งในช่องนี้และทาง DM\nยืนยันได้โดยตอบกลับข้อความ QR พร้อมแนบสลิป หรือกดปุ่มด้านล่างหากไม่มีสลิป")
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content.String(),
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    "แจ้งโอนแล้ว (ไม่มีสลิป)",
							Style:    discordgo.PrimaryButton,
							CustomID: fmt.Sprintf("%s%d", settleNotifyButtonPrefix, payment.ID),
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("Error responding to settle pay button: %v", err)
		return
	}

	if promptPayErr != nil {
		log.Printf("No PromptPay ID for creditor %s of settlement payment %d: %v",
			payment.CreditorDiscordID, payment.ID, promptPayErr)
		return
	}

	description := fmt.Sprintf("แผนเคลียร์หนี้ #%d ให้ <@%s>", payment.SettlementID, payment.CreditorDiscordID)
	GenerateAndSendSettlementQr(s, i.ChannelID, promptPayID, payment.Amount, payment.DebtorDiscordID, description, payment.ID)
}

// handleSettleNotifyButton handles the debtor declaring a plan transfer done
// without a slip. The creditor gets a DM with confirm and reject buttons.
func handleSettleNotifyButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	payment, ok := settlementPaymentFromCustomID(s, i, settleNotifyButtonPrefix)
	if !ok {
		return
	}

	presserDiscordID := interactionUserID(i)
	if presserDiscordID != payment.DebtorDiscordID {
		respondWithError(s, i, fmt.Sprintf("รายการนี้เป็นของ <@%s> เท่านั้น", payment.DebtorDiscordID))
		return
	}

	if payment.Settled {
		respondWithError(s, i, fmt.Sprintf("รายการโอน #%d ถูกทำเครื่องหมายว่าโอนแล้ว", payment.ID))
		return
	}

	// First respond to the interaction
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("กำลังส่งคำขอยืนยันการโอน %.2f บาท ไปยัง <@%s> โปรดรอการยืนยันจากผู้รับเงิน",
				payment.Amount, payment.CreditorDiscordID),
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error responding to settle notify button: %v", err)
		return
	}

	// Create a DM channel with the creditor
	creditorChannel, err := s.UserChannelCreate(payment.CreditorDiscordID)
	if err != nil {
		log.Printf("Could not create DM channel with creditor %s: %v", payment.CreditorDiscordID, err)
		followUpError(s, i, "ไม่สามารถส่งข้อความไปยังผู้รับเงินได้")
		return
	}

	debtorName := GetDiscordUsername(s, payment.DebtorDiscordID)
	verificationMessage := fmt.Sprintf(
		"<@%s> (**%s**) แจ้งว่าได้โอนเงิน **%.2f บาท** ตามแผนเคลียร์หนี้ #%d (รายการโอน #%d) ให้คุณแล้ว โดยไม่มีสลิปการโอนเงิน\n\nกรุณายืนยันว่าคุณได้รับเงินจำนวนนี้แล้วจริงๆ",
		payment.DebtorDiscordID, debtorName, payment.Amount, payment.SettlementID, payment.ID)

	_, err = s.ChannelMessageSendComplex(creditorChannel.ID, &discordgo.MessageSend{
		Content: verificationMessage,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "ยืนยัน ฉันได้รับเงินแล้ว",
						Style:    discordgo.SuccessButton,
						CustomID: fmt.Sprintf("%s%d", settleConfirmButtonPrefix, payment.ID),
					},
					discordgo.Button{
						Label:    "ปฏิเสธ ฉันยังไม่ได้รับเงิน",
						Style:    discordgo.DangerButton,
						CustomID: fmt.Sprintf("%s%d", settleRejectButtonPrefix, payment.ID),
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("Error sending verification message to creditor: %v", err)
		followUpError(s, i, "ไม่สามารถส่งคำขอยืนยันไปยังผู้รับเงินได้")
		return
	}

	// Also notify the channel where the interaction happened
	s.ChannelMessageSend(i.ChannelID, fmt.Sprintf(
		"<@%s> แจ้งว่าได้โอนเงิน %.2f บาท ให้ <@%s> ตามรายการโอน #%d แล้ว และกำลังรอการยืนยันจากผู้รับเงิน",
		payment.DebtorDiscordID, payment.Amount, payment.CreditorDiscordID, payment.ID))
}

// handleSettleConfirmButton handles the creditor confirming a plan transfer.
// The payment is flagged settled and the pair debt is reduced.
func handleSettleConfirmButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	payment, ok := settlementPaymentFromCustomID(s, i, settleConfirmButtonPrefix)
	if !ok {
		return
	}

	presserDiscordID := interactionUserID(i)
	if presserDiscordID != payment.CreditorDiscordID {
		respondWithError(s, i, "คุณไม่มีสิทธิ์ยืนยันการชำระเงินนี้")
		return
	}

	if err := db.MarkSettlementPaymentSettled(payment.ID); err != nil {
		respondWithError(s, i, fmt.Sprintf("ไม่สามารถอัปเดตรายการโอน #%d: %v", payment.ID, err))
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("✅ คุณได้ยืนยันการรับเงิน %.2f บาท จาก <@%s> (รายการโอน #%d) เรียบร้อยแล้ว ระบบได้อัปเดตยอดหนี้แล้ว",
				payment.Amount, payment.DebtorDiscordID, payment.ID),
			Components: []discordgo.MessageComponent{}, // Remove buttons
		},
	})
	if err != nil {
		log.Printf("Error responding to settle confirm button: %v", err)
	}

	creditorName := GetDiscordUsername(s, payment.CreditorDiscordID)
	SendDirectMessage(s, payment.DebtorDiscordID, fmt.Sprintf(
		"✅ <@%s> (**%s**) ได้ยืนยันการรับเงิน %.2f บาท ตามรายการโอน #%d จากคุณเรียบร้อยแล้ว ระบบได้อัปเดตยอดหนี้แล้ว",
		payment.CreditorDiscordID, creditorName, payment.Amount, payment.ID))
}

// handleSettleRejectButton handles the creditor rejecting a no-slip transfer
// claim. Nothing changes in the database.
func handleSettleRejectButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	payment, ok := settlementPaymentFromCustomID(s, i, settleRejectButtonPrefix)
	if !ok {
		return
	}

	presserDiscordID := interactionUserID(i)
	if presserDiscordID != payment.CreditorDiscordID {
		respondWithError(s, i, "คุณไม่มีสิทธิ์ยืนยันการชำระเงินนี้")
		return
	}

	debtorName := GetDiscordUsername(s, payment.DebtorDiscordID)
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ คุณได้ปฏิเสธการยืนยันรับเงินจาก <@%s> (**%s**) สำหรับรายการโอน #%d ไม่มีการเปลี่ยนแปลงข้อมูลในระบบ",
				payment.DebtorDiscordID, debtorName, payment.ID),
			Components: []discordgo.MessageComponent{}, // Remove buttons
		},
	})
	if err != nil {
		log.Printf("Error responding to settle reject button: %v", err)
	}

	creditorName := GetDiscordUsername(s, payment.CreditorDiscordID)
	SendDirectMessage(s, payment.DebtorDiscordID, fmt.Sprintf(
		"❌ <@%s> (**%s**) ได้ปฏิเสธการยืนยันรับเงินสำหรับรายการโอน #%d โปรดติดต่อผู้รับเงินโดยตรงเพื่อตรวจสอบ",
		payment.CreditorDiscordID, creditorName, payment.ID))
}

// interactionUserID returns the Discord ID of the user behind an
// interaction, whether it came from a guild channel or a DM.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// followUpMessage sends a follow-up ephemeral message to an interaction
func followUpMessage(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: message,
		Flags:   discordgo.MessageFlagsEphemeral,
	})

	if err != nil {
		log.Printf("Error sending follow-up message: %v", err)
	}
}

// followUpError sends an error follow-up message
func followUpError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	followUpMessage(s, i, "⚠️ "+message)
}
