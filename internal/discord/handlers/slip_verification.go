package handlers

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/oatsaysai/settle-up-in-discord/internal/db"
	"github.com/oatsaysai/settle-up-in-discord/pkg/qrcode"
	"github.com/oatsaysai/settle-up-in-discord/pkg/verifier"
)

var (
	verifierClient *verifier.Client
)

// SetVerifierClient sets the verifier client
func SetVerifierClient(client *verifier.Client) {
	verifierClient = client
}

// HandleSlipVerification handles slip verification replies
func HandleSlipVerification(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.MessageReference == nil || m.MessageReference.MessageID == "" || len(m.Attachments) == 0 {
		return
	}

	refMsg, err := s.ChannelMessage(m.ChannelID, m.MessageReference.MessageID)
	if err != nil {
		log.Printf("SlipVerify: Error fetching referenced message %s: %v", m.MessageReference.MessageID, err)
		return
	}

	// Ensure the referenced message is from the bot itself
	if refMsg.Author == nil || refMsg.Author.ID != s.State.User.ID {
		return
	}

	debtorDiscordID, amount, txIDs, settlePayID, err := db.ParseBotQRMessageContent(refMsg.Content)
	if err != nil {
		log.Printf("SlipVerify: Could not parse bot message content: %v", err)
		// Don't send error to user, might be a reply to a non-QR bot message
		return
	}

	log.Printf("SlipVerify: Received slip verification for debtor %s, amount %.2f, TxIDs %v, SettlePayID %d",
		debtorDiscordID, amount, txIDs, settlePayID)
	slipUploaderID := m.Author.ID
	var slipURL string

	for _, att := range m.Attachments {
		if strings.HasPrefix(strings.ToLower(att.ContentType), "image/") {
			slipURL = att.URL
			break
		}
	}

	if slipURL == "" {
		return // No image attachment found
	}

	// The person uploading the slip should be the one mentioned as the debtor in the QR message
	if slipUploaderID != debtorDiscordID {
		log.Printf("SlipVerify: Slip uploaded by %s for debtor %s - ignoring (uploader mismatch).", slipUploaderID, debtorDiscordID)
		return
	}

	tmpFile := fmt.Sprintf("slip_%s_%s.png", m.ID, debtorDiscordID) // Unique temp file name
	err = verifier.DownloadFile(tmpFile, slipURL)
	if err != nil {
		SendErrorMessage(s, m.ChannelID, "ไม่สามารถดาวน์โหลดรูปภาพสลิปเพื่อยืนยันได้")
		log.Printf("SlipVerify: Failed to download slip %s: %v", slipURL, err)
		return
	}
	defer os.Remove(tmpFile)

	slipDetails, err := verifySlipAmount(amount, tmpFile)
	if err != nil {
		SendErrorMessage(s, m.ChannelID, err.Error())
		log.Printf("SlipVerify: Verification failed for debtor %s, amount %.2f: %v", debtorDiscordID, amount, err)
		return
	}

	// Settlement plan payment referenced in the QR message
	if settlePayID > 0 {
		settleVerifiedPayment(s, m.ChannelID, settlePayID, debtorDiscordID, amount, slipDetails)
		return
	}

	intendedPayeeDiscordID := "???" // Placeholder
	// Try to determine intended payee
	if len(txIDs) > 0 {
		// If TxIDs are present, payee is determined from the first TxID
		payeeDbID, fetchErr := db.GetPayeeDbIDFromTx(txIDs[0])
		if fetchErr == nil {
			payeeDiscordID, _ := db.GetDiscordIDFromDbID(payeeDbID)
			intendedPayeeDiscordID = payeeDiscordID
		}
	} else {
		// If no TxIDs, try to find payee based on debtor and amount
		payee, findErr := db.FindIntendedPayee(debtorDiscordID, amount)
		if findErr != nil {
			SendErrorMessage(s, m.ChannelID, fmt.Sprintf("ไม่สามารถระบุผู้รับเงินที่ถูกต้องสำหรับการชำระเงินนี้ได้: %v", findErr))
			log.Printf("SlipVerify: Could not determine intended payee for debtor %s, amount %.2f: %v", debtorDiscordID, amount, findErr)
			return
		}
		intendedPayeeDiscordID = payee
	}

	if intendedPayeeDiscordID == "???" || intendedPayeeDiscordID == "" {
		log.Printf("SlipVerify: Critical - Failed to determine intended payee for debtor %s, amount %.2f", debtorDiscordID, amount)
		SendErrorMessage(s, m.ChannelID, "เกิดข้อผิดพลาดร้ายแรง: ไม่สามารถระบุผู้รับเงินได้")
		return
	}

	// Process payment based on TxIDs if available
	if len(txIDs) > 0 {
		log.Printf("SlipVerify: Attempting batch update using TxIDs: %v", txIDs)
		successCount := 0
		failCount := 0
		var failMessages []string

		for _, txID := range txIDs {
			err = db.MarkTransactionPaidAndUpdateDebt(txID) // This function handles both transaction and user_debt updates
			if err == nil {
				successCount++
			} else {
				failCount++
				failMessages = append(failMessages, fmt.Sprintf("TxID %d (%v)", txID, err))
				log.Printf("SlipVerify: Failed update for TxID %d: %v", txID, err)
			}
		}

		var report strings.Builder
		report.WriteString(fmt.Sprintf(
			"✅ สลิปได้รับการยืนยัน!\n- ผู้จ่าย: <@%s>\n- ผู้รับ: <@%s>\n- จำนวน: %.2f บาท\n%s\n",
			debtorDiscordID, intendedPayeeDiscordID, amount, slipDetails,
		))
		report.WriteString(fmt.Sprintf("อัปเดตสำเร็จ %d/%d รายการธุรกรรม (TxIDs: %v)\n", successCount, len(txIDs), txIDs))
		if failCount > 0 {
			report.WriteString(fmt.Sprintf("⚠️ เกิดข้อผิดพลาด %d รายการ: %s", failCount, strings.Join(failMessages, "; ")))
		}
		s.ChannelMessageSend(m.ChannelID, report.String())
		return

	} else { // No TxIDs, general debt reduction
		log.Printf("SlipVerify: No TxIDs found in message. Attempting general debt reduction for %s paying %s amount %.2f.", debtorDiscordID, intendedPayeeDiscordID, amount)

		errReduce := db.ReduceDebtFromPayment(debtorDiscordID, intendedPayeeDiscordID, amount)
		if errReduce != nil {
			SendErrorMessage(s, m.ChannelID, fmt.Sprintf("เกิดข้อผิดพลาดในการลดหนี้สินทั่วไปสำหรับ <@%s> ถึง <@%s>: %v", debtorDiscordID, intendedPayeeDiscordID, errReduce))
			log.Printf("SlipVerify: Failed general debt reduction for %s to %s (%.2f): %v", debtorDiscordID, intendedPayeeDiscordID, amount, errReduce)
			return
		}
		s.ChannelMessageSend(m.ChannelID, fmt.Sprintf(
			"✅ สลิปได้รับการยืนยัน & ยอดหนี้สินจาก <@%s> ถึง <@%s> ลดลง %.2f บาท!\n%s",
			debtorDiscordID, intendedPayeeDiscordID, amount, slipDetails,
		))
	}
}

// settleVerifiedPayment marks the referenced settlement plan payment settled
// after its slip passed verification.
func settleVerifiedPayment(s *discordgo.Session, channelID string, settlePayID int, debtorDiscordID string, amount float64, slipDetails string) {
	payment, err := db.GetSettlementPayment(settlePayID)
	if err != nil {
		SendErrorMessage(s, channelID, fmt.Sprintf("ไม่พบรายการโอน #%d: %v", settlePayID, err))
		return
	}

	if payment.DebtorDiscordID != debtorDiscordID {
		log.Printf("SlipVerify: Settlement payment %d belongs to debtor %s, QR message mentions %s - ignoring.",
			settlePayID, payment.DebtorDiscordID, debtorDiscordID)
		return
	}

	if err := db.MarkSettlementPaymentSettled(settlePayID); err != nil {
		SendErrorMessage(s, channelID, fmt.Sprintf("ไม่สามารถอัปเดตรายการโอน #%d: %v", settlePayID, err))
		log.Printf("SlipVerify: Failed to settle payment %d: %v", settlePayID, err)
		return
	}

	s.ChannelMessageSend(channelID, fmt.Sprintf(
		"✅ สลิปได้รับการยืนยัน!\n- ผู้จ่าย: <@%s>\n- ผู้รับ: <@%s>\n- จำนวน: %.2f บาท\n%s\nรายการโอน #%d ของแผนเคลียร์หนี้ #%d ถูกทำเครื่องหมายว่าโอนแล้ว และยอดหนี้ถูกปรับลดเรียบร้อย",
		payment.DebtorDiscordID, payment.CreditorDiscordID, amount, slipDetails, payment.ID, payment.SettlementID,
	))
}

// verifySlipAmount checks the slip image against the expected amount. It
// calls the verifier API when one is configured and otherwise falls back to
// decoding the QR code printed on the slip. Returns printable detail lines
// about the verified slip.
func verifySlipAmount(expected float64, imgPath string) (string, error) {
	if verifierClient != nil {
		verifyResp, err := verifierClient.VerifySlip(expected, imgPath)
		if err != nil {
			return "", fmt.Errorf("การเรียก API ยืนยันสลิปล้มเหลว: %v", err)
		}

		// Check if amount from slip matches expected amount (with tolerance)
		if !(verifyResp.Data.Amount > expected-0.01 && verifyResp.Data.Amount < expected+0.01) {
			return "", fmt.Errorf("จำนวนเงินในสลิป (%.2f) ไม่ตรงกับจำนวนที่คาดไว้ (%.2f)", verifyResp.Data.Amount, expected)
		}

		return fmt.Sprintf(
			"- ผู้ส่ง (สลิป): %s (%s)\n- ผู้รับ (สลิป): %s (%s)\n- วันที่ (สลิป): %s\n- เลขอ้างอิง (สลิป): %s",
			verifyResp.Data.SenderName, verifyResp.Data.SenderID,
			verifyResp.Data.ReceiverName, verifyResp.Data.ReceiverID,
			verifyResp.Data.Date, verifyResp.Data.Ref,
		), nil
	}

	// No verifier configured, decode the QR printed on the slip instead
	payload, err := qrcode.DecodeFile(imgPath)
	if err != nil {
		return "", fmt.Errorf("ไม่สามารถอ่าน QR จากสลิปได้ (%v) กรุณาให้ผู้รับยืนยันการชำระแทน", err)
	}

	slipAmount, ok := qrcode.AmountFromEMVPayload(payload)
	if !ok {
		return "", fmt.Errorf("ไม่พบจำนวนเงินใน QR ของสลิป กรุณาให้ผู้รับยืนยันการชำระแทน")
	}

	if !(slipAmount > expected-0.01 && slipAmount < expected+0.01) {
		return "", fmt.Errorf("จำนวนเงินในสลิป (%.2f) ไม่ตรงกับจำนวนที่คาดไว้ (%.2f)", slipAmount, expected)
	}

	return "- ตรวจสอบจาก QR บนสลิป (แบบออฟไลน์)", nil
}
