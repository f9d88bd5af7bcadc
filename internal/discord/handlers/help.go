package handlers

import (
	"github.com/bwmarrin/discordgo"
)

// HandleHelpCommand handles the !help command
func HandleHelpCommand(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	helpMessage := `
**คำสั่งบันทึกหนี้:**
- ` + "`!bill [promptpay_id]`" + ` - สร้างบิลแบ่งจ่าย (ต้องตามด้วยรายการในบรรทัดถัดไป)
- ` + "`!owe @user <amount> [for <description>]`" + ` - บันทึกว่าคุณเป็นหนี้ผู้ใช้รายนั้น
- ` + "`!billto @user <amount> [for <description>]`" + ` - บันทึกว่าผู้ใช้รายนั้นเป็นหนี้คุณ
- ` + "`!qr <amount> to @user [for <description>] [promptpay_id]`" + ` - สร้าง QR รับชำระจากผู้ใช้

**คำสั่งดูยอดหนี้:**
- ` + "`!mydebts`" + ` - ดูยอดหนี้ที่คุณต้องจ่ายผู้อื่น
- ` + "`!mydues`" + ` (หรือ ` + "`!owedtome`" + `) - ดูยอดเงินที่ผู้อื่นเป็นหนี้คุณ
- ` + "`!debts @user`" + ` - ดูยอดหนี้ที่ผู้ใช้รายนั้นเป็นหนี้ผู้อื่น
- ` + "`!dues @user`" + ` - ดูยอดเงินที่ผู้อื่นเป็นหนี้ผู้ใช้รายนั้น
- ` + "`!history [@user]`" + ` - ดูรายการธุรกรรมล่าสุดของคุณ (ระบุผู้ใช้เพื่อดูเฉพาะคู่)
- ` + "`!balances`" + ` - ดูยอดหนี้สุทธิของทุกคนในระบบ

**คำสั่งเคลียร์หนี้:**
- ` + "`!settle`" + ` - ยุบหนี้คงค้างทั้งหมดเป็นแผนโอนที่สั้นที่สุด พร้อมปุ่มชำระเงิน
- ` + "`!settlements`" + ` - ดูแผนเคลียร์หนี้ล่าสุดและสถานะการโอนแต่ละรายการ
- ` + "`!paid <txID>`" + ` - ทำเครื่องหมายว่ารายการชำระแล้ว (ต้องเป็นผู้รับเงินเท่านั้น)
- ` + "`!paidto @user <amount>`" + ` - แจ้งว่าคุณโอนเงินให้ผู้ใช้รายนั้นแล้ว เพื่อลดยอดหนี้
- ` + "`!request @user [promptpay_id]`" + ` - ส่งคำขอชำระเงินไปยังผู้ใช้

**คำสั่งจัดการ PromptPay ID:**
- ` + "`!setpromptpay <promptpay_id>`" + ` - ตั้งค่า PromptPay ID ของคุณ
- ` + "`!mypromptpay`" + ` - แสดง PromptPay ID ที่คุณบันทึกไว้

**รูปแบบการสร้างบิล:**
- บรรทัดแรก: ` + "`!bill [promptpay_id]`" + ` (ถ้าไม่ระบุจะใช้ PromptPay ID ที่บันทึกไว้)
- บรรทัดถัดไป (รายการ): ` + "`<amount> for <description> with @user1 @user2...`" + `
- หรือ (รูปแบบสั้น): ` + "`<amount> <description> @user1 @user2...`" + `

**ตัวอย่าง:**
` + "```" + `
!bill 081-234-5678
100 for dinner with @UserA @UserB
50 drinks @UserB
` + "```" + `

**การตรวจสอบการชำระเงิน:**
คุณสามารถส่งสลิปโดยตอบกลับข้อความ QR code ที่บอทส่งให้ เพื่อตรวจสอบและปรับปรุงยอดหนี้โดยอัตโนมัติ
สำหรับแผนเคลียร์หนี้ กดปุ่มใต้ข้อความแผนเพื่อรับ QR หรือแจ้งโอนแบบไม่มีสลิปให้ผู้รับกดยืนยัน
`
	s.ChannelMessageSend(m.ChannelID, helpMessage)
}
