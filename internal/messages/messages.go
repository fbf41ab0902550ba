// Package messages sends bot-initiated messages that are not replies to an
// update.
package messages

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"quicksell-bot/internal/models"
	"quicksell-bot/internal/utils"
)

// Sender is the part of *tgbotapi.BotAPI the bot uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// SendExpiryReminder tells the owner that a subscription is about to run out.
func SendExpiryReminder(bot Sender, p models.ExpiringPayment, now time.Time, loc *time.Location) error {
	days := int(time.Unix(p.ExpiresAt, 0).Sub(now).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	when := "tomorrow"
	if days > 1 {
		when = fmt.Sprintf("in %d days", days)
	}
	txt := fmt.Sprintf(
		"⏳ Your %s subscription (%s) expires %s, on %s.\n"+
			"Open ⚙️ Settings → 💳 Payment Status to renew.",
		p.PlanType, utils.Money(p.Amount), when, utils.Date(p.ExpiresAt, loc))

	msg := tgbotapi.NewMessage(p.TelegramID, txt)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 Renew", "settings:payment"),
		),
	)
	_, err := bot.Send(msg)
	return err
}

// SendSupportMessage forwards a user's support request to the admin chat.
func SendSupportMessage(bot Sender, adminChatID int64, from *models.User, telegramID int64, text string, at time.Time) error {
	name := "Unknown user"
	if from != nil && from.Name != "" {
		name = from.Name
	}
	txt := fmt.Sprintf(
		"🆘 New support message\n━━━━━━━━━━━━━━━━━━\n👤 From: %s (ID: %d)\n📅 Time: %s\n💬 Message:\n%s",
		name, telegramID, at.Format("2006-01-02 15:04"), text)
	_, err := bot.Send(tgbotapi.NewMessage(adminChatID, txt))
	return err
}
