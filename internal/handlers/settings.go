package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"quicksell-bot/internal/messages"
	"quicksell-bot/internal/models"
	"quicksell-bot/internal/utils"
)

type plan struct {
	Name  string
	Price decimal.Decimal
	Days  int
}

var plans = map[string]plan{
	"1month":  {Name: "1 Month", Price: decimal.RequireFromString("9.99"), Days: 30},
	"3months": {Name: "3 Months", Price: decimal.RequireFromString("24.99"), Days: 90},
	"6months": {Name: "6 Months", Price: decimal.RequireFromString("44.99"), Days: 180},
	"1year":   {Name: "1 Year", Price: decimal.RequireFromString("79.99"), Days: 365},
}

var planOrder = []string{"1month", "3months", "6months", "1year"}

var languages = map[string]string{
	"en": "Language changed to English! ✅",
	"ru": "Язык изменен на Русский! ✅",
	"fa": "زبان به فارسی تغییر یافت! ✅",
	"ps": "ژبه پښتو ته بدله شوه! ✅",
}

func (h *Handler) handleSettings(ctx context.Context, chatID, tgID int64, item string) {
	switch item {
	case "menu":
		h.sendMarkup(chatID, "⚙️ Settings Menu\nSelect an option:", settingsMenu())
	case "profile":
		h.showProfile(ctx, chatID, tgID)
	case "addshop":
		h.beginAddShop(ctx, chatID, tgID)
	case "language":
		h.sendMarkup(chatID, "🌐 Select Language\nChoose your preferred language:", languageMenu())
	case "payment":
		h.showSubscription(ctx, chatID, tgID)
	case "support":
		h.sendMarkup(chatID, "📱 Support Center\nHow can we help you?", supportMenu())
	case "contact":
		h.send(chatID, txtContact)
	case "faq":
		h.send(chatID, txtFAQ)
	case "message":
		h.begin(ctx, chatID, models.StateAwaitingSupportMessage, models.Draft{}, nil)
	case "about":
		h.showAbout(ctx, chatID)
	default:
		h.send(chatID, txtBadCallback)
	}
}

func (h *Handler) showProfile(ctx context.Context, chatID, tgID int64) {
	u := h.operator(ctx, chatID, tgID)
	if u == nil {
		return
	}
	shops, err := h.DB.ListShopsByOwner(ctx, u.ID)
	if err != nil {
		h.fail(ctx, chatID, "list shops", err)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👤 Your Profile\n━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&b, "📛 Name: %s\n", orNotSet(u.Name))
	fmt.Fprintf(&b, "🆔 Telegram ID: %d\n", u.TelegramID)
	fmt.Fprintf(&b, "🌐 Language: %s\n", strings.ToUpper(u.Language))
	fmt.Fprintf(&b, "📍 Location: %s\n", orNotSet(u.Location))
	fmt.Fprintf(&b, "📅 Joined: %s\n\n", utils.Date(u.CreatedAt, h.loc()))

	if len(shops) == 0 {
		b.WriteString("🏪 No shops yet. Use /start to create one.")
	} else {
		fmt.Fprintf(&b, "🏪 Your Shops (%d):\n", len(shops))
		for _, s := range shops {
			products, sales, err := h.DB.ShopCounts(ctx, s.ID)
			if err != nil {
				h.fail(ctx, chatID, "shop counts", err)
				return
			}
			fmt.Fprintf(&b, "• %s\n  📦 Products: %d | 🛒 Sales: %d\n", shopLabel(s), products, sales)
		}
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(backToSettings()))
	h.sendMarkup(chatID, strings.TrimRight(b.String(), "\n"), kb)
}

func orNotSet(s string) string {
	if s == "" {
		return "Not set"
	}
	return s
}

func (h *Handler) setLanguage(ctx context.Context, chatID, tgID int64, code string) {
	greeting, ok := languages[code]
	if !ok {
		h.send(chatID, "❌ Unknown language.")
		return
	}
	found, err := h.DB.SetUserLanguage(ctx, tgID, code)
	if err != nil {
		h.fail(ctx, chatID, "set language", err)
		return
	}
	if !found {
		h.send(chatID, txtRunStart)
		return
	}
	h.send(chatID, greeting)
}

func (h *Handler) showSubscription(ctx context.Context, chatID, tgID int64) {
	u := h.operator(ctx, chatID, tgID)
	if u == nil {
		return
	}
	p, err := h.DB.LatestPayment(ctx, u.ID)
	if err != nil {
		h.fail(ctx, chatID, "latest payment", err)
		return
	}

	now := h.now()
	var text string
	if p != nil && p.Active(now) {
		daysLeft := int(time.Unix(p.ExpiresAt, 0).Sub(now).Hours() / 24)
		text = fmt.Sprintf("💳 Payment Status: ACTIVE ✅\n━━━━━━━━━━━━━━━━━━\n"+
			"📦 Plan: %s\n💰 Amount: %s\n📅 Started: %s\n📅 Expires: %s\n⏳ Days left: %d\n\n"+
			"Your subscription is active. You can renew early below.",
			p.PlanType, utils.Money(p.Amount), utils.Date(p.CreatedAt, h.loc()),
			utils.Date(p.ExpiresAt, h.loc()), daysLeft)
	} else {
		text = "💳 Payment Status: INACTIVE ❌\n━━━━━━━━━━━━━━━━━━\n" +
			"⚠️ Your subscription has expired or you haven't subscribed yet.\n" +
			"Please choose a subscription plan to continue using all features."
	}
	h.sendMarkup(chatID, text, planMenu())
}

func (h *Handler) showPlan(chatID int64, key string) {
	p, ok := plans[key]
	if !ok {
		h.send(chatID, "❌ Invalid plan selected.")
		return
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✅ Simulate Payment", "simulate:"+key)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(btnCancel, "settings:payment")),
	)
	h.sendMarkup(chatID, fmt.Sprintf("💰 %s Subscription\n━━━━━━━━━━━━━━━━━━\n💵 Price: %s\n📅 Duration: %d days\n\n"+
		"Payments are simulated. Contact support for manual payment.",
		p.Name, utils.Money(p.Price), p.Days), kb)
}

// simulatePayment records a completed subscription without a gateway. An
// active subscription is extended from its current expiry.
func (h *Handler) simulatePayment(ctx context.Context, chatID, tgID int64, key string) {
	pl, ok := plans[key]
	if !ok {
		h.send(chatID, "❌ Invalid plan selected.")
		return
	}
	u := h.operator(ctx, chatID, tgID)
	if u == nil {
		return
	}
	latest, err := h.DB.LatestPayment(ctx, u.ID)
	if err != nil {
		h.fail(ctx, chatID, "latest payment", err)
		return
	}

	now := h.now()
	start := now
	if latest != nil && latest.Active(now) {
		start = time.Unix(latest.ExpiresAt, 0)
	}
	pay := models.Payment{
		UserID:        u.ID,
		Amount:        pl.Price,
		PlanType:      pl.Name,
		Status:        "completed",
		Method:        "simulated",
		TransactionID: uuid.NewString(),
		CreatedAt:     now.Unix(),
		ExpiresAt:     start.AddDate(0, 0, pl.Days).Unix(),
	}
	if err := h.DB.InsertPayment(ctx, &pay); err != nil {
		h.fail(ctx, chatID, "insert payment", err)
		return
	}
	h.Log.Info("subscription payment simulated",
		zap.Int64("user_id", u.ID), zap.String("plan", pl.Name), zap.String("transaction_id", pay.TransactionID))

	h.send(chatID, fmt.Sprintf("✅ Payment Successful!\n━━━━━━━━━━━━━━━━━━\n📦 Plan: %s\n💰 Amount: %s\n📅 Valid until: %s\n🧾 Transaction: %s",
		pl.Name, utils.Money(pl.Price), utils.Date(pay.ExpiresAt, h.loc()), pay.TransactionID))
}

func (h *Handler) completeSupport(ctx context.Context, chatID, tgID int64, d models.Draft) {
	if h.AdminChatID == 0 {
		h.done(ctx, chatID, "⚠️ Support is not available right now. Please try again later.", nil)
		return
	}
	u, err := h.DB.GetUserByTelegramID(ctx, tgID)
	if err != nil {
		h.fail(ctx, chatID, "load user", err)
		return
	}
	if err := messages.SendSupportMessage(h.Bot, h.AdminChatID, u, tgID, d.Message, h.now().In(h.loc())); err != nil {
		h.fail(ctx, chatID, "forward support message", err)
		return
	}
	h.done(ctx, chatID, "✅ Message sent to the admin. We'll reply here within 24 hours.", nil)
}

func (h *Handler) showAbout(ctx context.Context, chatID int64) {
	st, err := h.DB.Counts(ctx)
	if err != nil {
		h.fail(ctx, chatID, "counts", err)
		return
	}
	text := fmt.Sprintf("ℹ️ About QuickSell Bot\n━━━━━━━━━━━━━━━━━━\n"+
		"📊 Bot Statistics:\n👥 Users: %d\n🏪 Shops: %d\n📦 Products: %d\n💰 Sales: %d\n\n"+
		"✨ Features:\n• Product management\n• Sales tracking\n• Debt management\n• Reports\n• Multiple shops",
		st.Users, st.Shops, st.Products, st.Sales)
	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(backToSettings()))
	h.sendMarkup(chatID, text, kb)
}
