package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"quicksell-bot/internal/models"
)

const (
	menuAddProduct = "➕ Add New Product"
	menuProducts   = "📦 All Products"
	menuUncleared  = "🕒 Uncleared Products"
	menuSold       = "📊 Sold Items"
	menuSettings   = "⚙️ Settings"
	btnCancel      = "❌ Cancel"
)

func mainMenu() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuAddProduct)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuProducts)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuUncleared)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuSold)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuSettings)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
	kb.ResizeKeyboard = true
	return kb
}

// shopKeyboard lists the choice labels, one per row, plus cancel.
func shopKeyboard(labels []string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(labels)+1)
	for _, l := range labels {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(l)))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)))
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func shopLabel(s models.Shop) string {
	return fmt.Sprintf("Shop #%d - %s", s.ShopNumber, s.Location)
}

func cb(action string, ids ...int64) string {
	s := action
	for _, id := range ids {
		s += fmt.Sprintf(":%d", id)
	}
	return s
}

func productActions(productID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Sold", cb("sold", productID)),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Edit price", cb("edit", productID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Sales", cb("psales", productID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Delete", cb("delete", productID)),
		),
	)
}

func paymentChoice(productID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Paid", cb("clear", productID)),
			tgbotapi.NewInlineKeyboardButtonData("🕒 On credit", cb("borrow", productID)),
		),
	)
}

func cashCard(saleID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💵 Cash", cb("cash", saleID)),
			tgbotapi.NewInlineKeyboardButtonData("💳 Card", cb("card", saleID)),
		),
	)
}

func debtActions(debtID, saleID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("↩️ Return", cb("return", debtID, saleID)),
			tgbotapi.NewInlineKeyboardButtonData("💵 Full payment", cb("full_payment", debtID, saleID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Partial payment", cb("pay", debtID)),
		),
	)
}

func settleChoice(debtID, saleID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💵 Cash", cb("pay_cash", debtID, saleID)),
			tgbotapi.NewInlineKeyboardButtonData("💳 Card", cb("pay_card", debtID, saleID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnCancel, cb("cancel_pay", debtID)),
		),
	)
}

func reportPeriods() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Today", "report:today"),
			tgbotapi.NewInlineKeyboardButtonData("7 days", "report:week"),
			tgbotapi.NewInlineKeyboardButtonData("30 days", "report:month"),
			tgbotapi.NewInlineKeyboardButtonData("All time", "report:all"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📈 Analytics (7 days)", "analytics:week"),
			tgbotapi.NewInlineKeyboardButtonData("📈 Analytics (30 days)", "analytics:month"),
		),
	)
}

func settingsMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("👤 My Profile", "settings:profile")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏪 Add Shop", "settings:addshop")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🌐 Language", "settings:language")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("💳 Payment Status", "settings:payment")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📱 Support", "settings:support")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("ℹ️ About", "settings:about")),
	)
}

func backToSettings() tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData("🔙 Back", "settings:menu")
}

func languageMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("English 🇬🇧", "lang:en"),
			tgbotapi.NewInlineKeyboardButtonData("Русский 🇷🇺", "lang:ru"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("فارسی 🇮🇷", "lang:fa"),
			tgbotapi.NewInlineKeyboardButtonData("پښتو 🇦🇫", "lang:ps"),
		),
		tgbotapi.NewInlineKeyboardRow(backToSettings()),
	)
}

func planMenu() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(planOrder)+1)
	for _, key := range planOrder {
		p := plans[key]
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("💰 %s - $%s", p.Name, p.Price.StringFixed(2)), "plan:"+key),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(backToSettings()))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func supportMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📝 Send Message to Admin", "settings:message")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📞 Contact Info", "settings:contact")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❓ FAQ", "settings:faq")),
		tgbotapi.NewInlineKeyboardRow(backToSettings()),
	)
}
