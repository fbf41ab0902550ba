package handlers

const (
	txtGenericError = "⚠️ Something went wrong. Please try again."
	txtNotFound     = "❌ Not found. It may have been removed."
	txtRunStart     = "❌ You are not registered yet. Please run /start first."
	txtCancelled    = "❌ Cancelled."
	txtUseMenu      = "Please use the menu below."
	txtExpired      = "⌛ This action is no longer in progress. Please start again."
	txtBadCallback  = "❌ Invalid button data."

	txtHelp = "🛍 QuickSell Bot\n" +
		"━━━━━━━━━━━━━━━━━━\n" +
		"/start - register or update your shop\n" +
		"/addshop - add another shop\n" +
		"/report [today|week|month|all] - sales report\n" +
		"/buyer <name> - sales to one buyer\n" +
		"/cancel - stop the current action\n" +
		"/help - this message\n\n" +
		"Use the menu to add products, record sales and track debts."

	txtContact = "📞 Contact Information\n" +
		"━━━━━━━━━━━━━━━━━━\n" +
		"Use 📝 Send Message to Admin and we will reply here.\n\n" +
		"⏰ Support Hours:\n" +
		"Monday - Friday: 9:00 - 18:00\n" +
		"Saturday: 10:00 - 14:00\n" +
		"Sunday: Closed"

	txtFAQ = "❓ Frequently Asked Questions\n" +
		"━━━━━━━━━━━━━━━━━━\n" +
		"Q: How do I add a product?\n" +
		"A: Tap ➕ Add New Product and answer the questions.\n\n" +
		"Q: How do I record a sale?\n" +
		"A: Open 📦 All Products and tap ✅ Sold under the product.\n\n" +
		"Q: How do I take a payment on a debt?\n" +
		"A: Open 🕒 Uncleared Products and pick full or partial payment.\n\n" +
		"Q: Can I have multiple shops?\n" +
		"A: Yes, use /addshop or Settings → Add Shop."
)
