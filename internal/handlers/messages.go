package handlers

import (
	"context"
	"errors"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"quicksell-bot/internal/dialog"
	"quicksell-bot/internal/models"
)

func (h *Handler) HandleText(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	tgID := senderID(msg.From, chatID)
	text := strings.TrimSpace(msg.Text)

	// menu buttons work from any step and drop the current dialog
	switch text {
	case btnCancel:
		h.cancel(ctx, chatID)
		return
	case menuAddProduct, menuProducts, menuUncleared, menuSold, menuSettings:
		if err := h.States.Clear(ctx, chatID); err != nil {
			h.fail(ctx, chatID, "clear state", err)
			return
		}
		h.handleMenu(ctx, chatID, tgID, text)
		return
	}

	sess, err := h.States.Get(ctx, chatID)
	if err != nil {
		h.fail(ctx, chatID, "load state", err)
		return
	}
	if sess.Idle() {
		h.sendMenu(chatID, txtUseMenu)
		return
	}

	finished, err := dialog.Advance(sess, text)
	var ie *dialog.InputError
	switch {
	case errors.As(err, &ie):
		h.sendMarkup(chatID, ie.Reason+"\n"+dialog.Prompt(sess.State), h.stepMarkup(sess))
		return
	case err != nil:
		h.fail(ctx, chatID, "advance dialog", err)
		return
	}

	if finished {
		h.finish(ctx, chatID, tgID, sess)
		return
	}
	if err := h.States.Save(ctx, chatID, sess); err != nil {
		h.fail(ctx, chatID, "save state", err)
		return
	}
	h.sendMarkup(chatID, dialog.Prompt(sess.State), h.stepMarkup(sess))
}

func (h *Handler) handleMenu(ctx context.Context, chatID, tgID int64, label string) {
	switch label {
	case menuAddProduct:
		h.beginAddProduct(ctx, chatID, tgID)
	case menuProducts:
		h.listProducts(ctx, chatID, tgID)
	case menuUncleared:
		h.listDebts(ctx, chatID, tgID)
	case menuSold:
		h.soldItems(ctx, chatID, tgID)
	case menuSettings:
		h.sendMarkup(chatID, "⚙️ Settings Menu\nSelect an option:", settingsMenu())
	}
}

// stepMarkup is the keyboard shown with the prompt of the session's step.
func (h *Handler) stepMarkup(s *models.Session) any {
	switch s.State {
	case models.StateAwaitingPaymentChoice:
		return paymentChoice(s.Draft.ProductID)
	case models.StateAwaitingShopSelection:
		labels := make([]string, 0, len(s.Draft.ShopChoices))
		for l := range s.Draft.ShopChoices {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		return shopKeyboard(labels)
	}
	return cancelKeyboard()
}

// finish persists a dialog whose last step was answered.
func (h *Handler) finish(ctx context.Context, chatID, tgID int64, s *models.Session) {
	switch s.State {
	case models.StateAwaitingShopNumber:
		h.completeOnboarding(ctx, chatID, tgID, s.Draft)
	case models.StateAwaitingNewShopNumber:
		h.completeAddShop(ctx, chatID, tgID, s.Draft)
	case models.StateAwaitingMaterial:
		h.completeProduct(ctx, chatID, tgID, s.Draft)
	case models.StateAwaitingPaymentAmount:
		h.completePayment(ctx, chatID, tgID, s)
	case models.StateAwaitingNewPrice:
		h.completePriceEdit(ctx, chatID, tgID, s.Draft)
	case models.StateAwaitingSupportMessage:
		h.completeSupport(ctx, chatID, tgID, s.Draft)
	default:
		h.fail(ctx, chatID, "finish dialog", errors.New("no completion for state "+string(s.State)))
	}
}

// done clears the dialog after a successful completion.
func (h *Handler) done(ctx context.Context, chatID int64, text string, markup any) {
	if err := h.States.Clear(ctx, chatID); err != nil {
		h.fail(ctx, chatID, "clear state", err)
		return
	}
	if markup == nil {
		markup = mainMenu()
	}
	h.sendMarkup(chatID, text, markup)
}
