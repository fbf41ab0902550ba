package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"

	"quicksell-bot/internal/dialog"
	"quicksell-bot/internal/ledger"
	"quicksell-bot/internal/messages"
	"quicksell-bot/internal/models"
	"quicksell-bot/internal/storage"
)

type Handler struct {
	Bot     messages.Sender
	DB      *storage.DB
	Ledger  *ledger.Ledger
	States  dialog.Store
	Log     *zap.Logger
	Limiter *limiter.Limiter // per chat; nil disables throttling

	AdminChatID int64
	Location    *time.Location
	Now         func() time.Time
}

// Dispatch routes one update. Errors never escape: they are logged and the
// user gets a generic reply.
func (h *Handler) Dispatch(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.Message != nil:
		if !h.allow(ctx, upd.Message.Chat.ID) {
			return
		}
		h.HandleMessage(ctx, upd.Message)

	case upd.CallbackQuery != nil:
		cq := upd.CallbackQuery
		// always answer callback
		_, _ = h.Bot.Request(tgbotapi.NewCallback(cq.ID, ""))
		if !h.allow(ctx, callbackChat(cq)) {
			return
		}
		h.HandleCallback(ctx, cq)
	}
}

func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		h.HandleCommand(ctx, msg)
		return
	}
	h.HandleText(ctx, msg)
}

func (h *Handler) allow(ctx context.Context, chatID int64) bool {
	if h.Limiter == nil {
		return true
	}
	lc, err := h.Limiter.Get(ctx, strconv.FormatInt(chatID, 10))
	if err != nil {
		h.Log.Warn("rate limiter unavailable", zap.Error(err))
		return true
	}
	if lc.Reached {
		h.Log.Debug("update throttled", zap.Int64("chat_id", chatID))
		return false
	}
	return true
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) loc() *time.Location {
	if h.Location != nil {
		return h.Location
	}
	return time.UTC
}

// ---------- replies ---------------------------------------------------------

func (h *Handler) send(chatID int64, text string) {
	h.sendMarkup(chatID, text, nil)
}

func (h *Handler) sendMarkup(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := h.Bot.Send(msg); err != nil {
		h.Log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *Handler) sendMenu(chatID int64, text string) {
	h.sendMarkup(chatID, text, mainMenu())
}

// fail reports an unexpected error: it is logged, the conversation is
// dropped and the user gets a generic message.
func (h *Handler) fail(ctx context.Context, chatID int64, op string, err error) {
	h.Log.Error(op, zap.Int64("chat_id", chatID), zap.Error(err))
	h.clearState(ctx, chatID)
	h.sendMenu(chatID, txtGenericError)
}

// clearState drops the chat's conversation. A store failure is only logged;
// the session expires on its own.
func (h *Handler) clearState(ctx context.Context, chatID int64) {
	if err := h.States.Clear(ctx, chatID); err != nil {
		h.Log.Warn("clear state", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// reject handles ledger errors: expected ones become a user message and the
// conversation is cleared, anything else goes through fail.
func (h *Handler) reject(ctx context.Context, chatID int64, op string, err error) {
	text, ok := ledgerMessage(err)
	if !ok {
		h.fail(ctx, chatID, op, err)
		return
	}
	h.clearState(ctx, chatID)
	h.sendMenu(chatID, text)
}

func ledgerMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return txtNotFound, true
	case errors.Is(err, ledger.ErrUnavailable):
		return "❌ This product is not available for sale.", true
	case errors.Is(err, ledger.ErrOutOfStock):
		return "❌ This product is out of stock.", true
	case errors.Is(err, ledger.ErrEmptyBuyer):
		return "❌ Buyer name can't be empty.", true
	case errors.Is(err, ledger.ErrAlreadySettled):
		return "✅ This debt is already settled.", true
	case errors.Is(err, ledger.ErrNotCleared):
		return "❌ This sale is not paid yet.", true
	case errors.Is(err, ledger.ErrInvalidPaymentType):
		return "❌ Unknown payment type.", true
	case errors.Is(err, ledger.ErrConflict):
		return "⚠️ This debt was changed at the same time. Please try again.", true
	}
	return "", false
}

// ---------- lookups ---------------------------------------------------------

func senderID(u *tgbotapi.User, chatID int64) int64 {
	if u != nil {
		return u.ID
	}
	return chatID
}

func callbackChat(cq *tgbotapi.CallbackQuery) int64 {
	if cq.Message != nil && cq.Message.Chat != nil {
		return cq.Message.Chat.ID
	}
	return cq.From.ID
}

// operator loads the registered user behind telegramID. It replies and
// returns nil when there is none or the lookup fails.
func (h *Handler) operator(ctx context.Context, chatID, telegramID int64) *models.User {
	u, err := h.DB.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		h.fail(ctx, chatID, "load user", err)
		return nil
	}
	if u == nil {
		h.send(chatID, txtRunStart)
		return nil
	}
	return u
}

// ownedProduct loads a product of one of the operator's shops.
func (h *Handler) ownedProduct(ctx context.Context, chatID int64, u *models.User, productID int64) *models.Product {
	owner, err := h.DB.ProductOwner(ctx, productID)
	if err != nil {
		h.fail(ctx, chatID, "product owner", err)
		return nil
	}
	if owner != u.ID {
		h.send(chatID, txtNotFound)
		return nil
	}
	p, err := h.DB.GetProduct(ctx, productID)
	if err != nil {
		h.fail(ctx, chatID, "load product", err)
		return nil
	}
	if p == nil {
		h.send(chatID, txtNotFound)
	}
	return p
}

// ownsSale reports whether the sale belongs to one of the operator's shops.
func (h *Handler) ownsSale(ctx context.Context, chatID int64, u *models.User, saleID int64) bool {
	owner, err := h.DB.SaleOwner(ctx, saleID)
	if err != nil {
		h.fail(ctx, chatID, "sale owner", err)
		return false
	}
	if owner != u.ID {
		h.send(chatID, txtNotFound)
		return false
	}
	return true
}
