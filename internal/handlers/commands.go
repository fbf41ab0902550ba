package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"quicksell-bot/internal/dialog"
	"quicksell-bot/internal/models"
	"quicksell-bot/internal/report"
)

func (h *Handler) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	tgID := senderID(msg.From, chatID)
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		h.HandleStart(ctx, chatID)
	case "cancel":
		h.cancel(ctx, chatID)
	case "help":
		h.sendMenu(chatID, txtHelp)
	case "addshop":
		h.beginAddShop(ctx, chatID, tgID)
	case "report":
		p, ok := report.ParsePeriod(args)
		if !ok {
			h.send(chatID, "Usage: /report [today|week|month|all]")
			return
		}
		h.sendReport(ctx, chatID, tgID, p, report.Filter{}, false)
	case "buyer":
		if args == "" {
			h.send(chatID, "Usage: /buyer <name>")
			return
		}
		h.sendReport(ctx, chatID, tgID, report.All, report.Filter{Buyer: args}, false)
	default:
		h.send(chatID, "Unknown command. See /help.")
	}
}

// ---------------- /start --------------------
func (h *Handler) HandleStart(ctx context.Context, chatID int64) {
	h.begin(ctx, chatID, models.StateAwaitingName, models.Draft{}, nil)
}

func (h *Handler) cancel(ctx context.Context, chatID int64) {
	if err := h.States.Clear(ctx, chatID); err != nil {
		h.fail(ctx, chatID, "clear state", err)
		return
	}
	h.sendMenu(chatID, txtCancelled)
}

// begin stores a fresh dialog and asks its first question.
func (h *Handler) begin(ctx context.Context, chatID int64, st models.State, d models.Draft, markup any) {
	var s models.Session
	prompt := dialog.Begin(&s, st, d)
	if err := h.States.Save(ctx, chatID, &s); err != nil {
		h.fail(ctx, chatID, "save state", err)
		return
	}
	if markup == nil {
		markup = cancelKeyboard()
	}
	h.sendMarkup(chatID, prompt, markup)
}
