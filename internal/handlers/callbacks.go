package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"quicksell-bot/internal/models"
	"quicksell-bot/internal/report"
)

// number of numeric ids each callback action carries
var idCount = map[string]int{
	"sold":         1,
	"edit":         1,
	"delete":       1,
	"psales":       1,
	"clear":        1,
	"borrow":       1,
	"cash":         1,
	"card":         1,
	"pay":          1,
	"cancel_pay":   1,
	"return":       2,
	"full_payment": 2,
	"pay_cash":     2,
	"pay_card":     2,
}

// actions whose single argument is a word
var wordActions = map[string]bool{
	"report":    true,
	"analytics": true,
	"settings":  true,
	"lang":      true,
	"plan":      true,
	"simulate":  true,
}

// callback is a parsed "action:arg[:arg]" payload.
type callback struct {
	Action string
	IDs    []int64
	Word   string
}

func parseCallback(data string) (callback, error) {
	parts := strings.Split(data, ":")
	c := callback{Action: parts[0]}
	args := parts[1:]

	if wordActions[c.Action] {
		if len(args) != 1 || args[0] == "" {
			return c, fmt.Errorf("%s: want 1 argument, got %d", c.Action, len(args))
		}
		c.Word = args[0]
		return c, nil
	}

	n, ok := idCount[c.Action]
	if !ok {
		return c, fmt.Errorf("unknown action %q", c.Action)
	}
	if len(args) != n {
		return c, fmt.Errorf("%s: want %d ids, got %d", c.Action, n, len(args))
	}
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil || id <= 0 {
			return c, fmt.Errorf("%s: bad id %q", c.Action, a)
		}
		c.IDs = append(c.IDs, id)
	}
	return c, nil
}

func (h *Handler) HandleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	chatID := callbackChat(cq)
	tgID := senderID(cq.From, chatID)

	c, err := parseCallback(cq.Data)
	if err != nil {
		h.Log.Warn("bad callback data", zap.Int64("chat_id", chatID), zap.String("data", cq.Data), zap.Error(err))
		h.send(chatID, txtBadCallback)
		return
	}

	switch c.Action {
	case "sold":
		h.beginSale(ctx, chatID, tgID, c.IDs[0])
	case "edit":
		h.beginEditPrice(ctx, chatID, tgID, c.IDs[0])
	case "delete":
		h.deleteProduct(ctx, chatID, tgID, c.IDs[0])
	case "psales":
		h.productSales(ctx, chatID, tgID, c.IDs[0])
	case "clear":
		h.recordSale(ctx, chatID, tgID, c.IDs[0], true)
	case "borrow":
		h.recordSale(ctx, chatID, tgID, c.IDs[0], false)
	case "cash":
		h.finalizePayment(ctx, chatID, tgID, c.IDs[0], models.PaymentCash)
	case "card":
		h.finalizePayment(ctx, chatID, tgID, c.IDs[0], models.PaymentCard)
	case "pay":
		h.beginPartialPayment(ctx, chatID, tgID, c.IDs[0])
	case "cancel_pay":
		h.send(chatID, txtCancelled)
	case "return":
		h.returnProduct(ctx, chatID, tgID, c.IDs[0], c.IDs[1])
	case "full_payment":
		h.askFullPayment(ctx, chatID, tgID, c.IDs[0], c.IDs[1])
	case "pay_cash":
		h.settleInFull(ctx, chatID, tgID, c.IDs[0], c.IDs[1], models.PaymentCash)
	case "pay_card":
		h.settleInFull(ctx, chatID, tgID, c.IDs[0], c.IDs[1], models.PaymentCard)
	case "report", "analytics":
		p, ok := report.ParsePeriod(c.Word)
		if !ok {
			h.send(chatID, txtBadCallback)
			return
		}
		h.sendReport(ctx, chatID, tgID, p, report.Filter{}, c.Action == "analytics")
	case "settings":
		h.handleSettings(ctx, chatID, tgID, c.Word)
	case "lang":
		h.setLanguage(ctx, chatID, tgID, c.Word)
	case "plan":
		h.showPlan(chatID, c.Word)
	case "simulate":
		h.simulatePayment(ctx, chatID, tgID, c.Word)
	}
}
