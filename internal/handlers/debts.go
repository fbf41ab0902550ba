package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quicksell-bot/internal/dialog"
	"quicksell-bot/internal/ledger"
	"quicksell-bot/internal/models"
	"quicksell-bot/internal/utils"
)

func (h *Handler) listDebts(ctx context.Context, chatID, tgID int64) {
	u := h.operator(ctx, chatID, tgID)
	if u == nil {
		return
	}
	debts, err := h.DB.ListOpenDebtsByOwner(ctx, u.ID)
	if err != nil {
		h.fail(ctx, chatID, "list debts", err)
		return
	}
	if len(debts) == 0 {
		h.send(chatID, "✅ No uncleared products.")
		return
	}
	for _, d := range debts {
		h.sendMarkup(chatID, h.formatDebt(d), debtActions(d.ID, d.SaleID))
	}
}

func (h *Handler) formatDebt(d models.DebtView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👤 %s\n", d.BuyerName)
	fmt.Fprintf(&b, "📦 %s\n", d.ProductName)
	fmt.Fprintf(&b, "💰 Total: %s\n", utils.Money(d.TotalAmount))
	fmt.Fprintf(&b, "✅ Paid: %s\n", utils.Money(d.PaidAmount))
	fmt.Fprintf(&b, "🕒 Remaining: %s\n", utils.Money(d.Remaining()))
	fmt.Fprintf(&b, "📅 Since: %s", utils.Date(d.CreatedAt, h.loc()))
	return b.String()
}

// openDebt loads an unsettled debt of the operator.
func (h *Handler) openDebt(ctx context.Context, chatID int64, u *models.User, debtID int64) *models.Debt {
	d, err := h.DB.GetDebt(ctx, debtID)
	if err != nil {
		h.fail(ctx, chatID, "load debt", err)
		return nil
	}
	if d == nil {
		h.send(chatID, txtNotFound)
		return nil
	}
	if !h.ownsSale(ctx, chatID, u, d.SaleID) {
		return nil
	}
	if d.IsSettled {
		h.send(chatID, "✅ This debt is already settled.")
		return nil
	}
	return d
}

func (h *Handler) beginPartialPayment(ctx context.Context, chatID, tgID, debtID int64) {
	u := h.operator(ctx, chatID, tgID)
	if u == nil {
		return
	}
	d := h.openDebt(ctx, chatID, u, debtID)
	if d == nil {
		return
	}
	h.send(chatID, "🕒 Remaining: "+utils.Money(d.Remaining()))
	h.begin(ctx, chatID, models.StateAwaitingPaymentAmount, models.Draft{DebtID: d.ID}, nil)
}

// completePayment applies a partial payment. Amounts over the remaining
// balance are asked again without leaving the step.
func (h *Handler) completePayment(ctx context.Context, chatID, tgID int64, s *models.Session) {
	u := h.operator(ctx, chatID, tgID)
	if u == nil {
		h.clearState(ctx, chatID)
		return
	}
	if h.openDebt(ctx, chatID, u, s.Draft.DebtID) == nil {
		h.clearState(ctx, chatID)
		return
	}

	d, err := h.Ledger.ApplyPayment(ctx, s.Draft.DebtID, s.Draft.Amount)
	switch {
	case errors.Is(err, ledger.ErrExceedsRemaining), errors.Is(err, ledger.ErrInvalidAmount):
		if serr := h.States.Save(ctx, chatID, s); serr != nil {
			h.fail(ctx, chatID, "save state", serr)
			return
		}
		h.sendMarkup(chatID, "❌ "+err.Error()+"\n"+dialog.Prompt(s.State), cancelKeyboard())
		return
	case err != nil:
		h.reject(ctx, chatID, "apply payment", err)
		return
	}

	if d.IsSettled {
		h.done(ctx, chatID, fmt.Sprintf("✅ Debt fully paid! Total %s.", utils.Money(d.TotalAmount)), nil)
		return
	}
	h.done(ctx, chatID, fmt.Sprintf("✅ Payment of %s recorded.\n🕒 Remaining: %s",
		utils.Money(s.Draft.Amount), utils.Money(d.Remaining())), nil)
}

func (h *Handler) askFullPayment(ctx context.Context, chatID, tgID, debtID, saleID int64) {
	u := h.operator(ctx, chatID, tgID)
	if u == nil {
		return
	}
	d := h.openDebt(ctx, chatID, u, debtID)
	if d == nil {
		return
	}
	if d.SaleID != saleID {
		h.send(chatID, txtNotFound)
		return
	}
	h.sendMarkup(chatID, fmt.Sprintf("💵 Collect %s in full. How was it paid?", utils.Money(d.Remaining())),
		settleChoice(debtID, saleID))
}

func (h *Handler) settleInFull(ctx context.Context, chatID, tgID, debtID, saleID int64, pt models.PaymentType) {
	u := h.operator(ctx, chatID, tgID)
	if u == nil {
		return
	}
	if !h.ownsSale(ctx, chatID, u, saleID) {
		return
	}
	res, err := h.Ledger.SettleInFull(ctx, debtID, saleID, pt)
	if err != nil {
		h.reject(ctx, chatID, "settle debt", err)
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Debt settled: %s paid %s by %s for %s.",
		res.Sale.BuyerName, utils.Money(res.Collected), pt, res.Product.Name))
}

func (h *Handler) returnProduct(ctx context.Context, chatID, tgID, debtID, saleID int64) {
	u := h.operator(ctx, chatID, tgID)
	if u == nil {
		return
	}
	if !h.ownsSale(ctx, chatID, u, saleID) {
		return
	}
	res, err := h.Ledger.ReturnProduct(ctx, debtID, saleID)
	if err != nil {
		h.reject(ctx, chatID, "return product", err)
		return
	}
	name := "The product"
	if res.Product != nil {
		name = res.Product.Name
	}
	h.send(chatID, fmt.Sprintf("↩️ %s is back in stock. %s's debt is closed.", name, res.Sale.BuyerName))
}
