package handlers

import (
	"context"
	"fmt"

	"quicksell-bot/internal/models"
	"quicksell-bot/internal/utils"
)

// beginSale starts the buyer question for an available product.
func (h *Handler) beginSale(ctx context.Context, chatID, tgID, productID int64) {
	u := h.operator(ctx, chatID, tgID)
	if u == nil {
		return
	}
	p := h.ownedProduct(ctx, chatID, u, productID)
	if p == nil {
		return
	}
	if p.Status != models.ProductAvailable || p.Quantity <= 0 {
		h.send(chatID, fmt.Sprintf("❌ %s is not available for sale (%s, quantity %d).", p.Name, p.Status, p.Quantity))
		return
	}
	h.begin(ctx, chatID, models.StateAwaitingBuyer, models.Draft{ProductID: p.ID}, nil)
}

// recordSale answers the paid / on-credit choice.
func (h *Handler) recordSale(ctx context.Context, chatID, tgID, productID int64, cleared bool) {
	sess, err := h.States.Get(ctx, chatID)
	if err != nil {
		h.fail(ctx, chatID, "load state", err)
		return
	}
	if sess.State != models.StateAwaitingPaymentChoice || sess.Draft.ProductID != productID {
		h.send(chatID, txtExpired)
		return
	}
	u := h.operator(ctx, chatID, tgID)
	if u == nil {
		return
	}
	if h.ownedProduct(ctx, chatID, u, productID) == nil {
		h.clearState(ctx, chatID)
		return
	}

	res, err := h.Ledger.RecordSale(ctx, productID, sess.Draft.Buyer, cleared)
	if err != nil {
		h.reject(ctx, chatID, "record sale", err)
		return
	}
	if err := h.States.Clear(ctx, chatID); err != nil {
		h.fail(ctx, chatID, "clear state", err)
		return
	}

	if cleared {
		h.sendMenu(chatID, fmt.Sprintf("✅ Sold %s to %s for %s.",
			res.Product.Name, res.Sale.BuyerName, utils.Money(res.Sale.Price)))
		h.sendMarkup(chatID, "How was it paid?", cashCard(res.Sale.ID))
		return
	}
	h.sendMenu(chatID, fmt.Sprintf("🕒 %s took %s on credit.\n💰 Owes: %s",
		res.Sale.BuyerName, res.Product.Name, utils.Money(res.Debt.TotalAmount)))
}

func (h *Handler) finalizePayment(ctx context.Context, chatID, tgID, saleID int64, pt models.PaymentType) {
	u := h.operator(ctx, chatID, tgID)
	if u == nil {
		return
	}
	if !h.ownsSale(ctx, chatID, u, saleID) {
		return
	}
	sale, err := h.Ledger.FinalizePaymentType(ctx, saleID, pt)
	if err != nil {
		h.reject(ctx, chatID, "finalize payment", err)
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Payment recorded: %s, %s.", pt, utils.Money(sale.Price)))
}
