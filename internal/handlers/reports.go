package handlers

import (
	"context"

	"quicksell-bot/internal/report"
)

func (h *Handler) soldItems(ctx context.Context, chatID, tgID int64) {
	h.sendReport(ctx, chatID, tgID, report.Today, report.Filter{}, false)
}

// productSales reports every sale of one product.
func (h *Handler) productSales(ctx context.Context, chatID, tgID, productID int64) {
	u := h.operator(ctx, chatID, tgID)
	if u == nil {
		return
	}
	p := h.ownedProduct(ctx, chatID, u, productID)
	if p == nil {
		return
	}
	sum, ok := h.summarize(ctx, chatID, u.ID, report.All, report.Filter{ProductID: p.ID})
	if !ok {
		return
	}
	h.sendMarkup(chatID, report.FormatSummary("Sales of "+p.Name+": "+report.All.Label(), sum, h.loc()), productActions(p.ID))
}

// sendReport aggregates the operator's sales over period p. detailed picks
// the analytics layout.
func (h *Handler) sendReport(ctx context.Context, chatID, tgID int64, p report.Period, f report.Filter, detailed bool) {
	u := h.operator(ctx, chatID, tgID)
	if u == nil {
		return
	}
	sum, ok := h.summarize(ctx, chatID, u.ID, p, f)
	if !ok {
		return
	}

	title := "Sales: " + p.Label()
	if f.Buyer != "" {
		title += ", buyer " + f.Buyer
	}
	if detailed {
		h.sendMarkup(chatID, report.FormatDetailed("Analytics: "+p.Label(), sum), reportPeriods())
		return
	}
	h.sendMarkup(chatID, report.FormatSummary(title, sum, h.loc()), reportPeriods())
}

func (h *Handler) summarize(ctx context.Context, chatID, ownerID int64, p report.Period, f report.Filter) (report.Summary, bool) {
	from, to := report.Range(p, h.now(), h.loc())
	sales, err := h.DB.ListSalesByOwner(ctx, ownerID, from, to)
	if err != nil {
		h.fail(ctx, chatID, "list sales", err)
		return report.Summary{}, false
	}
	return report.Build(sales, f, h.loc()), true
}
