package handlers

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"quicksell-bot/internal/models"
	"quicksell-bot/internal/utils"
)

func (h *Handler) beginAddProduct(ctx context.Context, chatID, tgID int64) {
	u := h.operator(ctx, chatID, tgID)
	if u == nil {
		return
	}
	shops, err := h.DB.ListShopsByOwner(ctx, u.ID)
	if err != nil {
		h.fail(ctx, chatID, "list shops", err)
		return
	}

	switch len(shops) {
	case 0:
		h.send(chatID, txtRunStart)
	case 1:
		h.begin(ctx, chatID, models.StateAwaitingProductName, models.Draft{ShopID: shops[0].ID}, nil)
	default:
		choices := make(map[string]int64, len(shops))
		labels := make([]string, 0, len(shops))
		for _, s := range shops {
			l := shopLabel(s)
			choices[l] = s.ID
			labels = append(labels, l)
		}
		h.begin(ctx, chatID, models.StateAwaitingShopSelection, models.Draft{ShopChoices: choices}, shopKeyboard(labels))
	}
}

func (h *Handler) completeProduct(ctx context.Context, chatID, tgID int64, d models.Draft) {
	if d.ShopID == 0 {
		h.clearState(ctx, chatID)
		h.sendMenu(chatID, "❌ Select a shop first.")
		return
	}
	u := h.operator(ctx, chatID, tgID)
	if u == nil {
		h.clearState(ctx, chatID)
		return
	}
	shop, err := h.DB.GetShop(ctx, d.ShopID)
	if err != nil {
		h.fail(ctx, chatID, "load shop", err)
		return
	}
	if shop == nil || shop.OwnerID != u.ID {
		h.clearState(ctx, chatID)
		h.sendMenu(chatID, "❌ Select a shop first.")
		return
	}

	p := models.Product{
		ShopID:   d.ShopID,
		Name:     d.ProductName,
		Quantity: d.Quantity,
		Price:    d.Price,
		Size:     d.Size,
		Color:    d.Color,
		Material: d.Material,
	}
	if err := h.DB.InsertProduct(ctx, &p); err != nil {
		h.fail(ctx, chatID, "insert product", err)
		return
	}
	h.Log.Info("product added", zap.Int64("product_id", p.ID), zap.Int64("shop_id", p.ShopID))

	h.done(ctx, chatID, "✅ Product added!", nil)
	h.sendMarkup(chatID, formatProduct(p, shop.ShopNumber), productActions(p.ID))
}

func (h *Handler) listProducts(ctx context.Context, chatID, tgID int64) {
	u := h.operator(ctx, chatID, tgID)
	if u == nil {
		return
	}
	products, err := h.DB.ListProductsByOwner(ctx, u.ID)
	if err != nil {
		h.fail(ctx, chatID, "list products", err)
		return
	}
	if len(products) == 0 {
		h.send(chatID, "📦 No products yet. Tap ➕ Add New Product to add one.")
		return
	}
	shops, err := h.DB.ListShopsByOwner(ctx, u.ID)
	if err != nil {
		h.fail(ctx, chatID, "list shops", err)
		return
	}
	numbers := make(map[int64]int, len(shops))
	for _, s := range shops {
		numbers[s.ID] = s.ShopNumber
	}

	for _, p := range products {
		h.sendMarkup(chatID, formatProduct(p, numbers[p.ShopID]), productActions(p.ID))
	}
}

func formatProduct(p models.Product, shopNumber int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📦 %s\n", p.Name)
	fmt.Fprintf(&b, "🏪 Shop #%d\n", shopNumber)
	fmt.Fprintf(&b, "💵 Price: %s\n", utils.Money(p.Price))
	fmt.Fprintf(&b, "🔢 Quantity: %d\n", p.Quantity)
	fmt.Fprintf(&b, "📏 %s | 🎨 %s | 🧵 %s\n", p.Size, p.Color, p.Material)
	fmt.Fprintf(&b, "Status: %s", p.Status)
	return b.String()
}

func (h *Handler) beginEditPrice(ctx context.Context, chatID, tgID, productID int64) {
	u := h.operator(ctx, chatID, tgID)
	if u == nil {
		return
	}
	p := h.ownedProduct(ctx, chatID, u, productID)
	if p == nil {
		return
	}
	h.send(chatID, fmt.Sprintf("✏️ %s costs %s now.", p.Name, utils.Money(p.Price)))
	h.begin(ctx, chatID, models.StateAwaitingNewPrice, models.Draft{ProductID: p.ID}, nil)
}

func (h *Handler) completePriceEdit(ctx context.Context, chatID, tgID int64, d models.Draft) {
	u := h.operator(ctx, chatID, tgID)
	if u == nil {
		h.clearState(ctx, chatID)
		return
	}
	if h.ownedProduct(ctx, chatID, u, d.ProductID) == nil {
		h.clearState(ctx, chatID)
		return
	}
	ok, err := h.DB.UpdateProductPrice(ctx, d.ProductID, d.Price)
	if err != nil {
		h.fail(ctx, chatID, "update price", err)
		return
	}
	if !ok {
		h.clearState(ctx, chatID)
		h.sendMenu(chatID, txtNotFound)
		return
	}
	h.done(ctx, chatID, "✅ Price updated to "+utils.Money(d.Price), nil)
}

func (h *Handler) deleteProduct(ctx context.Context, chatID, tgID, productID int64) {
	u := h.operator(ctx, chatID, tgID)
	if u == nil {
		return
	}
	p := h.ownedProduct(ctx, chatID, u, productID)
	if p == nil {
		return
	}
	ok, err := h.DB.DeleteProduct(ctx, p.ID)
	if err != nil {
		h.fail(ctx, chatID, "delete product", err)
		return
	}
	if !ok {
		h.send(chatID, "❌ Only available products can be deleted.")
		return
	}
	h.Log.Info("product deleted", zap.Int64("product_id", p.ID))
	h.send(chatID, "🗑 Deleted: "+p.Name)
}
