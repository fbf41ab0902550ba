package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"quicksell-bot/internal/models"
	"quicksell-bot/internal/storage"
)

// completeOnboarding stores the user and their first shop in one
// transaction. Running /start again updates both instead of adding rows.
func (h *Handler) completeOnboarding(ctx context.Context, chatID, tgID int64, d models.Draft) {
	var shop models.Shop
	err := h.DB.InTx(ctx, func(tx *storage.Tx) error {
		u := &models.User{TelegramID: tgID, Name: d.Name, Location: d.Location}
		if err := tx.UpsertUser(ctx, u); err != nil {
			return err
		}
		shops, err := tx.ListShopsByOwner(ctx, u.ID)
		if err != nil {
			return err
		}
		if len(shops) > 0 {
			shop = shops[0]
			shop.ShopNumber, shop.Location = d.ShopNumber, d.Location
			return tx.UpdateShop(ctx, &shop)
		}
		shop = models.Shop{ShopNumber: d.ShopNumber, Location: d.Location, OwnerID: u.ID}
		return tx.InsertShop(ctx, &shop)
	})
	if err != nil {
		h.fail(ctx, chatID, "onboarding", err)
		return
	}

	h.Log.Info("user registered", zap.Int64("telegram_id", tgID), zap.Int64("shop_id", shop.ID))
	h.done(ctx, chatID, fmt.Sprintf(
		"✅ All set, %s!\n🏪 Shop #%d - %s\n\nUse the menu below to add products and record sales.",
		d.Name, shop.ShopNumber, shop.Location), nil)
}

func (h *Handler) beginAddShop(ctx context.Context, chatID, tgID int64) {
	if h.operator(ctx, chatID, tgID) == nil {
		return
	}
	h.begin(ctx, chatID, models.StateAwaitingNewShopLocation, models.Draft{}, nil)
}

func (h *Handler) completeAddShop(ctx context.Context, chatID, tgID int64, d models.Draft) {
	u := h.operator(ctx, chatID, tgID)
	if u == nil {
		h.clearState(ctx, chatID)
		return
	}
	shop := models.Shop{ShopNumber: d.ShopNumber, Location: d.Location, OwnerID: u.ID}
	if err := h.DB.InsertShop(ctx, &shop); err != nil {
		h.fail(ctx, chatID, "insert shop", err)
		return
	}
	h.done(ctx, chatID, fmt.Sprintf("✅ Shop added: %s", shopLabel(shop)), nil)
}
