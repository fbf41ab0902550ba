package storage

import (
	"context"
	"time"

	"quicksell-bot/internal/models"
)

// ---------- users -----------------------------------------------------------

// UpsertUser inserts u or updates name and location of the row with the
// same telegram id. u.ID is set either way.
func (q Queries) UpsertUser(ctx context.Context, u *models.User) error {
	if u.Language == "" {
		u.Language = "en"
	}
	if u.CreatedAt == 0 {
		u.CreatedAt = time.Now().Unix()
	}
	id, err := q.insert(ctx, `
        INSERT INTO users (telegram_id, name, location, language, created_at)
        VALUES (?,?,?,?,?)
        ON CONFLICT(telegram_id) DO UPDATE SET name=excluded.name,
            location=excluded.location
        RETURNING id
    `, u.TelegramID, u.Name, u.Location, u.Language, u.CreatedAt)
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func (q Queries) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var u models.User
	ok, err := q.get(ctx, &u, `
        SELECT id, telegram_id, name, location, language, created_at
        FROM users WHERE telegram_id=?`, telegramID)
	if !ok {
		return nil, err
	}
	return &u, nil
}

func (q Queries) SetUserLanguage(ctx context.Context, telegramID int64, lang string) (bool, error) {
	n, err := q.exec(ctx, `UPDATE users SET language=? WHERE telegram_id=?`, lang, telegramID)
	return n > 0, err
}

// ---------- shops -----------------------------------------------------------

func (q Queries) InsertShop(ctx context.Context, s *models.Shop) error {
	if s.CreatedAt == 0 {
		s.CreatedAt = time.Now().Unix()
	}
	id, err := q.insert(ctx, `
        INSERT INTO shops (shop_number, location, owner_id, created_at)
        VALUES (?,?,?,?) RETURNING id
    `, s.ShopNumber, s.Location, s.OwnerID, s.CreatedAt)
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

func (q Queries) UpdateShop(ctx context.Context, s *models.Shop) error {
	_, err := q.exec(ctx, `UPDATE shops SET shop_number=?, location=? WHERE id=?`,
		s.ShopNumber, s.Location, s.ID)
	return err
}

func (q Queries) GetShop(ctx context.Context, id int64) (*models.Shop, error) {
	var s models.Shop
	ok, err := q.get(ctx, &s, `
        SELECT id, shop_number, location, owner_id, created_at
        FROM shops WHERE id=?`, id)
	if !ok {
		return nil, err
	}
	return &s, nil
}

// ListShopsByOwner returns the user's shops, oldest first.
func (q Queries) ListShopsByOwner(ctx context.Context, ownerID int64) ([]models.Shop, error) {
	var res []models.Shop
	err := q.selectAll(ctx, &res, `
        SELECT id, shop_number, location, owner_id, created_at
        FROM shops WHERE owner_id=? ORDER BY id`, ownerID)
	return res, err
}

// ShopCounts returns the number of products and sales recorded for a shop.
func (q Queries) ShopCounts(ctx context.Context, shopID int64) (products, sales int, err error) {
	products, err = q.count(ctx, `SELECT COUNT(*) FROM products WHERE shop_id=?`, shopID)
	if err != nil {
		return 0, 0, err
	}
	sales, err = q.count(ctx, `
        SELECT COUNT(*) FROM sales
        WHERE product_id IN (SELECT id FROM products WHERE shop_id=?)`, shopID)
	return products, sales, err
}
