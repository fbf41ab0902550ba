package storage

import (
	"context"
	"time"

	"quicksell-bot/internal/models"
)

// ---------- sales -----------------------------------------------------------

func (q Queries) InsertSale(ctx context.Context, s *models.Sale) error {
	if s.CreatedAt == 0 {
		s.CreatedAt = time.Now().Unix()
	}
	id, err := q.insert(ctx, `
        INSERT INTO sales (product_id, buyer_name, price, payment_type, is_cleared, created_at)
        VALUES (?,?,?,?,?,?) RETURNING id
    `, s.ProductID, s.BuyerName, s.Price, s.PaymentType, s.IsCleared, s.CreatedAt)
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

func (q Queries) GetSale(ctx context.Context, id int64) (*models.Sale, error) {
	var s models.Sale
	ok, err := q.get(ctx, &s, `
        SELECT id, product_id, buyer_name, price, payment_type, is_cleared, created_at
        FROM sales WHERE id=?`, id)
	if !ok {
		return nil, err
	}
	return &s, nil
}

// SetSalePayment marks the sale cleared with the given payment type.
func (q Queries) SetSalePayment(ctx context.Context, id int64, pt models.PaymentType) error {
	_, err := q.exec(ctx, `UPDATE sales SET payment_type=?, is_cleared=TRUE WHERE id=?`, pt, id)
	return err
}

// MarkSaleCleared flags the sale as paid without touching its payment type.
func (q Queries) MarkSaleCleared(ctx context.Context, id int64) error {
	_, err := q.exec(ctx, `UPDATE sales SET is_cleared=TRUE WHERE id=?`, id)
	return err
}

func (q Queries) DeleteSale(ctx context.Context, id int64) error {
	_, err := q.exec(ctx, `DELETE FROM sales WHERE id=?`, id)
	return err
}

// ListSalesByOwner returns sales of the owner's shops created in
// [from, to), newest first. Zero bounds are open.
func (q Queries) ListSalesByOwner(ctx context.Context, ownerID, from, to int64) ([]models.SaleView, error) {
	if to == 0 {
		to = 1<<62 - 1
	}
	var res []models.SaleView
	err := q.selectAll(ctx, &res, `
        SELECT s.id, s.product_id, s.buyer_name, s.price, s.payment_type,
               s.is_cleared, s.created_at, p.name AS product_name, p.shop_id
        FROM sales s
        JOIN products p ON p.id = s.product_id
        JOIN shops sh ON sh.id = p.shop_id
        WHERE sh.owner_id=? AND s.created_at >= ? AND s.created_at < ?
        ORDER BY s.created_at DESC, s.id DESC`, ownerID, from, to)
	return res, err
}

// SaleOwner returns the user id owning the shop a sale was made in, or 0
// when the sale no longer exists.
func (q Queries) SaleOwner(ctx context.Context, saleID int64) (int64, error) {
	var owner int64
	_, err := q.get(ctx, &owner, `
        SELECT sh.owner_id FROM sales s
        JOIN products p ON p.id = s.product_id
        JOIN shops sh ON sh.id = p.shop_id
        WHERE s.id=?`, saleID)
	return owner, err
}
