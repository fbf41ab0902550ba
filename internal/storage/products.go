package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"quicksell-bot/internal/models"
)

const productColumns = `id, shop_id, name, quantity, price, size, color, material, status, created_at`

func (q Queries) InsertProduct(ctx context.Context, p *models.Product) error {
	if p.Status == "" {
		p.Status = models.ProductAvailable
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}
	id, err := q.insert(ctx, `
        INSERT INTO products (shop_id, name, quantity, price, size, color, material, status, created_at)
        VALUES (?,?,?,?,?,?,?,?,?) RETURNING id
    `, p.ShopID, p.Name, p.Quantity, p.Price, p.Size, p.Color, p.Material, p.Status, p.CreatedAt)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (q Queries) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	ok, err := q.get(ctx, &p, `SELECT `+productColumns+` FROM products WHERE id=?`, id)
	if !ok {
		return nil, err
	}
	return &p, nil
}

// ListProductsByOwner returns the products of all shops owned by ownerID.
func (q Queries) ListProductsByOwner(ctx context.Context, ownerID int64) ([]models.Product, error) {
	var res []models.Product
	err := q.selectAll(ctx, &res, `
        SELECT `+productColumns+` FROM products
        WHERE shop_id IN (SELECT id FROM shops WHERE owner_id=?)
        ORDER BY id`, ownerID)
	return res, err
}

func (q Queries) UpdateProductStock(ctx context.Context, id int64, status models.ProductStatus, quantity int) error {
	_, err := q.exec(ctx, `UPDATE products SET status=?, quantity=? WHERE id=?`, status, quantity, id)
	return err
}

func (q Queries) UpdateProductPrice(ctx context.Context, id int64, price decimal.Decimal) (bool, error) {
	n, err := q.exec(ctx, `UPDATE products SET price=? WHERE id=?`, price, id)
	return n > 0, err
}

// DeleteProduct removes a product that has not been sold or lent.
func (q Queries) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	n, err := q.exec(ctx, `DELETE FROM products WHERE id=? AND status=?`, id, models.ProductAvailable)
	return n > 0, err
}

// ProductOwner returns the user id owning the product's shop, or 0 when the
// product does not exist.
func (q Queries) ProductOwner(ctx context.Context, productID int64) (int64, error) {
	var owner int64
	_, err := q.get(ctx, &owner, `
        SELECT sh.owner_id FROM products p
        JOIN shops sh ON sh.id = p.shop_id
        WHERE p.id=?`, productID)
	return owner, err
}
