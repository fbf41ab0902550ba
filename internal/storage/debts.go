package storage

import (
	"context"
	"time"

	"quicksell-bot/internal/models"
)

// ---------- debts -----------------------------------------------------------

func (q Queries) InsertDebt(ctx context.Context, d *models.Debt) error {
	if d.CreatedAt == 0 {
		d.CreatedAt = time.Now().Unix()
	}
	id, err := q.insert(ctx, `
        INSERT INTO debts (sale_id, total_amount, paid_amount, is_settled, version, created_at)
        VALUES (?,?,?,?,0,?) RETURNING id
    `, d.SaleID, d.TotalAmount, d.PaidAmount, d.IsSettled, d.CreatedAt)
	if err != nil {
		return err
	}
	d.ID = id
	d.Version = 0
	return nil
}

func (q Queries) GetDebt(ctx context.Context, id int64) (*models.Debt, error) {
	var d models.Debt
	ok, err := q.get(ctx, &d, `
        SELECT id, sale_id, total_amount, paid_amount, is_settled, version, created_at
        FROM debts WHERE id=?`, id)
	if !ok {
		return nil, err
	}
	return &d, nil
}

// UpdateDebtPayment writes paid_amount and is_settled only if the row still
// has d.Version. It reports false when another writer got there first; on
// success d.Version is advanced.
func (q Queries) UpdateDebtPayment(ctx context.Context, d *models.Debt) (bool, error) {
	n, err := q.exec(ctx, `
        UPDATE debts SET paid_amount=?, is_settled=?, version=version+1
        WHERE id=? AND version=?`, d.PaidAmount, d.IsSettled, d.ID, d.Version)
	if err != nil || n == 0 {
		return false, err
	}
	d.Version++
	return true, nil
}

// ListOpenDebtsByOwner returns unsettled debts of the owner's shops, oldest
// first.
func (q Queries) ListOpenDebtsByOwner(ctx context.Context, ownerID int64) ([]models.DebtView, error) {
	var res []models.DebtView
	err := q.selectAll(ctx, &res, `
        SELECT d.id, d.sale_id, d.total_amount, d.paid_amount, d.is_settled,
               d.version, d.created_at, s.buyer_name, p.name AS product_name
        FROM debts d
        JOIN sales s ON s.id = d.sale_id
        JOIN products p ON p.id = s.product_id
        JOIN shops sh ON sh.id = p.shop_id
        WHERE d.is_settled = FALSE AND sh.owner_id = ?
        ORDER BY d.id`, ownerID)
	return res, err
}
