package storage

import (
	"context"
	"time"

	"quicksell-bot/internal/models"
)

// ---------- subscription payments -------------------------------------------

func (q Queries) InsertPayment(ctx context.Context, p *models.Payment) error {
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}
	id, err := q.insert(ctx, `
        INSERT INTO payments (user_id, amount, plan_type, status, method, transaction_id, created_at, expires_at)
        VALUES (?,?,?,?,?,?,?,?) RETURNING id
    `, p.UserID, p.Amount, p.PlanType, p.Status, p.Method, p.TransactionID, p.CreatedAt, p.ExpiresAt)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// LatestPayment returns the most recent subscription payment of a user.
func (q Queries) LatestPayment(ctx context.Context, userID int64) (*models.Payment, error) {
	var p models.Payment
	ok, err := q.get(ctx, &p, `
        SELECT id, user_id, amount, plan_type, status, method, transaction_id, created_at, expires_at
        FROM payments WHERE user_id=?
        ORDER BY created_at DESC, id DESC LIMIT 1`, userID)
	if !ok {
		return nil, err
	}
	return &p, nil
}

// ListPaymentsExpiring returns completed payments whose expiry falls in
// [from, to), each with the owner's telegram id. Only a user's furthest
// expiry counts, so a renewed subscription is not reported.
func (q Queries) ListPaymentsExpiring(ctx context.Context, from, to int64) ([]models.ExpiringPayment, error) {
	var res []models.ExpiringPayment
	err := q.selectAll(ctx, &res, `
        SELECT p.id, p.user_id, p.amount, p.plan_type, p.status, p.method,
               p.transaction_id, p.created_at, p.expires_at, u.telegram_id
        FROM payments p
        JOIN users u ON u.id = p.user_id
        WHERE p.status = 'completed' AND p.expires_at >= ? AND p.expires_at < ?
          AND p.expires_at = (
              SELECT MAX(expires_at) FROM payments
              WHERE user_id = p.user_id AND status = 'completed')
        ORDER BY p.expires_at`, from, to)
	return res, err
}
