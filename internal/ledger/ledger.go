// Package ledger records sales and the debts created by selling on credit.
// Every operation runs in a single storage transaction.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"quicksell-bot/internal/models"
	"quicksell-bot/internal/storage"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrUnavailable        = errors.New("product is not available")
	ErrOutOfStock         = errors.New("product is out of stock")
	ErrEmptyBuyer         = errors.New("buyer name is empty")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrExceedsRemaining   = errors.New("amount exceeds remaining debt")
	ErrAlreadySettled     = errors.New("debt is already settled")
	ErrNotCleared         = errors.New("sale is not cleared")
	ErrInvalidPaymentType = errors.New("payment type must be cash or card")
	ErrConflict           = errors.New("debt was changed concurrently")
)

type Ledger struct {
	db  *storage.DB
	log *zap.Logger
	now func() time.Time
}

func New(db *storage.DB, log *zap.Logger) *Ledger {
	return &Ledger{db: db, log: log, now: time.Now}
}

// SaleResult is what RecordSale wrote. Debt is nil for cleared sales.
type SaleResult struct {
	Product models.Product
	Sale    models.Sale
	Debt    *models.Debt
}

// RecordSale sells one unit of a product. A cleared sale starts with payment
// type pending; otherwise the sale is borrowed and a debt for the full price
// is opened.
func (l *Ledger) RecordSale(ctx context.Context, productID int64, buyer string, cleared bool) (*SaleResult, error) {
	buyer = strings.TrimSpace(buyer)
	if buyer == "" {
		return nil, ErrEmptyBuyer
	}

	var res SaleResult
	err := l.db.InTx(ctx, func(tx *storage.Tx) error {
		p, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		if p.Status != models.ProductAvailable {
			return fmt.Errorf("product %d is %s: %w", productID, p.Status, ErrUnavailable)
		}
		if p.Quantity <= 0 {
			return fmt.Errorf("product %d: %w", productID, ErrOutOfStock)
		}

		pt := models.PaymentPending
		p.Status = models.ProductSold
		if !cleared {
			pt = models.PaymentBorrowed
			p.Status = models.ProductBorrowed
		}
		p.Quantity--
		if err := tx.UpdateProductStock(ctx, p.ID, p.Status, p.Quantity); err != nil {
			return err
		}

		sale := models.Sale{
			ProductID:   p.ID,
			BuyerName:   buyer,
			Price:       p.Price,
			PaymentType: &pt,
			IsCleared:   cleared,
			CreatedAt:   l.now().Unix(),
		}
		if err := tx.InsertSale(ctx, &sale); err != nil {
			return err
		}
		res.Product, res.Sale = *p, sale

		if cleared {
			return nil
		}
		debt := models.Debt{
			SaleID:      sale.ID,
			TotalAmount: p.Price,
			PaidAmount:  decimal.Zero,
			CreatedAt:   l.now().Unix(),
		}
		if err := tx.InsertDebt(ctx, &debt); err != nil {
			return err
		}
		res.Debt = &debt
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.log.Info("sale recorded",
		zap.Int64("sale_id", res.Sale.ID),
		zap.Int64("product_id", productID),
		zap.Bool("cleared", cleared),
		zap.String("price", res.Sale.Price.StringFixed(2)))
	return &res, nil
}

// ApplyPayment adds amount to a debt's paid total. Amounts that are not
// positive or exceed the remaining balance are rejected and the debt is left
// as it was. Reaching the total settles the debt, clears the sale and marks
// the product sold.
func (l *Ledger) ApplyPayment(ctx context.Context, debtID int64, amount decimal.Decimal) (*models.Debt, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var debt *models.Debt
	err := l.db.InTx(ctx, func(tx *storage.Tx) error {
		var err error
		debt, err = tx.GetDebt(ctx, debtID)
		if err != nil {
			return err
		}
		if debt == nil {
			return fmt.Errorf("debt %d: %w", debtID, ErrNotFound)
		}
		if debt.IsSettled {
			return fmt.Errorf("debt %d: %w", debtID, ErrAlreadySettled)
		}
		remaining := debt.Remaining()
		if amount.GreaterThan(remaining) {
			return fmt.Errorf("%w: remaining %s", ErrExceedsRemaining, remaining.StringFixed(2))
		}

		debt.PaidAmount = debt.PaidAmount.Add(amount)
		if debt.PaidAmount.GreaterThanOrEqual(debt.TotalAmount) {
			debt.PaidAmount = debt.TotalAmount
			debt.IsSettled = true
		}
		ok, err := tx.UpdateDebtPayment(ctx, debt)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConflict
		}
		if debt.IsSettled {
			return l.closeSale(ctx, tx, debt.SaleID, nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.log.Info("debt payment applied",
		zap.Int64("debt_id", debt.ID),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("paid", debt.PaidAmount.StringFixed(2)),
		zap.Bool("settled", debt.IsSettled))
	return debt, nil
}

// Settlement is the outcome of SettleInFull.
type Settlement struct {
	Debt      models.Debt
	Sale      models.Sale
	Product   models.Product
	Collected decimal.Decimal
}

// SettleInFull collects the whole remaining balance of a debt with the given
// payment type.
func (l *Ledger) SettleInFull(ctx context.Context, debtID, saleID int64, pt models.PaymentType) (*Settlement, error) {
	if pt != models.PaymentCash && pt != models.PaymentCard {
		return nil, ErrInvalidPaymentType
	}

	var res Settlement
	err := l.db.InTx(ctx, func(tx *storage.Tx) error {
		debt, sale, err := loadDebtSale(ctx, tx, debtID, saleID)
		if err != nil {
			return err
		}
		p, err := tx.GetProduct(ctx, sale.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("product %d: %w", sale.ProductID, ErrNotFound)
		}

		res.Collected = debt.Remaining()
		debt.PaidAmount = debt.TotalAmount
		debt.IsSettled = true
		ok, err := tx.UpdateDebtPayment(ctx, debt)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConflict
		}
		if err := l.closeSale(ctx, tx, sale.ID, &pt); err != nil {
			return err
		}

		sale.IsCleared = true
		sale.PaymentType = &pt
		p.Status = models.ProductSold
		res.Debt, res.Sale, res.Product = *debt, *sale, *p
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.log.Info("debt settled in full",
		zap.Int64("debt_id", debtID),
		zap.Int64("sale_id", saleID),
		zap.String("payment_type", string(pt)),
		zap.String("collected", res.Collected.StringFixed(2)))
	return &res, nil
}

// Return is the outcome of ReturnProduct. Product is nil when the product
// row no longer exists.
type Return struct {
	Debt    models.Debt
	Sale    models.Sale
	Product *models.Product
}

// ReturnProduct undoes a borrowed sale: the debt is closed with nothing
// paid, the unit goes back to stock and the sale row is deleted.
func (l *Ledger) ReturnProduct(ctx context.Context, debtID, saleID int64) (*Return, error) {
	var res Return
	err := l.db.InTx(ctx, func(tx *storage.Tx) error {
		debt, sale, err := loadDebtSale(ctx, tx, debtID, saleID)
		if err != nil {
			return err
		}

		debt.PaidAmount = decimal.Zero
		debt.IsSettled = true
		ok, err := tx.UpdateDebtPayment(ctx, debt)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConflict
		}

		p, err := tx.GetProduct(ctx, sale.ProductID)
		if err != nil {
			return err
		}
		if p != nil {
			p.Status = models.ProductAvailable
			p.Quantity++
			if err := tx.UpdateProductStock(ctx, p.ID, p.Status, p.Quantity); err != nil {
				return err
			}
		}
		if err := tx.DeleteSale(ctx, sale.ID); err != nil {
			return err
		}
		res.Debt, res.Sale, res.Product = *debt, *sale, p
		return nil
	})
	if err != nil {
		return nil, err
	}

	// the sale row is gone; this entry is its only trace
	l.log.Info("product returned, sale reversed",
		zap.Int64("debt_id", debtID),
		zap.Int64("sale_id", res.Sale.ID),
		zap.Int64("product_id", res.Sale.ProductID),
		zap.String("buyer", res.Sale.BuyerName),
		zap.String("price", res.Sale.Price.StringFixed(2)),
		zap.Int64("sold_at", res.Sale.CreatedAt))
	return &res, nil
}

// FinalizePaymentType records whether a cleared sale was paid in cash or by
// card. Calling it again overwrites the previous choice.
func (l *Ledger) FinalizePaymentType(ctx context.Context, saleID int64, pt models.PaymentType) (*models.Sale, error) {
	if pt != models.PaymentCash && pt != models.PaymentCard {
		return nil, ErrInvalidPaymentType
	}

	var sale *models.Sale
	err := l.db.InTx(ctx, func(tx *storage.Tx) error {
		var err error
		sale, err = tx.GetSale(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return fmt.Errorf("sale %d: %w", saleID, ErrNotFound)
		}
		if !sale.IsCleared {
			return fmt.Errorf("sale %d: %w", saleID, ErrNotCleared)
		}
		sale.PaymentType = &pt
		return tx.SetSalePayment(ctx, saleID, pt)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// loadDebtSale fetches an open debt and the sale it belongs to.
func loadDebtSale(ctx context.Context, tx *storage.Tx, debtID, saleID int64) (*models.Debt, *models.Sale, error) {
	debt, err := tx.GetDebt(ctx, debtID)
	if err != nil {
		return nil, nil, err
	}
	if debt == nil {
		return nil, nil, fmt.Errorf("debt %d: %w", debtID, ErrNotFound)
	}
	if debt.IsSettled {
		return nil, nil, fmt.Errorf("debt %d: %w", debtID, ErrAlreadySettled)
	}
	if debt.SaleID != saleID {
		return nil, nil, fmt.Errorf("debt %d has no sale %d: %w", debtID, saleID, ErrNotFound)
	}
	sale, err := tx.GetSale(ctx, saleID)
	if err != nil {
		return nil, nil, err
	}
	if sale == nil {
		return nil, nil, fmt.Errorf("sale %d: %w", saleID, ErrNotFound)
	}
	return debt, sale, nil
}

// closeSale clears a sale (optionally setting its payment type) and marks
// its product sold.
func (l *Ledger) closeSale(ctx context.Context, tx *storage.Tx, saleID int64, pt *models.PaymentType) error {
	sale, err := tx.GetSale(ctx, saleID)
	if err != nil || sale == nil {
		return err
	}
	if pt != nil {
		err = tx.SetSalePayment(ctx, saleID, *pt)
	} else {
		err = tx.MarkSaleCleared(ctx, saleID)
	}
	if err != nil {
		return err
	}

	p, err := tx.GetProduct(ctx, sale.ProductID)
	if err != nil || p == nil {
		return err
	}
	return tx.UpdateProductStock(ctx, p.ID, models.ProductSold, p.Quantity)
}
