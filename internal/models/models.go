package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a registered shop operator.
type User struct {
	ID         int64  `db:"id"          json:"id"`
	TelegramID int64  `db:"telegram_id" json:"telegram_id"`
	Name       string `db:"name"        json:"name"`
	Location   string `db:"location"    json:"location"`
	Language   string `db:"language"    json:"language"`
	CreatedAt  int64  `db:"created_at"  json:"created_at"`
}

// Shop belongs to exactly one User.
type Shop struct {
	ID         int64  `db:"id"`
	ShopNumber int    `db:"shop_number"`
	Location   string `db:"location"`
	OwnerID    int64  `db:"owner_id"`
	CreatedAt  int64  `db:"created_at"`
}

type ProductStatus string

const (
	ProductAvailable ProductStatus = "available"
	ProductSold      ProductStatus = "sold"
	ProductBorrowed  ProductStatus = "borrowed"
)

type Product struct {
	ID        int64           `db:"id"`
	ShopID    int64           `db:"shop_id"`
	Name      string          `db:"name"`
	Quantity  int             `db:"quantity"`
	Price     decimal.Decimal `db:"price"`
	Size      string          `db:"size"`
	Color     string          `db:"color"`
	Material  string          `db:"material"`
	Status    ProductStatus   `db:"status"`
	CreatedAt int64           `db:"created_at"`
}

type PaymentType string

const (
	PaymentCash     PaymentType = "cash"
	PaymentCard     PaymentType = "card"
	PaymentBorrowed PaymentType = "borrowed"
	PaymentPending  PaymentType = "pending" // cleared, cash/card not chosen yet
)

// Sale is a single sold item. PaymentType is nil only for legacy rows.
type Sale struct {
	ID          int64           `db:"id"`
	ProductID   int64           `db:"product_id"`
	BuyerName   string          `db:"buyer_name"`
	Price       decimal.Decimal `db:"price"`
	PaymentType *PaymentType    `db:"payment_type"`
	IsCleared   bool            `db:"is_cleared"`
	CreatedAt   int64           `db:"created_at"`
}

// SaleView is a Sale joined with its product, as read by reports.
type SaleView struct {
	Sale
	ProductName string `db:"product_name"`
	ShopID      int64  `db:"shop_id"`
}

// Debt is the outstanding balance of one borrowed sale.
type Debt struct {
	ID          int64           `db:"id"`
	SaleID      int64           `db:"sale_id"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	PaidAmount  decimal.Decimal `db:"paid_amount"`
	IsSettled   bool            `db:"is_settled"`
	Version     int64           `db:"version"`
	CreatedAt   int64           `db:"created_at"`
}

func (d *Debt) Remaining() decimal.Decimal {
	return d.TotalAmount.Sub(d.PaidAmount)
}

// DebtView is an open Debt with buyer and product for the uncleared list.
type DebtView struct {
	Debt
	BuyerName   string `db:"buyer_name"`
	ProductName string `db:"product_name"`
}

// Payment is a bot-access subscription payment, unrelated to shop revenue.
type Payment struct {
	ID            int64           `db:"id"`
	UserID        int64           `db:"user_id"`
	Amount        decimal.Decimal `db:"amount"`
	PlanType      string          `db:"plan_type"`
	Status        string          `db:"status"`
	Method        string          `db:"method"`
	TransactionID string          `db:"transaction_id"`
	CreatedAt     int64           `db:"created_at"`
	ExpiresAt     int64           `db:"expires_at"`
}

func (p *Payment) Active(now time.Time) bool {
	return p.ExpiresAt > now.Unix()
}

// ExpiringPayment pairs a subscription with the chat to remind.
type ExpiringPayment struct {
	Payment
	TelegramID int64 `db:"telegram_id"`
}

// Stats holds global row counts.
type Stats struct {
	Users    int `json:"users"`
	Shops    int `json:"shops"`
	Products int `json:"products"`
	Sales    int `json:"sales"`
}
