package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// State is the step a chat is in. The zero value is idle.
type State string

const (
	StateIdle State = ""

	// onboarding
	StateAwaitingName       State = "awaiting_name"
	StateAwaitingLocation   State = "awaiting_location"
	StateAwaitingShopNumber State = "awaiting_shop_number"

	// extra shop
	StateAwaitingNewShopLocation State = "awaiting_new_shop_location"
	StateAwaitingNewShopNumber   State = "awaiting_new_shop_number"

	// product entry
	StateAwaitingShopSelection State = "awaiting_shop_selection"
	StateAwaitingProductName   State = "awaiting_product_name"
	StateAwaitingQuantity      State = "awaiting_quantity"
	StateAwaitingPrice         State = "awaiting_price"
	StateAwaitingSize          State = "awaiting_size"
	StateAwaitingColor         State = "awaiting_color"
	StateAwaitingMaterial      State = "awaiting_material"

	// sale entry
	StateAwaitingBuyer         State = "awaiting_buyer"
	StateAwaitingPaymentChoice State = "awaiting_payment_choice"

	// debts
	StateAwaitingPaymentAmount State = "awaiting_payment_amount"

	StateAwaitingNewPrice       State = "awaiting_new_price"
	StateAwaitingSupportMessage State = "awaiting_support_message"
)

// Draft accumulates the fields collected by a dialog.
type Draft struct {
	Name       string `json:"name,omitempty"`
	Location   string `json:"location,omitempty"`
	ShopNumber int    `json:"shop_number,omitempty"`

	ShopID      int64            `json:"shop_id,omitempty"`
	ShopChoices map[string]int64 `json:"shop_choices,omitempty"`

	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
	Material    string          `json:"material,omitempty"`

	ProductID int64  `json:"product_id,omitempty"`
	Buyer     string `json:"buyer,omitempty"`

	DebtID int64           `json:"debt_id,omitempty"`
	Amount decimal.Decimal `json:"amount"`

	Message string `json:"message,omitempty"`
}

// Session is the conversation state of one chat.
type Session struct {
	State     State     `json:"state"`
	Draft     Draft     `json:"draft"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Session) Idle() bool { return s.State == StateIdle }

// Reset returns the session to idle and drops collected fields.
func (s *Session) Reset() {
	s.State = StateIdle
	s.Draft = Draft{}
}
