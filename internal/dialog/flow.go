package dialog

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"quicksell-bot/internal/models"
)

var ErrNoStep = errors.New("no input expected in this state")

// InputError is a rejected answer. The session stays on the same step and
// Reason is shown to the user.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string { return e.Reason }

func invalid(reason string) error { return &InputError{Reason: reason} }

// Step is one question of a dialog. Apply validates the answer and stores it
// in the draft. A step whose Next is StateIdle is terminal: the caller
// persists the draft and resets the session.
type Step struct {
	Prompt string
	Apply  func(d *models.Draft, input string) error
	Next   models.State
}

var steps = map[models.State]Step{
	// onboarding
	models.StateAwaitingName: {
		Prompt: "👋 Welcome! What is your name?",
		Apply:  text("Name can't be empty.", func(d *models.Draft, v string) { d.Name = v }),
		Next:   models.StateAwaitingLocation,
	},
	models.StateAwaitingLocation: {
		Prompt: "📍 Where is your shop located?",
		Apply:  text("Location can't be empty.", func(d *models.Draft, v string) { d.Location = v }),
		Next:   models.StateAwaitingShopNumber,
	},
	models.StateAwaitingShopNumber: {
		Prompt: "🏪 What is your shop number?",
		Apply:  positiveInt("Shop number must be a positive whole number.", func(d *models.Draft, n int) { d.ShopNumber = n }),
	},

	// extra shop
	models.StateAwaitingNewShopLocation: {
		Prompt: "📍 Where is the new shop located?",
		Apply:  text("Location can't be empty.", func(d *models.Draft, v string) { d.Location = v }),
		Next:   models.StateAwaitingNewShopNumber,
	},
	models.StateAwaitingNewShopNumber: {
		Prompt: "🏪 What is the new shop number?",
		Apply:  positiveInt("Shop number must be a positive whole number.", func(d *models.Draft, n int) { d.ShopNumber = n }),
	},

	// product entry
	models.StateAwaitingShopSelection: {
		Prompt: "🏪 Which shop is this product for?",
		Apply:  selectShop,
		Next:   models.StateAwaitingProductName,
	},
	models.StateAwaitingProductName: {
		Prompt: "📦 Product name?",
		Apply:  text("Product name can't be empty.", func(d *models.Draft, v string) { d.ProductName = v }),
		Next:   models.StateAwaitingQuantity,
	},
	models.StateAwaitingQuantity: {
		Prompt: "🔢 Quantity?",
		Apply:  positiveInt("Quantity must be a positive whole number.", func(d *models.Draft, n int) { d.Quantity = n }),
		Next:   models.StateAwaitingPrice,
	},
	models.StateAwaitingPrice: {
		Prompt: "💵 Price?",
		Apply:  amount("Price must be a positive number, e.g. 150 or 149.90.", func(d *models.Draft, v decimal.Decimal) { d.Price = v }),
		Next:   models.StateAwaitingSize,
	},
	models.StateAwaitingSize: {
		Prompt: "📏 Size?",
		Apply:  text("Size can't be empty.", func(d *models.Draft, v string) { d.Size = v }),
		Next:   models.StateAwaitingColor,
	},
	models.StateAwaitingColor: {
		Prompt: "🎨 Color?",
		Apply:  text("Color can't be empty.", func(d *models.Draft, v string) { d.Color = v }),
		Next:   models.StateAwaitingMaterial,
	},
	models.StateAwaitingMaterial: {
		Prompt: "🧵 Material?",
		Apply:  text("Material can't be empty.", func(d *models.Draft, v string) { d.Material = v }),
	},

	// sale entry
	models.StateAwaitingBuyer: {
		Prompt: "👤 Buyer name?",
		Apply:  text("Buyer name can't be empty.", func(d *models.Draft, v string) { d.Buyer = v }),
		Next:   models.StateAwaitingPaymentChoice,
	},
	models.StateAwaitingPaymentChoice: {
		Prompt: "💳 Was it paid?",
		Apply: func(*models.Draft, string) error {
			return invalid("Please choose an option with the buttons above.")
		},
		Next: models.StateAwaitingPaymentChoice,
	},

	models.StateAwaitingPaymentAmount: {
		Prompt: "💵 How much was paid?",
		Apply:  amount("Amount must be a positive number.", func(d *models.Draft, v decimal.Decimal) { d.Amount = v }),
	},
	models.StateAwaitingNewPrice: {
		Prompt: "💵 New price?",
		Apply:  amount("Price must be a positive number, e.g. 150 or 149.90.", func(d *models.Draft, v decimal.Decimal) { d.Price = v }),
	},
	models.StateAwaitingSupportMessage: {
		Prompt: "✉️ Type your message for the admin.",
		Apply:  text("Message can't be empty.", func(d *models.Draft, v string) { d.Message = v }),
	},
}

// Prompt is the question asked in state st.
func Prompt(st models.State) string {
	return steps[st].Prompt
}

// Begin moves the session to st with a fresh draft and returns the first
// prompt.
func Begin(s *models.Session, st models.State, d models.Draft) string {
	s.State = st
	s.Draft = d
	return Prompt(st)
}

// Advance feeds input to the current step. On an *InputError the session is
// left untouched. finished reports that the terminal step accepted its
// input; the state is kept so the caller knows which dialog completed.
func Advance(s *models.Session, input string) (finished bool, err error) {
	step, ok := steps[s.State]
	if !ok {
		return false, ErrNoStep
	}

	d := s.Draft
	if err := step.Apply(&d, strings.TrimSpace(input)); err != nil {
		return false, err
	}
	s.Draft = d
	if step.Next == models.StateIdle {
		return true, nil
	}
	s.State = step.Next
	return false, nil
}

func text(reason string, set func(*models.Draft, string)) func(*models.Draft, string) error {
	return func(d *models.Draft, v string) error {
		if v == "" {
			return invalid(reason)
		}
		set(d, v)
		return nil
	}
}

func positiveInt(reason string, set func(*models.Draft, int)) func(*models.Draft, string) error {
	return func(d *models.Draft, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return invalid(reason)
		}
		set(d, n)
		return nil
	}
}

func amount(reason string, set func(*models.Draft, decimal.Decimal)) func(*models.Draft, string) error {
	return func(d *models.Draft, v string) error {
		a, err := ParseAmount(v)
		if err != nil {
			return invalid(reason)
		}
		set(d, a)
		return nil
	}
}

// ParseAmount reads a positive money amount with at most two decimals.
// A decimal comma is accepted.
func ParseAmount(v string) (decimal.Decimal, error) {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
	a, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, err
	}
	if !a.IsPositive() {
		return decimal.Zero, errors.New("amount must be positive")
	}
	if !a.Equal(a.Truncate(2)) {
		return decimal.Zero, errors.New("at most two decimals")
	}
	return a, nil
}

func selectShop(d *models.Draft, v string) error {
	id, ok := d.ShopChoices[v]
	if !ok {
		return invalid("Please pick a shop from the keyboard.")
	}
	d.ShopID = id
	return nil
}
