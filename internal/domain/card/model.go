package card

import (
	"fmt"
	"time"

	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
)

// CreditCard is the card handed to the gateway boundary. The raw number only
// lives long enough to be tokenized; what persists is the masked display
// number and card type.
type CreditCard struct {
	ID string `db:"id" json:"id"`

	// Number is the raw PAN, set only on the way to the gateway. Never stored.
	Number string `db:"-" json:"-"`

	CVV string `db:"-" json:"-"`

	DisplayNumber   string `db:"display_number" json:"display_number"`
	CardType        string `db:"card_type" json:"card_type"`
	ExpirationMonth int    `db:"expiration_month" json:"expiration_month"`
	ExpirationYear  int    `db:"expiration_year" json:"expiration_year"`

	types.BaseModel
}

// Validate checks the fields needed before a gateway store/update call.
func (c *CreditCard) Validate() error {
	details := make(map[string]any)
	if c.Number == "" && c.DisplayNumber == "" {
		details["number"] = "card number is required"
	}
	if c.ExpirationMonth < 1 || c.ExpirationMonth > 12 {
		details["expiration_month"] = "expiration month must be between 1 and 12"
	}
	if c.ExpirationYear <= 0 {
		details["expiration_year"] = "expiration year is required"
	}
	if len(details) > 0 {
		return ierr.NewError("invalid credit card").
			WithHint("Please check the card details").
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsExpired reports whether the card has expired as of the given date.
func (c *CreditCard) IsExpired(on time.Time) bool {
	endOfMonth := time.Date(c.ExpirationYear, time.Month(c.ExpirationMonth), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, 0)
	return !types.ToDate(on).Before(endOfMonth)
}

// Mask fills DisplayNumber from the raw number, keeping the last four digits.
func (c *CreditCard) Mask() {
	if c.Number == "" {
		return
	}
	last := c.Number
	if len(last) > 4 {
		last = last[len(last)-4:]
	}
	c.DisplayNumber = fmt.Sprintf("XXXX-XXXX-XXXX-%s", last)
}
