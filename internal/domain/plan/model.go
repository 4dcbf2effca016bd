package plan

import (
	"github.com/billforge/billforge/internal/types"
)

// Plan is an immutable rate/feature bundle a subscription can be on. Plans are
// looked up by their unique key; the plan with a zero rate doubles as the
// fallback a subscription is downgraded to on expiration.
type Plan struct {
	ID string `db:"id" json:"id"`

	// Key is the unique, human-assigned identifier, e.g. "basic" or "premium".
	Key string `db:"key" json:"key"`

	Name string `db:"name" json:"name"`

	// RateCents is the monthly rate in integer cents.
	RateCents types.Money `db:"rate_cents" json:"rate_cents"`

	// FeatureSetID references the feature bundle unlocked by this plan. The
	// billing engine treats it as opaque.
	FeatureSetID string `db:"feature_set_id" json:"feature_set_id"`

	types.BaseModel
}

// Rate returns the plan's full monthly rate.
func (p *Plan) Rate() types.Money {
	return p.RateCents
}

// IsFree reports whether the plan carries no charge.
func (p *Plan) IsFree() bool {
	return p.RateCents.IsZero()
}

// DailyRate is the plan rate spread over the 30-day billing month, rounded to
// the nearest cent.
func (p *Plan) DailyRate() types.Money {
	return p.RateCents.DivInt(types.DaysPerBillingMonth)
}
