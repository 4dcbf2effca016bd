package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeSubscriptionState(t *testing.T) {
	today := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	past := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	future := time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		paidThrough *time.Time
		expireOn    *time.Time
		free        bool
		want        SubscriptionState
	}{
		{"paid into the future", &future, nil, false, SubscriptionStateActive},
		{"paid through today", &today, nil, false, SubscriptionStateActive},
		{"never charged", nil, nil, false, SubscriptionStateActive},
		{"free plan overdue", &past, nil, true, SubscriptionStateActive},
		{"overdue without flag", &past, nil, false, SubscriptionStateGrace},
		{"overdue pending expiration", &past, &future, false, SubscriptionStateGrace},
		{"expire date today", &past, &today, false, SubscriptionStateExpired},
		{"expire date passed", &past, &past, false, SubscriptionStateExpired},
		{"expire date overrides free", &past, &past, true, SubscriptionStateExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeSubscriptionState(tt.paidThrough, tt.expireOn, tt.free, today)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProrationBasisValidate(t *testing.T) {
	assert.True(t, ProrationBasisPlanRate.Validate())
	assert.True(t, ProrationBasisEffectiveRate.Validate())
	assert.False(t, ProrationBasis("calendar").Validate())
	assert.False(t, ProrationBasis("").Validate())
}
