package stripeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Nikhil-O1O5/stripe-project/internal/domain/billing"
)

func TestIsActive(t *testing.T) {
	assert.True(t, IsActive("active"))
	assert.True(t, IsActive(" active "))

	for _, status := range []string{"", "trialing", "past_due", "canceled", "incomplete", "unpaid"} {
		assert.False(t, IsActive(status), status)
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":                   "none",
		"active":             "active",
		"trialing":           "trialing",
		"past_due":           "past_due",
		"unpaid":             "past_due",
		"canceled":           "canceled",
		"incomplete_expired": "canceled",
		"incomplete":         "incomplete",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "status %q", in)
	}
}

func TestPlanIntervalFromSubscription_Empty(t *testing.T) {
	assert.Equal(t, billing.PlanInterval(""), PlanIntervalFromSubscription(nil))
}
