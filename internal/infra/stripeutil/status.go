package stripeutil

import (
	"strings"

	"github.com/stripe/stripe-go/v75"

	"github.com/Nikhil-O1O5/stripe-project/internal/domain/billing"
)

// IsActive is the single entitlement interpretation of a stored
// subscription status. Grace statuses (past_due, trialing, ...) are kept
// on the row but never grant access.
func IsActive(status string) bool {
	return strings.TrimSpace(status) == string(stripe.SubscriptionStatusActive)
}

// Normalize collapses Stripe statuses into the smaller set shown to
// clients on the account surface. Entitlement never uses this.
func Normalize(status string) string {
	s := strings.TrimSpace(status)
	switch s {
	case "":
		return "none"
	case "active":
		return "active"
	case "trialing":
		return "trialing"
	case "past_due", "unpaid":
		return "past_due"
	case "canceled", "incomplete_expired":
		return "canceled"
	default:
		return s
	}
}

// PlanIntervalFromSubscription reads the recurring interval off the first
// subscription item. Empty when the payload has no priced item.
func PlanIntervalFromSubscription(sub *stripe.Subscription) billing.PlanInterval {
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		return ""
	}
	price := sub.Items.Data[0].Price
	if price == nil || price.Recurring == nil {
		return ""
	}
	return billing.PlanInterval(price.Recurring.Interval)
}
