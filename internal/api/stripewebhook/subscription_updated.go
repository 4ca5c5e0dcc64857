package stripewebhooks

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v75"

	"github.com/Nikhil-O1O5/stripe-project/internal/infra/stripeutil"
	"github.com/Nikhil-O1O5/stripe-project/internal/store"
)

// handleSubscriptionUpsert projects a created/updated event into the
// stored subscription. Every delivery carries the full snapshot, so the
// store does a full replace; non-active statuses are stored as-is and the
// entitlement resolver interprets them later.
func (h *Handler) handleSubscriptionUpsert(ctx context.Context, sub *stripe.Subscription) error {
	interval := stripeutil.PlanIntervalFromSubscription(sub)
	if sub.ID == "" || sub.Customer == nil || sub.Customer.ID == "" || interval == "" {
		return fmt.Errorf("subscription %q: %w", sub.ID, errMalformedSubscription)
	}

	return h.Store.UpsertSubscription(ctx, store.UpsertSubscriptionParams{
		StripeSubscriptionID: sub.ID,
		StripeCustomerID:     sub.Customer.ID,
		Status:               string(sub.Status),
		PlanInterval:         interval,
		CurrentPeriodStart:   time.Unix(sub.CurrentPeriodStart, 0),
		CurrentPeriodEnd:     time.Unix(sub.CurrentPeriodEnd, 0),
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
	})
}
