package stripewebhooks

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/stripe/stripe-go/v75"

	"github.com/Nikhil-O1O5/stripe-project/internal/store"
)

// handleSubscriptionDeleted drops the stored subscription and clears the
// owner's current-subscription pointer. An unknown id means the deletion
// was already handled (or the subscription never synced); acknowledged as
// a no-op so Stripe stops redelivering.
func (h *Handler) handleSubscriptionDeleted(ctx context.Context, sub *stripe.Subscription) error {
	if sub.ID == "" {
		return fmt.Errorf("deleted event: %w", errMalformedSubscription)
	}

	err := h.Store.CancelSubscription(ctx, sub.ID)
	if errors.Is(err, store.ErrSubscriptionNotFound) {
		log.Printf("Subscription %s already gone, nothing to cancel", sub.ID)
		return nil
	}
	if errors.Is(err, store.ErrInvalidState) {
		// Integrity violation: a stored subscription nobody owns. Never
		// expected; surfaced loudly instead of silently repaired.
		log.Printf("INTEGRITY: %v", err)
	}
	return err
}
