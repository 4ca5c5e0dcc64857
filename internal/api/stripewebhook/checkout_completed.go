package stripewebhooks

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v75"

	"github.com/Nikhil-O1O5/stripe-project/internal/domain/billing"
)

// handleCheckoutSessionCompleted records a one-off course purchase. The
// course id travels in the session metadata set when the checkout session
// was created; the customer id identifies the buyer.
func (h *Handler) handleCheckoutSessionCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	courseID := ""
	if session.Metadata != nil {
		courseID = session.Metadata["courseId"]
	}

	// Subscription checkouts carry no course id; the subscription events
	// deliver the state we care about, so acknowledge and move on.
	if courseID == "" && session.Mode == stripe.CheckoutSessionModeSubscription {
		return nil
	}

	customerID := ""
	if session.Customer != nil {
		customerID = session.Customer.ID
	}
	if courseID == "" || customerID == "" {
		return fmt.Errorf("session %s: %w", session.ID, ErrMissingMetadata)
	}

	user, err := h.Store.GetUserByStripeCustomerID(ctx, customerID)
	if err != nil {
		return fmt.Errorf("user not found for customer_id=%s: %w", customerID, err)
	}

	return h.Store.RecordPurchase(ctx, &billing.Purchase{
		UserID:           user.ID,
		CourseID:         courseID,
		Amount:           session.AmountTotal,
		StripeCheckoutID: session.ID,
	})
}
