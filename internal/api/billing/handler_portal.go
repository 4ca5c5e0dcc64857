package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	portalsession "github.com/stripe/stripe-go/v75/billingportal/session"

	"github.com/Nikhil-O1O5/stripe-project/config"
)

// CreateBillingPortal hands the client a Stripe-hosted portal URL where
// the user manages the subscription Stripe-side; resulting changes come
// back through the webhooks.
func (h *Handler) CreateBillingPortal(c *gin.Context) {
	stripe.Key = config.STRIPE_SECRET_KEY
	if stripe.Key == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe key not configured"})
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if user.StripeCustomerID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No Stripe customer ID on user"})
		return
	}

	portal, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(user.StripeCustomerID),
		ReturnURL: stripe.String(config.APP_URL + "/billing"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create billing portal session", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": portal.URL})
}
