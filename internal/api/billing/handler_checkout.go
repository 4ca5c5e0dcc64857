package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"

	"github.com/Nikhil-O1O5/stripe-project/config"
	"github.com/Nikhil-O1O5/stripe-project/internal/domain/users"
	"github.com/Nikhil-O1O5/stripe-project/internal/store"
)

type Handler struct {
	Store store.Store
}

func NewHandler(s store.Store) *Handler {
	return &Handler{Store: s}
}

// CreateCheckoutSession starts a one-off course purchase. The course id
// rides on the session metadata so the webhook can attribute the purchase
// when checkout.session.completed comes back.
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var body struct {
		CourseID string `json:"course_id"`
		PriceID  string `json:"price_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.CourseID == "" || body.PriceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid course_id/price_id"})
		return
	}

	stripe.Key = config.STRIPE_SECRET_KEY
	if stripe.Key == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe key not configured"})
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(config.APP_URL + "/courses/" + body.CourseID),
		CancelURL:  stripe.String(config.APP_URL + "/courses/" + body.CourseID + "?canceled=1"),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		Customer:   stripe.String(user.StripeCustomerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(body.PriceID), Quantity: stripe.Int64(1)},
		},
		Metadata: map[string]string{"courseId": body.CourseID},
	}

	s, err := checkoutsession.New(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": s.URL})
}

// CreateSubscriptionSession starts a recurring-plan checkout; the state
// lands later through the customer.subscription.* webhooks.
func (h *Handler) CreateSubscriptionSession(c *gin.Context) {
	var body struct {
		PriceID string `json:"price_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.PriceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid price_id"})
		return
	}

	stripe.Key = config.STRIPE_SECRET_KEY
	if stripe.Key == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe key not configured"})
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(config.APP_URL + "/billing"),
		CancelURL:  stripe.String(config.APP_URL + "/billing?canceled=1"),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:   stripe.String(user.StripeCustomerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(body.PriceID), Quantity: stripe.Int64(1)},
		},
	}

	s, err := checkoutsession.New(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": s.URL})
}

func (h *Handler) currentUser(c *gin.Context) (*users.User, bool) {
	clerkID := c.GetString("clerk_id")
	if clerkID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return nil, false
	}

	user, err := h.Store.GetUserByClerkID(c.Request.Context(), clerkID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return nil, false
	}
	return user, true
}
