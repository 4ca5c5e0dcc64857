package stripewebhooks

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"

	"github.com/Nikhil-O1O5/stripe-project/internal/store"
)

const maxBodyBytes = 65536

// ErrMissingMetadata marks a permanently malformed checkout event (no
// course id or customer id). Not retryable; mapped to 400 so the provider
// stops resending it.
var ErrMissingMetadata = errors.New("checkout event missing courseId or customer id")

var errMalformedSubscription = errors.New("subscription event missing id, customer or priced item")

type Handler struct {
	Store  store.Store
	Secret string
}

func NewHandler(s store.Store, secret string) *Handler {
	return &Handler{Store: s, Secret: secret}
}

// StripeWebhook verifies the signature before anything in the body is
// trusted, then routes by event type. Handler failures are caught here,
// logged with the event type, and mapped to a status the provider's retry
// policy understands: 400 never retries, 500 does.
func (h *Handler) StripeWebhook(c *gin.Context) {
	if h.Secret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "STRIPE_WEBHOOK_SECRET not configured"})
		return
	}

	payload, err := readStripeBody(c, maxBodyBytes)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		h.Secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		log.Println("Stripe signature verification failed:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse session"})
			return
		}
		if err := h.handleCheckoutSessionCompleted(c.Request.Context(), &session); err != nil {
			h.fail(c, event, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return

	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse subscription"})
			return
		}
		if err := h.handleSubscriptionUpsert(c.Request.Context(), &sub); err != nil {
			h.fail(c, event, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse subscription"})
			return
		}
		if err := h.handleSubscriptionDeleted(c.Request.Context(), &sub); err != nil {
			h.fail(c, event, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return

	default:
		// Acknowledge unknown events so Stripe never retries types we
		// intentionally ignore.
		log.Printf("Ignoring event type %s", event.Type)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
}

func (h *Handler) fail(c *gin.Context, event stripe.Event, err error) {
	log.Printf("Error processing webhook (%s, id=%s): %v", event.Type, event.ID, err)

	switch {
	case errors.Is(err, ErrMissingMetadata), errors.Is(err, errMalformedSubscription):
		// Permanently malformed; retrying cannot help.
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrInvalidState):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal state error"})
	default:
		// Retryable (e.g. the user-created event has not landed yet).
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
