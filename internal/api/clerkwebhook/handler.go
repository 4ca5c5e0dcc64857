package clerkwebhook

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/customer"
	svix "github.com/svix/svix-webhooks/go"

	"github.com/Nikhil-O1O5/stripe-project/internal/domain/users"
	"github.com/Nikhil-O1O5/stripe-project/internal/store"
)

type clerkEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
	} `json:"data"`
}

type Handler struct {
	Store  store.Store
	Secret string

	// Seam for tests; defaults to the live Stripe call.
	newCustomer func(params *stripe.CustomerParams) (*stripe.Customer, error)
}

func NewHandler(s store.Store, secret string) *Handler {
	return &Handler{
		Store:       s,
		Secret:      secret,
		newCustomer: customer.New,
	}
}

// ClerkWebhook handles identity-provider notifications. A user.created
// event mints the Stripe customer and the User row in one pass; the
// customer id is assigned here once and never changes afterwards.
func (h *Handler) ClerkWebhook(c *gin.Context) {
	if h.Secret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "CLERK_WEBHOOK_SECRET not configured"})
		return
	}

	if c.GetHeader("svix-id") == "" || c.GetHeader("svix-timestamp") == "" || c.GetHeader("svix-signature") == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing svix headers"})
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	wh, err := svix.NewWebhook(h.Secret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid webhook secret"})
		return
	}
	if err := wh.Verify(payload, c.Request.Header); err != nil {
		log.Println("Clerk signature verification failed:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	var evt clerkEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse event"})
		return
	}

	if evt.Type == "user.created" {
		if err := h.handleUserCreated(c, evt); err != nil {
			log.Printf("Error handling user.created for clerk_id=%s: %v", evt.Data.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating user"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}

func (h *Handler) handleUserCreated(c *gin.Context, evt clerkEvent) error {
	name := strings.TrimSpace(evt.Data.FirstName + " " + evt.Data.LastName)
	email := ""
	if len(evt.Data.EmailAddresses) > 0 {
		email = evt.Data.EmailAddresses[0].EmailAddress
	}

	cus, err := h.newCustomer(&stripe.CustomerParams{
		Email:    stripe.String(email),
		Name:     stripe.String(name),
		Metadata: map[string]string{"clerkId": evt.Data.ID},
	})
	if err != nil {
		return err
	}

	return h.Store.CreateUser(c.Request.Context(), &users.User{
		Name:             name,
		Email:            email,
		ClerkID:          evt.Data.ID,
		StripeCustomerID: cus.ID,
	})
}
