package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Nikhil-O1O5/stripe-project/config"
	billingapi "github.com/Nikhil-O1O5/stripe-project/internal/api/billing"
	"github.com/Nikhil-O1O5/stripe-project/internal/api/clerkwebhook"
	stripewebhooks "github.com/Nikhil-O1O5/stripe-project/internal/api/stripewebhook"
	usersapi "github.com/Nikhil-O1O5/stripe-project/internal/api/users"
	"github.com/Nikhil-O1O5/stripe-project/internal/app/http/middleware"
	"github.com/Nikhil-O1O5/stripe-project/internal/store"
)

func RegisterRoutes(r *gin.Engine, s store.Store) {
	stripeWh := stripewebhooks.NewHandler(s, config.STRIPE_WEBHOOK_SECRET)
	clerkWh := clerkwebhook.NewHandler(s, config.CLERK_WEBHOOK_SECRET)
	usersH := usersapi.NewHandler(s)
	billingH := billingapi.NewHandler(s)

	// Webhooks take raw signed bodies; no middleware in front of them.
	r.POST("/webhook", stripeWh.StripeWebhook)
	r.POST("/clerk-webhook", clerkWh.ClerkWebhook)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.ClerkAuth())
	auth.GET("/me", usersH.GetCurrentUser)
	auth.GET("/courses/:id/access", usersH.GetCourseAccess)

	checkout := auth.Group("/")
	checkout.Use(middleware.SanitizeInput())
	checkout.POST("/create-checkout-session", billingH.CreateCheckoutSession)
	checkout.POST("/create-subscription-session", billingH.CreateSubscriptionSession)
	checkout.POST("/billing-portal", billingH.CreateBillingPortal)
}
