package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nikhil-O1O5/stripe-project/internal/domain/access"
	"github.com/Nikhil-O1O5/stripe-project/internal/infra/stripeutil"
	"github.com/Nikhil-O1O5/stripe-project/internal/store"
)

type Handler struct {
	Store    store.Store
	Resolver *access.Resolver
}

func NewHandler(s store.Store) *Handler {
	return &Handler{Store: s, Resolver: access.NewResolver(s)}
}

func (h *Handler) GetCurrentUser(c *gin.Context) {
	clerkID := c.GetString("clerk_id")
	if clerkID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.Store.GetUserByClerkID(c.Request.Context(), clerkID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	resp := MeResponse{
		User: UserDTO{
			ID:      user.ID.String(),
			Name:    user.Name,
			Email:   user.Email,
			ClerkID: user.ClerkID,
		},
		Billing: BillingDTO{
			StripeCustomerID: user.StripeCustomerID,
		},
	}

	if user.CurrentSubscriptionID != nil {
		sub, err := h.Store.GetSubscriptionByID(c.Request.Context(), *user.CurrentSubscriptionID)
		if err == nil {
			resp.Billing.Subscription = &SubscriptionDTO{
				Status:             stripeutil.Normalize(sub.Status),
				Interval:           string(sub.PlanInterval),
				CurrentPeriodStart: sub.CurrentPeriodStart,
				CurrentPeriodEnd:   sub.CurrentPeriodEnd,
				CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}

// GetCourseAccess answers whether the caller may open the course. The
// decision comes from current stored state on every request; nothing is
// cached here.
func (h *Handler) GetCourseAccess(c *gin.Context) {
	clerkID := c.GetString("clerk_id")
	if clerkID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	courseID := c.Param("id")
	if courseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing course id"})
		return
	}

	user, err := h.Store.GetUserByClerkID(c.Request.Context(), clerkID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	decision, err := h.Resolver.Resolve(c.Request.Context(), user.ID, courseID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve access"})
		return
	}

	c.JSON(http.StatusOK, AccessResponse{
		HasAccess:  decision.Granted,
		AccessType: string(decision.Via),
	})
}
