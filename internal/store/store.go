package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Nikhil-O1O5/stripe-project/internal/domain/billing"
	"github.com/Nikhil-O1O5/stripe-project/internal/domain/users"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrPurchaseNotFound     = errors.New("purchase not found")

	// ErrInvalidState signals a data-integrity violation, e.g. a stored
	// subscription that no user points at. Never expected in normal
	// operation and never silently repaired.
	ErrInvalidState = errors.New("invalid subscription state")
)

// UpsertSubscriptionParams carries the full provider snapshot. Every field
// is present on every delivery, so the upsert is a full replace.
type UpsertSubscriptionParams struct {
	StripeSubscriptionID string
	StripeCustomerID     string
	Status               string
	PlanInterval         billing.PlanInterval
	CurrentPeriodStart   time.Time
	CurrentPeriodEnd     time.Time
	CancelAtPeriodEnd    bool
}

// Store is the persistence boundary for the three billing entities. Each
// method is a single logical operation; mutations are atomic per entity.
type Store interface {
	// CreateUser inserts u unless a user with the same clerk id already
	// exists, in which case the existing row is loaded into u untouched.
	CreateUser(ctx context.Context, u *users.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*users.User, error)
	GetUserByClerkID(ctx context.Context, clerkID string) (*users.User, error)
	GetUserByStripeCustomerID(ctx context.Context, customerID string) (*users.User, error)

	GetSubscriptionByID(ctx context.Context, id uuid.UUID) (*billing.Subscription, error)
	GetSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string) (*billing.Subscription, error)

	// UpsertSubscription replaces the stored subscription keyed by the
	// provider subscription id, or creates it and links it to the user
	// identified by the provider customer id. Returns ErrUserNotFound on
	// the create path when no such user exists.
	UpsertSubscription(ctx context.Context, params UpsertSubscriptionParams) error

	// CancelSubscription clears the owning user's current-subscription
	// pointer and deletes the subscription row. Returns
	// ErrSubscriptionNotFound when the id is unknown and ErrInvalidState
	// when an existing subscription has no owner.
	CancelSubscription(ctx context.Context, stripeSubscriptionID string) error

	// RecordPurchase inserts p. A redelivered checkout id is a no-op
	// success, not an error.
	RecordPurchase(ctx context.Context, p *billing.Purchase) error
	FindPurchase(ctx context.Context, userID uuid.UUID, courseID string) (*billing.Purchase, error)
}
