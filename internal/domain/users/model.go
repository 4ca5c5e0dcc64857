package users

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name  string
	Email string

	ClerkID          string `gorm:"column:clerk_id;not null;uniqueIndex:idx_users_clerk_id"`
	StripeCustomerID string `gorm:"column:stripe_customer_id;not null;uniqueIndex:idx_users_stripe_customer_id"`

	// Points at the single subscription the user is on right now. This
	// pointer is the authoritative owner link; the reverse lookup goes
	// through it, never through a second stored reference.
	CurrentSubscriptionID *uuid.UUID `gorm:"column:current_subscription_id;type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
