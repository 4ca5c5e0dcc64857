package billing

import (
	"time"

	"github.com/google/uuid"
)

type PlanInterval string

const (
	IntervalMonth PlanInterval = "month"
	IntervalYear  PlanInterval = "year"
)

// Subscription mirrors the provider's subscription object. Status is an
// opaque passthrough of whatever Stripe reports (active, past_due,
// canceled, incomplete, ...); entitlement decisions interpret it later.
type Subscription struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StripeSubscriptionID string    `gorm:"column:stripe_subscription_id;not null;uniqueIndex:idx_subscriptions_stripe_id"`
	Status               string
	PlanInterval         PlanInterval `gorm:"type:varchar(10)"`
	CurrentPeriodStart   time.Time
	CurrentPeriodEnd     time.Time
	CancelAtPeriodEnd    bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
