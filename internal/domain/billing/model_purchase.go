package billing

import (
	"time"

	"github.com/google/uuid"
)

// Purchase is an append-only record of a completed one-off checkout.
// Repurchasing the same course is allowed; the unique index on the
// checkout id only guards against duplicate webhook delivery.
type Purchase struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index:idx_purchases_user_course"`
	CourseID         string    `gorm:"not null;index:idx_purchases_user_course"`
	Amount           int64
	StripeCheckoutID string `gorm:"column:stripe_checkout_id;not null;uniqueIndex:idx_purchases_checkout_id"`

	CreatedAt time.Time
}
