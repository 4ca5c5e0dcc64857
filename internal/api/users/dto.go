package users

import "time"

type MeResponse struct {
	User    UserDTO    `json:"user"`
	Billing BillingDTO `json:"billing"`
}

type UserDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	ClerkID string `json:"clerk_id"`
}

type BillingDTO struct {
	StripeCustomerID string           `json:"stripe_customer_id"`
	Subscription     *SubscriptionDTO `json:"subscription"`
}

type SubscriptionDTO struct {
	Status             string    `json:"status"`
	Interval           string    `json:"interval"`
	CurrentPeriodStart time.Time `json:"current_period_start"`
	CurrentPeriodEnd   time.Time `json:"current_period_end"`
	CancelAtPeriodEnd  bool      `json:"cancel_at_period_end"`
}

type AccessResponse struct {
	HasAccess  bool   `json:"has_access"`
	AccessType string `json:"access_type,omitempty"`
}
