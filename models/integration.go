package models

import "time"

// Integration credential statuses. A credential moves active -> expired
// only when a token refresh fails; re-auth happens out of band.
const (
	IntegrationStatusActive  = "active"
	IntegrationStatusExpired = "expired"
)

// Integration stores one tenant's OAuth credential set for an external
// calendar provider.
type Integration struct {
	ID           string    `bson:"id" json:"id"`
	TenantID     string    `bson:"tenant_id" json:"tenantId"`
	Provider     string    `bson:"provider" json:"provider"`
	AccessToken  string    `bson:"access_token" json:"-"`
	RefreshToken string    `bson:"refresh_token" json:"-"`
	ExpiresAt    time.Time `bson:"expires_at" json:"expiresAt"`
	Status       string    `bson:"status" json:"status"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}
