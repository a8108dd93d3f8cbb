package integrationRepo

import (
	"context"
	"errors"
	"time"

	"frontdesk/database"
	"frontdesk/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when the tenant has no credential for the provider.
var ErrNotFound = errors.New("integration not found")

type IntegrationRepository interface {
	Upsert(ctx context.Context, integration *models.Integration) error
	GetByTenantAndProvider(ctx context.Context, tenantID, provider string) (*models.Integration, error)
	// UpdateTokens stores a freshly refreshed credential and re-activates it.
	UpdateTokens(ctx context.Context, integrationID, accessToken, refreshToken string, expiresAt time.Time) error
	// MarkExpired flags the credential after a failed refresh. Re-auth is out of band.
	MarkExpired(ctx context.Context, integrationID string) error
	// ListExpiring returns active credentials whose expiry falls before the cutoff.
	ListExpiring(ctx context.Context, cutoff time.Time) ([]models.Integration, error)
	EnsureIndexes() error
}

type mongoIntegrationRepo struct {
	coll *mongo.Collection
}

// NewMongoIntegrationRepo constructs a MongoDB-backed IntegrationRepository.
func NewMongoIntegrationRepo() IntegrationRepository {
	return &mongoIntegrationRepo{coll: database.DB().Collection("integrations")}
}
