package tenantRepo

import (
	"context"
	"errors"

	"frontdesk/database"
	"frontdesk/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no tenant matches the lookup.
var ErrNotFound = errors.New("tenant not found")

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, tenantID string) (*models.Tenant, error)
	// SetProvider switches the tenant's active scheduling backend.
	SetProvider(ctx context.Context, tenantID, provider string) error
}

type mongoTenantRepo struct {
	coll *mongo.Collection
}

// NewMongoTenantRepo constructs a MongoDB-backed TenantRepository.
func NewMongoTenantRepo() TenantRepository {
	return &mongoTenantRepo{coll: database.DB().Collection("tenants")}
}
