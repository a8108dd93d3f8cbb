package tenantRepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"frontdesk/models"
)

func (r *mongoTenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if tenant.ID == "" {
		tenant.ID = uuid.New().String()
	}
	if tenant.Provider == "" {
		tenant.Provider = models.ProviderBuiltin
	}
	_, err := r.coll.InsertOne(ctx, tenant)
	return err
}

func (r *mongoTenantRepo) GetByID(ctx context.Context, tenantID string) (*models.Tenant, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var tenant models.Tenant
	if err := r.coll.FindOne(ctx, bson.M{"id": tenantID}).Decode(&tenant); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tenant, nil
}

func (r *mongoTenantRepo) SetProvider(ctx context.Context, tenantID, provider string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": tenantID},
		bson.M{"$set": bson.M{"provider": provider}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
