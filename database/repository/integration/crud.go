package integrationRepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"frontdesk/models"
)

func (r *mongoIntegrationRepo) Upsert(ctx context.Context, integration *models.Integration) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if integration.ID == "" {
		integration.ID = uuid.New().String()
	}
	if integration.Status == "" {
		integration.Status = models.IntegrationStatusActive
	}
	integration.UpdatedAt = time.Now().UTC()

	filter := bson.M{"tenant_id": integration.TenantID, "provider": integration.Provider}
	_, err := r.coll.ReplaceOne(ctx, filter, integration, options.Replace().SetUpsert(true))
	return err
}

func (r *mongoIntegrationRepo) GetByTenantAndProvider(ctx context.Context, tenantID, provider string) (*models.Integration, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"tenant_id": tenantID, "provider": provider}
	var integration models.Integration
	if err := r.coll.FindOne(ctx, filter).Decode(&integration); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &integration, nil
}

func (r *mongoIntegrationRepo) UpdateTokens(ctx context.Context, integrationID, accessToken, refreshToken string, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_at":    expiresAt,
		"status":        models.IntegrationStatusActive,
		"updated_at":    time.Now().UTC(),
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": integrationID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoIntegrationRepo) MarkExpired(ctx context.Context, integrationID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":     models.IntegrationStatusExpired,
		"updated_at": time.Now().UTC(),
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": integrationID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoIntegrationRepo) ListExpiring(ctx context.Context, cutoff time.Time) ([]models.Integration, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"status":     models.IntegrationStatusActive,
		"expires_at": bson.M{"$lt": cutoff},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var integrations []models.Integration
	if err := cursor.All(ctx, &integrations); err != nil {
		return nil, err
	}
	return integrations, nil
}
