package pendingRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"frontdesk/models"
)

func (r *mongoPendingRepo) Create(ctx context.Context, pending *models.PendingBooking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if pending.ID == "" {
		pending.ID = uuid.New().String()
	}
	if pending.Status == "" {
		pending.Status = models.PendingStatusPending
	}
	if pending.CreatedAt.IsZero() {
		pending.CreatedAt = time.Now().UTC()
	}

	_, err := r.coll.InsertOne(ctx, pending)
	return err
}

func (r *mongoPendingRepo) GetByID(ctx context.Context, tenantID, pendingID string) (*models.PendingBooking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": pendingID, "tenant_id": tenantID}
	var pending models.PendingBooking
	if err := r.coll.FindOne(ctx, filter).Decode(&pending); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pending, nil
}

func (r *mongoPendingRepo) ListByStatus(ctx context.Context, tenantID, status string) ([]models.PendingBooking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"tenant_id": tenantID, "status": status})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pendings []models.PendingBooking
	if err := cursor.All(ctx, &pendings); err != nil {
		return nil, err
	}
	return pendings, nil
}

func (r *mongoPendingRepo) ListStale(ctx context.Context, cutoff time.Time) ([]models.PendingBooking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"status":     models.PendingStatusPending,
		"created_at": bson.M{"$lt": cutoff},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pendings []models.PendingBooking
	if err := cursor.All(ctx, &pendings); err != nil {
		return nil, err
	}
	return pendings, nil
}

func (r *mongoPendingRepo) CloseOut(ctx context.Context, tenantID, pendingID, status, staffID, notes string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	set := bson.M{
		"status":       status,
		"confirmed_by": staffID,
		"confirmed_at": now,
	}
	if notes != "" {
		set["notes"] = notes
	}

	// Filtering on status=pending makes the close-out single-shot.
	filter := bson.M{"id": pendingID, "tenant_id": tenantID, "status": models.PendingStatusPending}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := r.GetByID(ctx, tenantID, pendingID); err != nil {
			return err
		}
		return ErrAlreadyClosed
	}
	return nil
}

func (r *mongoPendingRepo) ConfirmAndBook(ctx context.Context, tenantID, pendingID, staffID string, booking *models.Booking) error {
	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		if _, err := r.bookingColl.InsertOne(sc, booking); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrSlotTaken
			}
			return fmt.Errorf("insert booking failed: %w", err)
		}

		filter := bson.M{"id": pendingID, "tenant_id": tenantID, "status": models.PendingStatusPending}
		update := bson.M{"$set": bson.M{
			"status":       models.PendingStatusConfirmed,
			"confirmed_by": staffID,
			"confirmed_at": time.Now().UTC(),
		}}
		res, err := r.coll.UpdateOne(sc, filter, update)
		if err != nil {
			return fmt.Errorf("confirm pending booking failed: %w", err)
		}
		if res.MatchedCount == 0 {
			// The record either never existed or lost a close-out race.
			exists := bson.M{"id": pendingID, "tenant_id": tenantID}
			if err := r.coll.FindOne(sc, exists).Err(); err != nil {
				return ErrNotFound
			}
			return ErrAlreadyClosed
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return err
	}
	return nil
}
