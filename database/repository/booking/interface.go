package bookingRepo

import (
	"context"
	"errors"

	"frontdesk/database"
	"frontdesk/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrSlotTaken is returned when the unique (tenant, date, time) constraint
// rejects a second confirmed booking for the same slot.
var ErrSlotTaken = errors.New("slot already booked")

// ErrNotFound is returned when no booking matches the tenant-scoped lookup.
var ErrNotFound = errors.New("booking not found")

type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, tenantID, bookingID string) (*models.Booking, error)
	// GetByDateRange returns the tenant's non-cancelled bookings whose date
	// falls in [fromDate, toDate] ("2006-01-02" strings, inclusive).
	GetByDateRange(ctx context.Context, tenantID, fromDate, toDate string) ([]models.Booking, error)
	// Cancel flips the booking status to cancelled. The bool reports whether
	// a row was actually updated; cancelling a missing or already-cancelled
	// booking is not an error.
	Cancel(ctx context.Context, tenantID, bookingID string) (bool, error)
	EnsureIndexes() error
}

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a MongoDB-backed BookingRepository.
func NewMongoBookingRepo() BookingRepository {
	return &mongoBookingRepo{coll: database.DB().Collection("bookings")}
}
