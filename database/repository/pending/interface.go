package pendingRepo

import (
	"context"
	"errors"
	"time"

	"frontdesk/database"
	"frontdesk/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no pending booking matches the tenant-scoped
// lookup.
var ErrNotFound = errors.New("pending booking not found")

// ErrAlreadyClosed is returned when a close-out targets a record that is no
// longer pending. Transitions are one-directional and happen exactly once.
var ErrAlreadyClosed = errors.New("pending booking already closed")

// ErrSlotTaken is returned when the conversion's ledger insert collides with
// an existing confirmed booking for the same slot.
var ErrSlotTaken = errors.New("booking slot already taken")

type PendingBookingRepository interface {
	Create(ctx context.Context, pending *models.PendingBooking) error
	GetByID(ctx context.Context, tenantID, pendingID string) (*models.PendingBooking, error)
	ListByStatus(ctx context.Context, tenantID, status string) ([]models.PendingBooking, error)
	// ListStale returns pending records, across all tenants, created before
	// the cutoff. Used by the staff-reminder sweep.
	ListStale(ctx context.Context, cutoff time.Time) ([]models.PendingBooking, error)
	// CloseOut moves a pending record to confirmed or rejected, stamping the
	// closing staff member. Notes, when non-empty, replace the stored notes;
	// callers append to the existing content before passing them in.
	CloseOut(ctx context.Context, tenantID, pendingID, status, staffID, notes string) error
	// ConfirmAndBook inserts the ledger booking and confirms the pending
	// record in a single transaction so no partial state is visible.
	ConfirmAndBook(ctx context.Context, tenantID, pendingID, staffID string, booking *models.Booking) error
	EnsureIndexes() error
}

type mongoPendingRepo struct {
	coll        *mongo.Collection
	bookingColl *mongo.Collection
}

// NewMongoPendingRepo constructs a MongoDB-backed PendingBookingRepository.
// It also holds the bookings collection for the transactional conversion.
func NewMongoPendingRepo() PendingBookingRepository {
	db := database.DB()
	return &mongoPendingRepo{
		coll:        db.Collection("pending_bookings"),
		bookingColl: db.Collection("bookings"),
	}
}
