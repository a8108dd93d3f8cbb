package scheduling

import (
	"context"
	"time"

	"frontdesk/models"
)

// SchedulingProvider is the uniform contract every backend implements,
// regardless of its native capabilities. Implementations never return slots
// outside the requested instant range.
type SchedulingProvider interface {
	CheckAvailability(ctx context.Context, tenantID string, from, to time.Time) ([]models.TimeSlot, error)
	// CreateBooking reserves the requested interval. Backends without a
	// programmatic reservation capability return UnsupportedOperationError.
	CreateBooking(ctx context.Context, tenantID string, req models.BookingRequest) (*models.BookingConfirmation, error)
	// CancelBooking is idempotent: cancelling an already-cancelled or missing
	// booking still reports success.
	CancelBooking(ctx context.Context, tenantID, bookingID string) (bool, error)
	GetBookings(ctx context.Context, tenantID string, from, to time.Time) ([]models.BookingConfirmation, error)
}

// PendingBookingService is the manual-review workflow used whenever direct
// booking fails or is unsupported.
type PendingBookingService interface {
	CreatePendingBooking(ctx context.Context, tenantID string, req models.BookingRequest) (*models.PendingBooking, error)
	ConfirmPendingBooking(ctx context.Context, tenantID, pendingID, staffID string) (*models.PendingBooking, error)
	RejectPendingBooking(ctx context.Context, tenantID, pendingID, staffID, reason string) (*models.PendingBooking, error)
	// ConvertPendingToConfirmed is the sole path from a manual-review request
	// to a real ledger booking.
	ConvertPendingToConfirmed(ctx context.Context, tenantID, pendingID, staffID, overrideDate, overrideTime string) (*models.BookingConfirmation, error)
}
