package scheduling

import (
	"context"
	"errors"
	"strings"
	"time"

	pendingRepo "frontdesk/database/repository/pending"
	tenantRepo "frontdesk/database/repository/tenant"
	"frontdesk/models"
	"frontdesk/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultPendingService runs the manual-review workflow: a pending booking
// is filed when direct booking is impossible, then closed exactly once by a
// staff confirm, reject, or conversion into a ledger booking.
type DefaultPendingService struct {
	Repo    pendingRepo.PendingBookingRepository
	Tenants tenantRepo.TenantRepository
}

// NewPendingService constructs the workflow over its stores.
func NewPendingService(repo pendingRepo.PendingBookingRepository, tenants tenantRepo.TenantRepository) *DefaultPendingService {
	return &DefaultPendingService{Repo: repo, Tenants: tenants}
}

func (s *DefaultPendingService) CreatePendingBooking(ctx context.Context, tenantID string, req models.BookingRequest) (*models.PendingBooking, error) {
	pending := &models.PendingBooking{
		TenantID:      tenantID,
		CallID:        req.CallID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Service:       req.Service,
		Status:        models.PendingStatusPending,
		Notes:         req.Notes,
	}
	if !req.StartTime.IsZero() {
		pending.RequestedDate = req.StartTime.Format("2006-01-02")
		pending.RequestedTime = req.StartTime.Format("15:04")
	}

	if err := s.Repo.Create(ctx, pending); err != nil {
		return nil, &StorageError{Op: "create pending booking", Err: err}
	}
	utils.GetLogger().Info("pending booking filed for manual review",
		zap.String("tenantID", tenantID), zap.String("pendingID", pending.ID))
	return pending, nil
}

func (s *DefaultPendingService) ConfirmPendingBooking(ctx context.Context, tenantID, pendingID, staffID string) (*models.PendingBooking, error) {
	if err := s.Repo.CloseOut(ctx, tenantID, pendingID, models.PendingStatusConfirmed, staffID, ""); err != nil {
		return nil, mapCloseOutError(err, pendingID)
	}
	return s.getPending(ctx, tenantID, pendingID)
}

func (s *DefaultPendingService) RejectPendingBooking(ctx context.Context, tenantID, pendingID, staffID, reason string) (*models.PendingBooking, error) {
	notes := ""
	if reason != "" {
		existing, err := s.getPending(ctx, tenantID, pendingID)
		if err != nil {
			return nil, err
		}
		// Rejection reasons append to whatever is already there.
		var sb strings.Builder
		if existing.Notes != "" {
			sb.WriteString(existing.Notes)
			sb.WriteString("\n")
		}
		sb.WriteString("Rejected: ")
		sb.WriteString(reason)
		notes = sb.String()
	}

	if err := s.Repo.CloseOut(ctx, tenantID, pendingID, models.PendingStatusRejected, staffID, notes); err != nil {
		return nil, mapCloseOutError(err, pendingID)
	}
	return s.getPending(ctx, tenantID, pendingID)
}

func (s *DefaultPendingService) ConvertPendingToConfirmed(ctx context.Context, tenantID, pendingID, staffID, overrideDate, overrideTime string) (*models.BookingConfirmation, error) {
	pending, err := s.getPending(ctx, tenantID, pendingID)
	if err != nil {
		return nil, err
	}
	if pending.Status != models.PendingStatusPending {
		return nil, &ValidationError{Message: "pending booking is already closed"}
	}

	date := overrideDate
	if date == "" {
		date = pending.RequestedDate
	}
	clock := overrideTime
	if clock == "" {
		clock = pending.RequestedTime
	}
	if date == "" || clock == "" {
		return nil, &ValidationError{Message: "no booking date/time available; provide an override"}
	}

	loc := s.tenantLocation(ctx, tenantID)
	start, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, loc)
	if err != nil {
		return nil, &ValidationError{Message: "unparseable booking date/time"}
	}
	end := start.Add(SlotDuration)

	code, err := GenerateConfirmationCode()
	if err != nil {
		return nil, &StorageError{Op: "generate confirmation code", Err: err}
	}

	// Customer fields carry over verbatim from the review record.
	booking := &models.Booking{
		TenantID:         tenantID,
		CustomerName:     pending.CustomerName,
		CustomerPhone:    pending.CustomerPhone,
		CustomerEmail:    pending.CustomerEmail,
		Service:          pending.Service,
		Date:             date,
		Time:             clock,
		DurationMinutes:  int(SlotDuration / time.Minute),
		Status:           models.BookingStatusConfirmed,
		ConfirmationCode: code,
		Source:           models.BookingSourceCall,
		CallID:           pending.CallID,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	booking.ID = uuid.New().String()

	if err := s.Repo.ConfirmAndBook(ctx, tenantID, pendingID, staffID, booking); err != nil {
		switch {
		case errors.Is(err, pendingRepo.ErrNotFound):
			return nil, &NotFoundError{Resource: "pending booking", ID: pendingID}
		case errors.Is(err, pendingRepo.ErrAlreadyClosed):
			return nil, &ValidationError{Message: "pending booking is already closed"}
		case errors.Is(err, pendingRepo.ErrSlotTaken):
			return nil, &ValidationError{Message: "requested slot is already booked"}
		default:
			return nil, &StorageError{Op: "convert pending booking", Err: err}
		}
	}

	utils.GetLogger().Info("pending booking converted to confirmed",
		zap.String("tenantID", tenantID),
		zap.String("pendingID", pendingID),
		zap.String("bookingID", booking.ID),
		zap.String("staffID", staffID))

	return &models.BookingConfirmation{
		ID:        booking.ID,
		Status:    models.ConfirmationStatusConfirmed,
		StartTime: start,
		EndTime:   end,
	}, nil
}

func (s *DefaultPendingService) getPending(ctx context.Context, tenantID, pendingID string) (*models.PendingBooking, error) {
	pending, err := s.Repo.GetByID(ctx, tenantID, pendingID)
	if err != nil {
		if errors.Is(err, pendingRepo.ErrNotFound) {
			return nil, &NotFoundError{Resource: "pending booking", ID: pendingID}
		}
		return nil, &StorageError{Op: "load pending booking", Err: err}
	}
	return pending, nil
}

func (s *DefaultPendingService) tenantLocation(ctx context.Context, tenantID string) *time.Location {
	tenant, err := s.Tenants.GetByID(ctx, tenantID)
	if err != nil || tenant.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tenant.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func mapCloseOutError(err error, pendingID string) error {
	switch {
	case errors.Is(err, pendingRepo.ErrNotFound):
		return &NotFoundError{Resource: "pending booking", ID: pendingID}
	case errors.Is(err, pendingRepo.ErrAlreadyClosed):
		return &ValidationError{Message: "pending booking is already closed"}
	default:
		return &StorageError{Op: "close pending booking", Err: err}
	}
}
