package scheduling

import (
	"context"
	"errors"
	"time"

	bookingRepo "frontdesk/database/repository/booking"
	tenantRepo "frontdesk/database/repository/tenant"
	"frontdesk/models"
	"frontdesk/utils"

	"go.uber.org/zap"
)

// BuiltinAdapter implements the scheduling contract against the system's
// own booking ledger.
type BuiltinAdapter struct {
	Bookings bookingRepo.BookingRepository
	Tenants  tenantRepo.TenantRepository
}

// NewBuiltinAdapter constructs the ledger-backed adapter.
func NewBuiltinAdapter(bookings bookingRepo.BookingRepository, tenants tenantRepo.TenantRepository) *BuiltinAdapter {
	return &BuiltinAdapter{Bookings: bookings, Tenants: tenants}
}

func (a *BuiltinAdapter) tenantLocation(ctx context.Context, tenantID string) (*models.Tenant, *time.Location, error) {
	tenant, err := a.Tenants.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, tenantRepo.ErrNotFound) {
			return nil, nil, &NotFoundError{Resource: "tenant", ID: tenantID}
		}
		return nil, nil, &StorageError{Op: "load tenant", Err: err}
	}
	loc := time.UTC
	if tenant.Timezone != "" {
		if l, err := time.LoadLocation(tenant.Timezone); err == nil {
			loc = l
		} else {
			utils.GetLogger().Warn("invalid tenant timezone, falling back to UTC",
				zap.String("tenantID", tenantID), zap.String("timezone", tenant.Timezone))
		}
	}
	return tenant, loc, nil
}

func (a *BuiltinAdapter) busyPeriods(ctx context.Context, tenantID string, from, to time.Time, loc *time.Location) ([]models.BusyPeriod, error) {
	fromDate := from.In(loc).Format("2006-01-02")
	toDate := to.In(loc).Format("2006-01-02")
	bookings, err := a.Bookings.GetByDateRange(ctx, tenantID, fromDate, toDate)
	if err != nil {
		return nil, &StorageError{Op: "list bookings", Err: err}
	}

	busy := make([]models.BusyPeriod, 0, len(bookings))
	for _, b := range bookings {
		start, end, err := b.Interval(loc)
		if err != nil {
			utils.GetLogger().Warn("skipping booking with bad stored interval",
				zap.String("bookingID", b.ID), zap.Error(err))
			continue
		}
		busy = append(busy, models.BusyPeriod{Start: start, End: end})
	}
	return busy, nil
}

func (a *BuiltinAdapter) CheckAvailability(ctx context.Context, tenantID string, from, to time.Time) ([]models.TimeSlot, error) {
	tenant, loc, err := a.tenantLocation(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	busy, err := a.busyPeriods(ctx, tenantID, from, to, loc)
	if err != nil {
		return nil, err
	}

	hours := tenant.Hours
	if len(hours) == 0 {
		hours = DefaultWeekHours()
	}
	return GenerateSlots(from, to, hours, busy, loc), nil
}

func (a *BuiltinAdapter) CreateBooking(ctx context.Context, tenantID string, req models.BookingRequest) (*models.BookingConfirmation, error) {
	if req.StartTime.IsZero() {
		return nil, &ValidationError{Message: "booking start time is required"}
	}
	end := req.EndTime
	if end.IsZero() {
		end = req.StartTime.Add(SlotDuration)
	}
	if !end.After(req.StartTime) {
		return nil, &ValidationError{Message: "booking end time must be after start time"}
	}

	_, loc, err := a.tenantLocation(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	code, err := GenerateConfirmationCode()
	if err != nil {
		return nil, &StorageError{Op: "generate confirmation code", Err: err}
	}

	start := req.StartTime.In(loc)
	booking := &models.Booking{
		TenantID:         tenantID,
		CustomerName:     req.CustomerName,
		CustomerPhone:    req.CustomerPhone,
		CustomerEmail:    req.CustomerEmail,
		Service:          req.Service,
		Date:             start.Format("2006-01-02"),
		Time:             start.Format("15:04"),
		DurationMinutes:  int(end.Sub(req.StartTime) / time.Minute),
		Status:           models.BookingStatusConfirmed,
		ConfirmationCode: code,
		Source:           models.BookingSourceCall,
		CallID:           req.CallID,
		Notes:            req.Notes,
	}
	if err := a.Bookings.Create(ctx, booking); err != nil {
		if errors.Is(err, bookingRepo.ErrSlotTaken) {
			return nil, &ValidationError{Message: "requested slot is already booked"}
		}
		return nil, &StorageError{Op: "create booking", Err: err}
	}

	return &models.BookingConfirmation{
		ID:        booking.ID,
		Status:    models.ConfirmationStatusConfirmed,
		StartTime: req.StartTime,
		EndTime:   end,
	}, nil
}

func (a *BuiltinAdapter) CancelBooking(ctx context.Context, tenantID, bookingID string) (bool, error) {
	modified, err := a.Bookings.Cancel(ctx, tenantID, bookingID)
	if err != nil {
		return false, &StorageError{Op: "cancel booking", Err: err}
	}
	if !modified {
		// Already cancelled or never existed in this tenant's scope; the
		// cancel contract treats both as success.
		utils.GetLogger().Debug("cancel matched no active booking",
			zap.String("tenantID", tenantID), zap.String("bookingID", bookingID))
	}
	return true, nil
}

func (a *BuiltinAdapter) GetBookings(ctx context.Context, tenantID string, from, to time.Time) ([]models.BookingConfirmation, error) {
	_, loc, err := a.tenantLocation(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	fromDate := from.In(loc).Format("2006-01-02")
	toDate := to.In(loc).Format("2006-01-02")
	bookings, err := a.Bookings.GetByDateRange(ctx, tenantID, fromDate, toDate)
	if err != nil {
		return nil, &StorageError{Op: "list bookings", Err: err}
	}

	confirmations := make([]models.BookingConfirmation, 0, len(bookings))
	for _, b := range bookings {
		start, end, err := b.Interval(loc)
		if err != nil {
			continue
		}
		if start.Before(from) || !start.Before(to) {
			continue
		}
		confirmations = append(confirmations, models.BookingConfirmation{
			ID:        b.ID,
			Status:    models.ConfirmationStatusConfirmed,
			StartTime: start,
			EndTime:   end,
		})
	}
	return confirmations, nil
}
