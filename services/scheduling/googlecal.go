package scheduling

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	integrationRepo "frontdesk/database/repository/integration"
	tenantRepo "frontdesk/database/repository/tenant"
	"frontdesk/models"
)

// GoogleCalAdapter implements the full scheduling contract against a
// tenant's Google Calendar: free-busy availability, event creation and
// cancellation. It shares the Calendly adapter's 401-refresh-retry policy
// through the common token manager.
type GoogleCalAdapter struct {
	Client  *GoogleCalClient
	Tenants tenantRepo.TenantRepository

	mu         sync.Mutex
	calendarID string // lazily resolved, invalidated on token refresh
}

// NewGoogleCalAdapter wires a tenant's Google Calendar credential into the
// scheduling contract.
func NewGoogleCalAdapter(
	integration *models.Integration,
	integrations integrationRepo.IntegrationRepository,
	tenants tenantRepo.TenantRepository,
	httpClient *http.Client,
	baseURL, tokenURL, clientID, clientSecret string,
) *GoogleCalAdapter {
	tokens := NewTokenManager(integration, integrations,
		NewOAuthRefreshFunc(httpClient, tokenURL, clientID, clientSecret))
	adapter := &GoogleCalAdapter{
		Client: &GoogleCalClient{
			BaseURL: baseURL,
			HTTP:    httpClient,
			Tokens:  tokens,
		},
		Tenants: tenants,
	}
	tokens.OnRefresh = adapter.invalidateIdentity
	return adapter
}

func (a *GoogleCalAdapter) invalidateIdentity() {
	a.mu.Lock()
	a.calendarID = ""
	a.mu.Unlock()
}

func (a *GoogleCalAdapter) identity(ctx context.Context) (string, error) {
	a.mu.Lock()
	cached := a.calendarID
	a.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	cal, err := a.Client.PrimaryCalendar(ctx)
	if err != nil {
		return "", err
	}
	a.mu.Lock()
	a.calendarID = cal.ID
	a.mu.Unlock()
	return cal.ID, nil
}

func (a *GoogleCalAdapter) tenantHours(ctx context.Context, tenantID string) (map[string]models.DayHours, *time.Location, error) {
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
		}
	}
	hours := tenant.Hours
	if len(hours) == 0 {
		hours = DefaultWeekHours()
	}
	return hours, loc, nil
}

func (a *GoogleCalAdapter) CheckAvailability(ctx context.Context, tenantID string, from, to time.Time) ([]models.TimeSlot, error) {
	calendarID, err := a.identity(ctx)
	if err != nil {
		return nil, err
	}
	busy, err := a.Client.FreeBusy(ctx, calendarID, from, to)
	if err != nil {
		return nil, err
	}
	hours, loc, err := a.tenantHours(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return GenerateSlots(from, to, hours, busy, loc), nil
}

func (a *GoogleCalAdapter) CreateBooking(ctx context.Context, tenantID string, req models.BookingRequest) (*models.BookingConfirmation, error) {
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

	summary := req.CustomerName
	if req.Service != "" {
		summary = fmt.Sprintf("%s - %s", req.Service, req.CustomerName)
	}
	var description strings.Builder
	fmt.Fprintf(&description, "Phone: %s", req.CustomerPhone)
	if req.CustomerEmail != "" {
		fmt.Fprintf(&description, "\nEmail: %s", req.CustomerEmail)
	}
	if req.Notes != "" {
		fmt.Fprintf(&description, "\nNotes: %s", req.Notes)
	}

	eventID, err := a.Client.InsertEvent(ctx, gcalEvent{
		Summary:     summary,
		Description: description.String(),
		Start:       gcalDateTime{DateTime: req.StartTime},
		End:         gcalDateTime{DateTime: end},
	})
	if err != nil {
		return nil, err
	}

	return &models.BookingConfirmation{
		ID:         eventID,
		ExternalID: eventID,
		Status:     models.ConfirmationStatusConfirmed,
		StartTime:  req.StartTime,
		EndTime:    end,
	}, nil
}

func (a *GoogleCalAdapter) CancelBooking(ctx context.Context, tenantID, bookingID string) (bool, error) {
	if err := a.Client.DeleteEvent(ctx, bookingID); err != nil {
		var provErr *ProviderError
		if errors.As(err, &provErr) &&
			(provErr.StatusCode == http.StatusNotFound || provErr.StatusCode == http.StatusGone) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

func (a *GoogleCalAdapter) GetBookings(ctx context.Context, tenantID string, from, to time.Time) ([]models.BookingConfirmation, error) {
	if _, err := a.identity(ctx); err != nil {
		return nil, err
	}
	events, err := a.Client.ListEvents(ctx, from, to)
	if err != nil {
		return nil, err
	}

	confirmations := make([]models.BookingConfirmation, 0, len(events))
	for _, ev := range events {
		confirmations = append(confirmations, models.BookingConfirmation{
			ID:         ev.ID,
			ExternalID: ev.ID,
			Status:     models.ConfirmationStatusConfirmed,
			StartTime:  ev.Start.DateTime,
			EndTime:    ev.End.DateTime,
		})
	}
	return confirmations, nil
}
