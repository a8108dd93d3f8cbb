package scheduling

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	integrationRepo "frontdesk/database/repository/integration"
	tenantRepo "frontdesk/database/repository/tenant"
	"frontdesk/models"
	"frontdesk/utils"

	"go.uber.org/zap"
)

// CalendlyAdapter reads availability from a tenant's Calendly account.
// Calendly exposes no programmatic reservation capability, so CreateBooking
// always reports UnsupportedOperationError and callers fall back to the
// pending-booking workflow.
type CalendlyAdapter struct {
	Client  *CalendlyClient
	Tenants tenantRepo.TenantRepository

	mu      sync.Mutex
	userURI string // lazily resolved, invalidated on token refresh
}

// NewCalendlyAdapter wires a tenant's Calendly credential into the
// scheduling contract.
func NewCalendlyAdapter(
	integration *models.Integration,
	integrations integrationRepo.IntegrationRepository,
	tenants tenantRepo.TenantRepository,
	httpClient *http.Client,
	baseURL, tokenURL, clientID, clientSecret string,
) *CalendlyAdapter {
	tokens := NewTokenManager(integration, integrations,
		NewOAuthRefreshFunc(httpClient, tokenURL, clientID, clientSecret))
	adapter := &CalendlyAdapter{
		Client: &CalendlyClient{
			BaseURL: baseURL,
			HTTP:    httpClient,
			Tokens:  tokens,
		},
		Tenants: tenants,
	}
	tokens.OnRefresh = adapter.invalidateIdentity
	return adapter
}

func (a *CalendlyAdapter) invalidateIdentity() {
	a.mu.Lock()
	a.userURI = ""
	a.mu.Unlock()
}

func (a *CalendlyAdapter) identity(ctx context.Context) (string, error) {
	a.mu.Lock()
	cached := a.userURI
	a.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	user, err := a.Client.Me(ctx)
	if err != nil {
		return "", err
	}
	a.mu.Lock()
	a.userURI = user.URI
	a.mu.Unlock()
	return user.URI, nil
}

func (a *CalendlyAdapter) tenantLocation(ctx context.Context, tenantID string) (*time.Location, error) {
	tenant, err := a.Tenants.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, tenantRepo.ErrNotFound) {
			return nil, &NotFoundError{Resource: "tenant", ID: tenantID}
		}
		return nil, &StorageError{Op: "load tenant", Err: err}
	}
	if tenant.Timezone != "" {
		if loc, err := time.LoadLocation(tenant.Timezone); err == nil {
			return loc, nil
		}
	}
	return time.UTC, nil
}

func (a *CalendlyAdapter) CheckAvailability(ctx context.Context, tenantID string, from, to time.Time) ([]models.TimeSlot, error) {
	userURI, err := a.identity(ctx)
	if err != nil {
		return nil, err
	}

	eventTypes, err := a.Client.ListEventTypes(ctx, userURI)
	if err != nil {
		return nil, err
	}
	if len(eventTypes) == 0 {
		utils.GetLogger().Info("calendly account has no active event types",
			zap.String("tenantID", tenantID))
		return []models.TimeSlot{}, nil
	}

	events, err := a.Client.ListScheduledEvents(ctx, userURI, from, to)
	if err != nil {
		return nil, err
	}
	busy := make([]models.BusyPeriod, 0, len(events))
	for _, ev := range events {
		busy = append(busy, models.BusyPeriod{Start: ev.StartTime, End: ev.EndTime})
	}

	loc, err := a.tenantLocation(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	// Calendly exposes no operating-hours rule, so availability falls back
	// to the generic weekday template.
	return GenerateSlots(from, to, DefaultWeekHours(), busy, loc), nil
}

func (a *CalendlyAdapter) CreateBooking(ctx context.Context, tenantID string, req models.BookingRequest) (*models.BookingConfirmation, error) {
	return nil, &UnsupportedOperationError{Provider: "calendly", Operation: "createBooking"}
}

func (a *CalendlyAdapter) CancelBooking(ctx context.Context, tenantID, bookingID string) (bool, error) {
	err := a.Client.CancelEvent(ctx, eventUUIDFromID(bookingID), "Cancelled by phone assistant")
	if err != nil {
		var provErr *ProviderError
		if errors.As(err, &provErr) &&
			(provErr.StatusCode == http.StatusNotFound || provErr.StatusCode == http.StatusGone) {
			// Already gone counts as a successful cancel.
			return true, nil
		}
		return false, err
	}
	return true, nil
}

func (a *CalendlyAdapter) GetBookings(ctx context.Context, tenantID string, from, to time.Time) ([]models.BookingConfirmation, error) {
	userURI, err := a.identity(ctx)
	if err != nil {
		return nil, err
	}
	events, err := a.Client.ListScheduledEvents(ctx, userURI, from, to)
	if err != nil {
		return nil, err
	}

	confirmations := make([]models.BookingConfirmation, 0, len(events))
	for _, ev := range events {
		confirmations = append(confirmations, models.BookingConfirmation{
			ID:         eventUUIDFromID(ev.URI),
			ExternalID: ev.URI,
			Status:     models.ConfirmationStatusConfirmed,
			StartTime:  ev.StartTime,
			EndTime:    ev.EndTime,
		})
	}
	return confirmations, nil
}
