package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	bookingRepo "frontdesk/database/repository/booking"
	integrationRepo "frontdesk/database/repository/integration"
	tenantRepo "frontdesk/database/repository/tenant"
	"frontdesk/models"
	"frontdesk/utils"
)

// ProviderConfig carries one external provider's API endpoints and OAuth
// app credentials.
type ProviderConfig struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// availabilityCacheTTL bounds how stale a cached remote availability
// response may be.
const availabilityCacheTTL = 60 * time.Second

// Engine fronts the scheduling contract for callers. It resolves the
// tenant's active backend, keeps one adapter instance per tenant+provider
// so lazily cached remote identities are reused, and routes unsupported
// booking creation to the pending-booking workflow.
type Engine struct {
	Tenants      tenantRepo.TenantRepository
	Bookings     bookingRepo.BookingRepository
	Integrations integrationRepo.IntegrationRepository
	Pending      PendingBookingService
	Cache        *redis.Client // optional
	HTTP         *http.Client

	Calendly  ProviderConfig
	GoogleCal ProviderConfig

	adapters sync.Map // "tenantID/provider" -> SchedulingProvider
}

func (e *Engine) httpClient() *http.Client {
	if e.HTTP != nil {
		return e.HTTP
	}
	return http.DefaultClient
}

func (e *Engine) adapterFor(ctx context.Context, tenant *models.Tenant) (SchedulingProvider, error) {
	provider := tenant.Provider
	if provider == "" {
		provider = models.ProviderBuiltin
	}
	key := tenant.ID + "/" + provider
	if cached, ok := e.adapters.Load(key); ok {
		return cached.(SchedulingProvider), nil
	}

	var adapter SchedulingProvider
	switch provider {
	case models.ProviderBuiltin:
		adapter = NewBuiltinAdapter(e.Bookings, e.Tenants)
	case models.ProviderCalendly, models.ProviderGoogleCalendar:
		integration, err := e.Integrations.GetByTenantAndProvider(ctx, tenant.ID, provider)
		if err != nil {
			if errors.Is(err, integrationRepo.ErrNotFound) {
				return nil, &NotFoundError{Resource: "integration", ID: tenant.ID + "/" + provider}
			}
			return nil, &StorageError{Op: "load integration", Err: err}
		}
		if integration.Status == models.IntegrationStatusExpired {
			return nil, &AuthExpiredError{Provider: provider, Err: errors.New("integration requires re-authorization")}
		}
		if provider == models.ProviderCalendly {
			adapter = NewCalendlyAdapter(integration, e.Integrations, e.Tenants, e.httpClient(),
				e.Calendly.BaseURL, e.Calendly.TokenURL, e.Calendly.ClientID, e.Calendly.ClientSecret)
		} else {
			adapter = NewGoogleCalAdapter(integration, e.Integrations, e.Tenants, e.httpClient(),
				e.GoogleCal.BaseURL, e.GoogleCal.TokenURL, e.GoogleCal.ClientID, e.GoogleCal.ClientSecret)
		}
	default:
		return nil, &ValidationError{Message: "unknown scheduling provider: " + provider}
	}

	actual, _ := e.adapters.LoadOrStore(key, adapter)
	return actual.(SchedulingProvider), nil
}

func (e *Engine) resolve(ctx context.Context, tenantID string) (*models.Tenant, SchedulingProvider, error) {
	tenant, err := e.Tenants.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, tenantRepo.ErrNotFound) {
			return nil, nil, &NotFoundError{Resource: "tenant", ID: tenantID}
		}
		return nil, nil, &StorageError{Op: "load tenant", Err: err}
	}
	adapter, err := e.adapterFor(ctx, tenant)
	if err != nil {
		return nil, nil, err
	}
	return tenant, adapter, nil
}

func (e *Engine) CheckAvailability(ctx context.Context, tenantID string, from, to time.Time) ([]models.TimeSlot, error) {
	tenant, adapter, err := e.resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	// Remote lookups are cached briefly; the builtin ledger is cheap to hit.
	cacheable := tenant.Provider != "" && tenant.Provider != models.ProviderBuiltin && e.Cache != nil
	cacheKey := fmt.Sprintf("availability:%s:%s:%d:%d", tenantID, tenant.Provider, from.Unix(), to.Unix())
	if cacheable {
		if payload, err := e.Cache.Get(ctx, cacheKey).Result(); err == nil {
			var slots []models.TimeSlot
			if json.Unmarshal([]byte(payload), &slots) == nil {
				return slots, nil
			}
		}
	}

	slots, err := adapter.CheckAvailability(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if payload, err := json.Marshal(slots); err == nil {
			if err := e.Cache.Set(ctx, cacheKey, payload, availabilityCacheTTL).Err(); err != nil {
				utils.GetLogger().Warn("failed to cache availability",
					zap.String("tenantID", tenantID), zap.Error(err))
			}
		}
	}
	return slots, nil
}

// CreateBooking books through the tenant's backend. When the backend
// structurally cannot create bookings the request silently becomes a
// pending booking for staff review, returned with a pending status.
func (e *Engine) CreateBooking(ctx context.Context, tenantID string, req models.BookingRequest) (*models.BookingConfirmation, error) {
	_, adapter, err := e.resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	confirmation, err := adapter.CreateBooking(ctx, tenantID, req)
	if err != nil {
		if !IsUnsupported(err) {
			return nil, err
		}
		utils.GetLogger().Info("direct booking unsupported, routing to manual review",
			zap.String("tenantID", tenantID))

		pending, perr := e.Pending.CreatePendingBooking(ctx, tenantID, req)
		if perr != nil {
			return nil, perr
		}
		end := req.EndTime
		if end.IsZero() && !req.StartTime.IsZero() {
			end = req.StartTime.Add(SlotDuration)
		}
		return &models.BookingConfirmation{
			ID:        pending.ID,
			Status:    models.ConfirmationStatusPending,
			StartTime: req.StartTime,
			EndTime:   end,
		}, nil
	}
	return confirmation, nil
}

func (e *Engine) CancelBooking(ctx context.Context, tenantID, bookingID string) (bool, error) {
	_, adapter, err := e.resolve(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return adapter.CancelBooking(ctx, tenantID, bookingID)
}

func (e *Engine) GetBookings(ctx context.Context, tenantID string, from, to time.Time) ([]models.BookingConfirmation, error) {
	_, adapter, err := e.resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return adapter.GetBookings(ctx, tenantID, from, to)
}
