package scheduling

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontdesk/models"
)

func activeIntegration(provider string) *models.Integration {
	return &models.Integration{
		ID:           "i1",
		TenantID:     "t1",
		Provider:     provider,
		AccessToken:  "old-token",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(time.Hour),
		Status:       models.IntegrationStatusActive,
	}
}

func newCalendlyFixture(t *testing.T, api http.Handler, tokenEndpoint http.Handler) (*CalendlyAdapter, *fakeIntegrationRepo) {
	t.Helper()
	apiSrv := httptest.NewServer(api)
	t.Cleanup(apiSrv.Close)
	tokenURL := "http://token.invalid"
	if tokenEndpoint != nil {
		tokenSrv := httptest.NewServer(tokenEndpoint)
		t.Cleanup(tokenSrv.Close)
		tokenURL = tokenSrv.URL
	}

	integrations := newFakeIntegrationRepo(activeIntegration(models.ProviderCalendly))
	tenants := newFakeTenantRepo(&models.Tenant{ID: "t1", Provider: models.ProviderCalendly})
	adapter := NewCalendlyAdapter(activeIntegration(models.ProviderCalendly), integrations, tenants,
		http.DefaultClient, apiSrv.URL, tokenURL, "client-id", "client-secret")
	return adapter, integrations
}

func calendlyAPIStub(events []calendlyEvent) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(calendlyUserEnvelope{Resource: calendlyUser{
			URI:  "https://api.calendly.com/users/u-1",
			Name: "Shear Genius",
		}})
	})
	mux.HandleFunc("/event_types", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(calendlyCollection[calendlyEventType]{Collection: []calendlyEventType{
			{URI: "et-1", Name: "Consultation", Active: true, DurationMinutes: 30},
		}})
	})
	mux.HandleFunc("/scheduled_events", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(calendlyCollection[calendlyEvent]{Collection: events})
	})
	return mux
}

func TestCalendlyCreateBookingAlwaysUnsupported(t *testing.T) {
	adapter, _ := newCalendlyFixture(t, calendlyAPIStub(nil), nil)

	_, err := adapter.CreateBooking(context.Background(), "t1", validRequest(tuesday(9, 0)))
	require.Error(t, err)
	assert.True(t, IsUnsupported(err), "create must signal the capability gap, got %v", err)

	var unsupported *UnsupportedOperationError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "calendly", unsupported.Provider)
}

func TestCalendlyAvailabilityMapsEventsToBusy(t *testing.T) {
	events := []calendlyEvent{{
		URI:       "https://api.calendly.com/scheduled_events/ev-1",
		Status:    "active",
		StartTime: tuesday(9, 0),
		EndTime:   tuesday(9, 30),
	}}
	adapter, _ := newCalendlyFixture(t, calendlyAPIStub(events), nil)

	slots, err := adapter.CheckAvailability(context.Background(), "t1", tuesday(9, 0), tuesday(10, 0))
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.False(t, slots[0].Available)
	assert.True(t, slots[1].Available)
}

func TestCalendlyIdentityResolvedOncePerInstance(t *testing.T) {
	meCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		meCalls++
		json.NewEncoder(w).Encode(calendlyUserEnvelope{Resource: calendlyUser{URI: "u-1"}})
	})
	mux.HandleFunc("/scheduled_events", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(calendlyCollection[calendlyEvent]{})
	})
	adapter, _ := newCalendlyFixture(t, mux, nil)

	ctx := context.Background()
	_, err := adapter.GetBookings(ctx, "t1", tuesday(9, 0), tuesday(17, 0))
	require.NoError(t, err)
	_, err = adapter.GetBookings(ctx, "t1", tuesday(9, 0), tuesday(17, 0))
	require.NoError(t, err)

	assert.Equal(t, 1, meCalls, "identity must be cached per adapter instance")
}

func TestCalendlyCancelAlreadyGoneCountsAsSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/scheduled_events/ev-1/cancellation", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	adapter, _ := newCalendlyFixture(t, mux, nil)

	ok, err := adapter.CancelBooking(context.Background(), "t1", "ev-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCalendlyCancelAcceptsFullEventURI(t *testing.T) {
	cancelled := ""
	mux := http.NewServeMux()
	mux.HandleFunc("/scheduled_events/ev-9/cancellation", func(w http.ResponseWriter, r *http.Request) {
		cancelled = "ev-9"
		w.WriteHeader(http.StatusCreated)
	})
	adapter, _ := newCalendlyFixture(t, mux, nil)

	ok, err := adapter.CancelBooking(context.Background(), "t1", "https://api.calendly.com/scheduled_events/ev-9")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ev-9", cancelled)
}

func TestCalendlyOutOfBandReauthRecovers(t *testing.T) {
	requireGoodToken := func(next func(w http.ResponseWriter, r *http.Request)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer good-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", requireGoodToken(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(calendlyUserEnvelope{Resource: calendlyUser{URI: "u-1"}})
	}))
	mux.HandleFunc("/scheduled_events", requireGoodToken(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(calendlyCollection[calendlyEvent]{})
	}))
	// The stored refresh token has been revoked.
	token := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	adapter, integrations := newCalendlyFixture(t, mux, token)
	ctx := context.Background()

	var authErr *AuthExpiredError
	_, err := adapter.GetBookings(ctx, "t1", tuesday(9, 0), tuesday(17, 0))
	require.ErrorAs(t, err, &authErr)

	stored, err := integrations.GetByTenantAndProvider(ctx, "t1", models.ProviderCalendly)
	require.NoError(t, err)
	require.Equal(t, models.IntegrationStatusExpired, stored.Status)

	// The tenant re-authorizes out of band; fresh tokens land in the store.
	require.NoError(t, integrations.UpdateTokens(ctx, stored.ID, "good-token", "refresh-2", time.Now().Add(time.Hour)))

	bookings, err := adapter.GetBookings(ctx, "t1", tuesday(9, 0), tuesday(17, 0))
	require.NoError(t, err, "re-authorized credentials must take effect without a restart")
	assert.Empty(t, bookings)
}

func TestCalendlyRefreshOnUnauthorized(t *testing.T) {
	apiCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		apiCalls++
		if r.Header.Get("Authorization") != "Bearer new-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(calendlyUserEnvelope{Resource: calendlyUser{URI: "u-1"}})
	})
	mux.HandleFunc("/scheduled_events", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(calendlyCollection[calendlyEvent]{})
	})

	refreshCalls := 0
	token := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		json.NewEncoder(w).Encode(oauthTokenResponse{
			AccessToken:  "new-token",
			RefreshToken: "refresh-2",
			ExpiresIn:    3600,
		})
	})

	adapter, integrations := newCalendlyFixture(t, mux, token)

	bookings, err := adapter.GetBookings(context.Background(), "t1", tuesday(9, 0), tuesday(17, 0))
	require.NoError(t, err)
	assert.Empty(t, bookings)

	assert.Equal(t, 1, refreshCalls, "exactly one refresh")
	assert.Equal(t, 2, apiCalls, "original call retried exactly once")

	stored, err := integrations.GetByTenantAndProvider(context.Background(), "t1", models.ProviderCalendly)
	require.NoError(t, err)
	assert.Equal(t, "new-token", stored.AccessToken)
	assert.Equal(t, "refresh-2", stored.RefreshToken)
	assert.Equal(t, models.IntegrationStatusActive, stored.Status)
}
