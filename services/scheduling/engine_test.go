package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontdesk/models"
)

func newEngineFixture(tenants *fakeTenantRepo, integrations *fakeIntegrationRepo) (*Engine, *fakePendingRepo, *fakeBookingRepo) {
	bookings := newFakeBookingRepo()
	pendings := newFakePendingRepo()
	engine := &Engine{
		Tenants:      tenants,
		Bookings:     bookings,
		Integrations: integrations,
		Pending:      NewPendingService(pendings, tenants),
	}
	return engine, pendings, bookings
}

func TestEngineDefaultsToBuiltin(t *testing.T) {
	tenants := newFakeTenantRepo(&models.Tenant{ID: "t1"})
	engine, _, bookings := newEngineFixture(tenants, newFakeIntegrationRepo())

	conf, err := engine.CreateBooking(context.Background(), "t1", validRequest(tuesday(9, 0)))
	require.NoError(t, err)
	assert.Equal(t, models.ConfirmationStatusConfirmed, conf.Status)

	stored, err := bookings.GetByID(context.Background(), "t1", conf.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, stored.Status)
}

func TestEngineRoutesUnsupportedCreateToPendingWorkflow(t *testing.T) {
	tenants := newFakeTenantRepo(&models.Tenant{ID: "t1", Provider: models.ProviderCalendly})
	integrations := newFakeIntegrationRepo(activeIntegration(models.ProviderCalendly))
	engine, pendings, bookings := newEngineFixture(tenants, integrations)
	engine.Calendly = ProviderConfig{BaseURL: "http://calendly.invalid", TokenURL: "http://token.invalid"}

	conf, err := engine.CreateBooking(context.Background(), "t1", validRequest(tuesday(9, 0)))
	require.NoError(t, err, "the capability gap must not surface as an error")
	assert.Equal(t, models.ConfirmationStatusPending, conf.Status)
	assert.True(t, conf.StartTime.Equal(tuesday(9, 0)))

	filed, err := pendings.ListByStatus(context.Background(), "t1", models.PendingStatusPending)
	require.NoError(t, err)
	require.Len(t, filed, 1)
	assert.Equal(t, conf.ID, filed[0].ID)
	assert.Equal(t, "Dana Reyes", filed[0].CustomerName)
	assert.Equal(t, "2025-03-04", filed[0].RequestedDate)

	// Nothing lands in the ledger until staff convert the request.
	ledger, err := bookings.GetByDateRange(context.Background(), "t1", "2025-03-04", "2025-03-04")
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestEngineExpiredIntegrationSurfacesAuthExpired(t *testing.T) {
	tenants := newFakeTenantRepo(&models.Tenant{ID: "t1", Provider: models.ProviderGoogleCalendar})
	expired := activeIntegration(models.ProviderGoogleCalendar)
	expired.Status = models.IntegrationStatusExpired
	engine, _, _ := newEngineFixture(tenants, newFakeIntegrationRepo(expired))

	var authErr *AuthExpiredError
	_, err := engine.CheckAvailability(context.Background(), "t1", tuesday(9, 0), tuesday(10, 0))
	require.ErrorAs(t, err, &authErr)
}

func TestEngineRecoversAfterReauthorization(t *testing.T) {
	tenants := newFakeTenantRepo(&models.Tenant{ID: "t1", Provider: models.ProviderCalendly})
	expired := activeIntegration(models.ProviderCalendly)
	expired.Status = models.IntegrationStatusExpired
	integrations := newFakeIntegrationRepo(expired)
	engine, _, _ := newEngineFixture(tenants, integrations)
	ctx := context.Background()

	var authErr *AuthExpiredError
	_, err := engine.CreateBooking(ctx, "t1", validRequest(tuesday(9, 0)))
	require.ErrorAs(t, err, &authErr)

	// Out-of-band re-auth re-activates the stored credential.
	require.NoError(t, integrations.UpdateTokens(ctx, expired.ID, "new-token", "refresh-2", time.Now().Add(time.Hour)))

	conf, err := engine.CreateBooking(ctx, "t1", validRequest(tuesday(9, 0)))
	require.NoError(t, err, "a re-authorized tenant must not need a restart")
	assert.Equal(t, models.ConfirmationStatusPending, conf.Status)
}

func TestEngineMissingIntegration(t *testing.T) {
	tenants := newFakeTenantRepo(&models.Tenant{ID: "t1", Provider: models.ProviderCalendly})
	engine, _, _ := newEngineFixture(tenants, newFakeIntegrationRepo())

	_, err := engine.CheckAvailability(context.Background(), "t1", tuesday(9, 0), tuesday(10, 0))
	assert.True(t, IsNotFound(err))
}

func TestEngineUnknownProvider(t *testing.T) {
	tenants := newFakeTenantRepo(&models.Tenant{ID: "t1", Provider: "carrier-pigeon"})
	engine, _, _ := newEngineFixture(tenants, newFakeIntegrationRepo())

	var validationErr *ValidationError
	_, err := engine.CheckAvailability(context.Background(), "t1", tuesday(9, 0), tuesday(10, 0))
	require.ErrorAs(t, err, &validationErr)
}

func TestEngineUnknownTenant(t *testing.T) {
	engine, _, _ := newEngineFixture(newFakeTenantRepo(), newFakeIntegrationRepo())

	_, err := engine.GetBookings(context.Background(), "ghost", tuesday(9, 0), tuesday(10, 0))
	assert.True(t, IsNotFound(err))
}

func TestEngineReusesAdapterInstances(t *testing.T) {
	tenants := newFakeTenantRepo(&models.Tenant{ID: "t1"})
	engine, _, _ := newEngineFixture(tenants, newFakeIntegrationRepo())

	tenant, err := tenants.GetByID(context.Background(), "t1")
	require.NoError(t, err)

	first, err := engine.adapterFor(context.Background(), tenant)
	require.NoError(t, err)
	second, err := engine.adapterFor(context.Background(), tenant)
	require.NoError(t, err)
	assert.Same(t, first, second, "adapters are cached per tenant+provider")
}

func TestEngineBuiltinAvailabilityEndToEnd(t *testing.T) {
	tenants := newFakeTenantRepo(&models.Tenant{ID: "t1"})
	engine, _, _ := newEngineFixture(tenants, newFakeIntegrationRepo())
	ctx := context.Background()

	_, err := engine.CreateBooking(ctx, "t1", validRequest(tuesday(9, 0)))
	require.NoError(t, err)

	slots, err := engine.CheckAvailability(ctx, "t1", tuesday(9, 0), tuesday(10, 0))
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.False(t, slots[0].Available)
	assert.True(t, slots[1].Available)

	for _, s := range slots {
		assert.Equal(t, 30*time.Minute, s.End.Sub(s.Start))
	}
}
