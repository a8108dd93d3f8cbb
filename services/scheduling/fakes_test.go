package scheduling

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	bookingRepo "frontdesk/database/repository/booking"
	integrationRepo "frontdesk/database/repository/integration"
	pendingRepo "frontdesk/database/repository/pending"
	tenantRepo "frontdesk/database/repository/tenant"
	"frontdesk/models"
)

// In-memory repository fakes mirroring the Mongo implementations' behavior,
// including the partial unique slot index and the single-shot close-out.

type fakeBookingRepo struct {
	mu         sync.Mutex
	bookings   map[string]*models.Booking
	failCreate error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*models.Booking)}
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	for _, b := range r.bookings {
		if b.TenantID == booking.TenantID && b.Date == booking.Date && b.Time == booking.Time &&
			b.Status == models.BookingStatusConfirmed {
			return bookingRepo.ErrSlotTaken
		}
	}
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	clone := *booking
	r.bookings[booking.ID] = &clone
	return nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, tenantID, bookingID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok || b.TenantID != tenantID {
		return nil, bookingRepo.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *fakeBookingRepo) GetByDateRange(ctx context.Context, tenantID, fromDate, toDate string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.TenantID != tenantID || b.Status == models.BookingStatusCancelled {
			continue
		}
		if b.Date < fromDate || b.Date > toDate {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *fakeBookingRepo) Cancel(ctx context.Context, tenantID, bookingID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok || b.TenantID != tenantID || b.Status == models.BookingStatusCancelled {
		return false, nil
	}
	b.Status = models.BookingStatusCancelled
	return true, nil
}

func (r *fakeBookingRepo) EnsureIndexes() error { return nil }

type fakeTenantRepo struct {
	mu      sync.Mutex
	tenants map[string]*models.Tenant
}

func newFakeTenantRepo(tenants ...*models.Tenant) *fakeTenantRepo {
	r := &fakeTenantRepo{tenants: make(map[string]*models.Tenant)}
	for _, t := range tenants {
		r.tenants[t.ID] = t
	}
	return r
}

func (r *fakeTenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tenant.ID == "" {
		tenant.ID = uuid.New().String()
	}
	r.tenants[tenant.ID] = tenant
	return nil
}

func (r *fakeTenantRepo) GetByID(ctx context.Context, tenantID string) (*models.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[tenantID]
	if !ok {
		return nil, tenantRepo.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTenantRepo) SetProvider(ctx context.Context, tenantID, provider string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[tenantID]
	if !ok {
		return tenantRepo.ErrNotFound
	}
	t.Provider = provider
	return nil
}

type fakePendingRepo struct {
	mu       sync.Mutex
	pendings map[string]*models.PendingBooking
	booked   []*models.Booking
	failBook error
}

func newFakePendingRepo() *fakePendingRepo {
	return &fakePendingRepo{pendings: make(map[string]*models.PendingBooking)}
}

func (r *fakePendingRepo) Create(ctx context.Context, pending *models.PendingBooking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pending.ID == "" {
		pending.ID = uuid.New().String()
	}
	if pending.Status == "" {
		pending.Status = models.PendingStatusPending
	}
	if pending.CreatedAt.IsZero() {
		pending.CreatedAt = time.Now().UTC()
	}
	clone := *pending
	r.pendings[pending.ID] = &clone
	return nil
}

func (r *fakePendingRepo) GetByID(ctx context.Context, tenantID, pendingID string) (*models.PendingBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pendings[pendingID]
	if !ok || p.TenantID != tenantID {
		return nil, pendingRepo.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakePendingRepo) ListByStatus(ctx context.Context, tenantID, status string) ([]models.PendingBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PendingBooking
	for _, p := range r.pendings {
		if p.TenantID == tenantID && p.Status == status {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePendingRepo) ListStale(ctx context.Context, cutoff time.Time) ([]models.PendingBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PendingBooking
	for _, p := range r.pendings {
		if p.Status == models.PendingStatusPending && p.CreatedAt.Before(cutoff) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePendingRepo) CloseOut(ctx context.Context, tenantID, pendingID, status, staffID, notes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pendings[pendingID]
	if !ok || p.TenantID != tenantID {
		return pendingRepo.ErrNotFound
	}
	if p.Status != models.PendingStatusPending {
		return pendingRepo.ErrAlreadyClosed
	}
	now := time.Now().UTC()
	p.Status = status
	p.ConfirmedBy = staffID
	p.ConfirmedAt = &now
	if notes != "" {
		p.Notes = notes
	}
	return nil
}

func (r *fakePendingRepo) ConfirmAndBook(ctx context.Context, tenantID, pendingID, staffID string, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failBook != nil {
		return r.failBook
	}
	p, ok := r.pendings[pendingID]
	if !ok || p.TenantID != tenantID {
		return pendingRepo.ErrNotFound
	}
	if p.Status != models.PendingStatusPending {
		return pendingRepo.ErrAlreadyClosed
	}
	clone := *booking
	r.booked = append(r.booked, &clone)
	now := time.Now().UTC()
	p.Status = models.PendingStatusConfirmed
	p.ConfirmedBy = staffID
	p.ConfirmedAt = &now
	return nil
}

func (r *fakePendingRepo) EnsureIndexes() error { return nil }

type fakeIntegrationRepo struct {
	mu           sync.Mutex
	integrations map[string]*models.Integration
}

func newFakeIntegrationRepo(integrations ...*models.Integration) *fakeIntegrationRepo {
	r := &fakeIntegrationRepo{integrations: make(map[string]*models.Integration)}
	for _, in := range integrations {
		r.integrations[in.ID] = in
	}
	return r
}

func (r *fakeIntegrationRepo) Upsert(ctx context.Context, integration *models.Integration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if integration.ID == "" {
		integration.ID = uuid.New().String()
	}
	r.integrations[integration.ID] = integration
	return nil
}

func (r *fakeIntegrationRepo) GetByTenantAndProvider(ctx context.Context, tenantID, provider string) (*models.Integration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, in := range r.integrations {
		if in.TenantID == tenantID && in.Provider == provider {
			clone := *in
			return &clone, nil
		}
	}
	return nil, integrationRepo.ErrNotFound
}

func (r *fakeIntegrationRepo) UpdateTokens(ctx context.Context, integrationID, accessToken, refreshToken string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.integrations[integrationID]
	if !ok {
		return integrationRepo.ErrNotFound
	}
	in.AccessToken = accessToken
	in.RefreshToken = refreshToken
	in.ExpiresAt = expiresAt
	in.Status = models.IntegrationStatusActive
	return nil
}

func (r *fakeIntegrationRepo) MarkExpired(ctx context.Context, integrationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.integrations[integrationID]
	if !ok {
		return integrationRepo.ErrNotFound
	}
	in.Status = models.IntegrationStatusExpired
	return nil
}

func (r *fakeIntegrationRepo) ListExpiring(ctx context.Context, cutoff time.Time) ([]models.Integration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Integration
	for _, in := range r.integrations {
		if in.Status == models.IntegrationStatusActive && in.ExpiresAt.Before(cutoff) {
			out = append(out, *in)
		}
	}
	return out, nil
}

func (r *fakeIntegrationRepo) EnsureIndexes() error { return nil }
