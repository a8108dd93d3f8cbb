package scheduling

import (
	"context"
	"net/http"
	"sync"
	"time"

	integrationRepo "frontdesk/database/repository/integration"
	"frontdesk/models"
	"frontdesk/utils"

	"go.uber.org/zap"
)

// RefreshFunc exchanges a refresh token for a new credential set at the
// provider's token endpoint.
type RefreshFunc func(ctx context.Context, refreshToken string) (accessToken, refreshToken2 string, expiresAt time.Time, err error)

// TokenManager owns one tenant+provider credential. It serializes access to
// the tokens and implements the single contained retry of this system: on a
// 401 response it refreshes once and reissues the original request once. A
// failed refresh marks the integration expired and surfaces AuthExpiredError
// with no further attempts.
type TokenManager struct {
	Provider string
	Repo     integrationRepo.IntegrationRepository
	Refresh  RefreshFunc
	// OnRefresh runs after a successful refresh so owners can invalidate
	// anything derived from the old credential, e.g. a cached identity.
	OnRefresh func()

	mu          sync.Mutex
	integration *models.Integration
}

// NewTokenManager wraps an integration credential record.
func NewTokenManager(integration *models.Integration, repo integrationRepo.IntegrationRepository, refresh RefreshFunc) *TokenManager {
	return &TokenManager{
		Provider:    integration.Provider,
		Repo:        repo,
		Refresh:     refresh,
		integration: integration,
	}
}

func (m *TokenManager) accessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.integration.AccessToken
}

// reload re-reads the stored credential so tokens re-authorized out of band
// are picked up without a restart. A store read failure keeps the in-memory
// copy; the request itself will surface anything real.
func (m *TokenManager) reload(ctx context.Context) {
	m.mu.Lock()
	tenantID := m.integration.TenantID
	previous := m.integration.AccessToken
	m.mu.Unlock()

	stored, err := m.Repo.GetByTenantAndProvider(ctx, tenantID, m.Provider)
	if err != nil {
		return
	}
	m.mu.Lock()
	m.integration = stored
	m.mu.Unlock()

	if stored.AccessToken != previous && m.OnRefresh != nil {
		m.OnRefresh()
	}
}

func (m *TokenManager) refreshOnce(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	logger := utils.GetLogger()
	access, refresh, expiresAt, err := m.Refresh(ctx, m.integration.RefreshToken)
	if err != nil {
		logger.Warn("token refresh failed, marking integration expired",
			zap.String("provider", m.Provider),
			zap.String("tenantID", m.integration.TenantID),
			zap.Error(err))
		if markErr := m.Repo.MarkExpired(ctx, m.integration.ID); markErr != nil {
			logger.Error("failed to mark integration expired",
				zap.String("integrationID", m.integration.ID), zap.Error(markErr))
		}
		m.integration.Status = models.IntegrationStatusExpired
		return &AuthExpiredError{Provider: m.Provider, Err: err}
	}

	if refresh == "" {
		refresh = m.integration.RefreshToken
	}
	if err := m.Repo.UpdateTokens(ctx, m.integration.ID, access, refresh, expiresAt); err != nil {
		return &StorageError{Op: "update tokens", Err: err}
	}
	m.integration.AccessToken = access
	m.integration.RefreshToken = refresh
	m.integration.ExpiresAt = expiresAt
	m.integration.Status = models.IntegrationStatusActive

	if m.OnRefresh != nil {
		m.OnRefresh()
	}
	return nil
}

// Do issues the request built by build with the current access token, read
// from the store so re-authorized credentials take effect immediately. The
// loop is explicitly bounded at one refresh and one reissue so the retry
// contract cannot regress into unbounded recursion.
func (m *TokenManager) Do(ctx context.Context, client *http.Client, build func(token string) (*http.Request, error)) (*http.Response, error) {
	m.reload(ctx)
	for attempt := 0; ; attempt++ {
		req, err := build(m.accessToken())
		if err != nil {
			return nil, &ProviderError{Provider: m.Provider, Err: err}
		}
		resp, err := client.Do(req.WithContext(ctx))
		if err != nil {
			return nil, &ProviderError{Provider: m.Provider, Err: err}
		}
		if resp.StatusCode != http.StatusUnauthorized || attempt > 0 {
			return resp, nil
		}
		resp.Body.Close()
		if err := m.refreshOnce(ctx); err != nil {
			return nil, err
		}
	}
}
