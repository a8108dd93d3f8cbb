package scheduling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CalendlyClient is a minimal OAuth2-bearer client for the Calendly v2 API.
// All calls go through the token manager's bounded 401 retry.
type CalendlyClient struct {
	BaseURL string
	HTTP    *http.Client
	Tokens  *TokenManager
}

type calendlyUser struct {
	URI           string `json:"uri"`
	Name          string `json:"name"`
	SchedulingURL string `json:"scheduling_url"`
	Timezone      string `json:"timezone"`
}

type calendlyUserEnvelope struct {
	Resource calendlyUser `json:"resource"`
}

type calendlyEventType struct {
	URI             string `json:"uri"`
	Name            string `json:"name"`
	Active          bool   `json:"active"`
	DurationMinutes int    `json:"duration"`
}

type calendlyEvent struct {
	URI       string    `json:"uri"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type calendlyCollection[T any] struct {
	Collection []T `json:"collection"`
}

func (c *CalendlyClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.Tokens.Do(ctx, c.HTTP, func(token string) (*http.Request, error) {
		u := c.BaseURL + path
		if len(query) > 0 {
			u += "?" + query.Encode()
		}
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ProviderError{Provider: "calendly", StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProviderError{Provider: "calendly", Err: fmt.Errorf("decode %s response: %w", path, err)}
	}
	return nil
}

// Me resolves the authenticated user behind the credential.
func (c *CalendlyClient) Me(ctx context.Context) (*calendlyUser, error) {
	var envelope calendlyUserEnvelope
	if err := c.getJSON(ctx, "/users/me", nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Resource, nil
}

// ListEventTypes returns the user's active bookable event types.
func (c *CalendlyClient) ListEventTypes(ctx context.Context, userURI string) ([]calendlyEventType, error) {
	query := url.Values{}
	query.Set("user", userURI)
	query.Set("active", "true")

	var coll calendlyCollection[calendlyEventType]
	if err := c.getJSON(ctx, "/event_types", query, &coll); err != nil {
		return nil, err
	}
	return coll.Collection, nil
}

// ListScheduledEvents returns the user's active scheduled events in range.
func (c *CalendlyClient) ListScheduledEvents(ctx context.Context, userURI string, from, to time.Time) ([]calendlyEvent, error) {
	query := url.Values{}
	query.Set("user", userURI)
	query.Set("status", "active")
	query.Set("min_start_time", from.UTC().Format(time.RFC3339))
	query.Set("max_start_time", to.UTC().Format(time.RFC3339))

	var coll calendlyCollection[calendlyEvent]
	if err := c.getJSON(ctx, "/scheduled_events", query, &coll); err != nil {
		return nil, err
	}
	return coll.Collection, nil
}

// CancelEvent cancels a scheduled event. The caller maps 404/410 to
// already-gone semantics.
func (c *CalendlyClient) CancelEvent(ctx context.Context, eventUUID, reason string) error {
	body, err := json.Marshal(map[string]string{"reason": reason})
	if err != nil {
		return &ProviderError{Provider: "calendly", Err: err}
	}

	resp, err := c.Tokens.Do(ctx, c.HTTP, func(token string) (*http.Request, error) {
		u := fmt.Sprintf("%s/scheduled_events/%s/cancellation", c.BaseURL, eventUUID)
		req, err := http.NewRequest(http.MethodPost, u, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return &ProviderError{Provider: "calendly", StatusCode: resp.StatusCode}
	}
	return nil
}

// eventUUIDFromID accepts either a bare event UUID or a full Calendly event
// URI and returns the UUID segment.
func eventUUIDFromID(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

type oauthTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// NewOAuthRefreshFunc builds a RefreshFunc posting a standard
// grant_type=refresh_token form to the provider's token endpoint. Both
// remote providers share this grant shape.
func NewOAuthRefreshFunc(httpClient *http.Client, tokenURL, clientID, clientSecret string) RefreshFunc {
	return func(ctx context.Context, refreshToken string) (string, string, time.Time, error) {
		form := url.Values{}
		form.Set("grant_type", "refresh_token")
		form.Set("refresh_token", refreshToken)
		form.Set("client_id", clientID)
		form.Set("client_secret", clientSecret)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
		if err != nil {
			return "", "", time.Time{}, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := httpClient.Do(req)
		if err != nil {
			return "", "", time.Time{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return "", "", time.Time{}, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, payload)
		}

		var tok oauthTokenResponse
		if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
			return "", "", time.Time{}, fmt.Errorf("decode token response: %w", err)
		}
		expiresAt := time.Now().UTC().Add(time.Duration(tok.ExpiresIn) * time.Second)
		return tok.AccessToken, tok.RefreshToken, expiresAt, nil
	}
}
