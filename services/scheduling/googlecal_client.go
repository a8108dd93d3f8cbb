package scheduling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"frontdesk/models"
)

// GoogleCalClient is a minimal OAuth2-bearer client for the Google Calendar
// v3 API, scoped to the credential owner's primary calendar.
type GoogleCalClient struct {
	BaseURL string
	HTTP    *http.Client
	Tokens  *TokenManager
}

type gcalCalendar struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	TimeZone string `json:"timeZone"`
}

type gcalDateTime struct {
	DateTime time.Time `json:"dateTime"`
	TimeZone string    `json:"timeZone,omitempty"`
}

type gcalEvent struct {
	ID          string       `json:"id,omitempty"`
	Summary     string       `json:"summary,omitempty"`
	Description string       `json:"description,omitempty"`
	Status      string       `json:"status,omitempty"`
	Start       gcalDateTime `json:"start"`
	End         gcalDateTime `json:"end"`
}

type gcalEventList struct {
	Items []gcalEvent `json:"items"`
}

type gcalFreeBusyRequest struct {
	TimeMin time.Time           `json:"timeMin"`
	TimeMax time.Time           `json:"timeMax"`
	Items   []map[string]string `json:"items"`
}

type gcalFreeBusyResponse struct {
	Calendars map[string]struct {
		Busy []struct {
			Start time.Time `json:"start"`
			End   time.Time `json:"end"`
		} `json:"busy"`
	} `json:"calendars"`
}

func (c *GoogleCalClient) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return &ProviderError{Provider: "google_calendar", Err: err}
		}
	}

	resp, err := c.Tokens.Do(ctx, c.HTTP, func(token string) (*http.Request, error) {
		u := c.BaseURL + path
		if len(query) > 0 {
			u += "?" + query.Encode()
		}
		req, err := http.NewRequest(method, u, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ProviderError{Provider: "google_calendar", StatusCode: resp.StatusCode}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &ProviderError{Provider: "google_calendar", Err: fmt.Errorf("decode %s response: %w", path, err)}
		}
	}
	return nil
}

// PrimaryCalendar resolves the credential owner's primary calendar.
func (c *GoogleCalClient) PrimaryCalendar(ctx context.Context) (*gcalCalendar, error) {
	var cal gcalCalendar
	if err := c.do(ctx, http.MethodGet, "/calendars/primary", nil, nil, &cal); err != nil {
		return nil, err
	}
	return &cal, nil
}

// FreeBusy runs the provider's native free-busy query over the primary
// calendar and maps every non-free interval to a busy period.
func (c *GoogleCalClient) FreeBusy(ctx context.Context, calendarID string, from, to time.Time) ([]models.BusyPeriod, error) {
	reqBody := gcalFreeBusyRequest{
		TimeMin: from.UTC(),
		TimeMax: to.UTC(),
		Items:   []map[string]string{{"id": calendarID}},
	}
	var fb gcalFreeBusyResponse
	if err := c.do(ctx, http.MethodPost, "/freeBusy", nil, reqBody, &fb); err != nil {
		return nil, err
	}

	var busy []models.BusyPeriod
	for _, cal := range fb.Calendars {
		for _, b := range cal.Busy {
			busy = append(busy, models.BusyPeriod{Start: b.Start, End: b.End})
		}
	}
	return busy, nil
}

// InsertEvent creates a calendar event and returns its remote id.
func (c *GoogleCalClient) InsertEvent(ctx context.Context, event gcalEvent) (string, error) {
	var created gcalEvent
	if err := c.do(ctx, http.MethodPost, "/calendars/primary/events", nil, event, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// DeleteEvent removes a calendar event. The caller maps 404/410 to
// already-gone semantics.
func (c *GoogleCalClient) DeleteEvent(ctx context.Context, eventID string) error {
	return c.do(ctx, http.MethodDelete, "/calendars/primary/events/"+url.PathEscape(eventID), nil, nil, nil)
}

// ListEvents returns non-cancelled events in range from the primary calendar.
func (c *GoogleCalClient) ListEvents(ctx context.Context, from, to time.Time) ([]gcalEvent, error) {
	query := url.Values{}
	query.Set("timeMin", from.UTC().Format(time.RFC3339))
	query.Set("timeMax", to.UTC().Format(time.RFC3339))
	query.Set("singleEvents", "true")
	query.Set("orderBy", "startTime")

	var list gcalEventList
	if err := c.do(ctx, http.MethodGet, "/calendars/primary/events", query, nil, &list); err != nil {
		return nil, err
	}

	events := make([]gcalEvent, 0, len(list.Items))
	for _, ev := range list.Items {
		if ev.Status == "cancelled" {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}
