package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/christianmesinas/famplan/internal/models"
	"github.com/christianmesinas/famplan/internal/repository"
	"github.com/christianmesinas/famplan/pkg/logger"
)

var (
	ErrCalendarNotConnected = errors.New("calendar not connected")
	ErrCalendarUnavailable  = errors.New("calendar provider unavailable")
	ErrEventNotFound        = errors.New("calendar event not found")
)

const (
	calendarBaseURL   = "https://www.googleapis.com/calendar/v3"
	calendarScope     = "https://www.googleapis.com/auth/calendar"
	calendarTimeout   = 10 * time.Second
	defaultWindowDays = 30
)

// CalendarService bridges famplan to the user's Google calendar. The
// per-user credential bundle is stored opaquely and handed to the
// oauth2 transport; famplan never interprets the tokens itself.
type CalendarService struct {
	calendarRepo *repository.CalendarRepository
	oauthConfig  *oauth2.Config
	baseURL      string
}

// NewCalendarService creates a new calendar service
func NewCalendarService(calendarRepo *repository.CalendarRepository, clientID, clientSecret, redirectURL string) *CalendarService {
	return &CalendarService{
		calendarRepo: calendarRepo,
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{calendarScope},
			Endpoint:     google.Endpoint,
		},
		baseURL: calendarBaseURL,
	}
}

// ConnectURL returns the provider consent URL. Offline access with a
// forced consent prompt so a refresh token is always granted.
func (s *CalendarService) ConnectURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// HandleConnectCallback exchanges the authorization code and stores
// the credential bundle, replacing any previous one.
func (s *CalendarService) HandleConnectCallback(ctx context.Context, userID int64, code string) error {
	exchangeCtx, cancel := context.WithTimeout(ctx, calendarTimeout)
	defer cancel()

	token, err := s.oauthConfig.Exchange(exchangeCtx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange calendar code: %w", err)
	}

	scopes, err := json.Marshal(s.oauthConfig.Scopes)
	if err != nil {
		return err
	}

	creds := &models.CalendarCredentials{
		UserID:       userID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenURI:     s.oauthConfig.Endpoint.TokenURL,
		ClientID:     s.oauthConfig.ClientID,
		ClientSecret: s.oauthConfig.ClientSecret,
		Scopes:       string(scopes),
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry.UTC()
		creds.Expiry = &expiry
	}
	return s.calendarRepo.SaveCredentials(creds)
}

// IsConnected reports whether the user has a stored credential bundle
func (s *CalendarService) IsConnected(userID int64) (bool, error) {
	creds, err := s.calendarRepo.GetCredentials(userID)
	if err != nil {
		return false, err
	}
	return creds != nil, nil
}

// Disconnect drops the user's credential bundle
func (s *CalendarService) Disconnect(userID int64) error {
	return s.calendarRepo.DeleteCredentials(userID)
}

// client builds an authenticated HTTP client for the user. The oauth2
// transport refreshes the access token as needed; a rotated token is
// written back to the store.
func (s *CalendarService) client(ctx context.Context, userID int64) (*http.Client, error) {
	creds, err := s.calendarRepo.GetCredentials(userID)
	if err != nil {
		return nil, err
	}
	if creds == nil {
		return nil, ErrCalendarNotConnected
	}

	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
	}
	if creds.Expiry != nil {
		token.Expiry = *creds.Expiry
	}

	source := s.oauthConfig.TokenSource(ctx, token)
	client := oauth2.NewClient(ctx, &savingTokenSource{
		inner:  source,
		svc:    s,
		userID: userID,
		last:   token,
	})
	client.Timeout = calendarTimeout
	return client, nil
}

// savingTokenSource persists refreshed tokens back to the repository
type savingTokenSource struct {
	inner  oauth2.TokenSource
	svc    *CalendarService
	userID int64
	last   *oauth2.Token
}

func (ts *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := ts.inner.Token()
	if err != nil {
		return nil, err
	}
	if token.AccessToken != ts.last.AccessToken {
		refresh := token.RefreshToken
		if refresh == "" {
			refresh = ts.last.RefreshToken
		}
		expiry := token.Expiry.UTC()
		if err := ts.svc.calendarRepo.UpdateToken(ts.userID, token.AccessToken, refresh, &expiry); err != nil {
			logger.Warn().Err(err).Int64("user_id", ts.userID).Msg("Failed to persist rotated calendar token")
		}
		ts.last = token
	}
	return token, nil
}

// doWithRetry performs the request and retries once on a transient
// failure. retryOn5xx must be false for non-idempotent writes: a 5xx
// can arrive after the provider already committed the write, and a
// retry would apply it twice. Network errors (no response received)
// are always retried.
func doWithRetry(client *http.Client, retryOn5xx bool, build func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		req, err := build()
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("calendar provider returned %d", resp.StatusCode)
			if !retryOn5xx {
				break
			}
			continue
		}
		return resp, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrCalendarUnavailable, lastErr)
}

// googleEventTime is the provider's event time representation
type googleEventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type googleEvent struct {
	ID          string           `json:"id,omitempty"`
	Summary     string           `json:"summary,omitempty"`
	Description string           `json:"description,omitempty"`
	Location    string           `json:"location,omitempty"`
	Start       *googleEventTime `json:"start,omitempty"`
	End         *googleEventTime `json:"end,omitempty"`
	HTMLLink    string           `json:"htmlLink,omitempty"`
}

type googleEventList struct {
	Items []googleEvent `json:"items"`
}

func fromGoogleEvent(g *googleEvent) models.CalendarEvent {
	event := models.CalendarEvent{
		ID:          g.ID,
		Summary:     g.Summary,
		Description: g.Description,
		Location:    g.Location,
		HTMLLink:    g.HTMLLink,
	}
	parse := func(t *googleEventTime) (*time.Time, bool) {
		if t == nil {
			return nil, false
		}
		if t.DateTime != "" {
			if parsed, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
				return &parsed, false
			}
			return nil, false
		}
		if t.Date != "" {
			if parsed, err := time.Parse("2006-01-02", t.Date); err == nil {
				return &parsed, true
			}
		}
		return nil, false
	}
	var allDay bool
	event.Start, allDay = parse(g.Start)
	event.End, _ = parse(g.End)
	event.AllDay = allDay
	return event
}

func toGoogleEvent(e *models.CalendarEvent) *googleEvent {
	g := &googleEvent{
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
	}
	format := func(t *time.Time) *googleEventTime {
		if t == nil {
			return nil
		}
		if e.AllDay {
			return &googleEventTime{Date: t.Format("2006-01-02")}
		}
		return &googleEventTime{DateTime: t.Format(time.RFC3339)}
	}
	g.Start = format(e.Start)
	g.End = format(e.End)
	return g
}

// ListEvents returns events on the user's primary calendar within the
// window. Zero bounds default to now and now+30d.
func (s *CalendarService) ListEvents(ctx context.Context, userID int64, start, end time.Time) ([]models.CalendarEvent, error) {
	client, err := s.client(ctx, userID)
	if err != nil {
		return nil, err
	}

	if start.IsZero() {
		start = time.Now().UTC()
	}
	if end.IsZero() {
		end = start.Add(defaultWindowDays * 24 * time.Hour)
	}

	query := url.Values{}
	query.Set("timeMin", start.UTC().Format(time.RFC3339))
	query.Set("timeMax", end.UTC().Format(time.RFC3339))
	query.Set("singleEvents", "true")
	query.Set("orderBy", "startTime")
	endpoint := s.baseURL + "/calendars/primary/events?" + query.Encode()

	resp, err := doWithRetry(client, true, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar list failed with status %d", resp.StatusCode)
	}

	var list googleEventList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode calendar events: %w", err)
	}

	events := make([]models.CalendarEvent, 0, len(list.Items))
	for i := range list.Items {
		events = append(events, fromGoogleEvent(&list.Items[i]))
	}
	return events, nil
}

// CreateEvent inserts an event on the user's primary calendar
func (s *CalendarService) CreateEvent(ctx context.Context, userID int64, event *models.CalendarEvent) (*models.CalendarEvent, error) {
	client, err := s.client(ctx, userID)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(toGoogleEvent(event))
	if err != nil {
		return nil, err
	}
	endpoint := s.baseURL + "/calendars/primary/events"

	// Insert is not idempotent; a 5xx must not be retried
	resp, err := doWithRetry(client, false, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar create failed with status %d", resp.StatusCode)
	}

	var created googleEvent
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode created event: %w", err)
	}
	result := fromGoogleEvent(&created)
	return &result, nil
}

// UpdateEvent patches an existing event on the primary calendar
func (s *CalendarService) UpdateEvent(ctx context.Context, userID int64, eventID string, event *models.CalendarEvent) (*models.CalendarEvent, error) {
	client, err := s.client(ctx, userID)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(toGoogleEvent(event))
	if err != nil {
		return nil, err
	}
	endpoint := s.baseURL + "/calendars/primary/events/" + url.PathEscape(eventID)

	resp, err := doWithRetry(client, true, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrEventNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar update failed with status %d", resp.StatusCode)
	}

	var updated googleEvent
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return nil, fmt.Errorf("failed to decode updated event: %w", err)
	}
	result := fromGoogleEvent(&updated)
	return &result, nil
}

// DeleteEvent removes an event from the primary calendar
func (s *CalendarService) DeleteEvent(ctx context.Context, userID int64, eventID string) error {
	client, err := s.client(ctx, userID)
	if err != nil {
		return err
	}

	endpoint := s.baseURL + "/calendars/primary/events/" + url.PathEscape(eventID)

	resp, err := doWithRetry(client, true, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return ErrEventNotFound
	}
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("calendar delete failed with status %d", resp.StatusCode)
	}
	return nil
}
