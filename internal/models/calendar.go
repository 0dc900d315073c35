package models

import "time"

// CalendarCredentials is the opaque per-user credential bundle for the
// external calendar provider. One row per user, replaced on reconnect.
type CalendarCredentials struct {
	ID           int64      `json:"-"`
	UserID       int64      `json:"-"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	TokenURI     string     `json:"-"`
	ClientID     string     `json:"-"`
	ClientSecret string     `json:"-"`
	Scopes       string     `json:"-"`
	Expiry       *time.Time `json:"-"`
}

// CalendarEvent mirrors the fields of a provider calendar event that
// the bridge exposes.
type CalendarEvent struct {
	ID          string     `json:"id,omitempty"`
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	AllDay      bool       `json:"all_day,omitempty"`
	HTMLLink    string     `json:"html_link,omitempty"`
}
