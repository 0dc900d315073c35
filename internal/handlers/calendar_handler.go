package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/christianmesinas/famplan/internal/models"
	"github.com/christianmesinas/famplan/internal/security"
	"github.com/christianmesinas/famplan/internal/service"
)

const calendarStateCookieName = "calendar_oauth_state"

// CalendarHandler exposes the Google calendar bridge endpoints
type CalendarHandler struct {
	calendarService *service.CalendarService
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(calendarService *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService}
}

// Connect handles GET /api/calendar/connect and redirects to the
// provider consent page
func (h *CalendarHandler) Connect(w http.ResponseWriter, r *http.Request) {
	state := security.GenerateStateToken()

	http.SetCookie(w, &http.Cookie{
		Name:     calendarStateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   security.IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(stateCookieTTL.Seconds()),
	})

	http.Redirect(w, r, h.calendarService.ConnectURL(state), http.StatusFound)
}

// ConnectCallback handles GET /auth/calendar/callback
func (h *CalendarHandler) ConnectCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")

	stateCookie, err := r.Cookie(calendarStateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		respondError(w, http.StatusBadRequest, "state mismatch on callback")
		return
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, calendarStateCookieName))

	if code == "" {
		respondError(w, http.StatusBadRequest, "callback missing authorization code")
		return
	}

	user := GetUserFromContext(r)
	if err := h.calendarService.HandleConnectCallback(r.Context(), user.ID, code); err != nil {
		respondServiceError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Status handles GET /api/calendar/status
func (h *CalendarHandler) Status(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	connected, err := h.calendarService.IsConnected(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"connected": connected})
}

// Disconnect handles DELETE /api/calendar
func (h *CalendarHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	if err := h.calendarService.Disconnect(user.ID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryTime(r *http.Request, name string) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, true
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// ListEvents handles GET /api/calendar/events?start=...&end=...
func (h *CalendarHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	start, ok := queryTime(r, "start")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid start parameter")
		return
	}
	end, ok := queryTime(r, "end")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid end parameter")
		return
	}

	events, err := h.calendarService.ListEvents(r.Context(), user.ID, start, end)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

// CreateEvent handles POST /api/calendar/events
func (h *CalendarHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	var event models.CalendarEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.calendarService.CreateEvent(r.Context(), user.ID, &event)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// UpdateEvent handles PUT /api/calendar/events/{id}
func (h *CalendarHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	eventID := r.PathValue("id")
	if eventID == "" {
		respondError(w, http.StatusBadRequest, "missing event id")
		return
	}

	var event models.CalendarEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.calendarService.UpdateEvent(r.Context(), user.ID, eventID, &event)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteEvent handles DELETE /api/calendar/events/{id}
func (h *CalendarHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	eventID := r.PathValue("id")
	if eventID == "" {
		respondError(w, http.StatusBadRequest, "missing event id")
		return
	}

	if err := h.calendarService.DeleteEvent(r.Context(), user.ID, eventID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
