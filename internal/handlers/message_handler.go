package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/christianmesinas/famplan/internal/service"
)

// MessageHandler exposes direct-message and notification endpoints
type MessageHandler struct {
	messageService *service.MessageService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Send handles POST /api/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	var req struct {
		Recipient string `json:"recipient"`
		Body      string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := h.messageService.Send(user.ID, req.Recipient, req.Body)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, message)
}

// Inbox handles GET /api/messages?page=N. Reading moves the unread
// watermark.
func (h *MessageHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	page, err := h.messageService.Inbox(user.ID, queryPage(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// UnreadCount handles GET /api/messages/unread
func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	count, err := h.messageService.UnreadCount(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"count": count})
}

// Notifications handles GET /api/notifications?since=F
func (h *MessageHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	since := 0.0
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid since parameter")
			return
		}
		since = parsed
	}

	notifications, err := h.messageService.Notifications(user.ID, since)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// Decode payloads for the client
	type notificationView struct {
		ID        int64                  `json:"id"`
		Name      string                 `json:"name"`
		Data      map[string]interface{} `json:"data"`
		Timestamp float64                `json:"timestamp"`
	}
	views := make([]notificationView, 0, len(notifications))
	for i := range notifications {
		data, err := notifications[i].Data()
		if err != nil {
			respondServiceError(w, err)
			return
		}
		views = append(views, notificationView{
			ID:        notifications[i].ID,
			Name:      notifications[i].Name,
			Data:      data,
			Timestamp: notifications[i].Timestamp,
		})
	}
	respondJSON(w, http.StatusOK, views)
}
