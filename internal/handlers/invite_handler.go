package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/christianmesinas/famplan/internal/service"
)

// InviteHandler exposes invite issuing and redemption endpoints
type InviteHandler struct {
	inviteService *service.InviteService
}

// NewInviteHandler creates a new invite handler
func NewInviteHandler(inviteService *service.InviteService) *InviteHandler {
	return &InviteHandler{inviteService: inviteService}
}

// Issue handles POST /api/families/{id}/invites
func (h *InviteHandler) Issue(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	familyID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid family id")
		return
	}

	var req struct {
		Email *string `json:"email"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	issued, err := h.inviteService.Issue(r.Context(), familyID, user.ID, req.Email)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, issued)
}

// List handles GET /api/families/{id}/invites
func (h *InviteHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	familyID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid family id")
		return
	}

	invites, err := h.inviteService.ListFamilyInvites(familyID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invites)
}

// Redeem handles POST /api/invites/{token}/redeem
func (h *InviteHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	token := r.PathValue("token")
	if token == "" {
		respondError(w, http.StatusBadRequest, "missing invite token")
		return
	}

	family, err := h.inviteService.Redeem(token, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, family)
}

// Revoke handles DELETE /api/invites/{id}
func (h *InviteHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	inviteID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid invite id")
		return
	}

	if err := h.inviteService.Revoke(inviteID, user.ID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
