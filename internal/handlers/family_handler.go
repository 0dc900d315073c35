package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/christianmesinas/famplan/internal/service"
)

// FamilyHandler exposes family and membership endpoints
type FamilyHandler struct {
	familyService *service.FamilyService
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(familyService *service.FamilyService) *FamilyHandler {
	return &FamilyHandler{familyService: familyService}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// Create handles POST /api/families
func (h *FamilyHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	family, err := h.familyService.CreateFamily(req.Name, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, family)
}

// List handles GET /api/families
func (h *FamilyHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	families, err := h.familyService.ListUserFamilies(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, families)
}

// Get handles GET /api/families/{id}
func (h *FamilyHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	familyID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid family id")
		return
	}

	family, err := h.familyService.GetFamily(familyID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, family)
}

// Rename handles PUT /api/families/{id}
func (h *FamilyHandler) Rename(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	familyID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid family id")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.familyService.RenameFamily(familyID, user.ID, req.Name); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "renamed"})
}

// Delete handles DELETE /api/families/{id}
func (h *FamilyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	familyID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid family id")
		return
	}

	if err := h.familyService.DeleteFamily(familyID, user.ID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Members handles GET /api/families/{id}/members
func (h *FamilyHandler) Members(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	familyID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid family id")
		return
	}

	members, err := h.familyService.ListMembers(familyID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, members)
}

// Leave handles POST /api/families/{id}/leave
func (h *FamilyHandler) Leave(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	familyID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid family id")
		return
	}

	if err := h.familyService.LeaveFamily(user.ID, familyID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "left"})
}
