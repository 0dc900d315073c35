package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/christianmesinas/famplan/internal/service"
)

// FeedHandler exposes post, feed and follow endpoints
type FeedHandler struct {
	feedService *service.FeedService
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

func queryPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// CreatePost handles POST /api/posts
func (h *FeedHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	var req struct {
		Body     string `json:"body"`
		FamilyID *int64 `json:"family_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := h.feedService.CreatePost(user.ID, req.Body, req.FamilyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, post)
}

// EditPost handles PUT /api/posts/{id}
func (h *FeedHandler) EditPost(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	postID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.feedService.EditPost(postID, user.ID, req.Body); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeletePost handles DELETE /api/posts/{id}
func (h *FeedHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	postID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	if err := h.feedService.DeletePost(postID, user.ID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FamilyFeed handles GET /api/families/{id}/feed?page=N
func (h *FeedHandler) FamilyFeed(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	familyID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid family id")
		return
	}

	page, err := h.feedService.FamilyFeed(user.ID, familyID, queryPage(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// Home handles GET /api/home
func (h *FeedHandler) Home(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	previews, err := h.feedService.HomeOverview(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, previews)
}

// FollowingFeed handles GET /api/feed?page=N
func (h *FeedHandler) FollowingFeed(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	page, err := h.feedService.FollowingFeed(user.ID, queryPage(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// Explore handles GET /api/explore?page=N
func (h *FeedHandler) Explore(w http.ResponseWriter, r *http.Request) {
	page, err := h.feedService.ExploreFeed(queryPage(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// UserPosts handles GET /api/users/{username}/posts?page=N
func (h *FeedHandler) UserPosts(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	username := r.PathValue("username")

	page, err := h.feedService.UserPosts(user.ID, username, queryPage(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// Follow handles POST /api/users/{username}/follow
func (h *FeedHandler) Follow(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	username := r.PathValue("username")

	if err := h.feedService.Follow(user.ID, username); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "following"})
}

// Unfollow handles DELETE /api/users/{username}/follow
func (h *FeedHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	username := r.PathValue("username")

	if err := h.feedService.Unfollow(user.ID, username); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "unfollowed"})
}

// Profile handles GET /api/users/{username}
func (h *FeedHandler) Profile(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	profile, err := h.feedService.Profile(username)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}
