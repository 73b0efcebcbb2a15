package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"matchwave-backend/internal/middleware"
	"matchwave-backend/internal/pagination"
	"matchwave-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserHandler handles user browsing, profile updates and likes
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers handles GET /api/v1/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := middleware.GetUserID(ctx)

	input := services.ListUsersInput{
		Gender:  r.URL.Query().Get("gender"),
		OrderBy: r.URL.Query().Get("orderBy"),
		Page:    pagination.FromRequest(r),
	}
	if v := r.URL.Query().Get("minAge"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			input.MinAge = n
		}
	}
	if v := r.URL.Query().Get("maxAge"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			input.MaxAge = n
		}
	}

	users, meta, err := h.userService.ListUsers(ctx, callerID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	meta.WriteHeaders(w)
	respondJSON(w, http.StatusOK, users)
}

// GetUser handles GET /api/v1/users/{user_id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetUser(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// UpdateUser handles PUT /api/v1/users/{user_id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var input services.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), chi.URLParam(r, "user_id"), input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", user.ID).Msg("Profile updated")

	respondJSON(w, http.StatusOK, user)
}

// PushTokenRequest carries an APNs device token; null clears it
type PushTokenRequest struct {
	PushToken *string `json:"push_token"`
}

// UpdatePushToken handles PUT /api/v1/users/{user_id}/push-token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	var req PushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID := chi.URLParam(r, "user_id")
	if err := h.userService.UpdatePushToken(r.Context(), userID, req.PushToken); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// LikeUser handles POST /api/v1/users/{user_id}/like/{recipient_id}
func (h *UserHandler) LikeUser(w http.ResponseWriter, r *http.Request) {
	likerID := chi.URLParam(r, "user_id")
	likeeID := chi.URLParam(r, "recipient_id")

	like, err := h.userService.Like(r.Context(), likerID, likeeID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("liker_id", likerID).
		Str("likee_id", likeeID).
		Msg("User liked")

	respondJSON(w, http.StatusCreated, like)
}
