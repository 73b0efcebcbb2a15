package handlers

import (
	"net/http"

	"matchwave-backend/internal/middleware"
	"matchwave-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// 10 MB upload cap
const maxUploadBytes = 10 << 20

// PhotoHandler handles photo-related HTTP requests
type PhotoHandler struct {
	photoService *services.PhotoService
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService *services.PhotoService) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
	}
}

// UploadPhoto handles POST /api/v1/users/{user_id}/photos
func (h *PhotoHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size == 0 {
		respondError(w, "file is empty", http.StatusBadRequest)
		return
	}

	photo, err := h.photoService.Upload(r.Context(), userID, header.Header.Get("Content-Type"), file)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("filename", header.Filename).
			Msg("Failed to upload photo")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("photo_id", photo.ID).
		Bool("is_main", photo.IsMain).
		Msg("Photo uploaded")

	respondJSON(w, http.StatusCreated, photo)
}

// GetPhoto handles GET /api/v1/users/{user_id}/photos/{id}
func (h *PhotoHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	photo, err := h.photoService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, photo)
}

// SetMainPhoto handles POST /api/v1/users/{user_id}/photos/{id}/setMain
func (h *PhotoHandler) SetMainPhoto(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	photo, err := h.photoService.SetMain(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("photo_id", photo.ID).
		Msg("Main photo changed")

	respondJSON(w, http.StatusOK, photo)
}

// DeletePhoto handles DELETE /api/v1/users/{user_id}/photos/{id}
func (h *PhotoHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	photoID := chi.URLParam(r, "id")

	if err := h.photoService.Delete(r.Context(), userID, photoID); err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("photo_id", photoID).
		Msg("Photo deleted")

	w.WriteHeader(http.StatusNoContent)
}
