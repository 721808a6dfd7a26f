package handlers

import (
	"fmt"
	"net/http"

	"eventos-web/internal/models"
	"eventos-web/internal/storage"
)

// ViewModeResponse carries the catalog layout preference
type ViewModeResponse struct {
	Mode string `json:"mode"`
}

// ViewMode returns the browser's catalog layout preference
func ViewMode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ViewModeResponse{Mode: storage.FromContext(r.Context()).ViewMode()})
}

// ToggleViewMode switches between gallery and list layouts
func ToggleViewMode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ViewModeResponse{Mode: storage.FromContext(r.Context()).ToggleViewMode()})
}

// SetViewMode stores an explicit layout preference
func SetViewMode(w http.ResponseWriter, r *http.Request) {
	var req models.ViewModeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if req.Mode != storage.ViewModeGallery && req.Mode != storage.ViewModeList {
		respondError(w, r, fmt.Errorf("%w: mode must be %q or %q", models.ErrInvalidInput, storage.ViewModeGallery, storage.ViewModeList))
		return
	}

	state := storage.FromContext(r.Context())
	state.SetViewMode(req.Mode)
	writeJSON(w, http.StatusOK, ViewModeResponse{Mode: state.ViewMode()})
}
