package handlers

import (
	"net/http"

	"eventos-web/internal/models"
	"eventos-web/internal/services"
	"eventos-web/internal/storage"
)

// ProfileHandler handles profile maintenance
type ProfileHandler struct {
	profileService services.ProfileServiceInterface
}

func NewProfileHandler(profileService services.ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// LinkDocument attaches an identity document to the buyer's profile
func (h *ProfileHandler) LinkDocument(w http.ResponseWriter, r *http.Request) {
	var req models.DocumentUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	profile, err := h.profileService.LinkDocument(r.Context(), storage.FromContext(r.Context()), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
