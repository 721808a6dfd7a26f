package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"eventos-web/internal/models"
	"eventos-web/internal/services"
	"eventos-web/internal/storage"

	"github.com/go-chi/chi/v5"
)

// CatalogHandler serves the public event catalog
type CatalogHandler struct {
	catalogService services.CatalogServiceInterface
	imageService   services.ImageServiceInterface
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService services.CatalogServiceInterface, imageService services.ImageServiceInterface) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		imageService:   imageService,
	}
}

// EventListResponse is the catalog listing together with the browser's
// preferred layout
type EventListResponse struct {
	Events   []*models.Event `json:"events"`
	ViewMode string          `json:"view_mode"`
}

// CategoryResponse is one category and its events
type CategoryResponse struct {
	Category models.Category `json:"category"`
	Events   []*models.Event `json:"events"`
}

// ListEvents lists every published event
func (h *CatalogHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.catalogService.ListEvents(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, EventListResponse{
		Events:   events,
		ViewMode: storage.FromContext(r.Context()).ViewMode(),
	})
}

// EventDetail returns one event with its ticket types
func (h *CatalogHandler) EventDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.catalogService.EventDetail(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// EventImage proxies an event's square or banner image. An optional width
// query parameter scales it down.
func (h *CatalogHandler) EventImage(w http.ResponseWriter, r *http.Request) {
	width := 0
	if raw := r.URL.Query().Get("width"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(w, r, fmt.Errorf("%w: width must be a positive number", models.ErrInvalidInput))
			return
		}
		width = parsed
	}

	img, err := h.imageService.EventImage(r.Context(), chi.URLParam(r, "eventID"), chi.URLParam(r, "kind"), width)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	if img.Placeholder {
		w.Header().Set("Cache-Control", "no-store")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=3600")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data)
}

// Categories lists the catalog categories with their event counts
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.Categories(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// CategoryEvents lists the events of one category
func (h *CatalogHandler) CategoryEvents(w http.ResponseWriter, r *http.Request) {
	category, events, err := h.catalogService.EventsByCategory(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CategoryResponse{Category: category, Events: events})
}
