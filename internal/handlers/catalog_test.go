package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"eventos-web/internal/models"
	"eventos-web/internal/services"
	"eventos-web/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCatalogHandler_ListEvents(t *testing.T) {
	catalog := new(MockCatalogService)
	handler := NewCatalogHandler(catalog, new(MockImageService))

	catalog.On("ListEvents", mock.Anything).Return([]*models.Event{{ID: "ev-1", Name: "Rock Fest"}}, nil)

	state := newState()
	state.SetViewMode(storage.ViewModeList)

	rec := serve(state, http.MethodGet, "/events", handler.ListEvents, "/events", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp EventListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "ev-1", resp.Events[0].ID)
	assert.Equal(t, storage.ViewModeList, resp.ViewMode)
}

func TestCatalogHandler_EventDetail(t *testing.T) {
	catalog := new(MockCatalogService)
	handler := NewCatalogHandler(catalog, new(MockImageService))

	catalog.On("EventDetail", mock.Anything, "ev-1").Return(&services.EventDetail{
		Event:     &models.Event{ID: "ev-1"},
		BannerURL: "/api/events/ev-1/image/banner",
	}, nil)
	catalog.On("EventDetail", mock.Anything, "gone").Return(nil, models.ErrEventNotFound)

	rec := serve(newState(), http.MethodGet, "/events/{eventID}", handler.EventDetail, "/events/ev-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail services.EventDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "/api/events/ev-1/image/banner", detail.BannerURL)

	rec = serve(newState(), http.MethodGet, "/events/{eventID}", handler.EventDetail, "/events/gone", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogHandler_EventImage(t *testing.T) {
	t.Run("resized original", func(t *testing.T) {
		images := new(MockImageService)
		handler := NewCatalogHandler(new(MockCatalogService), images)

		images.On("EventImage", mock.Anything, "ev-1", "banner", 600).
			Return(&services.EventImage{Data: []byte("jpeg"), ContentType: "image/jpeg"}, nil)

		rec := serve(newState(), http.MethodGet, "/events/{eventID}/image/{kind}", handler.EventImage, "/events/ev-1/image/banner?width=600", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
		assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
		assert.Equal(t, "jpeg", rec.Body.String())
	})

	t.Run("placeholder is not cached", func(t *testing.T) {
		images := new(MockImageService)
		handler := NewCatalogHandler(new(MockCatalogService), images)

		images.On("EventImage", mock.Anything, "ev-1", "square", 0).
			Return(&services.EventImage{Data: []byte("png"), ContentType: "image/png", Placeholder: true}, nil)

		rec := serve(newState(), http.MethodGet, "/events/{eventID}/image/{kind}", handler.EventImage, "/events/ev-1/image/square", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	})

	t.Run("bad width", func(t *testing.T) {
		images := new(MockImageService)
		handler := NewCatalogHandler(new(MockCatalogService), images)

		rec := serve(newState(), http.MethodGet, "/events/{eventID}/image/{kind}", handler.EventImage, "/events/ev-1/image/square?width=wide", "")

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		images.AssertNotCalled(t, "EventImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCatalogHandler_Categories(t *testing.T) {
	catalog := new(MockCatalogService)
	handler := NewCatalogHandler(catalog, new(MockImageService))

	catalog.On("Categories", mock.Anything).Return([]models.Category{{Key: "concert", Name: "Conciertos", Count: 2}}, nil)
	catalog.On("EventsByCategory", mock.Anything, "concert").
		Return(models.Category{Key: "concert", Name: "Conciertos"}, []*models.Event{{ID: "ev-1"}}, nil)
	catalog.On("EventsByCategory", mock.Anything, "opera").
		Return(models.Category{}, nil, models.ErrCategoryNotFound)

	rec := serve(newState(), http.MethodGet, "/categories", handler.Categories, "/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"key":"concert","name":"Conciertos","count":2}]`, rec.Body.String())

	rec = serve(newState(), http.MethodGet, "/categories/{key}", handler.CategoryEvents, "/categories/concert", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp CategoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "concert", resp.Category.Key)
	assert.Len(t, resp.Events, 1)

	rec = serve(newState(), http.MethodGet, "/categories/{key}", handler.CategoryEvents, "/categories/opera", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestViewModeHandlers(t *testing.T) {
	state := newState()

	rec := serve(state, http.MethodPost, "/toggle", ToggleViewMode, "/toggle", "")
	assert.JSONEq(t, `{"mode":"list"}`, rec.Body.String())

	rec = serve(state, http.MethodGet, "/view", ViewMode, "/view", "")
	assert.JSONEq(t, `{"mode":"list"}`, rec.Body.String())

	rec = serve(state, http.MethodPut, "/view", SetViewMode, "/view", `{"mode":"gallery"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, storage.ViewModeGallery, state.ViewMode())

	rec = serve(state, http.MethodPut, "/view", SetViewMode, "/view", `{"mode":"mosaic"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
