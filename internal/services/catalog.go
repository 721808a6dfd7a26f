package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"eventos-web/internal/api"
	"eventos-web/internal/models"

	"golang.org/x/sync/errgroup"
)

// EventDetail is an event page: the event, its visible tickets in price
// order and the media links the page renders
type EventDetail struct {
	Event           *models.Event        `json:"event"`
	Tickets         []*models.TicketType `json:"tickets"`
	YoutubeEmbedURL string               `json:"youtube_embed_url,omitempty"`
	BannerURL       string               `json:"banner_url"`
	SquareURL       string               `json:"square_url"`
}

// CatalogService serves the public event catalog
type CatalogService struct {
	backend BackendFor
}

// NewCatalogService creates a new catalog service
func NewCatalogService(backend BackendFor) *CatalogService {
	return &CatalogService{backend: backend}
}

// ListEvents returns all events ordered by start date
func (s *CatalogService) ListEvents(ctx context.Context) ([]*models.Event, error) {
	events, err := s.backend(nil).GetAllEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	models.SortEventsByStartDate(events)
	return events, nil
}

// EventDetail loads an event and its tickets concurrently
func (s *CatalogService) EventDetail(ctx context.Context, eventID string) (*EventDetail, error) {
	backend := s.backend(nil)

	var (
		event   *models.Event
		tickets []*models.TicketType
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		event, err = backend.GetEventByID(gctx, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		tickets, err = backend.GetTicketsByEvent(gctx, eventID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load event %s: %w", eventID, err)
	}

	return &EventDetail{
		Event:           event,
		Tickets:         models.VisibleTicketTypes(tickets),
		YoutubeEmbedURL: event.YoutubeEmbedURL(),
		BannerURL:       EventImagePath(event.ID, api.ImageBanner),
		SquareURL:       EventImagePath(event.ID, api.ImageSquare),
	}, nil
}

// Categories returns the fixed categories with the number of events in each
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	events, err := s.ListEvents(ctx)
	if err != nil {
		return nil, err
	}

	categories := make([]models.Category, len(models.Categories))
	copy(categories, models.Categories)
	for i := range categories {
		categories[i].Count = len(filterByCategory(events, categories[i].Key))
	}
	return categories, nil
}

// EventsByCategory returns a category and its events in start date order
func (s *CatalogService) EventsByCategory(ctx context.Context, key string) (models.Category, []*models.Event, error) {
	category, ok := models.CategoryByKey(key)
	if !ok {
		return models.Category{}, nil, models.ErrCategoryNotFound
	}

	events, err := s.ListEvents(ctx)
	if err != nil {
		return models.Category{}, nil, err
	}

	matched := filterByCategory(events, key)
	category.Count = len(matched)
	return category, matched, nil
}

func filterByCategory(events []*models.Event, key string) []*models.Event {
	matched := make([]*models.Event, 0)
	for _, e := range events {
		if strings.EqualFold(strings.TrimSpace(e.Category), key) {
			matched = append(matched, e)
		}
	}
	return matched
}

// EventImagePath is the path this server proxies an event image on
func EventImagePath(eventID, kind string) string {
	return "/api/events/" + url.PathEscape(eventID) + "/image/" + kind
}
