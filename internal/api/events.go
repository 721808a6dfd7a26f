package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"eventos-web/internal/models"
)

// Image kinds served by the backend
const (
	ImageSquare = "square"
	ImageBanner = "banner"
)

// GetAllEvents returns the public event catalog
func (c *Client) GetAllEvents(ctx context.Context) ([]*models.Event, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/event/get_all",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	events, err := models.DecodeEvents(resp.body)
	if err != nil {
		return nil, &Error{Kind: KindServer, Message: "the event list could not be read", Err: err}
	}
	return events, nil
}

// GetEventByID finds an event in the public catalog. The backend has no
// public single-event endpoint.
func (c *Client) GetEventByID(ctx context.Context, eventID string) (*models.Event, error) {
	events, err := c.GetAllEvents(ctx)
	if err != nil {
		return nil, err
	}

	for _, e := range events {
		if e.ID == eventID {
			return e, nil
		}
	}

	return nil, &Error{Kind: KindNotFound, StatusCode: http.StatusNotFound, Message: models.ErrEventNotFound.Error(), Err: models.ErrEventNotFound}
}

// GetTicketsByEvent returns every ticket type of an event, hidden ones included
func (c *Client) GetTicketsByEvent(ctx context.Context, eventID string) ([]*models.TicketType, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/ticket/event",
		query:  url.Values{"id": {eventID}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets for event %s: %w", eventID, err)
	}

	tickets, err := models.DecodeTicketTypes(resp.body)
	if err != nil {
		return nil, &Error{Kind: KindServer, Message: "the ticket list could not be read", Err: err}
	}
	return tickets, nil
}

// GetEventImage downloads an event image and returns it with its content type
func (c *Client) GetEventImage(ctx context.Context, eventID, kind string) ([]byte, string, error) {
	if kind != ImageSquare && kind != ImageBanner {
		return nil, "", &Error{Kind: KindValidation, Message: fmt.Sprintf("unknown image type %q", kind)}
	}

	resp, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/image/",
		query:  url.Values{"id": {eventID}, "type": {kind}},
		expect: []int{http.StatusOK},
		errorMessages: map[int]string{
			http.StatusNotFound: "the requested image type does not exist for this event",
		},
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get %s image for event %s: %w", kind, eventID, err)
	}

	contentType := resp.header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(resp.body)
	}
	return resp.body, contentType, nil
}

// ImageURL returns the direct backend URL of an event image
func (c *Client) ImageURL(eventID, kind string) string {
	q := url.Values{"id": {eventID}, "type": {kind}}
	return c.baseURL + "/image/?" + q.Encode()
}
