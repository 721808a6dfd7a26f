package models

import (
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Event represents a catalog event as served by the backend
type Event struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Description           string    `json:"description"`
	StartDate             time.Time `json:"start_date"`
	Location              string    `json:"location"`
	Category              string    `json:"category"`
	YoutubeURL            string    `json:"youtube_url,omitempty"`
	AccessCode            string    `json:"-"`
	ObservationObligatory bool      `json:"observation_obligatory"`
	StoreID               string    `json:"store_id,omitempty"`
}

// EventSnapshot is the subset of an event kept alongside a staged purchase
type EventSnapshot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	Location  string    `json:"location"`
	StoreID   string    `json:"store_id,omitempty"`
}

// DecodeEvent builds an Event from a backend record
func DecodeEvent(r gjson.Result) *Event {
	return &Event{
		ID:                    firstString(r, "_id", "id", "event_id"),
		Name:                  firstString(r, "name"),
		Description:           firstString(r, "description"),
		StartDate:             parseTimestamp(firstString(r, "start_date", "startDate")),
		Location:              firstString(r, "location"),
		Category:              firstString(r, "category"),
		YoutubeURL:            firstString(r, "youtube_url", "youtubeUrl"),
		AccessCode:            firstString(r, "code"),
		ObservationObligatory: firstBool(r, "observation_obligatory", "observationObligatory"),
		StoreID:               firstString(r, "store_id", "storeId"),
	}
}

// DecodeEvents decodes the backend's event list
func DecodeEvents(raw []byte) ([]*Event, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("invalid event list payload")
	}

	root := gjson.ParseBytes(raw)
	if !root.IsArray() {
		return nil, errors.New("event list payload is not an array")
	}

	var events []*Event
	root.ForEach(func(_, value gjson.Result) bool {
		events = append(events, DecodeEvent(value))
		return true
	})

	return events, nil
}

// RequiresAccessCode reports whether a code must be supplied to buy tickets
func (e *Event) RequiresAccessCode() bool {
	return strings.TrimSpace(e.AccessCode) != ""
}

// Snapshot returns the staging snapshot of the event
func (e *Event) Snapshot() EventSnapshot {
	return EventSnapshot{
		ID:        e.ID,
		Name:      e.Name,
		StartDate: e.StartDate,
		Location:  e.Location,
		StoreID:   e.StoreID,
	}
}

// IsUpcoming reports whether the event starts at or after now. Events without
// a start date count as upcoming.
func (e *Event) IsUpcoming(now time.Time) bool {
	if e.StartDate.IsZero() {
		return true
	}
	return !e.StartDate.Before(now)
}

// YoutubeEmbedURL converts the event's YouTube link to a privacy-enhanced
// embed URL, or returns "" when the link is not a recognizable YouTube URL.
func (e *Event) YoutubeEmbedURL() string {
	return YoutubeEmbedURL(e.YoutubeURL)
}

// YoutubeEmbedURL converts a YouTube link to a youtube-nocookie embed URL
func YoutubeEmbedURL(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}

	const embedBase = "https://www.youtube-nocookie.com"

	switch {
	case strings.Contains(u.Hostname(), "youtu.be"):
		videoID := strings.TrimSpace(strings.TrimPrefix(u.Path, "/"))
		if videoID == "" {
			return ""
		}
		return embedBase + "/embed/" + videoID
	case strings.Contains(u.Hostname(), "youtube.com"):
		if strings.HasPrefix(u.Path, "/embed/") {
			return embedBase + u.Path
		}
		if videoID := u.Query().Get("v"); videoID != "" {
			return embedBase + "/embed/" + videoID
		}
	}

	return ""
}

// SortEventsByStartDate orders events by ascending start date
func SortEventsByStartDate(events []*Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartDate.Before(events[j].StartDate)
	})
}
