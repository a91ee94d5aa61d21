package main

import (
	"context"
	"errors"
	"time"
)

// CalendarProvider is the external calendar service the gate, reader and
// writer talk to. Every call may block on the network.
type CalendarProvider interface {
	RequestPermission(ctx context.Context) (bool, error)
	ListCalendars(ctx context.Context) ([]CalendarRef, error)
	QueryEvents(ctx context.Context, calendarIDs []string, start, end time.Time) ([]*Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// CalendarRef identifies a provider calendar. ID is opaque; the rest is
// display metadata.
type CalendarRef struct {
	ID          string
	Title       string
	Description string
	Color       string
	Source      string
}

// Event is a provider event. ID is provider-assigned and addresses the
// event for deletion without any other context.
type Event struct {
	ID         string
	CalendarID string
	Title      string
	Start      time.Time
	End        time.Time
	Location   string
	AllDay     bool
	// Recurring marks a series the provider returned unexpanded. Start and
	// End are those of the first occurrence.
	Recurring bool
}

// overlaps reports whether the event intersects [start, end).
func (e *Event) overlaps(start, end time.Time) bool {
	if !e.Start.Before(end) {
		return false
	}
	if e.End.After(e.Start) {
		return e.End.After(start)
	}
	// Zero-length events are points in time.
	return !e.Start.Before(start)
}

var (
	ErrPermissionDenied    = errors.New("calendar permission denied")
	ErrProviderUnavailable = errors.New("calendar provider unavailable")
	ErrNotFound            = errors.New("no calendars found on device")
	ErrInvalidInput        = errors.New("invalid input")
)
