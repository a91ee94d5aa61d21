package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
)

type CalDAVProvider struct {
	client    *caldav.Client
	serverURL string
	location  *time.Location

	mu        sync.Mutex
	principal string
}

func NewCalDAVProvider(serverURL, username, password string, httpClient webdav.HTTPClient, loc *time.Location) (*CalDAVProvider, error) {
	baseURL, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid CalDAV server URL: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}

	// Create HTTP client with authentication if needed
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if username != "" && password != "" {
		httpClient = webdav.HTTPClientWithBasicAuth(httpClient, username, password)
	}

	c, err := caldav.NewClient(httpClient, baseURL.String())
	if err != nil {
		return nil, fmt.Errorf("failed to create CalDAV client: %w", err)
	}

	return &CalDAVProvider{
		client:    c,
		serverURL: serverURL,
		location:  loc,
	}, nil
}

// RequestPermission checks the credentials by discovering the current
// user principal. The server rejecting them is a denial, anything else
// that goes wrong is an error.
func (c *CalDAVProvider) RequestPermission(ctx context.Context) (bool, error) {
	principal, err := c.client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		if isCalDAVAuthError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to connect to CalDAV server: %w", err)
	}

	c.mu.Lock()
	c.principal = principal
	c.mu.Unlock()
	return true, nil
}

// isCalDAVAuthError matches the "<code> <status text>" prefix go-webdav
// puts on HTTP errors, and its unauthenticated principal error.
func isCalDAVAuthError(err error) bool {
	msg := err.Error()
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		if strings.HasPrefix(msg, fmt.Sprintf("%d %s", code, http.StatusText(code))) {
			return true
		}
	}
	return msg == "webdav: unauthenticated"
}

func (c *CalDAVProvider) ListCalendars(ctx context.Context) ([]CalendarRef, error) {
	c.mu.Lock()
	principal := c.principal
	c.mu.Unlock()
	if principal == "" {
		return nil, fmt.Errorf("CalDAV server %s not authorized", c.serverURL)
	}

	homeSet, err := c.client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar home set: %w", err)
	}

	calendars, err := c.client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendars: %w", err)
	}

	var result []CalendarRef
	for _, cal := range calendars {
		if !supportsEvents(cal) {
			continue
		}
		result = append(result, CalendarRef{
			ID:          cal.Path,
			Title:       cal.Name,
			Description: cal.Description,
			Source:      "caldav",
		})
	}
	return result, nil
}

// supportsEvents is true for calendars that may hold VEVENTs. Servers that
// do not advertise a component set are assumed to.
func supportsEvents(cal caldav.Calendar) bool {
	if len(cal.SupportedComponentSet) == 0 {
		return true
	}
	for _, comp := range cal.SupportedComponentSet {
		if strings.EqualFold(comp, ical.CompEvent) {
			return true
		}
	}
	return false
}

func (c *CalDAVProvider) QueryEvents(ctx context.Context, calendarIDs []string, start, end time.Time) ([]*Event, error) {
	// Setup a CalendarQuery to filter events by time range
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:     ical.CompCalendar,
			AllProps: true,
			AllComps: true,
		},
		CompFilter: caldav.CompFilter{
			Name: ical.CompCalendar,
			Comps: []caldav.CompFilter{{
				Name:  ical.CompEvent,
				Start: start,
				End:   end,
			}},
		},
	}

	var result []*Event
	for _, calendarID := range calendarIDs {
		objects, err := c.client.QueryCalendar(ctx, calendarID, query)
		if err != nil {
			return nil, fmt.Errorf("failed to list events: %w", err)
		}
		for _, obj := range objects {
			if event := calendarObjectToEvent(calendarID, obj.Path, obj.Data, c.location); event != nil {
				result = append(result, event)
			}
		}
	}
	return result, nil
}

// DeleteEvent removes the calendar object at the event's path.
func (c *CalDAVProvider) DeleteEvent(ctx context.Context, eventID string) error {
	if !strings.HasPrefix(eventID, "/") {
		return fmt.Errorf("%w: malformed CalDAV event path %q", ErrInvalidInput, eventID)
	}
	if err := c.client.Client.RemoveAll(ctx, eventID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// calendarObjectToEvent decodes the master VEVENT of a calendar object.
// Recurrence overrides in the same object are ignored and a series is
// returned once, with the times of its first occurrence.
func calendarObjectToEvent(calendarID, path string, cal *ical.Calendar, loc *time.Location) *Event {
	if cal == nil {
		return nil
	}

	var comp *ical.Component
	for _, child := range cal.Children {
		if child.Name != ical.CompEvent {
			continue
		}
		if child.Props.Get(ical.PropRecurrenceID) != nil {
			continue
		}
		comp = child
		break
	}
	if comp == nil {
		return nil
	}

	start, _ := comp.Props.DateTime(ical.PropDateTimeStart, loc)
	end, _ := comp.Props.DateTime(ical.PropDateTimeEnd, loc)

	allDay := false
	if prop := comp.Props.Get(ical.PropDateTimeStart); prop != nil && prop.ValueType() == ical.ValueDate {
		allDay = true
	}
	if end.IsZero() {
		if allDay {
			end = start.AddDate(0, 0, 1)
		} else if prop := comp.Props.Get(ical.PropDuration); prop != nil {
			if d, err := prop.Duration(); err == nil {
				end = start.Add(d)
			}
		}
	}

	return &Event{
		ID:         path,
		CalendarID: calendarID,
		Title:      getTextProp(comp.Props, ical.PropSummary),
		Start:      start,
		End:        end,
		Location:   getTextProp(comp.Props, ical.PropLocation),
		AllDay:     allDay,
		Recurring:  comp.Props.Get(ical.PropRecurrenceRule) != nil || comp.Props.Get(ical.PropRecurrenceDates) != nil,
	}
}

// Helper function to get text property safely
func getTextProp(props ical.Props, name string) string {
	prop := props.Get(name)
	if prop == nil {
		return ""
	}
	text, err := prop.Text()
	if err != nil {
		return prop.Value
	}
	return text
}
