package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookinghub/models"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleProvider creates events with the Google Calendar v3 API using the
// vendor's stored refresh token.
type GoogleProvider struct {
	oauth *oauth2.Config
	opts  []option.ClientOption
}

func NewGoogleProvider(clientID, clientSecret string, opts ...option.ClientOption) *GoogleProvider {
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gcal.CalendarScope},
		},
		opts: opts,
	}
}

func (g *GoogleProvider) Name() string { return "google" }

func (g *GoogleProvider) Connected(vendor *models.Vendor) bool {
	return g.oauth.ClientID != "" && vendor.GoogleRefreshToken != ""
}

func (g *GoogleProvider) CreateEvent(ctx context.Context, vendor *models.Vendor, event Event) (string, error) {
	if vendor.GoogleRefreshToken == "" {
		return "", errors.New("google calendar not connected")
	}
	ts := g.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: vendor.GoogleRefreshToken})
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, g.opts...)

	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create calendar client: %w", err)
	}

	calendarID := vendor.GoogleCalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	created, err := svc.Events.Insert(calendarID, buildGoogleEvent(event)).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to insert event: %w", err)
	}
	return created.Id, nil
}

func buildGoogleEvent(event Event) *gcal.Event {
	attendees := make([]*gcal.EventAttendee, 0, len(event.Attendees))
	for _, email := range event.Attendees {
		attendees = append(attendees, &gcal.EventAttendee{Email: email})
	}
	return &gcal.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Start: &gcal.EventDateTime{
			DateTime: event.Start.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &gcal.EventDateTime{
			DateTime: event.End.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		Attendees: attendees,
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 30},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}
}
