package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"bookinghub/models"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// OutlookProvider creates events through Microsoft Graph.
type OutlookProvider struct {
	oauth   *oauth2.Config
	baseURL string
}

func NewOutlookProvider(clientID, clientSecret, tenantID string) *OutlookProvider {
	if tenantID == "" {
		tenantID = "common"
	}
	return &OutlookProvider{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     microsoft.AzureADEndpoint(tenantID),
			Scopes:       []string{"Calendars.ReadWrite", "offline_access"},
		},
		baseURL: graphBaseURL,
	}
}

func (o *OutlookProvider) Name() string { return "outlook" }

func (o *OutlookProvider) Connected(vendor *models.Vendor) bool {
	return o.oauth.ClientID != "" && vendor.OutlookRefreshToken != ""
}

type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphAttendee struct {
	EmailAddress struct {
		Address string `json:"address"`
	} `json:"emailAddress"`
	Type string `json:"type"`
}

type graphEvent struct {
	Subject string `json:"subject"`
	Body    struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body"`
	Start                      graphDateTime   `json:"start"`
	End                        graphDateTime   `json:"end"`
	Attendees                  []graphAttendee `json:"attendees,omitempty"`
	ReminderMinutesBeforeStart int             `json:"reminderMinutesBeforeStart"`
}

func buildGraphEvent(event Event) graphEvent {
	var ge graphEvent
	ge.Subject = event.Summary
	ge.Body.ContentType = "HTML"
	ge.Body.Content = strings.ReplaceAll(html.EscapeString(event.Description), "\n", "<br>")
	ge.Start = graphDateTime{DateTime: event.Start.UTC().Format("2006-01-02T15:04:05"), TimeZone: "UTC"}
	ge.End = graphDateTime{DateTime: event.End.UTC().Format("2006-01-02T15:04:05"), TimeZone: "UTC"}
	for _, email := range event.Attendees {
		var a graphAttendee
		a.EmailAddress.Address = email
		a.Type = "required"
		ge.Attendees = append(ge.Attendees, a)
	}
	ge.ReminderMinutesBeforeStart = 30
	return ge
}

func (o *OutlookProvider) CreateEvent(ctx context.Context, vendor *models.Vendor, event Event) (string, error) {
	if vendor.OutlookRefreshToken == "" {
		return "", errors.New("outlook calendar not connected")
	}
	client := o.oauth.Client(ctx, &oauth2.Token{RefreshToken: vendor.OutlookRefreshToken})

	payload, err := json.Marshal(buildGraphEvent(event))
	if err != nil {
		return "", fmt.Errorf("failed to encode event: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, o.baseURL+"/me/calendar/events", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("graph request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("graph returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode graph response: %w", err)
	}
	return created.ID, nil
}
