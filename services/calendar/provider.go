package calendar

import (
	"context"
	"fmt"
	"time"

	"bookinghub/models"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Event is a calendar entry created for a booking.
type Event struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

// Provider writes events into one external calendar service.
type Provider interface {
	Name() string
	// Connected reports whether the vendor has authorized this provider.
	Connected(vendor *models.Vendor) bool
	CreateEvent(ctx context.Context, vendor *models.Vendor, event Event) (string, error)
}

// EventFromBooking builds the event placed on the vendor's calendar.
func EventFromBooking(b models.BookingCommitted) Event {
	description := fmt.Sprintf("Booking %s for %s (%s)", b.BookingID, b.CustomerName, b.CustomerEmail)
	if b.Notes != "" {
		description += "\n\nNotes: " + b.Notes
	}
	var attendees []string
	if b.CustomerEmail != "" {
		attendees = []string{b.CustomerEmail}
	}
	return Event{
		Summary:     fmt.Sprintf("%s - %s", b.ServiceName, b.CustomerName),
		Description: description,
		Start:       b.StartTime.UTC(),
		End:         b.EndTime.UTC(),
		Attendees:   attendees,
	}
}

// Syncer pushes an event to every provider the vendor has connected.
type Syncer struct {
	providers []Provider
	logger    *zap.Logger
}

func NewSyncer(logger *zap.Logger, providers ...Provider) *Syncer {
	return &Syncer{providers: providers, logger: logger}
}

// Sync returns the created event ids keyed by provider name. A vendor with no
// connected provider is a no-op.
func (s *Syncer) Sync(ctx context.Context, vendor *models.Vendor, event Event) (map[string]string, error) {
	created := make(map[string]string)
	var errs error
	for _, p := range s.providers {
		if !p.Connected(vendor) {
			continue
		}
		id, err := p.CreateEvent(ctx, vendor, event)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		created[p.Name()] = id
		s.logger.Info("calendar event created",
			zap.String("provider", p.Name()),
			zap.String("vendorId", vendor.ID),
			zap.String("eventId", id))
	}
	return created, errs
}
