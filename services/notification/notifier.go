package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bookinghub/models"

	"go.uber.org/zap"
)

// Notifier tells customers and vendors about booking changes. Push is
// optional; a nil PushSender skips it.
type Notifier struct {
	email  EmailSender
	push   PushSender
	appURL string
	logger *zap.Logger
}

func NewNotifier(email EmailSender, push PushSender, appURL string, logger *zap.Logger) *Notifier {
	return &Notifier{
		email:  email,
		push:   push,
		appURL: strings.TrimRight(appURL, "/"),
		logger: logger,
	}
}

// NotifyCustomer emails the customer their booking confirmation.
func (n *Notifier) NotifyCustomer(ctx context.Context, event models.BookingCommitted, vendor *models.Vendor) error {
	html, err := render(customerConfirmation, templateData{
		RecipientName: event.CustomerName,
		VendorName:    vendor.BusinessName,
		ServiceName:   event.ServiceName,
		BookingID:     event.BookingID,
		BookingURL:    fmt.Sprintf("%s/bookings/%s", n.appURL, event.BookingID),
		When:          n.when(event, vendor),
	})
	if err != nil {
		return err
	}
	return n.send(ctx, event.BookingID, Email{To: []string{event.CustomerEmail}, Subject: customerConfirmation.subject, HTML: html})
}

// NotifyVendor emails the vendor about a new booking.
func (n *Notifier) NotifyVendor(ctx context.Context, event models.BookingCommitted, vendor *models.Vendor) error {
	html, err := render(vendorNewBooking, templateData{
		RecipientName: vendor.BusinessName,
		CustomerName:  event.CustomerName,
		ServiceName:   event.ServiceName,
		BookingURL:    fmt.Sprintf("%s/vendor/bookings/%s", n.appURL, event.BookingID),
		When:          n.when(event, vendor),
		Notes:         event.Notes,
	})
	if err != nil {
		return err
	}
	return n.send(ctx, event.BookingID, Email{To: []string{vendor.Email}, Subject: vendorNewBooking.subject, HTML: html})
}

// PushVendor sends the vendor a push notification. Without a push sender or
// a device token it does nothing.
func (n *Notifier) PushVendor(ctx context.Context, event models.BookingCommitted, vendor *models.Vendor) error {
	if n.push == nil || vendor.FCMToken == "" {
		n.logger.Debug("push skipped", zap.String("bookingId", event.BookingID), zap.String("vendorId", vendor.ID))
		return nil
	}
	return n.push.Push(ctx, vendor.FCMToken,
		"New booking",
		fmt.Sprintf("%s booked %s for %s", event.CustomerName, event.ServiceName, n.when(event, vendor)),
		map[string]string{"bookingId": event.BookingID, "type": "booking_created"},
	)
}

func (n *Notifier) send(ctx context.Context, bookingID string, email Email) error {
	id, err := n.email.Send(ctx, email)
	if err != nil {
		return err
	}
	n.logger.Debug("email sent", zap.String("bookingId", bookingID), zap.String("subject", email.Subject), zap.String("emailId", id))
	return nil
}

// when formats the start time in the vendor's timezone, falling back to UTC.
func (n *Notifier) when(event models.BookingCommitted, vendor *models.Vendor) string {
	loc, err := vendor.Location()
	if err != nil {
		loc = time.UTC
	}
	return formatWhen(event.StartTime, loc)
}
