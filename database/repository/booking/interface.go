package bookingRepo

import (
	"context"
	"errors"
	"time"

	"bookinghub/models"
)

// ErrNotFound is returned by point lookups that match nothing.
var ErrNotFound = errors.New("record not found")

// BookingRepository is the transactional store behind the reservation core.
type BookingRepository interface {
	GetVendor(ctx context.Context, vendorID string) (*models.Vendor, error)
	GetService(ctx context.Context, serviceID string) (*models.Service, error)
	// GetWeeklyHours returns the active recurring hours for a weekday.
	GetWeeklyHours(ctx context.Context, vendorID string, day time.Weekday) (*models.WeeklyHours, error)
	// GetSpecialHours returns the override for a "2006-01-02" date.
	GetSpecialHours(ctx context.Context, vendorID, date string) (*models.SpecialHours, error)
	// FindOverlapping returns bookings in one of statuses whose interval
	// overlaps the half-open window [start, end).
	FindOverlapping(ctx context.Context, vendorID string, start, end time.Time, statuses []models.BookingStatus) ([]models.Booking, error)
	// CreateBookingWithPayment writes both rows or neither.
	CreateBookingWithPayment(ctx context.Context, booking *models.Booking, payment *models.Payment) error
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	Ping(ctx context.Context) error
}

func statusStrings(statuses []models.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
