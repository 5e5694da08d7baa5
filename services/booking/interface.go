package booking

import (
	"context"
	"time"

	"bookinghub/models"
	"bookinghub/services/payment"
)

// OverlapFinder is the read the conflict checker needs from the booking store.
type OverlapFinder interface {
	FindOverlapping(ctx context.Context, vendorID string, start, end time.Time, statuses []models.BookingStatus) ([]models.Booking, error)
}

// ScheduleReader is what the availability calculator reads.
type ScheduleReader interface {
	OverlapFinder
	GetVendor(ctx context.Context, vendorID string) (*models.Vendor, error)
	GetWeeklyHours(ctx context.Context, vendorID string, day time.Weekday) (*models.WeeklyHours, error)
	GetSpecialHours(ctx context.Context, vendorID, date string) (*models.SpecialHours, error)
}

// ReservationStore is what the coordinator reads and writes.
type ReservationStore interface {
	GetService(ctx context.Context, serviceID string) (*models.Service, error)
	CreateBookingWithPayment(ctx context.Context, booking *models.Booking, payment *models.Payment) error
}

// SlotLocker claims and frees a single (vendor, start) slot for a session.
type SlotLocker interface {
	Acquire(ctx context.Context, vendorID string, start time.Time, sessionID string) error
	Release(ctx context.Context, vendorID string, start time.Time, sessionID string) (bool, error)
}

// PaymentAuthorizer places a hold on the customer's payment method.
type PaymentAuthorizer interface {
	Authorize(ctx context.Context, req payment.AuthorizationRequest) (*payment.Authorization, error)
}

// FanOut hands a committed booking to background side effects. It must not
// block on them.
type FanOut interface {
	Dispatch(event models.BookingCommitted)
}

// ReconciliationSink receives payments that were authorized but whose booking
// could not be written.
type ReconciliationSink interface {
	OrphanedPayment(ctx context.Context, orphan OrphanedPayment)
}
