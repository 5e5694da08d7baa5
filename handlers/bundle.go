package handlers

import (
	"context"
	"time"

	"bookinghub/models"
	"bookinghub/utils"
)

type AvailabilityService interface {
	ComputeAvailability(ctx context.Context, vendorID, date string, durationMinutes int) ([]models.TimeSlot, error)
}

type ReservationService interface {
	Reserve(ctx context.Context, req models.ReserveRequest) (*models.ReserveResult, error)
}

type SlotService interface {
	Acquire(ctx context.Context, vendorID string, start time.Time, sessionID string) error
	Release(ctx context.Context, vendorID string, start time.Time, sessionID string) (bool, error)
	Extend(ctx context.Context, vendorID string, start time.Time, sessionID string) (bool, error)
	TTL() time.Duration
}

type BookingQueries interface {
	GetService(ctx context.Context, serviceID string) (*models.Service, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
}

// HandlerBundle groups the endpoint handlers and what the routes need to
// wire them.
type HandlerBundle struct {
	Booking *BookingHandler
	Health  *utils.HealthMonitor

	JWTSecret         []byte
	MaxRequestsPerMin int
}

// BookingHandler serves availability, reservation, listing and slot hold
// endpoints.
type BookingHandler struct {
	Availability AvailabilityService
	Reservations ReservationService
	Slots        SlotService
	Queries      BookingQueries
	Now          func() time.Time
}

func NewBookingHandler(av AvailabilityService, res ReservationService, slots SlotService, q BookingQueries) *BookingHandler {
	return &BookingHandler{
		Availability: av,
		Reservations: res,
		Slots:        slots,
		Queries:      q,
		Now:          time.Now,
	}
}
