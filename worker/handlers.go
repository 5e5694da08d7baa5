package worker

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "bookinghub/database/repository/booking"
	"bookinghub/models"
	"bookinghub/services/calendar"
	"bookinghub/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// BookingReader loads the current state of a booking and its vendor.
type BookingReader interface {
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	GetVendor(ctx context.Context, vendorID string) (*models.Vendor, error)
}

type BookingNotifier interface {
	NotifyCustomer(ctx context.Context, event models.BookingCommitted, vendor *models.Vendor) error
	NotifyVendor(ctx context.Context, event models.BookingCommitted, vendor *models.Vendor) error
	PushVendor(ctx context.Context, event models.BookingCommitted, vendor *models.Vendor) error
}

type CalendarSyncer interface {
	Sync(ctx context.Context, vendor *models.Vendor, event calendar.Event) (map[string]string, error)
}

// Handlers processes the booking fan-out task types. Each channel is a
// separate task so a retry never repeats a delivery that already succeeded.
type Handlers struct {
	store    BookingReader
	notifier BookingNotifier
	calendar CalendarSyncer
	logger   *zap.Logger
}

func NewHandlers(store BookingReader, notifier BookingNotifier, syncer CalendarSyncer, logger *zap.Logger) *Handlers {
	return &Handlers{store: store, notifier: notifier, calendar: syncer, logger: logger}
}

func (h *Handlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(tasks.TypeNotifyCustomer, h.HandleNotifyCustomer)
	mux.HandleFunc(tasks.TypeNotifyVendor, h.HandleNotifyVendor)
	mux.HandleFunc(tasks.TypePushVendor, h.HandlePushVendor)
	mux.HandleFunc(tasks.TypeBookingCalendarSync, h.HandleCalendarSync)
}

// load decodes the task and reads the booking and vendor it refers to. A nil
// vendor with a nil error means the booking is no longer active and the task
// has nothing to do. Malformed payloads and unknown records will never
// succeed, so they skip retries.
func (h *Handlers) load(ctx context.Context, task *asynq.Task) (models.BookingCommitted, *models.Vendor, error) {
	event, err := tasks.ParseBookingCommitted(task)
	if err != nil {
		return event, nil, fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	booking, err := h.store.GetBooking(ctx, event.BookingID)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return event, nil, fmt.Errorf("booking %s: %v: %w", event.BookingID, err, asynq.SkipRetry)
	}
	if err != nil {
		return event, nil, err
	}
	if !booking.Status.IsActive() {
		h.logger.Info("booking no longer active, skipping fan-out",
			zap.String("type", task.Type()),
			zap.String("bookingId", event.BookingID),
			zap.String("status", string(booking.Status)))
		return event, nil, nil
	}

	vendor, err := h.store.GetVendor(ctx, event.VendorID)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return event, nil, fmt.Errorf("vendor %s: %v: %w", event.VendorID, err, asynq.SkipRetry)
	}
	if err != nil {
		return event, nil, err
	}
	return event, vendor, nil
}

type sendFunc func(ctx context.Context, event models.BookingCommitted, vendor *models.Vendor) error

func (h *Handlers) deliver(ctx context.Context, task *asynq.Task, send sendFunc) error {
	event, vendor, err := h.load(ctx, task)
	if err != nil || vendor == nil {
		return err
	}
	if err := send(ctx, event, vendor); err != nil {
		return fmt.Errorf("%s for booking %s: %w", task.Type(), event.BookingID, err)
	}
	h.logger.Info("booking notification sent", zap.String("type", task.Type()), zap.String("bookingId", event.BookingID))
	return nil
}

func (h *Handlers) HandleNotifyCustomer(ctx context.Context, task *asynq.Task) error {
	return h.deliver(ctx, task, h.notifier.NotifyCustomer)
}

func (h *Handlers) HandleNotifyVendor(ctx context.Context, task *asynq.Task) error {
	return h.deliver(ctx, task, h.notifier.NotifyVendor)
}

func (h *Handlers) HandlePushVendor(ctx context.Context, task *asynq.Task) error {
	return h.deliver(ctx, task, h.notifier.PushVendor)
}

func (h *Handlers) HandleCalendarSync(ctx context.Context, task *asynq.Task) error {
	event, vendor, err := h.load(ctx, task)
	if err != nil || vendor == nil {
		return err
	}
	created, err := h.calendar.Sync(ctx, vendor, calendar.EventFromBooking(event))
	if err != nil {
		return fmt.Errorf("calendar sync for booking %s: %w", event.BookingID, err)
	}
	if len(created) == 0 {
		h.logger.Debug("vendor has no connected calendars", zap.String("vendorId", vendor.ID))
	}
	return nil
}
