package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"bookinghub/models"

	"github.com/hibiken/asynq"
)

const (
	TypeNotifyCustomer      = "booking:notify_customer"
	TypeNotifyVendor        = "booking:notify_vendor"
	TypePushVendor          = "booking:push_vendor"
	TypeBookingCalendarSync = "booking:calendar_sync"

	QueueNotifications = "notifications"
	QueueCalendar      = "calendar"
)

const taskTimeout = 2 * time.Minute

// Each side effect of a committed booking is its own task, so a retry only
// repeats the channel that failed. Task ids are derived from the booking so
// a duplicate dispatch is rejected.

// NewNotifyCustomerTask builds the task that emails the customer.
func NewNotifyCustomerTask(event models.BookingCommitted, maxRetry int) (*asynq.Task, error) {
	return newBookingTask(TypeNotifyCustomer, QueueNotifications, event, maxRetry)
}

// NewNotifyVendorTask builds the task that emails the vendor.
func NewNotifyVendorTask(event models.BookingCommitted, maxRetry int) (*asynq.Task, error) {
	return newBookingTask(TypeNotifyVendor, QueueNotifications, event, maxRetry)
}

// NewPushVendorTask builds the task that pushes the booking to the vendor's device.
func NewPushVendorTask(event models.BookingCommitted, maxRetry int) (*asynq.Task, error) {
	return newBookingTask(TypePushVendor, QueueNotifications, event, maxRetry)
}

// NewCalendarSyncTask builds the task that writes a new booking to the
// vendor's external calendars.
func NewCalendarSyncTask(event models.BookingCommitted, maxRetry int) (*asynq.Task, error) {
	return newBookingTask(TypeBookingCalendarSync, QueueCalendar, event, maxRetry)
}

func newBookingTask(typename, queue string, event models.BookingCommitted, maxRetry int) (*asynq.Task, error) {
	if event.BookingID == "" {
		return nil, fmt.Errorf("%s: booking id is required", typename)
	}
	b, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(typename, b,
		asynq.Queue(queue),
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(taskTimeout),
		asynq.TaskID(typename+":"+event.BookingID),
	), nil
}

// ParseBookingCommitted decodes the payload of a booking task.
func ParseBookingCommitted(task *asynq.Task) (models.BookingCommitted, error) {
	var event models.BookingCommitted
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		return event, fmt.Errorf("invalid %s payload: %w", task.Type(), err)
	}
	if event.BookingID == "" {
		return event, fmt.Errorf("invalid %s payload: missing booking id", task.Type())
	}
	return event, nil
}
