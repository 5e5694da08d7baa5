package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "bookinghub/database/repository/booking"
	"bookinghub/models"
)

const dateLayout = "2006-01-02"

// AvailabilityCalculator derives bookable slots from working hours, active
// bookings and live locks. Nothing it computes is stored.
type AvailabilityCalculator struct {
	store  ScheduleReader
	locks  *SlotLockManager
	stride time.Duration
}

func NewAvailabilityCalculator(store ScheduleReader, locks *SlotLockManager, stride time.Duration) *AvailabilityCalculator {
	return &AvailabilityCalculator{store: store, locks: locks, stride: stride}
}

// ComputeAvailability returns the ordered candidate slots for vendorID on date
// ("YYYY-MM-DD" in the vendor's timezone). A vendor with no hours that day
// gets an empty slice.
func (a *AvailabilityCalculator) ComputeAvailability(ctx context.Context, vendorID, date string, durationMinutes int) ([]models.TimeSlot, error) {
	if durationMinutes <= 0 {
		return nil, validationError(fmt.Sprintf("duration must be positive, got %d", durationMinutes))
	}
	if vendorID == "" {
		return nil, validationError("vendor is required")
	}

	vendor, err := a.store.GetVendor(ctx, vendorID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, validationError("vendor not found")
		}
		return nil, err
	}
	loc, err := vendor.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone for vendor %s: %w", vendorID, err)
	}
	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return nil, validationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date))
	}

	openAt, closeAt, ok, err := a.workingHours(ctx, vendorID, day)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.TimeSlot{}, nil
	}

	duration := time.Duration(durationMinutes) * time.Minute
	var starts []time.Time
	for step := openAt; !step.Add(duration).After(closeAt); step = step.Add(a.stride) {
		starts = append(starts, step)
	}
	if len(starts) == 0 {
		return []models.TimeSlot{}, nil
	}

	bookings, err := a.store.FindOverlapping(ctx, vendorID, openAt, closeAt, models.ActiveBookingStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings for vendor %s: %w", vendorID, err)
	}
	locked, err := a.locks.LockedStarts(ctx, vendorID, starts)
	if err != nil {
		return nil, err
	}

	slots := make([]models.TimeSlot, 0, len(starts))
	for i, start := range starts {
		end := start.Add(duration)
		conflicted := false
		for _, b := range bookings {
			if b.Status.IsActive() && models.Overlaps(start, end, b.StartTime, b.EndTime) {
				conflicted = true
				break
			}
		}
		slots = append(slots, models.TimeSlot{
			StartTime:  start,
			EndTime:    end,
			Available:  !conflicted && !locked[i],
			Locked:     locked[i],
			Conflicted: conflicted,
		})
	}
	return slots, nil
}

// workingHours resolves the open interval for day. Special hours win over the
// weekly schedule; ok is false when the vendor is closed.
func (a *AvailabilityCalculator) workingHours(ctx context.Context, vendorID string, day time.Time) (time.Time, time.Time, bool, error) {
	var openStr, closeStr string

	special, err := a.store.GetSpecialHours(ctx, vendorID, day.Format(dateLayout))
	switch {
	case err == nil:
		if special.Closed() {
			return time.Time{}, time.Time{}, false, nil
		}
		openStr, closeStr = special.StartTime, special.EndTime
	case errors.Is(err, bookingRepo.ErrNotFound):
		weekly, err := a.store.GetWeeklyHours(ctx, vendorID, day.Weekday())
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return time.Time{}, time.Time{}, false, nil
		}
		if err != nil {
			return time.Time{}, time.Time{}, false, err
		}
		if !weekly.IsActive {
			return time.Time{}, time.Time{}, false, nil
		}
		openStr, closeStr = weekly.StartTime, weekly.EndTime
	default:
		return time.Time{}, time.Time{}, false, err
	}

	openAt, err := clockOn(day, openStr)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	closeAt, err := clockOn(day, closeStr)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if !openAt.Before(closeAt) {
		return time.Time{}, time.Time{}, false, nil
	}
	return openAt, closeAt, true, nil
}

// clockOn places an "HH:mm" wall clock on day in day's location.
func clockOn(day time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid working hours %q: %w", hhmm, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}
