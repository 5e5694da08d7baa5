package booking

import (
	"context"
	"fmt"
	"time"

	"bookinghub/models"
)

// ConflictChecker answers whether an interval is free of active bookings.
type ConflictChecker struct {
	store OverlapFinder
}

func NewConflictChecker(store OverlapFinder) *ConflictChecker {
	return &ConflictChecker{store: store}
}

// IsFree reports whether no PENDING or CONFIRMED booking of vendorID overlaps
// the half-open interval [start, end).
func (c *ConflictChecker) IsFree(ctx context.Context, vendorID string, start, end time.Time) (bool, error) {
	conflicts, err := c.Conflicts(ctx, vendorID, start, end)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}

// Conflicts returns the active bookings overlapping [start, end).
func (c *ConflictChecker) Conflicts(ctx context.Context, vendorID string, start, end time.Time) ([]models.Booking, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("invalid interval: start %s is not before end %s", start, end)
	}
	candidates, err := c.store.FindOverlapping(ctx, vendorID, start, end, models.ActiveBookingStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to check conflicts for vendor %s: %w", vendorID, err)
	}

	var conflicts []models.Booking
	for _, b := range candidates {
		if b.Status.IsActive() && models.Overlaps(b.StartTime, b.EndTime, start, end) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts, nil
}
