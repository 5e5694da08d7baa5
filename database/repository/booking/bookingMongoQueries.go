package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"bookinghub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindOverlapping uses the half-open overlap test: an existing booking
// conflicts when it starts before the window ends and ends after the window
// starts. That single predicate covers bookings the window starts inside,
// ends inside, or fully contains.
func (repo *MongoBookingRepo) FindOverlapping(
	ctx context.Context,
	vendorID string,
	start, end time.Time,
	statuses []models.BookingStatus,
) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.queryTimeout)
	defer cancel()

	filter := bson.M{
		"vendorId":  vendorID,
		"status":    bson.M{"$in": statusStrings(statuses)},
		"startTime": bson.M{"$lt": end},
		"endTime":   bson.M{"$gt": start},
	}
	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}})

	cursor, err := repo.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding overlapping bookings: %w", err)
	}
	return bookings, nil
}

// ListBookings returns bookings matching filter, newest first unless
// filter.Ascending is set.
func (repo *MongoBookingRepo) ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.queryTimeout)
	defer cancel()

	query := bson.M{}
	if filter.CustomerID != "" {
		query["customerId"] = filter.CustomerID
	}
	if filter.VendorID != "" {
		query["vendorId"] = filter.VendorID
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": statusStrings(filter.Statuses)}
	}
	if !filter.From.IsZero() {
		query["startTime"] = bson.M{"$gte": filter.From}
	}

	direction := -1
	if filter.Ascending {
		direction = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: direction}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := repo.bookingColl.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}
