package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the booking queries rely on.
func (repo *MongoBookingRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	plan := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{repo.vendorColl, []mongo.IndexModel{
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		}},
		{repo.serviceColl, []mongo.IndexModel{
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		}},
		{repo.weeklyColl, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "vendorId", Value: 1}, {Key: "dayOfWeek", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("vendor_weekday_idx"),
			},
		}},
		{repo.specialColl, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "vendorId", Value: 1}, {Key: "date", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("vendor_date_idx"),
			},
		}},
		{repo.bookingColl, []mongo.IndexModel{
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
			// Overlap queries filter on vendor + status and range over start/end.
			{
				Keys:    bson.D{{Key: "vendorId", Value: 1}, {Key: "status", Value: 1}, {Key: "startTime", Value: 1}, {Key: "endTime", Value: 1}},
				Options: options.Index().SetName("vendor_status_start_end_idx"),
			},
			{
				Keys:    bson.D{{Key: "customerId", Value: 1}, {Key: "startTime", Value: -1}},
				Options: options.Index().SetName("customer_start_idx"),
			},
		}},
		{repo.paymentColl, []mongo.IndexModel{
			{Keys: bson.D{{Key: "bookingId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_booking")},
			{Keys: bson.D{{Key: "stripePaymentId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_stripe_payment")},
		}},
	}

	for _, p := range plan {
		if _, err := p.coll.Indexes().CreateMany(ctx, p.models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", p.coll.Name(), err)
		}
	}
	return nil
}
