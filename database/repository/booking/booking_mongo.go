package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookinghub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	client       *mongo.Client
	vendorColl   *mongo.Collection
	serviceColl  *mongo.Collection
	weeklyColl   *mongo.Collection
	specialColl  *mongo.Collection
	bookingColl  *mongo.Collection
	paymentColl  *mongo.Collection
	queryTimeout time.Duration
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo(client *mongo.Client, dbName string) *MongoBookingRepo {
	db := client.Database(dbName)
	return &MongoBookingRepo{
		client:       client,
		vendorColl:   db.Collection("vendors"),
		serviceColl:  db.Collection("services"),
		weeklyColl:   db.Collection("vendor_availability"),
		specialColl:  db.Collection("special_hours"),
		bookingColl:  db.Collection("bookings"),
		paymentColl:  db.Collection("payments"),
		queryTimeout: 5 * time.Second,
	}
}

func (repo *MongoBookingRepo) findOne(ctx context.Context, coll *mongo.Collection, filter bson.M, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, repo.queryTimeout)
	defer cancel()

	if err := coll.FindOne(ctx, filter).Decode(out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// GetVendor retrieves a vendor document by ID.
func (repo *MongoBookingRepo) GetVendor(ctx context.Context, vendorID string) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := repo.findOne(ctx, repo.vendorColl, bson.M{"id": vendorID}, &vendor); err != nil {
		return nil, fmt.Errorf("error fetching vendor with id %s: %w", vendorID, err)
	}
	return &vendor, nil
}

// GetService retrieves a service document by ID.
func (repo *MongoBookingRepo) GetService(ctx context.Context, serviceID string) (*models.Service, error) {
	var service models.Service
	if err := repo.findOne(ctx, repo.serviceColl, bson.M{"id": serviceID}, &service); err != nil {
		return nil, fmt.Errorf("error fetching service with id %s: %w", serviceID, err)
	}
	return &service, nil
}

func (repo *MongoBookingRepo) GetWeeklyHours(ctx context.Context, vendorID string, day time.Weekday) (*models.WeeklyHours, error) {
	var hours models.WeeklyHours
	filter := bson.M{"vendorId": vendorID, "dayOfWeek": int(day), "isActive": true}
	if err := repo.findOne(ctx, repo.weeklyColl, filter, &hours); err != nil {
		return nil, fmt.Errorf("error fetching weekly hours for vendor %s on %s: %w", vendorID, day, err)
	}
	return &hours, nil
}

func (repo *MongoBookingRepo) GetSpecialHours(ctx context.Context, vendorID, date string) (*models.SpecialHours, error) {
	var hours models.SpecialHours
	filter := bson.M{"vendorId": vendorID, "date": date}
	if err := repo.findOne(ctx, repo.specialColl, filter, &hours); err != nil {
		return nil, fmt.Errorf("error fetching special hours for vendor %s on %s: %w", vendorID, date, err)
	}
	return &hours, nil
}

// GetBooking retrieves a booking by ID.
func (repo *MongoBookingRepo) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	var booking models.Booking
	if err := repo.findOne(ctx, repo.bookingColl, bson.M{"id": bookingID}, &booking); err != nil {
		return nil, fmt.Errorf("error fetching booking with id %s: %w", bookingID, err)
	}
	return &booking, nil
}

func (repo *MongoBookingRepo) Ping(ctx context.Context) error {
	return repo.client.Ping(ctx, nil)
}
