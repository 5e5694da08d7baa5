package bookingRepo

import (
	"context"
	"fmt"

	"bookinghub/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// CreateBookingWithPayment inserts the booking and its payment inside one
// multi-document transaction.
func (repo *MongoBookingRepo) CreateBookingWithPayment(
	ctx context.Context,
	booking *models.Booking,
	payment *models.Payment,
) error {
	if payment.BookingID != booking.ID {
		return fmt.Errorf("payment %s does not belong to booking %s", payment.ID, booking.ID)
	}

	sess, err := repo.client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(context.Background())

	txnFn := func(sc mongo.SessionContext) error {
		if _, err := repo.bookingColl.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}
		if _, err := repo.paymentColl.InsertOne(sc, payment); err != nil {
			return fmt.Errorf("insert payment failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(context.Background())
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return fmt.Errorf("booking transaction failed: %w", err)
	}

	return nil
}
