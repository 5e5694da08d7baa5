package models

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentSucceeded PaymentStatus = "SUCCEEDED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// Payment is the gateway record created together with its booking.
type Payment struct {
	ID              string        `bson:"id" json:"id" db:"id"`
	BookingID       string        `bson:"bookingId" json:"bookingId" db:"booking_id"`
	StripePaymentID string        `bson:"stripePaymentId" json:"stripePaymentId" db:"stripe_payment_id"`
	Amount          int64         `bson:"amount" json:"amount" db:"amount"` // minor units
	Currency        string        `bson:"currency" json:"currency" db:"currency"`
	Status          PaymentStatus `bson:"status" json:"status" db:"status"`
	CreatedAt       time.Time     `bson:"createdAt" json:"createdAt" db:"created_at"`
}
