package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// ActiveBookingStatuses are the states that occupy a vendor's calendar.
var ActiveBookingStatuses = []BookingStatus{BookingPending, BookingConfirmed}

// IsActive reports whether a booking in this state blocks its interval.
func (s BookingStatus) IsActive() bool {
	return s == BookingPending || s == BookingConfirmed
}

// Booking represents a reservation of one service slot by a customer.
type Booking struct {
	ID            string        `bson:"id" json:"id" db:"id"`
	CustomerID    string        `bson:"customerId" json:"customerId" db:"customer_id"`
	VendorID      string        `bson:"vendorId" json:"vendorId" db:"vendor_id"`
	ServiceID     string        `bson:"serviceId" json:"serviceId" db:"service_id"`
	StartTime     time.Time     `bson:"startTime" json:"startTime" db:"start_time"`
	EndTime       time.Time     `bson:"endTime" json:"endTime" db:"end_time"`
	Status        BookingStatus `bson:"status" json:"status" db:"status"`
	PaymentStatus PaymentStatus `bson:"paymentStatus" json:"paymentStatus" db:"payment_status"`
	TotalAmount   int64         `bson:"totalAmount" json:"totalAmount" db:"total_amount"` // minor units
	Currency      string        `bson:"currency" json:"currency" db:"currency"`
	Notes         string        `bson:"notes,omitempty" json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time     `bson:"updatedAt" json:"updatedAt" db:"updated_at"`
}

// BookingFilter narrows booking listings. Zero fields are ignored.
type BookingFilter struct {
	CustomerID string
	VendorID   string
	Statuses   []BookingStatus
	From       time.Time // bookings starting at or after From
	Limit      int
	Ascending  bool // order by start time; newest first when false
}
