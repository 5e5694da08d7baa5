package models

import "time"

// CustomerContext identifies the authenticated customer making a reservation.
type CustomerContext struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ReserveRequest is one reservation attempt. SessionID is the lock ownership
// proof and must be reused when the caller retries the same attempt.
type ReserveRequest struct {
	VendorID  string
	ServiceID string
	StartTime time.Time
	Notes     string
	SessionID string
	Customer  CustomerContext
}

// ReserveResult is returned once the booking and its payment are persisted.
type ReserveResult struct {
	Booking      *Booking `json:"booking"`
	Payment      *Payment `json:"payment"`
	ClientSecret string   `json:"clientSecret"`
}

// BookingCommitted is handed to the background fan-out after a successful
// reservation.
type BookingCommitted struct {
	BookingID     string    `json:"bookingId"`
	VendorID      string    `json:"vendorId"`
	ServiceID     string    `json:"serviceId"`
	ServiceName   string    `json:"serviceName"`
	CustomerID    string    `json:"customerId"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	Notes         string    `json:"notes,omitempty"`
}
