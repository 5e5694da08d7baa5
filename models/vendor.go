package models

import "time"

// Vendor is a business that publishes services and working hours.
type Vendor struct {
	ID                  string    `bson:"id" json:"id" db:"id"`
	BusinessName        string    `bson:"businessName" json:"businessName" db:"business_name"`
	Email               string    `bson:"email" json:"email" db:"email"`
	Phone               string    `bson:"phone,omitempty" json:"phone,omitempty" db:"phone"`
	Timezone            string    `bson:"timezone,omitempty" json:"timezone,omitempty" db:"timezone"` // IANA name, UTC when empty
	GoogleRefreshToken  string    `bson:"googleRefreshToken,omitempty" json:"-" db:"google_refresh_token"`
	GoogleCalendarID    string    `bson:"googleCalendarId,omitempty" json:"-" db:"google_calendar_id"`
	OutlookRefreshToken string    `bson:"outlookRefreshToken,omitempty" json:"-" db:"outlook_refresh_token"`
	FCMToken            string    `bson:"fcmToken,omitempty" json:"-" db:"fcm_token"`
	CreatedAt           time.Time `bson:"createdAt" json:"createdAt" db:"created_at"`
}

// Location resolves the vendor's timezone, falling back to UTC.
func (v *Vendor) Location() (*time.Location, error) {
	if v == nil || v.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(v.Timezone)
}

// Service is something a vendor sells in fixed-length appointments.
type Service struct {
	ID       string `bson:"id" json:"id" db:"id"`
	VendorID string `bson:"vendorId" json:"vendorId" db:"vendor_id"`
	Name     string `bson:"name" json:"name" db:"name"`
	Duration int    `bson:"duration" json:"duration" db:"duration"` // minutes
	Price    int64  `bson:"price" json:"price" db:"price"`          // minor units
	Currency string `bson:"currency" json:"currency" db:"currency"`
	IsActive bool   `bson:"isActive" json:"isActive" db:"is_active"`
}

// WeeklyHours is a vendor's recurring opening window for one weekday.
type WeeklyHours struct {
	VendorID  string       `bson:"vendorId" json:"vendorId" db:"vendor_id"`
	DayOfWeek time.Weekday `bson:"dayOfWeek" json:"dayOfWeek" db:"day_of_week"`
	StartTime string       `bson:"startTime" json:"startTime" db:"start_time"` // "HH:mm"
	EndTime   string       `bson:"endTime" json:"endTime" db:"end_time"`       // "HH:mm"
	IsActive  bool         `bson:"isActive" json:"isActive" db:"is_active"`
}

// SpecialHours overrides the weekly schedule on one date. Empty StartTime and
// EndTime mark the vendor as closed for the whole day.
type SpecialHours struct {
	VendorID  string `bson:"vendorId" json:"vendorId" db:"vendor_id"`
	Date      string `bson:"date" json:"date" db:"date"` // "2006-01-02"
	StartTime string `bson:"startTime,omitempty" json:"startTime,omitempty" db:"start_time"`
	EndTime   string `bson:"endTime,omitempty" json:"endTime,omitempty" db:"end_time"`
	Reason    string `bson:"reason,omitempty" json:"reason,omitempty" db:"reason"`
}

// Closed reports whether the override marks a day off.
func (s *SpecialHours) Closed() bool {
	return s.StartTime == "" || s.EndTime == ""
}
