package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

const whenLayout = "Monday, January 2, 2006 at 3:04 PM MST"

// emailKind selects a body template and its header styling.
type emailKind struct {
	file        string
	subject     string
	heading     string
	headerColor string
}

var (
	customerConfirmation = emailKind{"confirmation.html", "Booking Confirmation", "Booking Confirmed!", "#667eea"}
	vendorNewBooking     = emailKind{"vendor_new_booking.html", "New Booking Received", "New Booking!", "#10b981"}
)

// templateData feeds every email template; each template uses a subset.
type templateData struct {
	Heading       string
	HeaderColor   template.CSS
	Year          int
	RecipientName string
	CustomerName  string
	VendorName    string
	ServiceName   string
	BookingID     string
	BookingURL    string
	When          string
	Notes         string
}

func render(kind emailKind, data templateData) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+kind.file)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", kind.file, err)
	}
	data.Heading = kind.heading
	data.HeaderColor = template.CSS(kind.headerColor)
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", kind.file, err)
	}
	return buf.String(), nil
}

func formatWhen(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(whenLayout)
}
