package bookingRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookinghub/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresBookingRepo implements BookingRepository on PostgreSQL via sqlx.
type PostgresBookingRepo struct {
	db *sqlx.DB
}

func NewPostgresBookingRepo(db *sqlx.DB) *PostgresBookingRepo {
	return &PostgresBookingRepo{db: db}
}

const bookingColumns = `id, customer_id, vendor_id, service_id, start_time, end_time, status,
	payment_status, total_amount, currency, notes, created_at, updated_at`

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *PostgresBookingRepo) GetVendor(ctx context.Context, vendorID string) (*models.Vendor, error) {
	var vendor models.Vendor
	query := `
		SELECT id, business_name, email, phone, timezone, google_refresh_token,
			google_calendar_id, outlook_refresh_token, fcm_token, created_at
		FROM vendors
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &vendor, query, vendorID); err != nil {
		return nil, fmt.Errorf("failed to get vendor %s: %w", vendorID, notFound(err))
	}
	return &vendor, nil
}

func (r *PostgresBookingRepo) GetService(ctx context.Context, serviceID string) (*models.Service, error) {
	var service models.Service
	query := `
		SELECT id, vendor_id, name, duration, price, currency, is_active
		FROM services
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &service, query, serviceID); err != nil {
		return nil, fmt.Errorf("failed to get service %s: %w", serviceID, notFound(err))
	}
	return &service, nil
}

func (r *PostgresBookingRepo) GetWeeklyHours(ctx context.Context, vendorID string, day time.Weekday) (*models.WeeklyHours, error) {
	var hours models.WeeklyHours
	query := `
		SELECT vendor_id, day_of_week, start_time, end_time, is_active
		FROM vendor_availability
		WHERE vendor_id = $1 AND day_of_week = $2 AND is_active
	`
	if err := r.db.GetContext(ctx, &hours, query, vendorID, int(day)); err != nil {
		return nil, fmt.Errorf("failed to get weekly hours for vendor %s on %s: %w", vendorID, day, notFound(err))
	}
	return &hours, nil
}

func (r *PostgresBookingRepo) GetSpecialHours(ctx context.Context, vendorID, date string) (*models.SpecialHours, error) {
	var hours models.SpecialHours
	query := `
		SELECT vendor_id, to_char(date, 'YYYY-MM-DD') AS date, start_time, end_time, reason
		FROM special_hours
		WHERE vendor_id = $1 AND date = $2::date
	`
	if err := r.db.GetContext(ctx, &hours, query, vendorID, date); err != nil {
		return nil, fmt.Errorf("failed to get special hours for vendor %s on %s: %w", vendorID, date, notFound(err))
	}
	return &hours, nil
}

// FindOverlapping selects bookings where start_time < end AND end_time > start.
func (r *PostgresBookingRepo) FindOverlapping(
	ctx context.Context,
	vendorID string,
	start, end time.Time,
	statuses []models.BookingStatus,
) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE vendor_id = $1
			AND status = ANY($2)
			AND start_time < $3
			AND end_time > $4
		ORDER BY start_time ASC
	`
	var bookings []models.Booking
	err := r.db.SelectContext(ctx, &bookings, query, vendorID, pq.Array(statusStrings(statuses)), end, start)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping bookings: %w", err)
	}
	return bookings, nil
}

// CreateBookingWithPayment inserts both rows in one transaction and rolls
// back when either insert fails.
func (r *PostgresBookingRepo) CreateBookingWithPayment(
	ctx context.Context,
	booking *models.Booking,
	payment *models.Payment,
) (err error) {
	if payment.BookingID != booking.ID {
		return fmt.Errorf("payment %s does not belong to booking %s", payment.ID, booking.ID)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	bookingQuery := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES (:id, :customer_id, :vendor_id, :service_id, :start_time, :end_time, :status,
			:payment_status, :total_amount, :currency, :notes, :created_at, :updated_at)
	`
	if _, err = tx.NamedExecContext(ctx, bookingQuery, booking); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	paymentQuery := `
		INSERT INTO payments (id, booking_id, stripe_payment_id, amount, currency, status, created_at)
		VALUES (:id, :booking_id, :stripe_payment_id, :amount, :currency, :status, :created_at)
	`
	if _, err = tx.NamedExecContext(ctx, paymentQuery, payment); err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}
	return nil
}

func (r *PostgresBookingRepo) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	var booking models.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if err := r.db.GetContext(ctx, &booking, query, bookingID); err != nil {
		return nil, fmt.Errorf("failed to get booking %s: %w", bookingID, notFound(err))
	}
	return &booking, nil
}

func (r *PostgresBookingRepo) ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.CustomerID != "" {
		add("customer_id = $%d", filter.CustomerID)
	}
	if filter.VendorID != "" {
		add("vendor_id = $%d", filter.VendorID)
	}
	if len(filter.Statuses) > 0 {
		add("status = ANY($%d)", pq.Array(statusStrings(filter.Statuses)))
	}
	if !filter.From.IsZero() {
		add("start_time >= $%d", filter.From)
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + bookingColumns + " FROM bookings")
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	if filter.Ascending {
		sb.WriteString(" ORDER BY start_time ASC")
	} else {
		sb.WriteString(" ORDER BY start_time DESC")
	}
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}

	bookings := []models.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (r *PostgresBookingRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
