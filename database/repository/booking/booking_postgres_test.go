package bookingRepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookinghub/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockRepo(t *testing.T) (*PostgresBookingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresBookingRepo(sqlx.NewDb(db, "postgres")), mock
}

func testBookingAndPayment() (*models.Booking, *models.Payment) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	booking := &models.Booking{
		ID:            "bk-1",
		CustomerID:    "cust-1",
		VendorID:      "v1",
		ServiceID:     "svc-1",
		StartTime:     start,
		EndTime:       start.Add(30 * time.Minute),
		Status:        models.BookingPending,
		PaymentStatus: models.PaymentPending,
		TotalAmount:   5000,
		Currency:      "usd",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	payment := &models.Payment{
		ID:              "pay-1",
		BookingID:       "bk-1",
		StripePaymentID: "pi_123",
		Amount:          5000,
		Currency:        "usd",
		Status:          models.PaymentPending,
		CreatedAt:       now,
	}
	return booking, payment
}

func TestPostgresBookingRepo_CreateBookingWithPayment(t *testing.T) {
	tests := []struct {
		name       string
		paymentErr error
		wantErr    bool
	}{
		{name: "both rows committed"},
		{name: "payment insert failure rolls back", paymentErr: errors.New("duplicate key"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			booking, payment := testBookingAndPayment()

			mock.ExpectBegin()
			mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))
			paymentExec := mock.ExpectExec("INSERT INTO payments")
			if tt.paymentErr != nil {
				paymentExec.WillReturnError(tt.paymentErr)
				mock.ExpectRollback()
			} else {
				paymentExec.WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			}

			err := repo.CreateBookingWithPayment(context.Background(), booking, payment)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateBookingWithPayment() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestPostgresBookingRepo_CreateBookingWithPayment_MismatchedPayment(t *testing.T) {
	repo, mock := newMockRepo(t)
	booking, payment := testBookingAndPayment()
	payment.BookingID = "someone-else"

	if err := repo.CreateBookingWithPayment(context.Background(), booking, payment); err == nil {
		t.Fatal("expected an error for a payment of another booking")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no statements should run: %v", err)
	}
}

func TestPostgresBookingRepo_FindOverlapping(t *testing.T) {
	repo, mock := newMockRepo(t)
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	rows := sqlmock.NewRows([]string{
		"id", "customer_id", "vendor_id", "service_id", "start_time", "end_time", "status",
		"payment_status", "total_amount", "currency", "notes", "created_at", "updated_at",
	}).AddRow("bk-1", "cust-1", "v1", "svc-1", start.Add(30*time.Minute), end.Add(30*time.Minute),
		"CONFIRMED", "SUCCEEDED", int64(5000), "usd", "", start, start)

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WithArgs("v1", sqlmock.AnyArg(), end, start).
		WillReturnRows(rows)

	got, err := repo.FindOverlapping(context.Background(), "v1", start, end, models.ActiveBookingStatuses)
	if err != nil {
		t.Fatalf("FindOverlapping() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "bk-1" || got[0].Status != models.BookingConfirmed {
		t.Errorf("FindOverlapping() = %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresBookingRepo_GetVendorNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM vendors").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetVendor(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetVendor() error = %v, want ErrNotFound", err)
	}
}

func TestPostgresBookingRepo_GetBooking(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1").
		WithArgs("bk-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "vendor_id", "status"}).AddRow("bk-1", "v1", "CANCELLED"))
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, err := repo.GetBooking(context.Background(), "bk-1")
	if err != nil {
		t.Fatalf("GetBooking() error = %v", err)
	}
	if got.Status != models.BookingCancelled || got.Status.IsActive() {
		t.Errorf("status = %q, want CANCELLED", got.Status)
	}

	if _, err := repo.GetBooking(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetBooking() error = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresBookingRepo_ListBookingsBuildsFilter(t *testing.T) {
	repo, mock := newMockRepo(t)
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM bookings WHERE vendor_id = \$1 AND start_time >= \$2 ORDER BY start_time ASC LIMIT \$3`).
		WithArgs("v1", from, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, err := repo.ListBookings(context.Background(), models.BookingFilter{
		VendorID:  "v1",
		From:      from,
		Limit:     10,
		Ascending: true,
	})
	if err != nil {
		t.Fatalf("ListBookings() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ListBookings() returned %d rows, want 0", len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
