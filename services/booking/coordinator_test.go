package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookinghub/models"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type coordinatorFixture struct {
	store  *fakeStore
	locks  *SlotLockManager
	mr     *miniredis.Miniredis
	auth   *fakeAuthorizer
	fanout *recordingFanOut
	sink   *recordingSink
}

func newCoordinatorFixture(t *testing.T) *coordinatorFixture {
	t.Helper()
	store := newFakeStore()
	store.services["svc-1"] = &models.Service{
		ID: "svc-1", VendorID: "v1", Name: "Haircut", Duration: 60, Price: 5000, Currency: "usd", IsActive: true,
	}
	locks, mr := newTestLockManager(t, store)
	return &coordinatorFixture{
		store:  store,
		locks:  locks,
		mr:     mr,
		auth:   &fakeAuthorizer{},
		fanout: &recordingFanOut{},
		sink:   &recordingSink{},
	}
}

func (f *coordinatorFixture) coordinator(locker SlotLocker) (*Coordinator, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	c := NewCoordinator(
		f.store,
		locker,
		NewConflictChecker(f.store),
		f.auth,
		f.fanout,
		zap.New(core),
		WithClock(func() time.Time { return testNow }),
		WithReconciliationSink(f.sink),
	)
	return c, logs
}

func reserveRequest(sessionID string) models.ReserveRequest {
	return models.ReserveRequest{
		VendorID:  "v1",
		ServiceID: "svc-1",
		StartTime: slotStart,
		Notes:     "first visit",
		SessionID: sessionID,
		Customer:  models.CustomerContext{ID: "cust-" + sessionID, Name: "Ada", Email: "ada@example.com"},
	}
}

func (f *coordinatorFixture) assertUnlocked(t *testing.T) {
	t.Helper()
	if f.mr.Exists(LockKey("v1", slotStart)) {
		t.Error("slot lock should have been released")
	}
}

func TestCoordinator_ReserveCommits(t *testing.T) {
	f := newCoordinatorFixture(t)
	c, logs := f.coordinator(f.locks)

	res, err := c.Reserve(context.Background(), reserveRequest("s1"))
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}

	b := res.Booking
	if b.Status != models.BookingPending || b.PaymentStatus != models.PaymentPending {
		t.Errorf("booking status = %s/%s, want PENDING/PENDING", b.Status, b.PaymentStatus)
	}
	if !b.EndTime.Equal(slotStart.Add(time.Hour)) {
		t.Errorf("EndTime = %v, want start + service duration", b.EndTime)
	}
	if res.Payment.BookingID != b.ID || res.Payment.StripePaymentID != "pi_1" {
		t.Errorf("payment = %+v", res.Payment)
	}
	if res.ClientSecret != "pi_1_secret" {
		t.Errorf("ClientSecret = %q", res.ClientSecret)
	}
	if f.store.bookingCount() != 1 || len(f.store.payments) != 1 {
		t.Errorf("stored %d bookings and %d payments, want 1 and 1", f.store.bookingCount(), len(f.store.payments))
	}

	call := f.auth.calls[0]
	if call.IdempotencyKey != "s1" {
		t.Errorf("idempotency key = %q, want session id", call.IdempotencyKey)
	}
	if call.Amount != 5000 || call.Currency != "usd" {
		t.Errorf("authorized %d %s", call.Amount, call.Currency)
	}
	for _, k := range []string{"customerId", "vendorId", "serviceId", "bookingStartTime"} {
		if call.Metadata[k] == "" {
			t.Errorf("metadata %q missing", k)
		}
	}

	f.assertUnlocked(t)
	if f.fanout.count() != 1 || f.fanout.events[0].BookingID != b.ID {
		t.Errorf("fan-out events = %+v", f.fanout.events)
	}

	var states []string
	for _, e := range logs.FilterMessage("reservation state").All() {
		states = append(states, e.ContextMap()["state"].(string))
	}
	want := []string{"LOCKING", "LOCKED", "AUTHORIZING", "PERSISTING", "RELEASING", "COMMITTED"}
	if !equalStrings(states, want) {
		t.Errorf("state transitions = %v, want %v", states, want)
	}
}

func TestCoordinator_ConcurrentReserveOneWinner(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.auth.entered = make(chan struct{})
	f.auth.gate = make(chan struct{})
	c, _ := f.coordinator(f.locks)

	type outcome struct {
		res *models.ReserveResult
		err error
	}
	results := make(chan outcome, 2)
	for _, session := range []string{"s1", "s2"} {
		go func(session string) {
			res, err := c.Reserve(context.Background(), reserveRequest(session))
			results <- outcome{res, err}
		}(session)
	}

	// One attempt holds the lock and waits inside payment authorization.
	<-f.auth.entered
	loser := <-results
	close(f.auth.gate)
	winner := <-results

	if winner.err != nil {
		t.Fatalf("winner error = %v", winner.err)
	}
	var be *BookingError
	if !errors.As(loser.err, &be) {
		t.Fatalf("loser error = %v, want *BookingError", loser.err)
	}
	if be.Kind != KindConflict || be.Stage != StateLocking || !errors.Is(loser.err, ErrLockContended) {
		t.Errorf("loser error = %+v, want conflict at LOCKING", be)
	}
	if f.auth.callCount() != 1 {
		t.Errorf("payment authorized %d times, want 1", f.auth.callCount())
	}
	if f.store.bookingCount() != 1 {
		t.Errorf("stored %d bookings, want 1", f.store.bookingCount())
	}
	f.assertUnlocked(t)
}

func TestCoordinator_PaymentFailureReleasesLock(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.auth.err = errors.New("card_declined")
	c, _ := f.coordinator(f.locks)

	_, err := c.Reserve(context.Background(), reserveRequest("s1"))
	if KindOf(err) != KindPayment {
		t.Fatalf("Reserve() error = %v, want payment kind", err)
	}
	f.assertUnlocked(t)
	if f.store.bookingCount() != 0 {
		t.Error("no booking should be stored after a payment failure")
	}
	if f.fanout.count() != 0 {
		t.Error("nothing should be fanned out after a failure")
	}
}

func TestCoordinator_PersistenceFailureReconciles(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.store.createErr = errors.New("write conflict")
	lockedAtReport := true
	f.sink.onOrphan = func() { lockedAtReport = f.mr.Exists(LockKey("v1", slotStart)) }
	c, logs := f.coordinator(f.locks)

	_, err := c.Reserve(context.Background(), reserveRequest("s1"))
	if KindOf(err) != KindPersistence {
		t.Fatalf("Reserve() error = %v, want persistence kind", err)
	}
	f.assertUnlocked(t)
	if lockedAtReport {
		t.Error("slot lock should be released before the orphaned payment is reported")
	}
	if f.store.bookingCount() != 0 {
		t.Error("no booking should be stored")
	}

	if len(f.sink.orphans) != 1 || f.sink.orphans[0].PaymentID != "pi_1" {
		t.Fatalf("orphaned payments = %+v, want pi_1", f.sink.orphans)
	}
	entries := logs.FilterMessage("booking not persisted after payment authorization").All()
	if len(entries) != 1 || entries[0].Level != zap.ErrorLevel {
		t.Fatalf("expected one error log for the orphaned payment, got %d", len(entries))
	}
	if entries[0].ContextMap()["paymentId"] != "pi_1" {
		t.Errorf("log paymentId = %v", entries[0].ContextMap()["paymentId"])
	}
}

func TestCoordinator_DefaultSinkLogsOrphanedPayment(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.store.createErr = errors.New("write conflict")
	core, logs := observer.New(zap.InfoLevel)
	c := NewCoordinator(f.store, f.locks, NewConflictChecker(f.store), f.auth, f.fanout, zap.New(core),
		WithClock(func() time.Time { return testNow }))

	if _, err := c.Reserve(context.Background(), reserveRequest("s1")); KindOf(err) != KindPersistence {
		t.Fatalf("Reserve() error = %v, want persistence kind", err)
	}
	entries := logs.FilterMessage("payment authorized without booking, needs reconciliation").All()
	if len(entries) != 1 {
		t.Fatalf("expected one reconciliation log, got %d", len(entries))
	}
	if entries[0].ContextMap()["paymentId"] != "pi_1" {
		t.Errorf("paymentId = %v, want pi_1", entries[0].ContextMap()["paymentId"])
	}
	f.assertUnlocked(t)
}

func TestCoordinator_RecheckCoversFullDuration(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.store.services["svc-long"] = &models.Service{
		ID: "svc-long", VendorID: "v1", Name: "Colour", Duration: 90, Price: 9000, Currency: "usd", IsActive: true,
	}
	// Outside the lock's stride bucket but inside the 90 minute service.
	f.store.addBooking("v1", slotStart.Add(time.Hour), slotStart.Add(2*time.Hour), models.BookingConfirmed)
	c, _ := f.coordinator(f.locks)

	req := reserveRequest("s1")
	req.ServiceID = "svc-long"
	_, err := c.Reserve(context.Background(), req)
	if !errors.Is(err, ErrSlotUnavailable) || KindOf(err) != KindConflict {
		t.Fatalf("Reserve() error = %v, want slot unavailable conflict", err)
	}
	if f.auth.callCount() != 0 {
		t.Error("payment must not be attempted for a conflicting interval")
	}
	f.assertUnlocked(t)
}

type failingReleaseLocker struct {
	*SlotLockManager
	releases int
}

func (l *failingReleaseLocker) Release(ctx context.Context, vendorID string, start time.Time, sessionID string) (bool, error) {
	l.releases++
	return false, errors.New("connection reset")
}

func TestCoordinator_ReleaseFailureIsNotReturned(t *testing.T) {
	f := newCoordinatorFixture(t)
	locker := &failingReleaseLocker{SlotLockManager: f.locks}
	c, logs := f.coordinator(locker)

	if _, err := c.Reserve(context.Background(), reserveRequest("s1")); err != nil {
		t.Fatalf("Reserve() error = %v, release failures must not fail the booking", err)
	}
	if locker.releases != 1 {
		t.Errorf("release attempted %d times, want exactly 1", locker.releases)
	}
	if logs.FilterMessage("failed to release slot lock").Len() != 1 {
		t.Error("release failure should be logged")
	}

	f.auth.err = errors.New("card_declined")
	req := reserveRequest("s2")
	req.StartTime = slotStart.Add(2 * time.Hour)
	_, err := c.Reserve(context.Background(), req)
	if KindOf(err) != KindPayment {
		t.Errorf("Reserve() error = %v, the payment error must not be masked", err)
	}
	if locker.releases != 2 {
		t.Errorf("release attempted %d times in total, want 2", locker.releases)
	}
}

func TestCoordinator_ReleaseSurvivesCancellation(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.auth.hook = cancel
	f.auth.err = context.Canceled
	c, _ := f.coordinator(f.locks)

	if _, err := c.Reserve(ctx, reserveRequest("s1")); err == nil {
		t.Fatal("expected an error")
	}
	f.assertUnlocked(t)
}

func TestCoordinator_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.ReserveRequest)
	}{
		{name: "missing vendor", mutate: func(r *models.ReserveRequest) { r.VendorID = "" }},
		{name: "missing service", mutate: func(r *models.ReserveRequest) { r.ServiceID = "" }},
		{name: "missing session", mutate: func(r *models.ReserveRequest) { r.SessionID = "" }},
		{name: "missing customer", mutate: func(r *models.ReserveRequest) { r.Customer.ID = "" }},
		{name: "missing start", mutate: func(r *models.ReserveRequest) { r.StartTime = time.Time{} }},
		{name: "start in the past", mutate: func(r *models.ReserveRequest) { r.StartTime = testNow.Add(-time.Hour) }},
		{name: "unknown service", mutate: func(r *models.ReserveRequest) { r.ServiceID = "nope" }},
		{name: "service of another vendor", mutate: func(r *models.ReserveRequest) { r.VendorID = "v2" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCoordinatorFixture(t)
			c, _ := f.coordinator(f.locks)
			req := reserveRequest("s1")
			tt.mutate(&req)

			_, err := c.Reserve(context.Background(), req)
			if KindOf(err) != KindValidation {
				t.Fatalf("Reserve() error = %v, want validation kind", err)
			}
			if f.auth.callCount() != 0 || len(f.mr.Keys()) != 0 {
				t.Error("validation failures must not have side effects")
			}
		})
	}
}

func TestCoordinator_InactiveService(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.store.services["svc-1"].IsActive = false
	c, _ := f.coordinator(f.locks)

	_, err := c.Reserve(context.Background(), reserveRequest("s1"))
	if KindOf(err) != KindValidation {
		t.Errorf("Reserve() error = %v, want validation kind", err)
	}
}
