package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	bookingRepo "bookinghub/database/repository/booking"
	"bookinghub/models"
	"bookinghub/services/payment"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// fakeStore is an in-memory booking store.
type fakeStore struct {
	mu        sync.Mutex
	vendors   map[string]*models.Vendor
	services  map[string]*models.Service
	weekly    map[time.Weekday]*models.WeeklyHours
	special   map[string]*models.SpecialHours
	bookings  []models.Booking
	payments  []models.Payment
	createErr error
	findErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		vendors:  map[string]*models.Vendor{"v1": {ID: "v1", BusinessName: "Studio One", Email: "studio@example.com"}},
		services: map[string]*models.Service{},
		weekly:   map[time.Weekday]*models.WeeklyHours{},
		special:  map[string]*models.SpecialHours{},
	}
}

func (s *fakeStore) GetVendor(ctx context.Context, vendorID string) (*models.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vendors[vendorID]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	return v, nil
}

func (s *fakeStore) GetService(ctx context.Context, serviceID string) (*models.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc, ok := s.services[serviceID]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	return svc, nil
}

func (s *fakeStore) GetWeeklyHours(ctx context.Context, vendorID string, day time.Weekday) (*models.WeeklyHours, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.weekly[day]
	if !ok || h.VendorID != vendorID {
		return nil, bookingRepo.ErrNotFound
	}
	return h, nil
}

func (s *fakeStore) GetSpecialHours(ctx context.Context, vendorID, date string) (*models.SpecialHours, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.special[date]
	if !ok || h.VendorID != vendorID {
		return nil, bookingRepo.ErrNotFound
	}
	return h, nil
}

func (s *fakeStore) FindOverlapping(ctx context.Context, vendorID string, start, end time.Time, statuses []models.BookingStatus) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []models.Booking
	for _, b := range s.bookings {
		if b.VendorID != vendorID || !models.Overlaps(b.StartTime, b.EndTime, start, end) {
			continue
		}
		for _, st := range statuses {
			if b.Status == st {
				out = append(out, b)
				break
			}
		}
	}
	return out, nil
}

func (s *fakeStore) CreateBookingWithPayment(ctx context.Context, booking *models.Booking, p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.bookings = append(s.bookings, *booking)
	s.payments = append(s.payments, *p)
	return nil
}

func (s *fakeStore) addBooking(vendorID string, start, end time.Time, status models.BookingStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings = append(s.bookings, models.Booking{
		ID:        "existing-" + start.Format(time.RFC3339),
		VendorID:  vendorID,
		StartTime: start,
		EndTime:   end,
		Status:    status,
	})
}

func (s *fakeStore) bookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

// newMiniredisLockStore starts an in-process Redis and wraps it.
func newMiniredisLockStore(t *testing.T) (*RedisLockStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisLockStore(client), mr
}

const (
	testTTL    = 10 * time.Minute
	testStride = 30 * time.Minute
)

func newTestLockManager(t *testing.T, store *fakeStore) (*SlotLockManager, *miniredis.Miniredis) {
	t.Helper()
	locks, mr := newMiniredisLockStore(t)
	return NewSlotLockManager(locks, NewConflictChecker(store), testTTL, testStride, zap.NewNop()), mr
}

// fakeAuthorizer records calls; when gate is set it signals entered and
// blocks until gate is closed.
type fakeAuthorizer struct {
	mu      sync.Mutex
	calls   []payment.AuthorizationRequest
	err     error
	entered chan struct{}
	gate    chan struct{}
	hook    func()
}

func (a *fakeAuthorizer) Authorize(ctx context.Context, req payment.AuthorizationRequest) (*payment.Authorization, error) {
	a.mu.Lock()
	a.calls = append(a.calls, req)
	n := len(a.calls)
	a.mu.Unlock()

	if a.entered != nil {
		a.entered <- struct{}{}
	}
	if a.gate != nil {
		<-a.gate
	}
	if a.hook != nil {
		a.hook()
	}
	if a.err != nil {
		return nil, a.err
	}
	id := fmt.Sprintf("pi_%d", n)
	return &payment.Authorization{ID: id, ClientSecret: id + "_secret"}, nil
}

func (a *fakeAuthorizer) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

type recordingFanOut struct {
	mu     sync.Mutex
	events []models.BookingCommitted
}

func (f *recordingFanOut) Dispatch(event models.BookingCommitted) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *recordingFanOut) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type recordingSink struct {
	mu       sync.Mutex
	orphans  []OrphanedPayment
	onOrphan func()
}

func (s *recordingSink) OrphanedPayment(ctx context.Context, o OrphanedPayment) {
	if s.onOrphan != nil {
		s.onOrphan()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orphans = append(s.orphans, o)
}
