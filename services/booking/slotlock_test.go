package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookinghub/models"
)

var slotStart = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

func TestLockKey(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)
	tests := []struct {
		name  string
		start time.Time
		want  string
	}{
		{name: "utc", start: slotStart, want: "slot_lock:v1:2025-03-10T10:00:00.000Z"},
		{name: "offset is normalized", start: slotStart.In(nairobi), want: "slot_lock:v1:2025-03-10T10:00:00.000Z"},
		{name: "milliseconds kept", start: slotStart.Add(1500 * time.Millisecond), want: "slot_lock:v1:2025-03-10T10:00:01.500Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LockKey("v1", tt.start); got != tt.want {
				t.Errorf("LockKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSlotLockManager_AcquireIsExclusive(t *testing.T) {
	m, _ := newTestLockManager(t, newFakeStore())
	ctx := context.Background()

	if err := m.Acquire(ctx, "v1", slotStart, "s1"); err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	err := m.Acquire(ctx, "v1", slotStart, "s2")
	if !errors.Is(err, ErrLockContended) {
		t.Fatalf("second Acquire() error = %v, want ErrLockContended", err)
	}
	if KindOf(err) != KindConflict {
		t.Errorf("KindOf() = %q, want conflict", KindOf(err))
	}

	// A different start is a different lock.
	if err := m.Acquire(ctx, "v1", slotStart.Add(testStride), "s2"); err != nil {
		t.Errorf("Acquire() on next slot error = %v", err)
	}
}

func TestSlotLockManager_AcquireBookedSlot(t *testing.T) {
	store := newFakeStore()
	store.addBooking("v1", slotStart, slotStart.Add(time.Hour), models.BookingConfirmed)
	m, mr := newTestLockManager(t, store)

	err := m.Acquire(context.Background(), "v1", slotStart, "s1")
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("Acquire() error = %v, want ErrSlotUnavailable", err)
	}
	if mr.Exists(LockKey("v1", slotStart)) {
		t.Error("no lock should be written for a booked slot")
	}
}

func TestSlotLockManager_ConditionalWriteIsAuthoritative(t *testing.T) {
	// The conflict pre-check sees a free slot, but another session's lock
	// landed first. The conditional write must still refuse.
	m, mr := newTestLockManager(t, newFakeStore())
	mr.Set(LockKey("v1", slotStart), "other-session")

	err := m.Acquire(context.Background(), "v1", slotStart, "s1")
	if !errors.Is(err, ErrLockContended) {
		t.Fatalf("Acquire() error = %v, want ErrLockContended", err)
	}
	if got, _ := mr.Get(LockKey("v1", slotStart)); got != "other-session" {
		t.Errorf("lock owner = %q, want other-session", got)
	}
}

func TestSlotLockManager_AcquireLockStoreDown(t *testing.T) {
	m, mr := newTestLockManager(t, newFakeStore())
	mr.SetError("ERR injected failure")
	defer mr.SetError("")

	err := m.Acquire(context.Background(), "v1", slotStart, "s1")
	if KindOf(err) != KindLockStore {
		t.Fatalf("Acquire() error = %v, want lock_store kind", err)
	}
}

func TestSlotLockManager_ReleaseRequiresOwner(t *testing.T) {
	m, mr := newTestLockManager(t, newFakeStore())
	ctx := context.Background()
	if err := m.Acquire(ctx, "v1", slotStart, "s1"); err != nil {
		t.Fatal(err)
	}

	ok, err := m.Release(ctx, "v1", slotStart, "s2")
	if err != nil || ok {
		t.Fatalf("non-owner Release() = %v, %v, want false", ok, err)
	}
	if got, _ := mr.Get(LockKey("v1", slotStart)); got != "s1" {
		t.Fatalf("lock owner after foreign release = %q, want s1", got)
	}

	ok, err = m.Release(ctx, "v1", slotStart, "s1")
	if err != nil || !ok {
		t.Fatalf("owner Release() = %v, %v", ok, err)
	}
	if mr.Exists(LockKey("v1", slotStart)) {
		t.Error("slot still locked after owner release")
	}
}

func TestSlotLockManager_TTLExpiry(t *testing.T) {
	m, mr := newTestLockManager(t, newFakeStore())
	ctx := context.Background()
	if err := m.Acquire(ctx, "v1", slotStart, "s1"); err != nil {
		t.Fatal(err)
	}

	mr.FastForward(testTTL - time.Second)
	if err := m.Acquire(ctx, "v1", slotStart, "s2"); !errors.Is(err, ErrLockContended) {
		t.Fatalf("Acquire() before expiry error = %v, want ErrLockContended", err)
	}

	mr.FastForward(2 * time.Second)
	if err := m.Acquire(ctx, "v1", slotStart, "s2"); err != nil {
		t.Fatalf("Acquire() after expiry error = %v", err)
	}
}

func TestSlotLockManager_Extend(t *testing.T) {
	m, mr := newTestLockManager(t, newFakeStore())
	ctx := context.Background()
	if err := m.Acquire(ctx, "v1", slotStart, "s1"); err != nil {
		t.Fatal(err)
	}

	mr.FastForward(testTTL - time.Minute)
	if ok, err := m.Extend(ctx, "v1", slotStart, "s2"); err != nil || ok {
		t.Fatalf("non-owner Extend() = %v, %v", ok, err)
	}
	if ok, err := m.Extend(ctx, "v1", slotStart, "s1"); err != nil || !ok {
		t.Fatalf("owner Extend() = %v, %v", ok, err)
	}

	mr.FastForward(testTTL - time.Minute)
	if !mr.Exists(LockKey("v1", slotStart)) {
		t.Error("extended lock expired early")
	}
}

func TestSlotLockManager_LockedStarts(t *testing.T) {
	m, _ := newTestLockManager(t, newFakeStore())
	ctx := context.Background()
	second := slotStart.Add(testStride)
	if err := m.Acquire(ctx, "v1", second, "s1"); err != nil {
		t.Fatal(err)
	}

	got, err := m.LockedStarts(ctx, "v1", []time.Time{slotStart, second})
	if err != nil {
		t.Fatalf("LockedStarts() error = %v", err)
	}
	if got[0] || !got[1] {
		t.Errorf("LockedStarts() = %v, want [false true]", got)
	}
}
