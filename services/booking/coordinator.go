package booking

import (
	"context"
	"errors"
	"strconv"
	"time"

	bookingRepo "bookinghub/database/repository/booking"
	"bookinghub/models"
	"bookinghub/services/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is a step of a single reservation attempt.
type State string

const (
	StateStart       State = "START"
	StateLocking     State = "LOCKING"
	StateLocked      State = "LOCKED"
	StateAuthorizing State = "AUTHORIZING"
	StatePersisting  State = "PERSISTING"
	StateReleasing   State = "RELEASING"
	StateCommitted   State = "COMMITTED"
	StateRejected    State = "REJECTED"
	StateFailed      State = "FAILED"
)

const releaseTimeout = 5 * time.Second

// OrphanedPayment describes an authorization with no booking behind it.
type OrphanedPayment struct {
	PaymentID  string
	SessionID  string
	VendorID   string
	CustomerID string
	Amount     int64
	Currency   string
	Err        error
}

// LogReconciliationSink records orphaned payments in the log for a
// reconciliation job to pick up.
type LogReconciliationSink struct {
	Logger *zap.Logger
}

func (s LogReconciliationSink) OrphanedPayment(_ context.Context, o OrphanedPayment) {
	s.Logger.Error("payment authorized without booking, needs reconciliation",
		zap.String("paymentId", o.PaymentID),
		zap.String("sessionId", o.SessionID),
		zap.String("vendorId", o.VendorID),
		zap.String("customerId", o.CustomerID),
		zap.Int64("amount", o.Amount),
		zap.String("currency", o.Currency),
		zap.Error(o.Err),
	)
}

// Coordinator drives a reservation from lock to commit and compensates on
// every failure after the lock is taken.
type Coordinator struct {
	store     ReservationStore
	locks     SlotLocker
	conflicts *ConflictChecker
	payments  PaymentAuthorizer
	fanout    FanOut
	reconcile ReconciliationSink
	logger    *zap.Logger

	now   func() time.Time
	newID func() string
}

// CoordinatorOption customizes a Coordinator.
type CoordinatorOption func(*Coordinator)

func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) { c.now = now }
}

func WithReconciliationSink(sink ReconciliationSink) CoordinatorOption {
	return func(c *Coordinator) { c.reconcile = sink }
}

func NewCoordinator(
	store ReservationStore,
	locks SlotLocker,
	conflicts *ConflictChecker,
	payments PaymentAuthorizer,
	fanout FanOut,
	logger *zap.Logger,
	opts ...CoordinatorOption,
) *Coordinator {
	c := &Coordinator{
		store:     store,
		locks:     locks,
		conflicts: conflicts,
		payments:  payments,
		fanout:    fanout,
		reconcile: LogReconciliationSink{Logger: logger},
		logger:    logger,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// attempt carries the mutable state of one Reserve call.
type attempt struct {
	c        *Coordinator
	log      *zap.Logger
	req      models.ReserveRequest
	start    time.Time
	state    State
	released bool
}

func (a *attempt) enter(next State) {
	a.log.Info("reservation state", zap.String("from", string(a.state)), zap.String("state", string(next)))
	a.state = next
}

// release frees the lock at most once, on a context that survives the
// caller's cancellation. Failures are logged only.
func (a *attempt) release(ctx context.Context) {
	if a.released {
		return
	}
	a.released = true
	a.enter(StateReleasing)

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	ok, err := a.c.locks.Release(rctx, a.req.VendorID, a.start, a.req.SessionID)
	if err != nil {
		a.log.Warn("failed to release slot lock", zap.Error(err))
		return
	}
	if !ok {
		a.log.Warn("slot lock was not held at release")
	}
}

func (a *attempt) fail(ctx context.Context, kind ErrorKind, stage State, reason string, err error) error {
	a.release(ctx)
	a.enter(StateFailed)
	return newBookingError(kind, stage, reason, err)
}

// Reserve locks the slot, authorizes payment and persists the booking with
// its payment. On success the booking is handed to the fan-out and the lock
// is released.
func (c *Coordinator) Reserve(ctx context.Context, req models.ReserveRequest) (*models.ReserveResult, error) {
	a := &attempt{
		c:     c,
		req:   req,
		start: req.StartTime.UTC(),
		state: StateStart,
		log: c.logger.With(
			zap.String("vendorId", req.VendorID),
			zap.String("sessionId", req.SessionID),
		),
	}

	service, err := c.validate(ctx, req)
	if err != nil {
		a.log.Info("reservation rejected", zap.Error(err))
		return nil, err
	}
	end := a.start.Add(time.Duration(service.Duration) * time.Minute)

	a.enter(StateLocking)
	if err := c.locks.Acquire(ctx, req.VendorID, a.start, req.SessionID); err != nil {
		a.enter(StateRejected)
		a.log.Info("slot lock not acquired", zap.Error(err))
		return nil, err
	}
	a.enter(StateLocked)

	// The lock only covers the start bucket; the service may run longer.
	free, err := c.conflicts.IsFree(ctx, req.VendorID, a.start, end)
	if err != nil {
		return nil, a.fail(ctx, KindLockStore, StateLocked, "could not verify slot", err)
	}
	if !free {
		a.release(ctx)
		a.enter(StateRejected)
		return nil, newBookingError(KindConflict, StateLocked, ErrSlotUnavailable.Error(), ErrSlotUnavailable)
	}

	a.enter(StateAuthorizing)
	auth, err := c.payments.Authorize(ctx, payment.AuthorizationRequest{
		Amount:         service.Price,
		Currency:       service.Currency,
		IdempotencyKey: req.SessionID,
		ReceiptEmail:   req.Customer.Email,
		Description:    service.Name,
		Metadata: map[string]string{
			"customerId":       req.Customer.ID,
			"vendorId":         req.VendorID,
			"serviceId":        req.ServiceID,
			"bookingStartTime": a.start.Format(time.RFC3339),
		},
	})
	if err != nil {
		a.log.Warn("payment authorization failed", zap.Error(err))
		return nil, a.fail(ctx, KindPayment, StateAuthorizing, "payment authorization failed", err)
	}

	a.enter(StatePersisting)
	now := c.now().UTC()
	booking := &models.Booking{
		ID:            c.newID(),
		CustomerID:    req.Customer.ID,
		VendorID:      req.VendorID,
		ServiceID:     req.ServiceID,
		StartTime:     a.start,
		EndTime:       end,
		Status:        models.BookingPending,
		PaymentStatus: models.PaymentPending,
		TotalAmount:   service.Price,
		Currency:      service.Currency,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	pay := &models.Payment{
		ID:              c.newID(),
		BookingID:       booking.ID,
		StripePaymentID: auth.ID,
		Amount:          service.Price,
		Currency:        service.Currency,
		Status:          models.PaymentPending,
		CreatedAt:       now,
	}
	if err := c.store.CreateBookingWithPayment(ctx, booking, pay); err != nil {
		a.log.Error("booking not persisted after payment authorization",
			zap.String("paymentId", auth.ID), zap.Error(err))
		// The slot is freed before the orphan is reported; the sink must not
		// delay the caller or hold the lock.
		failure := a.fail(ctx, KindPersistence, StatePersisting, "booking could not be saved", err)
		c.reconcile.OrphanedPayment(context.WithoutCancel(ctx), OrphanedPayment{
			PaymentID:  auth.ID,
			SessionID:  req.SessionID,
			VendorID:   req.VendorID,
			CustomerID: req.Customer.ID,
			Amount:     service.Price,
			Currency:   service.Currency,
			Err:        err,
		})
		return nil, failure
	}

	a.release(ctx)
	a.enter(StateCommitted)

	c.fanout.Dispatch(models.BookingCommitted{
		BookingID:     booking.ID,
		VendorID:      booking.VendorID,
		ServiceID:     booking.ServiceID,
		ServiceName:   service.Name,
		CustomerID:    req.Customer.ID,
		CustomerName:  req.Customer.Name,
		CustomerEmail: req.Customer.Email,
		StartTime:     booking.StartTime,
		EndTime:       booking.EndTime,
		Notes:         booking.Notes,
	})

	return &models.ReserveResult{
		Booking:      booking,
		Payment:      pay,
		ClientSecret: auth.ClientSecret,
	}, nil
}

func (c *Coordinator) validate(ctx context.Context, req models.ReserveRequest) (*models.Service, error) {
	switch {
	case req.VendorID == "":
		return nil, validationError("vendorId is required")
	case req.ServiceID == "":
		return nil, validationError("serviceId is required")
	case req.SessionID == "":
		return nil, validationError("sessionId is required")
	case req.Customer.ID == "":
		return nil, validationError("customer is required")
	case req.StartTime.IsZero():
		return nil, validationError("startTime is required")
	case req.StartTime.Before(c.now()):
		return nil, validationError("startTime is in the past")
	}

	service, err := c.store.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, validationError("service not found")
		}
		return nil, newBookingError(KindPersistence, StateStart, "could not load service", err)
	}
	if service.VendorID != req.VendorID {
		return nil, validationError("service " + strconv.Quote(req.ServiceID) + " is not offered by this vendor")
	}
	if !service.IsActive {
		return nil, validationError("service is not available")
	}
	if service.Duration <= 0 {
		return nil, validationError("service has no duration")
	}
	return service, nil
}
