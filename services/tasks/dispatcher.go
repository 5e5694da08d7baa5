package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"bookinghub/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer is the part of asynq.Client the dispatcher uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqDispatcher hands committed bookings to the background worker. Each
// side effect is enqueued independently and never blocks the caller.
type AsynqDispatcher struct {
	client   Enqueuer
	maxRetry int
	timeout  time.Duration
	logger   *zap.Logger
	wg       sync.WaitGroup
}

func NewAsynqDispatcher(client Enqueuer, maxRetry int, logger *zap.Logger) *AsynqDispatcher {
	return &AsynqDispatcher{
		client:   client,
		maxRetry: maxRetry,
		timeout:  5 * time.Second,
		logger:   logger,
	}
}

func (d *AsynqDispatcher) Dispatch(event models.BookingCommitted) {
	builders := []func(models.BookingCommitted, int) (*asynq.Task, error){
		NewNotifyCustomerTask,
		NewNotifyVendorTask,
		NewPushVendorTask,
		NewCalendarSyncTask,
	}
	for _, build := range builders {
		d.wg.Add(1)
		go func(build func(models.BookingCommitted, int) (*asynq.Task, error)) {
			defer d.wg.Done()
			d.enqueue(build, event)
		}(build)
	}
}

func (d *AsynqDispatcher) enqueue(build func(models.BookingCommitted, int) (*asynq.Task, error), event models.BookingCommitted) {
	task, err := build(event, d.maxRetry)
	if err != nil {
		d.logger.Error("failed to build fan-out task", zap.String("bookingId", event.BookingID), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	info, err := d.client.EnqueueContext(ctx, task)
	switch {
	case errors.Is(err, asynq.ErrTaskIDConflict):
		d.logger.Info("fan-out task already queued", zap.String("type", task.Type()), zap.String("bookingId", event.BookingID))
	case err != nil:
		d.logger.Error("failed to enqueue fan-out task",
			zap.String("type", task.Type()),
			zap.String("bookingId", event.BookingID),
			zap.Error(err))
	default:
		d.logger.Info("fan-out task enqueued",
			zap.String("type", task.Type()),
			zap.String("queue", info.Queue),
			zap.String("taskId", info.ID))
	}
}

// Wait blocks until every dispatched enqueue has finished. Used on shutdown.
func (d *AsynqDispatcher) Wait() {
	d.wg.Wait()
}
