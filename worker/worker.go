package worker

import (
	"context"
	"errors"

	"bookinghub/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Worker runs the booking fan-out tasks.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

// New builds a worker consuming the notification and calendar queues.
func New(redisOpt asynq.RedisConnOpt, concurrency int, handlers *Handlers, logger *zap.Logger) *Worker {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				tasks.QueueNotifications: 6,
				tasks.QueueCalendar:      4,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				reportFailure(logger, task, err, retried, maxRetry)
			}),
			Logger:   logger.Sugar(),
			LogLevel: asynq.WarnLevel,
		},
	)

	mux := asynq.NewServeMux()
	handlers.Register(mux)

	return &Worker{server: srv, mux: mux, logger: logger}
}

// Start begins processing in the background.
func (w *Worker) Start() error {
	w.logger.Info("starting fan-out worker")
	return w.server.Start(w.mux)
}

// Shutdown waits for in-flight tasks and stops the worker.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
	w.logger.Info("fan-out worker stopped")
}

// reportFailure logs every failed attempt. asynq archives a task, which is
// the dead-letter queue, once retries are exhausted or the handler returned
// SkipRetry.
func reportFailure(logger *zap.Logger, task *asynq.Task, err error, retried, maxRetry int) {
	fields := []zap.Field{
		zap.String("type", task.Type()),
		zap.Int("retried", retried),
		zap.Int("maxRetry", maxRetry),
		zap.Error(err),
	}
	if event, perr := tasks.ParseBookingCommitted(task); perr == nil {
		fields = append(fields, zap.String("bookingId", event.BookingID))
	}
	if errors.Is(err, asynq.SkipRetry) || retried >= maxRetry {
		logger.Error("fan-out task dead-lettered", fields...)
		return
	}
	logger.Warn("fan-out task failed, will retry", fields...)
}
