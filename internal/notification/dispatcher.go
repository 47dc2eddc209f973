package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrQueueFull        = errors.New("notification queue is full")
	ErrDispatcherClosed = errors.New("notification dispatcher is closed")
)

const handleTimeout = 30 * time.Second

// Dispatcher はプロセス内の非同期キュー。
// Publishはブロックしない（満杯ならErrQueueFull）。
type Dispatcher struct {
	handler Handler
	logger  *slog.Logger
	workers int
	queue   chan Event

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(handler Handler, workers int, queueSize int, logger *slog.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		handler: handler,
		logger:  logger,
		workers: workers,
		queue:   make(chan Event, queueSize),
	}
}

// Start はworkerを起動する。ctxはメール送信に使う（リクエストのctxとは切り離す）
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for ev := range d.queue {
				d.handle(ctx, ev)
			}
		}()
	}
}

func (d *Dispatcher) handle(ctx context.Context, ev Event) {
	hctx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	err := d.handler.Handle(hctx, ev)
	switch {
	case err == nil:
		d.logger.Info("notification sent", "event_id", ev.ID, "kind", ev.Kind, "order_id", ev.OrderID)
	case errors.Is(err, ErrUnknownStatus):
		d.logger.Warn("notification skipped", "event_id", ev.ID, "kind", ev.Kind, "status", ev.Status, "error", err)
	default:
		d.logger.Error("notification failed", "event_id", ev.ID, "kind", ev.Kind, "order_id", ev.OrderID, "error", err)
	}
}

func (d *Dispatcher) Publish(ctx context.Context, ev Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close は受付を止めて、キューに残ったイベントを処理し終えるまで待つ
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}
