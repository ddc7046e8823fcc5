package orders

import (
	"context"
	"sync"
	"time"

	"github.com/shopease/shopease-engine/internal/apiclient"
)

const defaultPollInterval = 15 * time.Second

// UpdateFunc receives each successfully fetched order record.
type UpdateFunc func(record apiclient.OrderRecord)

// Watcher polls one order's status on a fixed cadence and delivers updates
// to its callback. It stops on its own once the order reaches a terminal
// status; Stop or context cancellation halts it earlier. Updates arriving
// after a stop are discarded.
type Watcher struct {
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// Watch starts polling the order. The first poll fires immediately, then
// every interval. Failed polls are logged and retried on the next tick; the
// prior delivered record stays current.
func (s *Service) Watch(ctx context.Context, orderID string, interval time.Duration, onUpdate UpdateFunc) *Watcher {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	w := &Watcher{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.pollLoop(ctx, w, orderID, interval, onUpdate)
	return w
}

// Stop halts the watcher and waits for in-flight work to finish.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done
}

// Done is closed once the poll loop has fully exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (s *Service) pollLoop(ctx context.Context, w *Watcher, orderID string, interval time.Duration, onUpdate UpdateFunc) {
	defer close(w.done)
	ctx = s.logg.WithOrderID(ctx, orderID)

	if terminal := s.pollOnce(ctx, w, orderID, onUpdate); terminal {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logg.Debug(ctx, "order watch canceled")
			return
		case <-w.stop:
			s.logg.Debug(ctx, "order watch stopped")
			return
		case <-ticker.C:
			if terminal := s.pollOnce(ctx, w, orderID, onUpdate); terminal {
				return
			}
		}
	}
}

// pollOnce fetches the order once and reports whether polling should end.
func (s *Service) pollOnce(ctx context.Context, w *Watcher, orderID string, onUpdate UpdateFunc) bool {
	start := time.Now()
	record, err := s.api.GetOrder(ctx, orderID)
	if err != nil {
		s.metrics.ObservePoll("error", time.Since(start))
		if ctx.Err() != nil {
			return true
		}
		s.logg.Warn(ctx, "order status poll failed, will retry")
		return false
	}
	s.metrics.ObservePoll("ok", time.Since(start))

	select {
	case <-w.stop:
		// The watcher was stopped while the request was in flight.
		return true
	case <-ctx.Done():
		return true
	default:
	}

	if onUpdate != nil {
		onUpdate(record)
	}
	if record.Status.Terminal() {
		s.logg.Info(ctx, "order reached terminal status, watch complete")
		return true
	}
	return false
}
