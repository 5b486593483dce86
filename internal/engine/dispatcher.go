package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/rfoley/parkwatch/internal/push"
)

const (
	// batchSize is the delivery gateway's batching limit.
	batchSize = 50
	// sendTimeout bounds one batch submission so a slow push service
	// cannot stall the tick indefinitely.
	sendTimeout = 10 * time.Second
)

// Gateway submits one batch of push messages and reports per-message
// results. Implemented by push.Service.
type Gateway interface {
	SendBatch(ctx context.Context, msgs []push.Message) []push.Result
}

// RegistrationRetirer removes a user's device registration. Removing an
// absent registration must be a no-op. Implemented by store.PushStore.
type RegistrationRetirer interface {
	DeleteByUser(userID int64) error
}

// Dispatcher batches messages to the gateway and reconciles per-message
// delivery results, retiring registrations the push service reports gone.
type Dispatcher struct {
	gateway Gateway
	regs    RegistrationRetirer
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(gateway Gateway, regs RegistrationRetirer, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{gateway: gateway, regs: regs, logger: logger}
}

// Dispatch submits every message in gateway-sized batches. One failed
// batch never blocks the next, and no error escapes: delivery failures
// are logged and otherwise dropped, since the next cycle re-offers any
// condition still true. A result marked expired retires that user's
// registration so later cycles stop attempting delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, msgs []push.Message) {
	if d.gateway == nil {
		if len(msgs) > 0 {
			d.logger.Warn("push gateway not configured, dropping messages", "count", len(msgs))
		}
		return
	}
	for start := 0; start < len(msgs); start += batchSize {
		end := min(start+batchSize, len(msgs))
		d.dispatchBatch(ctx, msgs[start:end])
	}
}

func (d *Dispatcher) dispatchBatch(ctx context.Context, batch []push.Message) {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	for _, result := range d.gateway.SendBatch(ctx, batch) {
		switch {
		case result.Expired:
			d.logger.Info("retiring expired push registration", "user_id", result.UserID)
			if err := d.regs.DeleteByUser(result.UserID); err != nil {
				d.logger.Error("retire push registration", "user_id", result.UserID, "error", err)
			}
		case result.Err != nil:
			d.logger.Warn("push delivery failed", "user_id", result.UserID, "error", result.Err)
		}
	}
}
