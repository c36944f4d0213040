package telegram

import (
	"context"
	"log/slog"
	"time"

	"github.com/sarybala/bot/internal/config"
	"github.com/sarybala/bot/internal/service"
)

// PushFunc applies one display update. final marks the terminal push, which
// renders the clean text without the in-progress cursor.
type PushFunc func(ctx context.Context, text string, final bool) error

// Reconciler bridges the orchestrator's fast snapshot sequence to the
// rate-limited message-edit primitive. A snapshot is pushed when enough time
// passed since the last push or the text grew past the burst threshold; the
// last snapshot is always pushed once the sequence ends.
type Reconciler struct {
	minInterval time.Duration
	burstChars  int
	push        PushFunc
	now         func() time.Time
}

func NewReconciler(push PushFunc) *Reconciler {
	return &Reconciler{
		minInterval: config.EditMinInterval,
		burstChars:  config.EditBurstChars,
		push:        push,
		now:         time.Now,
	}
}

// Run consumes the snapshot sequence until it is exhausted and returns the
// final snapshot. Intermediate push failures are treated as skips; the next
// eligible snapshot retries.
func (r *Reconciler) Run(ctx context.Context, snapshots <-chan service.Snapshot) service.Snapshot {
	var last service.Snapshot
	var lastPushed string
	var lastPushTime time.Time

	for snap := range snapshots {
		last = snap
		if snap.Err != nil {
			// Terminal; the flush below displays the error text.
			continue
		}

		grown := len([]rune(snap.Text)) - len([]rune(lastPushed))
		if r.now().Sub(lastPushTime) < r.minInterval && grown <= r.burstChars {
			continue
		}

		if err := r.push(ctx, snap.Text, false); err != nil {
			slog.Debug("display update skipped", "error", err)
			continue
		}
		lastPushed = snap.Text
		lastPushTime = r.now()
	}

	// Always flush the final state, even if the text did not change since
	// the last push: the terminal render drops the cursor and applies
	// final formatting.
	if err := r.push(ctx, last.Text, true); err != nil {
		slog.Warn("final display update failed", "error", err)
	}

	return last
}
