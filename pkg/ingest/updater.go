package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/sheltr/route-engine/pkg/observability"
)

// Applier receives a batch of accumulated safety scores keyed by segment ID.
// The engine's implementation rebuilds the graph and swaps it in atomically.
type Applier func(updates map[string]float64)

// Updater consumes safety updates from Kafka and applies them in debounced
// batches. Updates within one rebuild interval coalesce; the last score per
// segment wins. Routes served between batches keep using the previous
// graph, so queries never observe a half-applied update.
type Updater struct {
	fetcher  Fetcher
	apply    Applier
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewUpdater wires a consumer to an apply callback. Pass a real clock in
// production and a fake one in tests.
func NewUpdater(fetcher Fetcher, apply Applier, interval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Updater {
	return &Updater{
		fetcher:  fetcher,
		apply:    apply,
		interval: interval,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run consumes until the context is cancelled. Malformed messages are
// logged, committed, and skipped; a fetch failure ends the run.
func (u *Updater) Run(ctx context.Context) error {
	msgs := make(chan kafkago.Message)
	fetchErr := make(chan error, 1)

	go func() {
		for {
			m, err := u.fetcher.FetchMessage(ctx)
			if err != nil {
				fetchErr <- err
				return
			}
			select {
			case msgs <- m:
			case <-ctx.Done():
				return
			}
		}
	}()

	pending := make(map[string]float64)
	ticker := u.clock.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			u.flush(pending)
			return nil

		case err := <-fetchErr:
			if ctx.Err() != nil {
				u.flush(pending)
				return nil
			}
			return err

		case m := <-msgs:
			update, err := ParseUpdate(m.Value)
			if err != nil {
				u.logger.Warn("skipping malformed safety update", "error", err, "offset", m.Offset)
			} else {
				pending[update.SegmentID] = update.ProbSafe
				u.metrics.SafetyUpdates.Inc()
			}
			if err := u.fetcher.CommitMessages(ctx, m); err != nil {
				u.logger.Error("commit safety update failed", "error", err, "offset", m.Offset)
			}

		case <-ticker.Chan():
			if len(pending) > 0 {
				u.flush(pending)
				pending = make(map[string]float64)
			}
		}
	}
}

func (u *Updater) flush(pending map[string]float64) {
	if len(pending) == 0 {
		return
	}
	u.logger.Info("applying safety update batch", "segments", len(pending))
	u.apply(pending)
	u.metrics.GraphRebuilds.Inc()
}
