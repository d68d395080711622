package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SweepInterval is how often idle per-visitor state is dropped.
const SweepInterval = time.Minute

// Sweeper drops expired state and reports how many entries it removed.
type Sweeper interface {
	Sweep() int
}

// SweepWorker periodically expires the in-process per-visitor state (like
// toggles, upload progress, in-memory credentials).
type SweepWorker struct {
	sweepers map[string]Sweeper
	interval time.Duration
	log      zerolog.Logger
}

func NewSweepWorker(interval time.Duration, sweepers map[string]Sweeper, log zerolog.Logger) *SweepWorker {
	if interval <= 0 {
		interval = SweepInterval
	}
	return &SweepWorker{
		sweepers: sweepers,
		interval: interval,
		log:      log.With().Str("component", "sweep_worker").Logger(),
	}
}

func (w *SweepWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("SweepWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("SweepWorker stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *SweepWorker) sweep() {
	for name, s := range w.sweepers {
		if n := s.Sweep(); n > 0 {
			w.log.Debug().Str("store", name).Int("removed", n).Msg("Swept idle entries")
		}
	}
}
