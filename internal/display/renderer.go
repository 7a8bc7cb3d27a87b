package display

import (
	"context"
	"log/slog"
	"time"

	"github.com/transit-times/transit-times/internal/arrivals"
	"github.com/transit-times/transit-times/internal/logging"
)

// Drawer receives each rendered frame.
type Drawer interface {
	Draw(lines []string) error
}

// Renderer redraws the current snapshot about once a second. It only reads
// from the store and never blocks the poller.
type Renderer struct {
	store  *arrivals.Store
	drawer Drawer
	logger *slog.Logger
	now    func() time.Time
}

// NewRenderer returns a renderer drawing the contents of store to drawer.
func NewRenderer(store *arrivals.Store, drawer Drawer, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		store:  store,
		drawer: drawer,
		logger: logger.With(slog.String("component", "renderer")),
		now:    time.Now,
	}
}

// Frame builds the lines for the current state of the store.
func (r *Renderer) Frame() []string {
	failed := r.store.Failed()
	snapshot := r.store.Read()
	return BuildFrame(snapshot, failed, r.now().Unix())
}

// Tick draws one frame.
func (r *Renderer) Tick() error {
	lines := r.Frame()
	if err := r.drawer.Draw(lines); err != nil {
		return err
	}
	r.logger.Debug("frame drawn", slog.Int("lines", len(lines)))
	return nil
}

// Run draws a frame per tick until ctx is cancelled. A failed write to the
// terminal ends the loop and is returned.
func (r *Renderer) Run(ctx context.Context) error {
	logging.LogOperation(r.logger, "starting_renderer")
	defer logging.LogOperation(r.logger, "shutting_down_renderer")

	for ctx.Err() == nil {
		start := r.now()
		if err := r.Tick(); err != nil {
			logging.LogError(r.logger, "failed to draw frame", err)
			return err
		}

		wait := PaceDelay(r.now().Sub(start))
		if wait <= 0 {
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
	return nil
}

// PaceDelay returns how long to sleep after a tick that took elapsed, aiming
// for one tick per second. Ticks slower than a second get no sleep.
func PaceDelay(elapsed time.Duration) time.Duration {
	return time.Second - elapsed%time.Minute
}
