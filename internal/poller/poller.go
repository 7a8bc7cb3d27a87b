package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/transit-times/transit-times/internal/arrivals"
	"github.com/transit-times/transit-times/internal/logging"
	"github.com/transit-times/transit-times/internal/trimet"
)

// DefaultInterval is the fixed pause between the end of one poll cycle and
// the start of the next. It does not grow after failures.
const DefaultInterval = 10 * time.Second

// Fetcher downloads the raw arrivals document for one stop.
type Fetcher interface {
	Fetch(ctx context.Context, stopID string) ([]byte, error)
}

// Config names the stops polled each cycle.
type Config struct {
	TrainStop string
	BusStops  []string
	Interval  time.Duration
}

// Poller fetches every configured stop, assembles a new snapshot off to the
// side and publishes it to the store only when the whole cycle succeeds.
type Poller struct {
	fetcher Fetcher
	store   *arrivals.Store
	config  Config
	logger  *slog.Logger
	now     func() time.Time
	state   atomic.Int32
}

// New returns a poller writing to store. A zero Interval means DefaultInterval.
func New(fetcher Fetcher, store *arrivals.Store, config Config, logger *slog.Logger) *Poller {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		fetcher: fetcher,
		store:   store,
		config:  config,
		logger:  logger.With(slog.String("component", "poller")),
		now:     time.Now,
	}
}

// State returns what the poller is doing right now.
func (p *Poller) State() State {
	return State(p.state.Load())
}

func (p *Poller) setState(state State) {
	p.state.Store(int32(state))
}

// Run polls until ctx is cancelled, sleeping the fixed interval after every
// cycle whatever its outcome.
func (p *Poller) Run(ctx context.Context) {
	logging.LogOperation(p.logger, "starting_poller",
		slog.String("train_stop", p.config.TrainStop),
		slog.Int("bus_stops", len(p.config.BusStops)),
		slog.Duration("interval", p.config.Interval))

	for ctx.Err() == nil {
		if err := p.PollOnce(ctx); err != nil && ctx.Err() != nil {
			break
		}

		p.setState(StateSleeping)
		if !sleep(ctx, p.config.Interval) {
			break
		}
	}

	p.setState(StateIdle)
	logging.LogOperation(p.logger, "shutting_down_poller")
}

// PollOnce runs a single cycle. On success the new snapshot is published and
// the error flag cleared. On any failure the cycle stops at the failing stop,
// the flag is set and the previous snapshot stays current. Cancellation of
// ctx leaves the store untouched.
func (p *Poller) PollOnce(ctx context.Context) error {
	start := p.now()
	ctx = logging.WithLogger(ctx, p.logger)
	p.setState(StateFetching)

	records := make([]arrivals.Record, 0)

	p.logger.Info("getting train data", slog.String("stop_id", p.config.TrainStop))
	trains, err := p.fetchStop(ctx, p.config.TrainStop, trimet.ParseTrain)
	if err != nil {
		return p.fail(ctx, err)
	}
	records = append(records, trains...)

	for _, stopID := range p.config.BusStops {
		p.logger.Info("getting bus data", slog.String("stop_id", stopID))
		buses, err := p.fetchStop(ctx, stopID, trimet.ParseBus)
		if err != nil {
			return p.fail(ctx, err)
		}
		records = append(records, buses...)
	}

	p.setState(StatePublishing)
	p.store.Publish(arrivals.NewSnapshot(records, p.now()))
	p.store.SetFailed(false)

	p.logger.Debug("snapshot published",
		slog.Int("records", len(records)),
		slog.Duration("duration", p.now().Sub(start)))
	return nil
}

func (p *Poller) fetchStop(ctx context.Context, stopID string, parse func([]byte) ([]arrivals.Record, error)) ([]arrivals.Record, error) {
	raw, err := p.fetcher.Fetch(ctx, stopID)
	if err != nil {
		return nil, err
	}
	records, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("stop %s: %w", stopID, err)
	}
	return records, nil
}

func (p *Poller) fail(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	p.setState(StateErrorHandling)
	p.store.SetFailed(true)

	var fetchErr *trimet.FetchError
	var parseErr *trimet.ParseError
	switch {
	case errors.As(err, &fetchErr):
		logging.LogError(p.logger, "poll cycle failed", err,
			slog.String("cause", "fetch"),
			slog.String("kind", fetchErr.Kind.String()),
			slog.String("stop_id", fetchErr.StopID))
	case errors.As(err, &parseErr):
		logging.LogError(p.logger, "poll cycle failed", err,
			slog.String("cause", "parse"))
	default:
		logging.LogError(p.logger, "poll cycle failed with unexpected error", err)
	}

	return err
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
