package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/transit-times/transit-times/internal/appconf"
	"github.com/transit-times/transit-times/internal/arrivals"
	"github.com/transit-times/transit-times/internal/display"
	"github.com/transit-times/transit-times/internal/logging"
	"github.com/transit-times/transit-times/internal/poller"
	"github.com/transit-times/transit-times/internal/trimet"
)

// WarmUp is how long the renderer waits after the poller starts, giving the
// first poll cycle a chance to publish before anything is drawn.
const WarmUp = 4 * time.Second

// Application holds the shared store and the two loops reading and writing it.
type Application struct {
	Config   appconf.Config
	Logger   *slog.Logger
	Store    *arrivals.Store
	Poller   *poller.Poller
	Renderer *display.Renderer
	Screen   *display.Screen

	// WarmUp overrides the renderer start delay when non-zero.
	WarmUp time.Duration

	ctx          context.Context
	cancel       context.CancelFunc
	wg           conc.WaitGroup
	shutdownOnce sync.Once

	errMu     sync.Mutex
	renderErr error
}

// New wires a feed client, poller and renderer around a fresh store.
func New(config appconf.Config, logger *slog.Logger, screen *display.Screen) *Application {
	if logger == nil {
		logger = slog.Default()
	}

	store := arrivals.NewStore()
	client := trimet.NewClient(config.FeedURL, config.AppID, config.FetchTimeout)
	ctx, cancel := context.WithCancel(context.Background())

	return &Application{
		Config: config,
		Logger: logger,
		Store:  store,
		Poller: poller.New(client, store, poller.Config{
			TrainStop: config.TrainStop,
			BusStops:  config.BusStops,
		}, logger),
		Renderer: display.NewRenderer(store, screen, logger),
		Screen:   screen,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start prepares the terminal and launches the poller, then the renderer once
// the warm-up has passed. It returns immediately.
func (app *Application) Start(ctx context.Context) error {
	if err := app.Screen.Setup(); err != nil {
		return err
	}

	// Cancelling the caller's context stops the application like Shutdown.
	context.AfterFunc(ctx, app.cancel)

	warmUp := app.WarmUp
	if warmUp <= 0 {
		warmUp = WarmUp
	}

	logging.LogOperation(app.Logger, "starting_application",
		slog.Duration("warm_up", warmUp))

	app.wg.Go(func() {
		app.Poller.Run(app.ctx)
	})
	app.wg.Go(func() {
		timer := time.NewTimer(warmUp)
		defer timer.Stop()
		select {
		case <-app.ctx.Done():
			return
		case <-timer.C:
		}

		if err := app.Renderer.Run(app.ctx); err != nil {
			app.setRenderErr(err)
			app.cancel()
		}
	})
	return nil
}

// Done is closed once the application stops on its own, its Start context is
// cancelled or Shutdown is called. It is safe to call before Start.
func (app *Application) Done() <-chan struct{} {
	return app.ctx.Done()
}

// Shutdown stops both loops, waits for them and restores the terminal. It
// returns the renderer failure, if that is what stopped the application.
func (app *Application) Shutdown() error {
	app.shutdownOnce.Do(func() {
		app.cancel()
		app.wg.Wait()
		if err := app.Screen.Close(); err != nil {
			logging.LogError(app.Logger, "failed to restore terminal", err)
		}
		logging.LogOperation(app.Logger, "application_stopped")
	})
	return app.err()
}

// Check runs a single poll cycle and returns the frame it would draw.
func (app *Application) Check(ctx context.Context) ([]string, error) {
	if err := app.Poller.PollOnce(ctx); err != nil {
		return nil, err
	}
	return app.Renderer.Frame(), nil
}

func (app *Application) setRenderErr(err error) {
	app.errMu.Lock()
	defer app.errMu.Unlock()
	app.renderErr = err
}

func (app *Application) err() error {
	app.errMu.Lock()
	defer app.errMu.Unlock()
	return app.renderErr
}
