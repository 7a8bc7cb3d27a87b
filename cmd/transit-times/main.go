package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/transit-times/transit-times/internal/app"
	"github.com/transit-times/transit-times/internal/appconf"
	"github.com/transit-times/transit-times/internal/display"
	"github.com/transit-times/transit-times/internal/logging"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "transit-times",
		Usage: "live countdown of the next TriMet trains and buses",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   appconf.DefaultPath,
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"TRANSIT_TIMES_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "append logs to this file instead of log_file from the config",
			},
		},
		Action: runDashboard,
		Commands: []*cli.Command{
			{
				Name:   "check",
				Usage:  "poll every configured stop once and print the result",
				Action: runCheck,
			},
		},
	}
}

// setup loads the configuration and opens the log sink. The returned closer
// releases the log file.
func setup(c *cli.Context) (appconf.Config, *slog.Logger, io.Closer, error) {
	cfg, err := appconf.Load(c.String("config"))
	if err != nil {
		return appconf.Config{}, nil, nil, cli.Exit(err.Error(), 1)
	}
	if path := c.String("log-file"); path != "" {
		cfg.LogFile = path
	}

	logFile, err := logging.OpenLogFile(cfg.LogFile)
	if err != nil {
		return appconf.Config{}, nil, nil, cli.Exit(fmt.Sprintf("cannot open log file: %v", err), 1)
	}

	filter := logging.ParseLevel(cfg.LogLevel)
	if !filter.Cumulative() {
		fmt.Fprintf(c.App.ErrWriter, "warning: log_level %q is not one of %s, %s or %s; only records at exactly that level are logged\n",
			cfg.LogLevel, logging.LevelError, logging.LevelInfo, logging.LevelDebug)
	}

	logger := logging.NewFilteredLogger(logFile, filter)
	return cfg, logger, logFile, nil
}

func runDashboard(c *cli.Context) error {
	cfg, logger, logFile, err := setup(c)
	if err != nil {
		return err
	}
	defer logging.SafeCloseWithLogging(logFile, logger, "close log file")

	screen := display.NewScreen(c.App.Writer, display.TerminalWidth(int(os.Stdout.Fd())))
	application := app.New(cfg, logger, screen)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	if err := application.Start(c.Context); err != nil {
		return cli.Exit(fmt.Sprintf("cannot draw to terminal: %v", err), 1)
	}

	select {
	case sig := <-signals:
		logger.Info("received signal, shutting down", slog.String("signal", sig.String()))
		go func() {
			<-signals // hard exit on second signal (in case shutdown gets stuck)
			os.Exit(1)
		}()
	case <-application.Done():
	}

	if err := application.Shutdown(); err != nil {
		return cli.Exit(fmt.Sprintf("cannot draw to terminal: %v", err), 1)
	}
	return nil
}

func runCheck(c *cli.Context) error {
	cfg, logger, logFile, err := setup(c)
	if err != nil {
		return err
	}
	defer logging.SafeCloseWithLogging(logFile, logger, "close log file")

	application := app.New(cfg, logger, display.NewScreen(c.App.Writer, nil))
	lines, err := application.Check(c.Context)
	if err != nil {
		return cli.Exit(fmt.Sprintf("check failed: %v", err), 1)
	}

	for _, line := range lines {
		fmt.Fprintln(c.App.Writer, line)
	}
	return nil
}
