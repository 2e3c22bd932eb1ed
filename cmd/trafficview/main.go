// Command trafficview shows a live traffic grid. Snapshots come from a
// websocket feed or, without one, from a built-in demo simulation.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/phanxgames/trafficview"
	"github.com/phanxgames/trafficview/feed"
)

func main() {
	var configPath, logLevel, logFormat string

	rootCmd := &cobra.Command{
		Use:          "trafficview",
		Short:        "Pannable, zoomable view of a simulated street grid",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format, text or json (overrides config)")

	load := func() (Config, *logrus.Logger, error) {
		return loadWithFlags(configPath, logLevel, logFormat)
	}

	rootCmd.AddCommand(runCmd(load))
	rootCmd.AddCommand(serveCmd(load))
	rootCmd.AddCommand(validateCmd(load))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type loader func() (Config, *logrus.Logger, error)

// loadWithFlags reads the config file and applies the persistent logging
// flags over it. Empty flag values keep the file's settings.
func loadWithFlags(path, level, format string) (Config, *logrus.Logger, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return cfg, nil, err
	}
	if level != "" {
		cfg.Log.Level = level
	}
	if format != "" {
		cfg.Log.Format = format
	}
	log, err := cfg.newLogger()
	return cfg, log, err
}

func runCmd(load loader) *cobra.Command {
	var (
		feedURL    string
		scriptPath string
		noHUD      bool
		debug      bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the viewer window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("feed") {
				cfg.Feed.URL = feedURL
			}
			if noHUD {
				cfg.HUD = false
			}
			if debug {
				cfg.Debug = true
				log.SetLevel(logrus.DebugLevel)
			}
			return runViewer(cmd.Context(), cfg, log, scriptPath)
		},
	}
	cmd.Flags().StringVar(&feedURL, "feed", "", "websocket URL of a snapshot feed (default: built-in demo)")
	cmd.Flags().StringVar(&scriptPath, "script", "", "JSON gesture script; the window closes when it finishes")
	cmd.Flags().BoolVar(&noHUD, "no-hud", false, "hide the overlay")
	cmd.Flags().BoolVar(&debug, "debug", false, "log per-frame stats")
	return cmd
}

// scriptedFrame stops the loop once the gesture script has run.
type scriptedFrame struct {
	*trafficview.Viewer
	runner *trafficview.TestRunner
	loop   *trafficview.RenderLoop
}

func (f *scriptedFrame) Update() error {
	if err := f.Viewer.Update(); err != nil {
		return err
	}
	if f.runner.Done() {
		f.loop.Stop()
	}
	return nil
}

func runViewer(parent context.Context, cfg Config, log *logrus.Logger, scriptPath string) error {
	opts := cfg.viewerOptions(log)

	if len(cfg.Icons) > 0 {
		paths, err := cfg.iconPaths()
		if err != nil {
			return err
		}
		icons, err := trafficview.LoadIcons(os.DirFS("."), paths)
		if err != nil {
			log.WithError(err).Warn("some icons failed to load; they will not be drawn")
		}
		opts = append(opts, trafficview.WithIcons(icons))
	}

	var runner *trafficview.TestRunner
	if scriptPath != "" {
		data, err := os.ReadFile(scriptPath)
		if err != nil {
			return fmt.Errorf("reading script: %w", err)
		}
		runner, err = trafficview.LoadTestScript(data)
		if err != nil {
			return err
		}
		opts = append(opts, trafficview.WithTestRunner(runner))
	}

	viewer, err := trafficview.NewViewer(cfg.Grid.Size, cfg.Grid.FirstStreet, opts...)
	if err != nil {
		return err
	}
	defer viewer.Dispose()

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt)
	defer cancel()

	if cfg.Feed.URL != "" {
		client := feed.NewClient(cfg.Feed.URL, viewer, log)
		client.ReconnectDelay = cfg.Feed.ReconnectDelay
		go func() {
			if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("feed stopped")
			}
		}()
	} else {
		sim := newDemoSim(demoGrid(cfg), cfg.Demo.Cars, cfg.Demo.Bikes, cfg.Demo.Seed)
		go sim.run(ctx, cfg.Demo.Tick, viewer.Enqueue)
	}

	var loop *trafficview.RenderLoop
	if runner != nil {
		sf := &scriptedFrame{Viewer: viewer, runner: runner}
		loop = trafficview.NewRenderLoop(sf)
		sf.loop = loop
	} else {
		loop = trafficview.NewRenderLoop(viewer)
	}
	go func() {
		<-ctx.Done()
		loop.Stop()
	}()

	log.WithFields(logrus.Fields{
		"grid":  cfg.Grid.Size,
		"feed":  cfg.Feed.URL,
		"title": cfg.Window.Title,
	}).Info("viewer starting")
	return loop.Run(trafficview.RunConfig{
		Title:     cfg.Window.Title,
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		Resizable: cfg.Window.Resizable,
	})
}

// demoGrid is the grid the demo simulation drives, with the demo's lane
// modes applied.
func demoGrid(cfg Config) trafficview.GridConfig {
	g := cfg.grid().WithBikeLane(cfg.Demo.BikeLane)
	g.BikeBox = cfg.Demo.BikeBox
	return g
}

func serveCmd(load loader) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo simulation and broadcast snapshots over a websocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()
			return serveDemo(ctx, cfg, log, addr)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", ":8765", "listen address")
	return cmd
}

func serveDemo(ctx context.Context, cfg Config, log *logrus.Logger, addr string) error {
	server := feed.NewServer(log)
	mux := http.NewServeMux()
	mux.Handle("/feed", server)
	httpServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	sim := newDemoSim(demoGrid(cfg), cfg.Demo.Cars, cfg.Demo.Bikes, cfg.Demo.Seed)
	go sim.run(ctx, cfg.Demo.Tick, func(s *trafficview.Snapshot) {
		if err := server.Broadcast(s); err != nil {
			log.WithError(err).Error("broadcast")
		}
	})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", addr).Info("serving feed on /feed")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

func validateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [snapshot.json]",
		Short: "Check a snapshot file against the configured grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := load()
			if err != nil {
				return err
			}
			summary, err := validateSnapshotFile(cfg, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}

// validateSnapshotFile decodes and validates a snapshot, returning a one
// line summary.
func validateSnapshotFile(cfg Config, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading snapshot: %w", err)
	}
	snap, err := trafficview.DecodeSnapshot(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	grid := cfg.grid()
	if err := grid.Validate(); err != nil {
		return "", err
	}
	if err := snap.Validate(grid.WithBikeLane(snap.WithBikeLane)); err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return fmt.Sprintf("%s: ok (%d vehicles, %d traffic lights, bike lane %t, bike box %t)",
		path, len(snap.Vehicles), len(snap.TrafficLights), snap.WithBikeLane, snap.WithBikeBox), nil
}
