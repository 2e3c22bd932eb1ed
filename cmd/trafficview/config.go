package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/trafficview"
)

// Config is the YAML configuration of the trafficview command. Command
// line flags override individual fields.
type Config struct {
	Grid struct {
		Size         int     `yaml:"size"`
		FirstStreet  int     `yaml:"first_street"`
		CellPixels   float64 `yaml:"cell_pixels"`
		StreetWidth  int     `yaml:"street_width"`
		BlockSpacing int     `yaml:"block_spacing"`
		StreetCount  int     `yaml:"street_count"`
	} `yaml:"grid"`

	Camera struct {
		MinZoom           float64 `yaml:"min_zoom"`
		MaxZoom           float64 `yaml:"max_zoom"`
		ScrollSensitivity float64 `yaml:"scroll_sensitivity"`
	} `yaml:"camera"`

	Window struct {
		Title     string `yaml:"title"`
		Width     int    `yaml:"width"`
		Height    int    `yaml:"height"`
		Resizable bool   `yaml:"resizable"`
	} `yaml:"window"`

	Feed struct {
		URL            string        `yaml:"url"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	} `yaml:"feed"`

	Demo struct {
		Cars     int           `yaml:"cars"`
		Bikes    int           `yaml:"bikes"`
		BikeLane bool          `yaml:"bike_lane"`
		BikeBox  bool          `yaml:"bike_box"`
		Tick     time.Duration `yaml:"tick"`
		Seed     uint64        `yaml:"seed"`
	} `yaml:"demo"`

	Icons map[string]string `yaml:"icons"` // vehicle type name -> image path

	HUD           bool   `yaml:"hud"`
	Debug         bool   `yaml:"debug"`
	ScreenshotDir string `yaml:"screenshot_dir"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // text or json
	} `yaml:"log"`
}

// defaultConfig matches the simulation's layout: a 424 unit grid with
// the first street at 100.
func defaultConfig() Config {
	var c Config
	c.Grid.Size = trafficview.DefaultGridSize
	c.Grid.FirstStreet = trafficview.DefaultFirstStreet
	c.Grid.CellPixels = trafficview.DefaultCellPixels
	c.Grid.StreetWidth = trafficview.DefaultStreetWidth
	c.Grid.BlockSpacing = trafficview.DefaultBlockSpacing
	c.Grid.StreetCount = trafficview.DefaultStreetCount
	c.Camera.MinZoom = trafficview.DefaultMinZoom
	c.Camera.MaxZoom = trafficview.DefaultMaxZoom
	c.Camera.ScrollSensitivity = trafficview.DefaultScrollSensitivity
	c.Window.Title = "trafficview"
	c.Feed.ReconnectDelay = 2 * time.Second
	c.Demo.Cars = 24
	c.Demo.Bikes = 8
	c.Demo.Tick = 100 * time.Millisecond
	c.Demo.Seed = 1
	c.HUD = true
	c.ScreenshotDir = "screenshots"
	c.Log.Level = "info"
	c.Log.Format = "text"
	return c
}

// loadConfig reads path over the defaults. An empty path returns the
// defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config YAML: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// validate rejects configurations the viewer or the demo simulation cannot
// run with. The demo grid is checked with its bike lane applied, since that
// moves the first street.
func (c Config) validate() error {
	if err := demoGrid(c).Validate(); err != nil {
		return fmt.Errorf("grid: %w", err)
	}
	switch {
	case c.Demo.Tick <= 0:
		return fmt.Errorf("demo: tick %v must be positive", c.Demo.Tick)
	case c.Demo.Cars < 0:
		return fmt.Errorf("demo: negative car count %d", c.Demo.Cars)
	case c.Demo.Bikes < 0:
		return fmt.Errorf("demo: negative bike count %d", c.Demo.Bikes)
	case c.Feed.ReconnectDelay < 0:
		return fmt.Errorf("feed: negative reconnect delay %v", c.Feed.ReconnectDelay)
	}
	return nil
}

// grid builds the grid configuration described by c.
func (c Config) grid() trafficview.GridConfig {
	g := trafficview.NewGridConfig(c.Grid.Size, c.Grid.FirstStreet).
		WithStreets(c.Grid.StreetWidth, c.Grid.BlockSpacing, c.Grid.StreetCount)
	g.CellPixels = c.Grid.CellPixels
	return g
}

// vehicleTypeByName maps config keys to vehicle types.
var vehicleTypeByName = map[string]trafficview.VehicleType{
	trafficview.VehicleCar.String():  trafficview.VehicleCar,
	trafficview.VehicleBike.String(): trafficview.VehicleBike,
}

// iconPaths converts the icons section into LoadIcons input.
func (c Config) iconPaths() (map[trafficview.VehicleType]string, error) {
	paths := make(map[trafficview.VehicleType]string, len(c.Icons))
	for name, path := range c.Icons {
		t, ok := vehicleTypeByName[name]
		if !ok {
			return nil, fmt.Errorf("icons: unknown vehicle type %q", name)
		}
		paths[t] = path
	}
	return paths, nil
}

// viewerOptions translates c into viewer options. Icons are left to the
// caller, which loads them from disk and logs the ones that fail.
func (c Config) viewerOptions(log logrus.FieldLogger) []trafficview.Option {
	return []trafficview.Option{
		trafficview.WithLogger(log),
		trafficview.WithStreets(c.Grid.StreetWidth, c.Grid.BlockSpacing, c.Grid.StreetCount),
		trafficview.WithCellPixels(c.Grid.CellPixels),
		trafficview.WithZoomLimits(c.Camera.MinZoom, c.Camera.MaxZoom),
		trafficview.WithScrollSensitivity(c.Camera.ScrollSensitivity),
		trafficview.WithHUD(c.HUD),
		trafficview.WithDebug(c.Debug),
		trafficview.WithScreenshotDir(c.ScreenshotDir),
	}
}

// newLogger builds the command's logger from the log section.
func (c Config) newLogger() (*logrus.Logger, error) {
	log := logrus.New()
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)
	switch c.Log.Format {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("log format %q: want text or json", c.Log.Format)
	}
	return log, nil
}
