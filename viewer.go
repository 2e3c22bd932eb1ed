package trafficview

import (
	"fmt"
	"image"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
	"github.com/tanema/gween/ease"
)

// homeDuration is how long the animated return to the initial view takes.
const homeDuration = 0.35

// Option configures a Viewer.
type Option func(*Viewer)

// WithLogger sets the logger. Defaults to logrus.StandardLogger().
func WithLogger(l logrus.FieldLogger) Option {
	return func(v *Viewer) { v.log = l }
}

// WithEventSink forwards gesture events to sink.
func WithEventSink(sink EventSink) Option {
	return func(v *Viewer) { v.gestures.SetEventSink(sink) }
}

// WithZoomLimits sets the allowed zoom range. The minimum is raised to 1.
func WithZoomLimits(min, max float64) Option {
	return func(v *Viewer) { v.camera.SetZoomLimits(min, max) }
}

// WithScrollSensitivity sets the wheel delta to zoom conversion.
func WithScrollSensitivity(s float64) Option {
	return func(v *Viewer) { v.gestures.ScrollSensitivity = s }
}

// WithStreets overrides the street layout (widths in grid units).
func WithStreets(width, spacing, count int) Option {
	return func(v *Viewer) { v.grid = v.grid.WithStreets(width, spacing, count) }
}

// WithCellPixels sets the grid-unit to pixel scale.
func WithCellPixels(px float64) Option {
	return func(v *Viewer) { v.grid.CellPixels = px }
}

// WithIcons sets the vehicle icons. A nil set draws no icons. Without this
// option the built-in arrows are used.
func WithIcons(icons *IconSet) Option {
	return func(v *Viewer) {
		v.icons = icons
		v.iconsSet = true
	}
}

// WithDebug logs per-frame stats at debug level.
func WithDebug(enabled bool) Option {
	return func(v *Viewer) { v.debug = enabled }
}

// WithHUD toggles the counts/zoom/FPS overlay.
func WithHUD(enabled bool) Option {
	return func(v *Viewer) { v.hud.enabled = enabled }
}

// WithScreenshotDir sets where Screenshot writes PNG files.
func WithScreenshotDir(dir string) Option {
	return func(v *Viewer) { v.ScreenshotDir = dir }
}

// WithTestRunner attaches a scripted gesture runner.
func WithTestRunner(r *TestRunner) Option {
	return func(v *Viewer) { v.testRunner = r }
}

// Viewer is the traffic grid visualization. It owns the grid geometry, the
// camera, the gesture controller and the current entity snapshot, and it
// implements the Update/Draw/Layout half of ebiten.Game; wrap it in a
// RenderLoop to run it.
//
// All methods except Enqueue and EnqueueReset must be called from the
// goroutine running the game loop.
type Viewer struct {
	grid     GridConfig
	camera   *Camera
	gestures *GestureController

	vehicles []Vehicle
	lights   []TrafficLight

	log      logrus.FieldLogger
	debug    bool
	icons    *IconSet
	iconsSet bool

	submit      submitter
	poller      inputPoller
	events      []InputEvent
	injectQueue []InputEvent

	mu      sync.Mutex
	pending []pendingUpdate

	hud   hud
	stats frameStats

	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir   string
	screenshotQueue []string
	testRunner      *TestRunner
}

// pendingUpdate is a hand-off from another goroutine. A nil snapshot is a
// reset.
type pendingUpdate struct {
	snapshot *Snapshot
}

// NewViewer creates a viewer for a grid of size x size units with the
// first street at firstStreet. The camera starts at zoom 1, no offset.
func NewViewer(size, firstStreet int, opts ...Option) (*Viewer, error) {
	v := &Viewer{
		grid:          NewGridConfig(size, firstStreet),
		log:           logrus.StandardLogger(),
		ScreenshotDir: "screenshots",
		hud:           hud{enabled: true},
	}
	v.camera = NewCamera(v.grid.ExtentPixels())
	v.gestures = NewGestureController(v.camera)
	for _, opt := range opts {
		opt(v)
	}
	if err := v.grid.Validate(); err != nil {
		return nil, err
	}
	v.camera.SetSize(v.grid.ExtentPixels())
	return v, nil
}

// Grid returns the current grid configuration.
func (v *Viewer) Grid() GridConfig { return v.grid }

// Camera returns the viewer's camera.
func (v *Viewer) Camera() *Camera { return v.camera }

// Gestures returns the gesture controller.
func (v *Viewer) Gestures() *GestureController { return v.gestures }

// Vehicles returns the current vehicles. The slice must not be modified.
func (v *Viewer) Vehicles() []Vehicle { return v.vehicles }

// TrafficLights returns the current traffic lights. The slice must not be
// modified.
func (v *Viewer) TrafficLights() []TrafficLight { return v.lights }

// ApplySnapshot validates s and, if it is well formed, switches the grid to
// the snapshot's bike-lane and bike-box modes and replaces both entity
// collections. A malformed snapshot leaves the viewer untouched.
func (v *Viewer) ApplySnapshot(s *Snapshot) error {
	if s == nil {
		return fmt.Errorf("apply snapshot: %w: nil", ErrMalformedSnapshot)
	}
	g := v.grid.WithBikeLane(s.WithBikeLane)
	g.BikeBox = s.WithBikeBox
	if err := s.Validate(g); err != nil {
		return fmt.Errorf("apply snapshot: %w", err)
	}
	v.grid = g
	v.camera.SetSize(g.ExtentPixels())
	v.vehicles = slices.Clone(s.Vehicles)
	v.lights = slices.Clone(s.TrafficLights)
	return nil
}

// Reset clears all vehicles and traffic lights. Grid and camera are kept.
func (v *Viewer) Reset() {
	v.vehicles = nil
	v.lights = nil
}

// Enqueue hands a snapshot to the viewer from any goroutine. It is applied
// on the next Update; rejected snapshots are logged.
func (v *Viewer) Enqueue(s *Snapshot) {
	if s == nil {
		return
	}
	v.mu.Lock()
	v.pending = append(v.pending, pendingUpdate{snapshot: s})
	v.mu.Unlock()
}

// EnqueueReset schedules a Reset from any goroutine.
func (v *Viewer) EnqueueReset() {
	v.mu.Lock()
	v.pending = append(v.pending, pendingUpdate{})
	v.mu.Unlock()
}

// drainPending applies queued hand-offs in arrival order.
func (v *Viewer) drainPending() {
	v.mu.Lock()
	pending := v.pending
	v.pending = nil
	v.mu.Unlock()

	for _, p := range pending {
		if p.snapshot == nil {
			v.Reset()
			continue
		}
		if err := v.ApplySnapshot(p.snapshot); err != nil {
			v.log.WithError(err).Warn("snapshot rejected")
		}
	}
}

// FrameState returns everything the next frame depends on.
func (v *Viewer) FrameState() FrameState {
	return FrameState{
		Grid:          v.grid,
		Zoom:          v.camera.Zoom(),
		Offset:        v.camera.Offset(),
		Vehicles:      v.vehicles,
		TrafficLights: v.lights,
	}
}

// canvasBounds is the screen rectangle the grid occupies.
func (v *Viewer) canvasBounds() Rect {
	side := v.camera.Size()
	return Rect{Width: side, Height: side}
}

// tickSeconds is the duration of one Update.
func tickSeconds() float32 {
	tps := ebiten.TPS()
	if tps <= 0 {
		return 1.0 / ebiten.DefaultTPS
	}
	return 1 / float32(tps)
}

// Update applies pending snapshots, processes input and advances the camera
// animation. Called once per tick by RenderLoop.
func (v *Viewer) Update() error {
	v.advance(v.poller.readInputFrame(v.canvasBounds()), homeRequested(), tickSeconds())
	return nil
}

// advance is one tick given already-read device state.
func (v *Viewer) advance(f inputFrame, home bool, dt float32) {
	v.drainPending()
	if v.testRunner != nil {
		v.testRunner.step(v)
	}

	v.events = v.poller.diff(f, v.events[:0])
	if ev, ok := v.popInjected(); ok {
		v.events = append(v.events[:0], ev)
	}
	for _, ev := range v.events {
		v.gestures.Handle(ev)
	}

	if home {
		v.camera.AnimateHome(homeDuration, ease.OutCubic)
	}
	v.camera.Update(dt)
	v.hud.update(float64(dt))
}

// Draw renders the current frame onto screen.
func (v *Viewer) Draw(screen *ebiten.Image) {
	if !v.iconsSet {
		v.icons = DefaultIcons()
		v.iconsSet = true
	}

	start := time.Now()
	st := v.FrameState()
	cmds := BuildFrame(st)
	built := time.Now()

	v.submit.icons = v.icons
	v.submit.submit(cmds)
	submitted := time.Now()

	screen.Fill(ColorPaper.RGBA())
	if img := v.submit.surface.Image(); img != nil {
		screen.DrawImage(img, nil)
	}
	v.hud.draw(screen, st)
	v.flushScreenshots(screen)

	v.stats = frameStats{
		buildTime:    built.Sub(start),
		submitTime:   submitted.Sub(built),
		commandCount: len(cmds),
		segmentCount: countSegments(cmds),
		resizes:      v.submit.resized,
	}
	v.debugLog(v.stats)
}

// Layout makes the logical screen exactly the grid's pixel extent, so
// screen and canvas coordinates coincide.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	side := int(math.Ceil(v.grid.ExtentPixels()))
	return side, side
}

// Dispose releases the offscreen surface.
func (v *Viewer) Dispose() {
	v.submit.surface.dispose()
}

// surfaceBounds returns the current surface size, zero before the first Draw.
func (v *Viewer) surfaceBounds() image.Rectangle {
	if img := v.submit.surface.Image(); img != nil {
		return img.Bounds()
	}
	return image.Rectangle{}
}
