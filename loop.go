package trafficview

import (
	"fmt"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
)

// Frame is the per-tick work a RenderLoop drives. *Viewer implements it.
type Frame interface {
	Update() error
	Draw(screen *ebiten.Image)
	Layout(outsideWidth, outsideHeight int) (int, int)
}

// RenderLoop drives a Frame once per display refresh. It implements
// ebiten.Game. After Stop the next Update returns ebiten.Termination and
// the game loop exits.
type RenderLoop struct {
	frame   Frame
	running atomic.Bool
	frames  atomic.Uint64
}

// NewRenderLoop creates a stopped loop for frame.
func NewRenderLoop(frame Frame) *RenderLoop {
	return &RenderLoop{frame: frame}
}

// Start marks the loop as running. Run calls it.
func (l *RenderLoop) Start() { l.running.Store(true) }

// Stop tears the loop down. Safe from any goroutine.
func (l *RenderLoop) Stop() { l.running.Store(false) }

// Running reports whether the loop is running.
func (l *RenderLoop) Running() bool { return l.running.Load() }

// Frames returns the number of frames drawn so far.
func (l *RenderLoop) Frames() uint64 { return l.frames.Load() }

// Update implements ebiten.Game.
func (l *RenderLoop) Update() error {
	if !l.running.Load() {
		return ebiten.Termination
	}
	return l.frame.Update()
}

// Draw implements ebiten.Game.
func (l *RenderLoop) Draw(screen *ebiten.Image) {
	if !l.running.Load() {
		return
	}
	l.frame.Draw(screen)
	l.frames.Add(1)
}

// Layout implements ebiten.Game.
func (l *RenderLoop) Layout(outsideWidth, outsideHeight int) (int, int) {
	return l.frame.Layout(outsideWidth, outsideHeight)
}

// RunConfig holds window parameters for Run.
type RunConfig struct {
	Title  string
	Width  int // window width; 0 uses the frame's layout size
	Height int
	// Resizable lets the user resize the window; the grid is scaled to fit.
	Resizable bool
}

// Run opens a window and blocks until the loop is stopped or the window is
// closed.
func (l *RenderLoop) Run(cfg RunConfig) error {
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		w, h = l.frame.Layout(0, 0)
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(w, h)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	l.Start()
	defer l.Stop()
	if err := ebiten.RunGame(l); err != nil {
		return fmt.Errorf("run game: %w", err)
	}
	return nil
}

// Run is a convenience that wraps v in a RenderLoop and runs it.
func Run(v *Viewer, cfg RunConfig) error {
	return NewRenderLoop(v).Run(cfg)
}
