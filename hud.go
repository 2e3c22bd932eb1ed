package trafficview

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/bitmapfont/v4"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	hudSampleInterval = 0.5 // seconds between FPS samples
	hudMargin         = 6
	hudPadding        = 4
	hudLineHeight     = 16
)

// hud is the overlay in the top-left corner showing vehicle counts, zoom
// and frame rate. Drawn in screen space, unaffected by the camera.
type hud struct {
	enabled bool
	face    *text.GoXFace
	fps     float64
	elapsed float64
}

// update samples the frame rate every hudSampleInterval seconds.
func (h *hud) update(dt float64) {
	if !h.enabled {
		return
	}
	h.elapsed += dt
	if h.elapsed < hudSampleInterval {
		return
	}
	h.elapsed = 0
	h.fps = ebiten.ActualFPS()
}

// HUDLines returns the overlay text for a frame.
func HUDLines(st FrameState, fps float64) []string {
	var cars, bikes int
	for _, v := range st.Vehicles {
		switch v.Type {
		case VehicleCar:
			cars++
		case VehicleBike:
			bikes++
		}
	}
	lines := []string{
		fmt.Sprintf("cars: %d  bikes: %d", cars, bikes),
		fmt.Sprintf("lights: %d", len(st.TrafficLights)),
		fmt.Sprintf("zoom: %.2fx", st.Zoom),
		fmt.Sprintf("fps: %.1f", fps),
	}
	if st.Grid.BikeLane {
		lines = append(lines, "bike lanes")
	}
	return lines
}

func (h *hud) draw(screen *ebiten.Image, st FrameState) {
	if !h.enabled {
		return
	}
	if h.face == nil {
		h.face = text.NewGoXFace(bitmapfont.Face)
	}
	lines := HUDLines(st, h.fps)

	var width float64
	for _, l := range lines {
		width = max(width, text.Advance(l, h.face))
	}
	height := float64(len(lines) * hudLineHeight)
	vector.DrawFilledRect(screen,
		hudMargin, hudMargin,
		float32(width+2*hudPadding), float32(height+2*hudPadding),
		ColorHUDPanel.RGBA(), false)

	op := &text.DrawOptions{}
	op.GeoM.Translate(hudMargin+hudPadding, hudMargin+hudPadding)
	op.ColorScale.ScaleWithColor(ColorHUD.RGBA())
	op.LineSpacing = hudLineHeight
	text.Draw(screen, strings.Join(lines, "\n"), h.face, op)
}
