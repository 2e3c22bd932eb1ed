package trafficview

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// submitter rasterises draw commands onto a surface. It carries the
// current transform between commands, like a canvas context.
type submitter struct {
	surface   surface
	icons     *IconSet
	transform [6]float64
	op        ebiten.DrawImageOptions
	dashBuf   []Segment
	resized   int // number of surface reallocations, for debug stats
}

// submit executes cmds in order.
func (s *submitter) submit(cmds []DrawCommand) {
	s.transform = identityTransform
	for i := range cmds {
		cmd := &cmds[i]
		switch cmd.Type {
		case CommandResize:
			if s.surface.ensureSize(cmd.Size) {
				s.resized++
			}
		case CommandTransform:
			s.transform = cmd.Transform
		case CommandClear:
			if img := s.surface.Image(); img != nil {
				img.Clear()
			}
		case CommandLines:
			s.submitLines(cmd)
		case CommandClearRect:
			s.submitClearRect(cmd)
		case CommandFillRect:
			s.submitFillRect(cmd)
		case CommandIcon:
			s.submitIcon(cmd)
		}
	}
}

func (s *submitter) submitLines(cmd *DrawCommand) {
	dst := s.surface.Image()
	if dst == nil {
		return
	}
	segs := cmd.Segments
	if len(cmd.Dash) > 0 {
		s.dashBuf = s.dashBuf[:0]
		for _, seg := range cmd.Segments {
			s.dashBuf = dashSegments(s.dashBuf, seg, cmd.Dash, cmd.DashOffset)
		}
		segs = s.dashBuf
	}
	width := float32(cmd.LineWidth * affineScale(s.transform))
	clr := cmd.Color.RGBA()
	for _, seg := range segs {
		x0, y0 := transformPoint(s.transform, seg.A.X, seg.A.Y)
		x1, y1 := transformPoint(s.transform, seg.B.X, seg.B.Y)
		vector.StrokeLine(dst, float32(x0), float32(y0), float32(x1), float32(y1), width, clr, true)
	}
}

func (s *submitter) submitClearRect(cmd *DrawCommand) {
	dst := s.surface.Image()
	if dst == nil {
		return
	}
	r := transformRect(s.transform, cmd.Rect)
	bounds := image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.Width)), int(math.Ceil(r.Y+r.Height)),
	).Intersect(dst.Bounds())
	if bounds.Empty() {
		return
	}
	dst.SubImage(bounds).(*ebiten.Image).Clear()
}

func (s *submitter) submitFillRect(cmd *DrawCommand) {
	dst := s.surface.Image()
	if dst == nil {
		return
	}
	r := transformRect(s.transform, cmd.Rect)
	vector.DrawFilledRect(dst, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), cmd.Color.RGBA(), false)
}

// submitIcon draws a vehicle icon scaled into cmd.Rect and rotated about its
// center. A missing icon is skipped; the rectangle was already drawn.
func (s *submitter) submitIcon(cmd *DrawCommand) {
	dst := s.surface.Image()
	if dst == nil {
		return
	}
	icon := s.icons.Icon(cmd.Vehicle)
	if icon == nil {
		return
	}
	b := icon.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	w, h := cmd.Rect.Width, cmd.Rect.Height
	ctr := cmd.Rect.Center()

	op := &s.op
	op.GeoM.Reset()
	op.GeoM.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	op.GeoM.Translate(-w/2, -h/2)
	op.GeoM.Rotate(cmd.Rotation)
	op.GeoM.Translate(ctr.X, ctr.Y)
	op.GeoM.Concat(affineGeoM(s.transform))
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(icon, op)
}

// affineGeoM converts a [6]float64 transform into an ebiten.GeoM.
func affineGeoM(t [6]float64) ebiten.GeoM {
	var m ebiten.GeoM
	m.SetElement(0, 0, t[0])
	m.SetElement(1, 0, t[1])
	m.SetElement(0, 1, t[2])
	m.SetElement(1, 1, t[3])
	m.SetElement(0, 2, t[4])
	m.SetElement(1, 2, t[5])
	return m
}

// dashSegments appends the visible pieces of seg under a dash pattern to
// dst. Each segment starts its own pattern, shifted by offset, as a canvas
// subpath does. Odd-length patterns are repeated to make them even.
func dashSegments(dst []Segment, seg Segment, dash []float64, offset float64) []Segment {
	d := seg.B.Sub(seg.A)
	length := math.Hypot(d.X, d.Y)
	var period float64
	for _, v := range dash {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return append(dst, seg)
		}
		period += v
	}
	if length == 0 || period <= 0 {
		return append(dst, seg)
	}
	if len(dash)%2 == 1 {
		dash = append(dash[:len(dash):len(dash)], dash...)
		period *= 2
	}

	phase := math.Mod(offset, period)
	if phase < 0 {
		phase += period
	}
	i := 0
	for phase >= dash[i] {
		phase -= dash[i]
		i = (i + 1) % len(dash)
	}

	unit := d.Scale(1 / length)
	pos := 0.0
	remaining := dash[i] - phase
	for pos < length {
		end := math.Min(length, pos+remaining)
		if i%2 == 0 && end > pos {
			dst = append(dst, Segment{
				A: seg.A.Add(unit.Scale(pos)),
				B: seg.A.Add(unit.Scale(end)),
			})
		}
		pos = end
		i = (i + 1) % len(dash)
		remaining = dash[i]
	}
	return dst
}
