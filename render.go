package trafficview

import "math"

// CommandType identifies the kind of draw command.
type CommandType uint8

const (
	CommandResize    CommandType = iota // resize the drawing surface to Size
	CommandTransform                    // set the world-to-surface matrix
	CommandClear                        // clear the whole surface
	CommandLines                        // stroke Segments, solid or dashed
	CommandClearRect                    // erase Rect back to transparent
	CommandFillRect                     // fill Rect with Color
	CommandIcon                         // draw the Vehicle icon into Rect, rotated about its center
)

// DrawCommand is a single draw instruction produced by BuildFrame. All
// geometry is in world pixels; the submitter applies the transform.
type DrawCommand struct {
	Type      CommandType
	Size      float64    // CommandResize
	Transform [6]float64 // CommandTransform

	// CommandLines
	Segments   []Segment
	LineWidth  float64
	Dash       []float64 // alternating on/off lengths; nil draws solid
	DashOffset float64

	Rect     Rect        // CommandClearRect, CommandFillRect, CommandIcon
	Color    Color       // CommandLines, CommandFillRect
	Vehicle  VehicleType // CommandIcon
	Rotation float64     // CommandIcon, radians clockwise
}

// FrameState is everything a frame depends on. BuildFrame never mutates it.
type FrameState struct {
	Grid          GridConfig
	Zoom          float64
	Offset        Vec2
	Vehicles      []Vehicle
	TrafficLights []TrafficLight
}

// vehicleStyle describes how one vehicle type is drawn. shift moves the
// supplied back-right corner to the rectangle's top-left corner, per
// direction, in grid units.
type vehicleStyle struct {
	size  float64
	color Color
	shift [4]Vec2
}

var vehicleStyles = [...]vehicleStyle{
	VehicleCar: {
		size:  2,
		color: ColorCar,
		shift: [4]Vec2{
			DirUp:    {-1, -1},
			DirRight: {0, -1},
			DirDown:  {0, 0},
			DirLeft:  {-1, 0},
		},
	},
	VehicleBike: {
		size:  1,
		color: ColorBike,
	},
}

const (
	streetLineWidth  = 1.0
	lightLineWidth   = 3.0
	bikeBoxLineWidth = 1.5
)

// BuildFrame produces the draw commands for one frame: surface size,
// camera transform, clear, grid, vehicles, traffic lights.
func BuildFrame(st FrameState) []DrawCommand {
	g := st.Grid
	extent := g.ExtentPixels()

	cmds := make([]DrawCommand, 0, 8+g.StreetCount*g.StreetCount+2*len(st.Vehicles)+2*len(st.TrafficLights))
	cmds = append(cmds,
		DrawCommand{Type: CommandResize, Size: extent},
		DrawCommand{Type: CommandTransform, Transform: viewMatrix(extent, st.Zoom, st.Offset)},
		DrawCommand{Type: CommandClear},
	)
	cmds = appendGrid(cmds, g)
	for _, v := range st.Vehicles {
		cmds = appendVehicle(cmds, g, v)
	}
	for _, l := range st.TrafficLights {
		cmds = appendTrafficLight(cmds, g, l)
	}
	return cmds
}

// fullLines returns a vertical and a horizontal line across the whole
// extent at position k.
func fullLines(k, extent float64) []Segment {
	return []Segment{
		{A: Vec2{k, 0}, B: Vec2{k, extent}},
		{A: Vec2{0, k}, B: Vec2{extent, k}},
	}
}

func appendGrid(cmds []DrawCommand, g GridConfig) []DrawCommand {
	extent := g.ExtentPixels()

	borders := make([]Segment, 0, 4*g.StreetCount)
	centers := make([]Segment, 0, 2*g.StreetCount)
	var bikes []Segment
	for i := 0; i < g.StreetCount; i++ {
		left, right := g.StreetBorders(i)
		borders = append(borders, fullLines(left, extent)...)
		borders = append(borders, fullLines(right, extent)...)
		centers = append(centers, fullLines(g.Centerline(i), extent)...)
		if a, b, ok := g.BikeLaneLines(i); ok {
			bikes = append(bikes, fullLines(a, extent)...)
			bikes = append(bikes, fullLines(b, extent)...)
		}
	}

	cmds = append(cmds,
		DrawCommand{Type: CommandLines, Segments: borders, LineWidth: streetLineWidth, Color: ColorStreet},
		DrawCommand{
			Type: CommandLines, Segments: centers, LineWidth: streetLineWidth, Color: ColorStreet,
			Dash: []float64{g.px(2), g.px(2)}, DashOffset: g.px(2),
		},
	)
	if len(bikes) > 0 {
		cmds = append(cmds, DrawCommand{
			Type: CommandLines, Segments: bikes, LineWidth: streetLineWidth, Color: ColorBikeLane,
			Dash: []float64{g.px(1), g.px(1)},
		})
	}

	// Intersections are open: no lane markings cross them.
	for _, r := range g.Intersections() {
		cmds = append(cmds, DrawCommand{Type: CommandClearRect, Rect: r})
	}
	return cmds
}

// vehicleRect returns the rectangle a vehicle occupies in world pixels.
func vehicleRect(g GridConfig, v Vehicle) Rect {
	style := vehicleStyles[v.Type]
	shift := style.shift[v.Dir]
	return Rect{
		X:      g.px(float64(v.X) + shift.X),
		Y:      g.px(float64(v.Y) + shift.Y),
		Width:  g.px(style.size),
		Height: g.px(style.size),
	}
}

// iconRotation turns the icon's default orientation toward dir.
func iconRotation(dir Direction) float64 {
	return float64(int(dir)-1) * math.Pi / 2
}

func appendVehicle(cmds []DrawCommand, g GridConfig, v Vehicle) []DrawCommand {
	r := vehicleRect(g, v)
	return append(cmds,
		DrawCommand{Type: CommandFillRect, Rect: r, Color: vehicleStyles[v.Type].color},
		DrawCommand{Type: CommandIcon, Rect: r, Vehicle: v.Type, Rotation: iconRotation(v.Dir)},
	)
}

func appendTrafficLight(cmds []DrawCommand, g GridConfig, l TrafficLight) []DrawCommand {
	x, y := float64(l.X), float64(l.Y)
	s := float64(g.StreetWidth)
	pt := func(ux, uy float64) Vec2 { return Vec2{g.px(ux), g.px(uy)} }

	horizontal, vertical := ColorGreen, ColorRed
	if l.State == LightHorizontalRed {
		horizontal, vertical = ColorRed, ColorGreen
	}

	cmds = append(cmds,
		// Left and right edges stop left <-> right traffic.
		DrawCommand{
			Type: CommandLines, LineWidth: lightLineWidth, Color: horizontal,
			Segments: []Segment{
				{A: pt(x, y), B: pt(x, y+s)},
				{A: pt(x+s, y), B: pt(x+s, y+s)},
			},
		},
		// Top and bottom edges stop up <-> down traffic.
		DrawCommand{
			Type: CommandLines, LineWidth: lightLineWidth, Color: vertical,
			Segments: []Segment{
				{A: pt(x, y), B: pt(x+s, y)},
				{A: pt(x, y+s), B: pt(x+s, y+s)},
			},
		},
	)
	if !g.BikeBox {
		return cmds
	}
	return append(cmds, DrawCommand{
		Type: CommandLines, LineWidth: bikeBoxLineWidth, Color: ColorStreet,
		Segments: []Segment{
			{A: pt(x-1, y+s/2), B: pt(x-1, y+s-1)},     // left -> right
			{A: pt(x+s+1, y+1), B: pt(x+s+1, y+s/2)},   // right -> left
			{A: pt(x+1, y-1), B: pt(x+s/2, y-1)},       // up -> down
			{A: pt(x+s/2, y+s+1), B: pt(x+s-1, y+s+1)}, // down -> up
		},
	})
}
