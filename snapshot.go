package trafficview

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedSnapshot is wrapped by every snapshot validation error.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// Vehicle is one vehicle in a snapshot. X and Y are grid units and mark
// the back-right corner of the vehicle in its direction of travel.
type Vehicle struct {
	X, Y int
	Type VehicleType
	Dir  Direction
}

// TrafficLight is one intersection's signal. X and Y are grid units and
// mark the top-left corner of the intersection.
type TrafficLight struct {
	X, Y  int
	State LightState
}

// Snapshot is a complete simulation frame. It replaces the previous one
// wholesale; nothing is merged.
type Snapshot struct {
	WithBikeLane  bool
	WithBikeBox   bool
	Vehicles      []Vehicle
	TrafficLights []TrafficLight
}

// Wire format. Pointer fields detect missing keys.
type wireVehicle struct {
	Type *int `json:"type"`
	X    *int `json:"x"`
	Y    *int `json:"y"`
	Dir  *int `json:"dir"`
}

type wireLight struct {
	State *int `json:"state"`
	X     *int `json:"x"`
	Y     *int `json:"y"`
}

type wireSnapshot struct {
	WithBikeLane  *bool         `json:"with_bike_lane"`
	WithBikeBox   *bool         `json:"with_bike_box"`
	Vehicles      []wireVehicle `json:"vehicles"`
	TrafficLights []wireLight   `json:"traffic_lights"`
}

// DecodeSnapshot parses a JSON snapshot. Missing or out-of-range enum
// fields are rejected; coordinates are checked later against a grid by
// Snapshot.Validate.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if w.WithBikeLane == nil {
		return nil, fmt.Errorf("%w: missing with_bike_lane", ErrMalformedSnapshot)
	}
	if w.WithBikeBox == nil {
		return nil, fmt.Errorf("%w: missing with_bike_box", ErrMalformedSnapshot)
	}

	s := &Snapshot{
		WithBikeLane:  *w.WithBikeLane,
		WithBikeBox:   *w.WithBikeBox,
		Vehicles:      make([]Vehicle, 0, len(w.Vehicles)),
		TrafficLights: make([]TrafficLight, 0, len(w.TrafficLights)),
	}
	for i, v := range w.Vehicles {
		if v.Type == nil || v.X == nil || v.Y == nil || v.Dir == nil {
			return nil, fmt.Errorf("%w: vehicle %d: missing field", ErrMalformedSnapshot, i)
		}
		if *v.Type < int(VehicleCar) || *v.Type > int(VehicleBike) {
			return nil, fmt.Errorf("%w: vehicle %d: type %d", ErrMalformedSnapshot, i, *v.Type)
		}
		if *v.Dir < int(DirUp) || *v.Dir > int(DirLeft) {
			return nil, fmt.Errorf("%w: vehicle %d: dir %d", ErrMalformedSnapshot, i, *v.Dir)
		}
		s.Vehicles = append(s.Vehicles, Vehicle{
			X: *v.X, Y: *v.Y,
			Type: VehicleType(*v.Type),
			Dir:  Direction(*v.Dir),
		})
	}
	for i, l := range w.TrafficLights {
		if l.State == nil || l.X == nil || l.Y == nil {
			return nil, fmt.Errorf("%w: traffic light %d: missing field", ErrMalformedSnapshot, i)
		}
		if *l.State != int(LightVerticalRed) && *l.State != int(LightHorizontalRed) {
			return nil, fmt.Errorf("%w: traffic light %d: state %d", ErrMalformedSnapshot, i, *l.State)
		}
		s.TrafficLights = append(s.TrafficLights, TrafficLight{
			X: *l.X, Y: *l.Y,
			State: LightState(*l.State),
		})
	}
	return s, nil
}

// MarshalJSON encodes the snapshot in the wire format DecodeSnapshot reads.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	w := struct {
		WithBikeLane  bool             `json:"with_bike_lane"`
		WithBikeBox   bool             `json:"with_bike_box"`
		Vehicles      []map[string]int `json:"vehicles"`
		TrafficLights []map[string]int `json:"traffic_lights"`
	}{
		WithBikeLane:  s.WithBikeLane,
		WithBikeBox:   s.WithBikeBox,
		Vehicles:      make([]map[string]int, 0, len(s.Vehicles)),
		TrafficLights: make([]map[string]int, 0, len(s.TrafficLights)),
	}
	for _, v := range s.Vehicles {
		w.Vehicles = append(w.Vehicles, map[string]int{
			"type": int(v.Type), "x": v.X, "y": v.Y, "dir": int(v.Dir),
		})
	}
	for _, l := range s.TrafficLights {
		w.TrafficLights = append(w.TrafficLights, map[string]int{
			"state": int(l.State), "x": l.X, "y": l.Y,
		})
	}
	return json.Marshal(w)
}

// Validate checks every entity against the grid. Coordinates outside
// [0, size) are rejected rather than clamped.
func (s *Snapshot) Validate(grid GridConfig) error {
	if s == nil {
		return fmt.Errorf("%w: nil snapshot", ErrMalformedSnapshot)
	}
	inside := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < grid.Size && y < grid.Size
	}
	for i, v := range s.Vehicles {
		if v.Type > VehicleBike {
			return fmt.Errorf("%w: vehicle %d: type %d", ErrMalformedSnapshot, i, v.Type)
		}
		if v.Dir > DirLeft {
			return fmt.Errorf("%w: vehicle %d: dir %d", ErrMalformedSnapshot, i, v.Dir)
		}
		if !inside(v.X, v.Y) {
			return fmt.Errorf("%w: vehicle %d at (%d,%d) outside %dx%d grid",
				ErrMalformedSnapshot, i, v.X, v.Y, grid.Size, grid.Size)
		}
	}
	for i, l := range s.TrafficLights {
		if l.State > LightHorizontalRed {
			return fmt.Errorf("%w: traffic light %d: state %d", ErrMalformedSnapshot, i, l.State)
		}
		if !inside(l.X, l.Y) {
			return fmt.Errorf("%w: traffic light %d at (%d,%d) outside %dx%d grid",
				ErrMalformedSnapshot, i, l.X, l.Y, grid.Size, grid.Size)
		}
	}
	return nil
}
