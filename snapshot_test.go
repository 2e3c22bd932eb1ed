package trafficview

import (
	"errors"
	"testing"
)

func TestDecodeSnapshot(t *testing.T) {
	data := []byte(`{
		"with_bike_lane": true,
		"with_bike_box": false,
		"vehicles": [
			{"type": 0, "x": 20, "y": 20, "dir": 2},
			{"type": 1, "x": 3, "y": 400, "dir": 3}
		],
		"traffic_lights": [{"state": 1, "x": 99, "y": 154}]
	}`)
	s, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatal(err)
	}
	if !s.WithBikeLane || s.WithBikeBox {
		t.Errorf("flags = %v/%v", s.WithBikeLane, s.WithBikeBox)
	}
	wantV := []Vehicle{
		{X: 20, Y: 20, Type: VehicleCar, Dir: DirDown},
		{X: 3, Y: 400, Type: VehicleBike, Dir: DirLeft},
	}
	if len(s.Vehicles) != len(wantV) {
		t.Fatalf("vehicles = %d", len(s.Vehicles))
	}
	for i := range wantV {
		if s.Vehicles[i] != wantV[i] {
			t.Errorf("vehicle %d = %+v, want %+v", i, s.Vehicles[i], wantV[i])
		}
	}
	if len(s.TrafficLights) != 1 || s.TrafficLights[0] != (TrafficLight{X: 99, Y: 154, State: LightHorizontalRed}) {
		t.Errorf("lights = %+v", s.TrafficLights)
	}
}

func TestDecodeSnapshotEmptyCollections(t *testing.T) {
	s, err := DecodeSnapshot([]byte(`{"with_bike_lane": false, "with_bike_box": false}`))
	if err != nil {
		t.Fatal(err)
	}
	if s.Vehicles == nil || s.TrafficLights == nil || len(s.Vehicles) != 0 || len(s.TrafficLights) != 0 {
		t.Errorf("want empty non-nil collections, got %+v", s)
	}
}

func TestDecodeSnapshotRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"missing bike lane", `{"with_bike_box": true}`},
		{"missing bike box", `{"with_bike_lane": true}`},
		{"vehicle missing dir", `{"with_bike_lane":false,"with_bike_box":false,"vehicles":[{"type":0,"x":1,"y":1}]}`},
		{"vehicle bad type", `{"with_bike_lane":false,"with_bike_box":false,"vehicles":[{"type":2,"x":1,"y":1,"dir":0}]}`},
		{"vehicle bad dir", `{"with_bike_lane":false,"with_bike_box":false,"vehicles":[{"type":0,"x":1,"y":1,"dir":4}]}`},
		{"vehicle negative dir", `{"with_bike_lane":false,"with_bike_box":false,"vehicles":[{"type":0,"x":1,"y":1,"dir":-1}]}`},
		{"light missing x", `{"with_bike_lane":false,"with_bike_box":false,"traffic_lights":[{"state":0,"y":1}]}`},
		{"light bad state", `{"with_bike_lane":false,"with_bike_box":false,"traffic_lights":[{"state":2,"x":1,"y":1}]}`},
		{"string coordinate", `{"with_bike_lane":false,"with_bike_box":false,"vehicles":[{"type":0,"x":"1","y":1,"dir":0}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := DecodeSnapshot([]byte(tt.data))
			if !errors.Is(err, ErrMalformedSnapshot) {
				t.Errorf("err = %v, want ErrMalformedSnapshot", err)
			}
			if s != nil {
				t.Errorf("got partial snapshot %+v", s)
			}
		})
	}
}

func TestSnapshotMarshalDecodes(t *testing.T) {
	in := &Snapshot{
		WithBikeLane:  true,
		WithBikeBox:   true,
		Vehicles:      []Vehicle{{X: 7, Y: 9, Type: VehicleBike, Dir: DirUp}},
		TrafficLights: []TrafficLight{{X: 100, Y: 155, State: LightVerticalRed}},
	}
	data, err := in.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	if out.Vehicles[0] != in.Vehicles[0] || out.TrafficLights[0] != in.TrafficLights[0] ||
		out.WithBikeLane != in.WithBikeLane || out.WithBikeBox != in.WithBikeBox {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestSnapshotValidate(t *testing.T) {
	grid := NewGridConfig(100, 10)
	tests := []struct {
		name string
		s    *Snapshot
		ok   bool
	}{
		{"empty", &Snapshot{}, true},
		{"corners", &Snapshot{
			Vehicles:      []Vehicle{{X: 0, Y: 0}, {X: 99, Y: 99}},
			TrafficLights: []TrafficLight{{X: 99, Y: 0}},
		}, true},
		{"nil", nil, false},
		{"vehicle at size", &Snapshot{Vehicles: []Vehicle{{X: 100, Y: 5}}}, false},
		{"vehicle negative", &Snapshot{Vehicles: []Vehicle{{X: 5, Y: -1}}}, false},
		{"vehicle bad type", &Snapshot{Vehicles: []Vehicle{{Type: 9}}}, false},
		{"vehicle bad dir", &Snapshot{Vehicles: []Vehicle{{Dir: 4}}}, false},
		{"light outside", &Snapshot{TrafficLights: []TrafficLight{{X: 1, Y: 100}}}, false},
		{"light bad state", &Snapshot{TrafficLights: []TrafficLight{{State: 2}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate(grid)
			if tt.ok && err != nil {
				t.Errorf("Validate = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrMalformedSnapshot) {
				t.Errorf("Validate = %v, want ErrMalformedSnapshot", err)
			}
		})
	}
}
