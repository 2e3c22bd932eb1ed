package main

import (
	"context"
	"testing"
	"time"

	"github.com/phanxgames/trafficview"
)

func TestDemoSimSnapshotsStayValid(t *testing.T) {
	for _, bikeLane := range []bool{false, true} {
		cfg := defaultConfig()
		cfg.Demo.BikeLane = bikeLane
		cfg.Demo.BikeBox = bikeLane
		grid := demoGrid(cfg)
		sim := newDemoSim(grid, 30, 10, 7)

		for i := 0; i < 2*grid.Size; i++ {
			snap := sim.snapshot()
			if err := snap.Validate(grid); err != nil {
				t.Fatalf("bikeLane=%v step %d: %v", bikeLane, i, err)
			}
			if snap.WithBikeLane != bikeLane || snap.WithBikeBox != bikeLane {
				t.Fatalf("flags = %v/%v", snap.WithBikeLane, snap.WithBikeBox)
			}
			sim.step()
		}
	}
}

func TestDemoSimCounts(t *testing.T) {
	grid := demoGrid(defaultConfig())
	sim := newDemoSim(grid, 5, 3, 1)
	snap := sim.snapshot()

	var cars, bikes int
	for _, v := range snap.Vehicles {
		switch v.Type {
		case trafficview.VehicleCar:
			cars++
		case trafficview.VehicleBike:
			bikes++
		}
	}
	if cars != 5 || bikes != 3 {
		t.Errorf("cars=%d bikes=%d, want 5 and 3", cars, bikes)
	}
	if want := grid.StreetCount * grid.StreetCount; len(snap.TrafficLights) != want {
		t.Errorf("lights = %d, want %d", len(snap.TrafficLights), want)
	}
	x, y := grid.IntersectionOrigin(0, 0)
	if l := snap.TrafficLights[0]; l.X != x || l.Y != y {
		t.Errorf("first light at (%d,%d), want (%d,%d)", l.X, l.Y, x, y)
	}
}

func TestDemoSimLightsToggle(t *testing.T) {
	sim := newDemoSim(demoGrid(defaultConfig()), 0, 0, 1)
	before := sim.snapshot().TrafficLights[0].State
	for i := 0; i < lightPeriod-1; i++ {
		sim.step()
	}
	if got := sim.snapshot().TrafficLights[0].State; got != before {
		t.Fatalf("light changed early: %v", got)
	}
	sim.step()
	if got := sim.snapshot().TrafficLights[0].State; got == before {
		t.Errorf("light did not toggle after %d ticks", lightPeriod)
	}
}

func TestDemoSimVehiclesMove(t *testing.T) {
	grid := demoGrid(defaultConfig())
	sim := newDemoSim(grid, 1, 0, 3)
	v0 := sim.vehicles[0]
	sim.step()
	v1 := sim.vehicles[0]

	dx, dy := v1.X-v0.X, v1.Y-v0.Y
	want := map[trafficview.Direction][2]int{
		trafficview.DirUp:    {0, -1},
		trafficview.DirRight: {1, 0},
		trafficview.DirDown:  {0, 1},
		trafficview.DirLeft:  {-1, 0},
	}[v0.Dir]
	// Wrapping at the edge is allowed.
	if (dx != want[0] && abs(dx) != grid.Size-1) || (dy != want[1] && abs(dy) != grid.Size-1) {
		t.Errorf("dir %v moved by (%d,%d)", v0.Dir, dx, dy)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestDemoSimRunStopsOnCancel(t *testing.T) {
	sim := newDemoSim(demoGrid(defaultConfig()), 2, 2, 1)
	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan *trafficview.Snapshot, 16)
	done := make(chan struct{})
	go func() {
		sim.run(ctx, time.Millisecond, func(s *trafficview.Snapshot) {
			select {
			case got <- s:
			default:
			}
		})
		close(done)
	}()

	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatal("no snapshot emitted")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run did not stop")
	}
}
