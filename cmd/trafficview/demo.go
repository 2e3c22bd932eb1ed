package main

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/phanxgames/trafficview"
)

// lightPeriod is how many ticks a traffic light keeps its state.
const lightPeriod = 40

// demoSim is a toy traffic source used when no feed is configured. Vehicles
// drive straight along their street's lane and wrap at the grid edge;
// lights alternate every lightPeriod ticks. It makes no attempt at
// collision handling.
type demoSim struct {
	grid     trafficview.GridConfig
	vehicles []trafficview.Vehicle
	lights   []trafficview.TrafficLight
	tick     int
}

// newDemoSim places cars and bikes on random streets and lanes.
func newDemoSim(grid trafficview.GridConfig, cars, bikes int, seed uint64) *demoSim {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	d := &demoSim{grid: grid}

	for i := 0; i < grid.StreetCount; i++ {
		for j := 0; j < grid.StreetCount; j++ {
			x, y := grid.IntersectionOrigin(i, j)
			d.lights = append(d.lights, trafficview.TrafficLight{
				X: x, Y: y,
				State: trafficview.LightState((i + j) % 2),
			})
		}
	}

	place := func(t trafficview.VehicleType) {
		dir := trafficview.Direction(rng.IntN(4))
		street := rng.IntN(grid.StreetCount)
		along := rng.IntN(grid.Size)
		x, y := d.laneOrigin(dir, street)
		switch dir {
		case trafficview.DirUp, trafficview.DirDown:
			y = along
		default:
			x = along
		}
		d.vehicles = append(d.vehicles, trafficview.Vehicle{X: x, Y: y, Type: t, Dir: dir})
	}
	for i := 0; i < cars; i++ {
		place(trafficview.VehicleCar)
	}
	for i := 0; i < bikes; i++ {
		place(trafficview.VehicleBike)
	}
	return d
}

// laneOrigin returns the fixed cross-axis coordinate of a lane. Traffic
// keeps right: down and left use the near half of the street, up and right
// the far half. Because the anchor is the back-right corner, the far lane
// anchor is the street's last unit for both cars and bikes.
func (d *demoSim) laneOrigin(dir trafficview.Direction, street int) (x, y int) {
	origin, _ := d.grid.IntersectionOrigin(street, street)
	lane := origin
	if dir == trafficview.DirUp || dir == trafficview.DirRight {
		lane = origin + d.grid.StreetWidth - 1
	}
	return lane, lane
}

// step advances every vehicle by one unit and toggles lights on schedule.
func (d *demoSim) step() {
	d.tick++
	size := d.grid.Size
	for i := range d.vehicles {
		v := &d.vehicles[i]
		switch v.Dir {
		case trafficview.DirUp:
			v.Y = (v.Y - 1 + size) % size
		case trafficview.DirRight:
			v.X = (v.X + 1) % size
		case trafficview.DirDown:
			v.Y = (v.Y + 1) % size
		case trafficview.DirLeft:
			v.X = (v.X - 1 + size) % size
		}
	}
	if d.tick%lightPeriod == 0 {
		for i := range d.lights {
			d.lights[i].State ^= 1
		}
	}
}

// snapshot copies the current state into a Snapshot.
func (d *demoSim) snapshot() *trafficview.Snapshot {
	return &trafficview.Snapshot{
		WithBikeLane:  d.grid.BikeLane,
		WithBikeBox:   d.grid.BikeBox,
		Vehicles:      append([]trafficview.Vehicle(nil), d.vehicles...),
		TrafficLights: append([]trafficview.TrafficLight(nil), d.lights...),
	}
}

// run steps the simulation every interval and hands each snapshot to emit
// until ctx is done.
func (d *demoSim) run(ctx context.Context, interval time.Duration, emit func(*trafficview.Snapshot)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	emit(d.snapshot())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.step()
			emit(d.snapshot())
		}
	}
}
