package ecs

import (
	"github.com/phanxgames/trafficview"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// GestureEventType is the Donburi event type for trafficview gesture events.
var GestureEventType = events.NewEventType[trafficview.GestureEvent]()

// ViewData is the viewport as of the last gesture.
type ViewData struct {
	Zoom     float64
	OffsetX  float64
	OffsetY  float64
	Gestures int // gestures seen so far
	Last     trafficview.GestureEventType
}

// View holds ViewData on a single entity created by the sink on its first
// gesture. Systems that only need the current viewport can read it with
// CurrentView instead of subscribing to GestureEventType.
var View = donburi.NewComponentType[ViewData]()

type donburiSink struct {
	world donburi.World
	view  donburi.Entity
	ready bool
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Gesture
// events are published to GestureEventType, consumed with events.Subscribe
// and ProcessEvents, and mirrored into the View component immediately.
func NewDonburiSink(world donburi.World) trafficview.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitGesture(event trafficview.GestureEvent) {
	if !s.ready || !s.world.Valid(s.view) {
		s.view = s.world.Create(View)
		s.ready = true
	}
	entry := s.world.Entry(s.view)
	v := View.Get(entry)
	v.Zoom = event.Zoom
	v.OffsetX, v.OffsetY = event.OffsetX, event.OffsetY
	v.Last = event.Type
	v.Gestures++

	GestureEventType.Publish(s.world, event)
}

// CurrentView returns the viewport recorded by a sink in world. ok is false
// until the first gesture.
func CurrentView(world donburi.World) (view ViewData, ok bool) {
	entry, ok := View.First(world)
	if !ok {
		return ViewData{}, false
	}
	return *View.Get(entry), true
}
