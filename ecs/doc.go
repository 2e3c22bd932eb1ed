// Package ecs provides ECS adapters for trafficview's gesture events.
//
// The primary adapter is [NewDonburiSink], which bridges camera gestures
// (drag, pinch, wheel) into a [Donburi] world as typed events. Subscribe to
// [GestureEventType] in your ECS systems to receive them, or read the
// latest viewport with [CurrentView].
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	viewer, err := trafficview.NewViewer(424, 100, trafficview.WithEventSink(sink))
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
