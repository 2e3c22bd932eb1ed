// Package trafficview draws a live street grid with vehicles and traffic
// lights on [Ebitengine], and lets the user pan and zoom it with a mouse,
// a trackpad or touch.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	v, err := trafficview.NewViewer(424, 100)
//	if err != nil {
//		log.Fatal(err)
//	}
//	go feedSnapshots(v.Enqueue)
//	trafficview.Run(v, trafficview.RunConfig{Title: "Traffic"})
//
// For full control, wrap the viewer in a [RenderLoop] and stop it yourself,
// or implement [ebiten.Game] and call [Viewer.Update] and [Viewer.Draw]
// directly.
//
// # Grid
//
// [GridConfig] describes a square grid of evenly spaced streets in grid
// units. Every street has solid borders and a dashed centerline; with bike
// lanes enabled, streets widen by two units and gain dashed bike lane
// markings. Intersections are left open.
//
// # Snapshots
//
// A [Snapshot] is a whole simulation frame: the bike lane and bike box
// modes plus every [Vehicle] and [TrafficLight]. [Viewer.ApplySnapshot]
// replaces the current entities wholesale and rejects malformed input
// without touching the view. [Viewer.Enqueue] hands snapshots over from
// other goroutines, such as the websocket client in trafficview/feed.
//
// # Camera and gestures
//
// [Camera] zooms about the canvas center and keeps the pan offset within
// Size*(Zoom-1)/(2*Zoom), so the grid edge never scrolls into view.
// [GestureController] is a small state machine (idle, dragging, pinching)
// that turns pointer, touch and wheel input into camera changes. Gesture
// transitions can be published to a [Donburi] world via trafficview/ecs.
//
// # Rendering
//
// [BuildFrame] is a pure function from [FrameState] to a list of
// [DrawCommand] values; the viewer rasterises them onto an offscreen
// surface with ebiten's vector package. Tests can check frames without a
// window.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package trafficview
