package trafficview

import (
	"encoding/json"
	"fmt"
)

// testStep is a single action in a gesture script. Coordinates are screen
// pixels.
type testStep struct {
	Action    string  `json:"action"`
	Label     string  `json:"label,omitempty"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	FromX     float64 `json:"fromX,omitempty"`
	FromY     float64 `json:"fromY,omitempty"`
	ToX       float64 `json:"toX,omitempty"`
	ToY       float64 `json:"toY,omitempty"`
	StartDist float64 `json:"startDist,omitempty"`
	EndDist   float64 `json:"endDist,omitempty"`
	DeltaY    float64 `json:"deltaY,omitempty"`
	Frames    int     `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure for a gesture script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

var knownActions = map[string]bool{
	"screenshot": true, "drag": true, "pinch": true, "wheel": true,
	"wait": true, "reset": true, "home": true,
}

// TestRunner sequences injected gestures and screenshots across frames for
// automated visual checks. Attach with WithTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON gesture script.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if !knownActions[st.Action] {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// Done reports whether all steps have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame. Called from Viewer.Update before
// input is processed. The runner reports done one frame after its last
// step so a trailing screenshot is still drawn.
func (r *TestRunner) step(v *Viewer) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(v.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		v.Screenshot(st.Label)
	case "drag":
		v.InjectDrag(Vec2{st.FromX, st.FromY}, Vec2{st.ToX, st.ToY}, st.Frames)
	case "pinch":
		v.InjectPinch(Vec2{st.X, st.Y}, st.StartDist, st.EndDist, st.Frames)
	case "wheel":
		v.InjectWheel(st.DeltaY)
	case "reset":
		v.Reset()
	case "home":
		v.camera.AnimateHome(homeDuration, nil)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}
}
