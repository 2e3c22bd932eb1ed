package trafficview

import (
	"time"

	"github.com/sirupsen/logrus"
)

// frameStats holds per-frame timing and command metrics.
// Only logged when the viewer is in debug mode.
type frameStats struct {
	buildTime    time.Duration
	submitTime   time.Duration
	commandCount int
	segmentCount int
	resizes      int
}

// debugLog writes frame stats at debug level.
func (v *Viewer) debugLog(stats frameStats) {
	if !v.debug {
		return
	}
	v.log.WithFields(logrus.Fields{
		"build":    stats.buildTime,
		"submit":   stats.submitTime,
		"total":    stats.buildTime + stats.submitTime,
		"commands": stats.commandCount,
		"segments": stats.segmentCount,
		"resizes":  stats.resizes,
		"surface":  v.surfaceBounds().Dx(),
		"zoom":     v.camera.Zoom(),
	}).Debug("frame")
}

// countSegments counts the line segments before dashing, a proxy for the
// number of strokes the frame issues.
func countSegments(cmds []DrawCommand) int {
	n := 0
	for i := range cmds {
		n += len(cmds[i].Segments)
	}
	return n
}
