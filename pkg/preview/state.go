package preview

import "github.com/tauraamui/patterncam/pkg/effect"

type State int32

const (
	Idle State = iota
	Running
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return "idle"
	}
}

// control is the immutable view of the commands the capture loop reads
// once per iteration.
type control struct {
	selection effect.Selection
	paused    bool
}
