package models

// ActivityMode selects the speed gate and stride constant for a session.
// It is supplied at session start and immutable for the session's duration.
type ActivityMode string

const (
	ModeWalk  ActivityMode = "walk"
	ModeRun   ActivityMode = "run"
	ModeCycle ActivityMode = "cycle"
)

// Per-mode maximum plausible speeds in m/s.
const (
	maxSpeedWalk  = 3.0
	maxSpeedRun   = 7.0
	maxSpeedCycle = 15.0
)

// Average stride lengths in meters, used to derive distance from a step
// counter for on-foot modes.
const (
	strideWalk = 0.762
	strideRun  = 0.914
)

// Valid reports whether the mode is one of walk, run or cycle.
func (m ActivityMode) Valid() bool {
	switch m {
	case ModeWalk, ModeRun, ModeCycle:
		return true
	}
	return false
}

// MaxSpeed returns the maximum plausible speed for the mode in m/s.
func (m ActivityMode) MaxSpeed() float64 {
	switch m {
	case ModeRun:
		return maxSpeedRun
	case ModeCycle:
		return maxSpeedCycle
	default:
		return maxSpeedWalk
	}
}

// Stride returns the average stride length in meters, or 0 for modes
// where step counting does not apply.
func (m ActivityMode) Stride() float64 {
	switch m {
	case ModeWalk:
		return strideWalk
	case ModeRun:
		return strideRun
	}
	return 0
}
