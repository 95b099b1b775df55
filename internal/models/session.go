package models

// SessionState is the lifecycle state of a tracking session.
type SessionState string

const (
	SessionActive  SessionState = "active"
	SessionPaused  SessionState = "paused"
	SessionStopped SessionState = "stopped"
)

// Session is the summary record of one tracking session. Live path
// state is held by the session controller; this struct is what gets
// persisted and returned to clients.
type Session struct {
	ID             string       `json:"id" db:"id"`
	OwnerID        string       `json:"ownerId" db:"owner_id"`
	Mode           ActivityMode `json:"mode" db:"mode"`
	State          SessionState `json:"state" db:"state"`
	StartedAt      int64        `json:"startedAt" db:"started_at"`
	StoppedAt      int64        `json:"stoppedAt,omitempty" db:"stopped_at"`
	DistanceMeters float64      `json:"distanceMeters" db:"distance_meters"`
	Steps          int64        `json:"steps" db:"steps"`
	LoopsCaptured  int          `json:"loopsCaptured" db:"loops_captured"`
	AreaClaimed    float64      `json:"areaClaimed" db:"area_claimed"`
}
