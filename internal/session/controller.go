// Package session owns the live tracking state for one agent: the
// accepted path, its smoothed view, and the distance and step
// accumulators. The controller is the single writer; all shared slices
// are replaced whole, never mutated in place.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openturf/territory-backend-go/internal/loop"
	"github.com/openturf/territory-backend-go/internal/models"
	"github.com/openturf/territory-backend-go/internal/track"
)

var (
	ErrNoSession      = errors.New("no session started")
	ErrSessionActive  = errors.New("a session is already in progress")
	ErrSessionStopped = errors.New("session is stopped")
	ErrNotActive      = errors.New("session is not active")
	ErrNotPaused      = errors.New("session is not paused")
)

// IngestResult reports what one raw sample did to the session.
type IngestResult struct {
	Accepted bool               `json:"accepted"`
	Reason   track.RejectReason `json:"reason,omitempty"`
	Capture  *loop.Capture      `json:"capture,omitempty"`
}

// View is a read-only snapshot of the live session.
type View struct {
	Session      models.Session `json:"session"`
	SmoothedPath []models.Point `json:"smoothedPath"`
	RawPoints    int            `json:"rawPoints"`
}

// Controller drives one owner's tracking session. Start, Pause, Resume,
// Stop, IngestPoint and SetStepTotal are its only mutators.
type Controller struct {
	mu     sync.Mutex
	log    *zap.Logger
	window int
	now    func() int64

	sess     *models.Session
	path     []models.Point // accepted raw points
	smoothed []models.Point
	distance float64 // speed-gated accumulator
}

// NewController creates a controller with the given smoothing window.
func NewController(ownerID string, window int, log *zap.Logger) *Controller {
	c := &Controller{
		log:    log.With(zap.String("ownerId", ownerID)),
		window: window,
		now:    func() int64 { return time.Now().UnixMilli() },
	}
	return c
}

// Start begins a new session in the given mode. The path is cleared;
// any previous session must have been stopped first.
func (c *Controller) Start(ownerID string, mode models.ActivityMode) (models.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess != nil && c.sess.State != models.SessionStopped {
		return models.Session{}, ErrSessionActive
	}
	if !mode.Valid() {
		return models.Session{}, errors.New("invalid activity mode")
	}

	c.sess = &models.Session{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Mode:      mode,
		State:     models.SessionActive,
		StartedAt: c.now(),
	}
	c.path = nil
	c.smoothed = nil
	c.distance = 0

	c.log.Info("session started",
		zap.String("sessionId", c.sess.ID),
		zap.String("mode", string(mode)),
	)
	return *c.sess, nil
}

// Pause suspends ingestion.
func (c *Controller) Pause() (models.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess == nil {
		return models.Session{}, ErrNoSession
	}
	if c.sess.State != models.SessionActive {
		return models.Session{}, ErrNotActive
	}
	c.sess.State = models.SessionPaused
	return *c.sess, nil
}

// Resume continues a paused session.
func (c *Controller) Resume() (models.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess == nil {
		return models.Session{}, ErrNoSession
	}
	if c.sess.State != models.SessionPaused {
		return models.Session{}, ErrNotPaused
	}
	c.sess.State = models.SessionActive
	return *c.sess, nil
}

// Stop ends the session, clears the live path and returns the summary.
func (c *Controller) Stop() (models.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess == nil {
		return models.Session{}, ErrNoSession
	}
	if c.sess.State == models.SessionStopped {
		return models.Session{}, ErrSessionStopped
	}

	c.sess.State = models.SessionStopped
	c.sess.StoppedAt = c.now()
	c.path = nil
	c.smoothed = nil

	summary := *c.sess
	c.log.Info("session stopped",
		zap.String("sessionId", summary.ID),
		zap.Float64("distanceMeters", summary.DistanceMeters),
		zap.Int("loopsCaptured", summary.LoopsCaptured),
	)
	return summary, nil
}

// IngestPoint runs one raw sample through the pipeline: filter, append,
// re-smooth, speed-gate the new segment, then scan for loop closure.
// On capture the live path is truncated to end at the closure index so
// tracking continues seamlessly.
func (c *Controller) IngestPoint(sample models.RawSample) (IngestResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess == nil {
		return IngestResult{}, ErrNoSession
	}
	if c.sess.State != models.SessionActive {
		return IngestResult{}, ErrNotActive
	}

	var last *models.Point
	if len(c.path) > 0 {
		last = &c.path[len(c.path)-1]
	}
	if reason := track.FilterSample(sample, last); reason != track.RejectNone {
		c.log.Debug("sample rejected", zap.String("reason", string(reason)))
		return IngestResult{Reason: reason}, nil
	}

	next := append(models.ClonePath(c.path), sample.Point())
	smoothed := track.SmoothPath(next, c.window)

	if n := len(smoothed); n >= 2 {
		c.distance += track.GateSegment(smoothed[n-2], smoothed[n-1], c.sess.Mode)
	}

	result := IngestResult{Accepted: true}
	if capture := loop.Detect(smoothed); capture != nil {
		next = models.ClonePath(next[:capture.ClosureIndex+1])
		smoothed = track.SmoothPath(next, c.window)
		c.sess.LoopsCaptured++
		c.sess.AreaClaimed += capture.AreaSquareMeters
		result.Capture = capture

		c.log.Info("loop captured",
			zap.String("sessionId", c.sess.ID),
			zap.Float64("areaSquareMeters", capture.AreaSquareMeters),
			zap.Float64("loopDistanceMeters", capture.DistanceMeters),
			zap.Int("closureIndex", capture.ClosureIndex),
		)
	}

	c.path = next
	c.smoothed = smoothed
	c.sess.DistanceMeters = c.displayDistance()

	return result, nil
}

// SetStepTotal records the step counter's running total. Totals are
// monotonic; a lower value than the current one is ignored.
func (c *Controller) SetStepTotal(total int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess == nil {
		return ErrNoSession
	}
	if c.sess.State == models.SessionStopped {
		return ErrSessionStopped
	}
	if total > c.sess.Steps {
		c.sess.Steps = total
	}
	c.sess.DistanceMeters = c.displayDistance()
	return nil
}

// Snapshot returns a copy of the live session state.
func (c *Controller) Snapshot() (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess == nil {
		return View{}, ErrNoSession
	}
	return View{
		Session:      *c.sess,
		SmoothedPath: models.ClonePath(c.smoothed),
		RawPoints:    len(c.path),
	}, nil
}

// Session returns the current session summary.
func (c *Controller) Session() (models.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess == nil {
		return models.Session{}, ErrNoSession
	}
	return *c.sess, nil
}

// displayDistance prefers step-derived distance for on-foot modes when
// a step total is present, bypassing the speed gate for the displayed
// metric; otherwise it reports the gated accumulator.
func (c *Controller) displayDistance() float64 {
	if d := track.StepDistance(c.sess.Mode, c.sess.Steps); d > 0 {
		return d
	}
	return c.distance
}
