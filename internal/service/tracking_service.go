package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/openturf/territory-backend-go/internal/arbitration"
	"github.com/openturf/territory-backend-go/internal/loop"
	"github.com/openturf/territory-backend-go/internal/metrics"
	"github.com/openturf/territory-backend-go/internal/models"
	"github.com/openturf/territory-backend-go/internal/repository"
	"github.com/openturf/territory-backend-go/internal/session"
	"github.com/openturf/territory-backend-go/internal/track"
)

// IngestOutcome is what one raw sample produced, through filtering,
// loop detection and (when a loop captured) arbitration.
type IngestOutcome struct {
	Accepted  bool                  `json:"accepted"`
	Reason    track.RejectReason    `json:"reason,omitempty"`
	Capture   *loop.Capture         `json:"capture,omitempty"`
	Territory *models.Territory     `json:"territory,omitempty"`
	Outcomes  []arbitration.Outcome `json:"outcomes,omitempty"`
}

// TrackingService hosts one session controller per owner and feeds
// captured loops into the territory service.
type TrackingService struct {
	mu          sync.Mutex
	controllers map[string]*session.Controller

	territories *TerritoryService
	sessions    *repository.SessionRepository
	window      int
	met         *metrics.Metrics
	log         *zap.Logger
}

// NewTrackingService creates the tracking service.
func NewTrackingService(territories *TerritoryService, sessions *repository.SessionRepository, window int, met *metrics.Metrics, log *zap.Logger) *TrackingService {
	return &TrackingService{
		controllers: make(map[string]*session.Controller),
		territories: territories,
		sessions:    sessions,
		window:      window,
		met:         met,
		log:         log,
	}
}

// controller returns the owner's session controller, creating it on
// first use. Each device has exactly one live path; the controller is
// its single writer.
func (s *TrackingService) controller(ownerID string) *session.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.controllers[ownerID]
	if !ok {
		c = session.NewController(ownerID, s.window, s.log)
		s.controllers[ownerID] = c
	}
	return c
}

// Start begins a session for the owner in the given mode.
func (s *TrackingService) Start(ownerID string, mode models.ActivityMode) (models.Session, error) {
	sess, err := s.controller(ownerID).Start(ownerID, mode)
	if err != nil {
		return models.Session{}, err
	}
	if err := s.sessions.Save(sess); err != nil {
		s.log.Warn("failed to persist session start", zap.String("sessionId", sess.ID), zap.Error(err))
	}
	return sess, nil
}

// Pause suspends the owner's session.
func (s *TrackingService) Pause(ownerID string) (models.Session, error) {
	return s.controller(ownerID).Pause()
}

// Resume continues the owner's paused session.
func (s *TrackingService) Resume(ownerID string) (models.Session, error) {
	return s.controller(ownerID).Resume()
}

// Stop ends the owner's session and persists the summary.
func (s *TrackingService) Stop(ownerID string) (models.Session, error) {
	summary, err := s.controller(ownerID).Stop()
	if err != nil {
		return models.Session{}, err
	}
	if err := s.sessions.Save(summary); err != nil {
		return models.Session{}, fmt.Errorf("failed to persist session summary: %w", err)
	}
	return summary, nil
}

// Current returns the owner's live session snapshot.
func (s *TrackingService) Current(ownerID string) (session.View, error) {
	return s.controller(ownerID).Snapshot()
}

// History returns the owner's persisted session summaries.
func (s *TrackingService) History(ownerID string, limit int) ([]models.Session, error) {
	return s.sessions.GetByOwner(ownerID, limit)
}

// Ingest runs one raw sample through the owner's pipeline. A captured
// loop is immediately arbitrated against the territory map.
func (s *TrackingService) Ingest(ctx context.Context, ownerID string, sample models.RawSample) (IngestOutcome, error) {
	c := s.controller(ownerID)

	res, err := c.IngestPoint(sample)
	if err != nil {
		return IngestOutcome{}, err
	}

	if !res.Accepted {
		s.met.PointsRejected.WithLabelValues(string(res.Reason)).Inc()
		return IngestOutcome{Reason: res.Reason}, nil
	}
	s.met.PointsAccepted.Inc()

	outcome := IngestOutcome{Accepted: true, Capture: res.Capture}
	if res.Capture != nil {
		s.met.LoopsCaptured.Inc()

		sess, err := c.Session()
		if err != nil {
			return IngestOutcome{}, err
		}
		result := s.territories.Claim(ctx, ownerID, sess.Mode, res.Capture.Polygon)
		outcome.Territory = result.Created
		outcome.Outcomes = result.Outcomes
	}

	return outcome, nil
}

// SetStepTotal records a step-counter total for the owner's session.
func (s *TrackingService) SetStepTotal(ownerID string, total int64) error {
	return s.controller(ownerID).SetStepTotal(total)
}
