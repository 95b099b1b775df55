package repository

import (
	"database/sql"
	"fmt"

	"github.com/openturf/territory-backend-go/internal/models"
)

// SessionRepository handles database operations for session summaries
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save upserts a session summary
func (r *SessionRepository) Save(s models.Session) error {
	query := `INSERT INTO sessions
		(id, owner_id, mode, state, started_at, stopped_at, distance_meters, steps, loops_captured, area_claimed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			stopped_at = excluded.stopped_at,
			distance_meters = excluded.distance_meters,
			steps = excluded.steps,
			loops_captured = excluded.loops_captured,
			area_claimed = excluded.area_claimed`

	_, err := r.db.Exec(query,
		s.ID, s.OwnerID, string(s.Mode), string(s.State), s.StartedAt, s.StoppedAt,
		s.DistanceMeters, s.Steps, s.LoopsCaptured, s.AreaClaimed,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetByID retrieves a single session by ID, or nil when absent
func (r *SessionRepository) GetByID(id string) (*models.Session, error) {
	query := `SELECT id, owner_id, mode, state, started_at, stopped_at,
		distance_meters, steps, loops_captured, area_claimed
		FROM sessions WHERE id = ?`

	var s models.Session
	err := r.db.QueryRow(query, id).Scan(
		&s.ID, &s.OwnerID, &s.Mode, &s.State, &s.StartedAt, &s.StoppedAt,
		&s.DistanceMeters, &s.Steps, &s.LoopsCaptured, &s.AreaClaimed,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

// GetByOwner retrieves an owner's sessions, most recent first
func (r *SessionRepository) GetByOwner(ownerID string, limit int) ([]models.Session, error) {
	if limit < 1 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	query := `SELECT id, owner_id, mode, state, started_at, stopped_at,
		distance_meters, steps, loops_captured, area_claimed
		FROM sessions WHERE owner_id = ? ORDER BY started_at DESC LIMIT ?`

	rows, err := r.db.Query(query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		err := rows.Scan(
			&s.ID, &s.OwnerID, &s.Mode, &s.State, &s.StartedAt, &s.StoppedAt,
			&s.DistanceMeters, &s.Steps, &s.LoopsCaptured, &s.AreaClaimed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}
