// Package remote is the shared territory store all devices converge
// through. The engine treats it as authoritative: each subscription
// snapshot replaces local state wholesale (last-writer-wins, no merge).
package remote

import (
	"context"

	"github.com/openturf/territory-backend-go/internal/models"
)

// Store is the remote territory store contract. Writes are expected to
// be serialized per territory document by the store; the engine is
// optimistic and does not implement distributed consensus.
type Store interface {
	// Subscribe delivers the full current territory set, ordered by
	// creation time descending, immediately and again on every change,
	// until ctx is cancelled.
	Subscribe(ctx context.Context) (<-chan []models.Territory, error)

	// Create inserts a territory under its caller-supplied id. Creates
	// are upserts so a dropped-then-retried create cannot double-insert.
	Create(ctx context.Context, t models.Territory) error

	// UpdateOwners replaces a territory's owners array in full.
	UpdateOwners(ctx context.Context, id string, owners []models.Owner) error

	// Delete removes a territory.
	Delete(ctx context.Context, id string) error

	// QueryByOwner returns territories in which ownerID holds a stake.
	QueryByOwner(ctx context.Context, ownerID string) ([]models.Territory, error)
}
