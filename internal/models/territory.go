package models

// Owner is one claimant's stake in a territory. Strength is a claim
// intensity scalar in [0, 2], not a probability.
type Owner struct {
	OwnerID  string  `json:"ownerId"`
	Strength float64 `json:"strength"`
}

// Territory is a captured, owned polygon. The polygon is closed
// implicitly (last point connects back to the first) and always has at
// least 3 points; it is never mutated after creation. Owners are unique
// by OwnerID.
type Territory struct {
	ID        string       `json:"id"`
	Mode      ActivityMode `json:"mode"`
	Polygon   []Point      `json:"polygon"`
	CreatedAt int64        `json:"createdAt"` // epoch millis
	Owners    []Owner      `json:"owners"`
}

// OwnerIndex returns the index of ownerID in Owners, or -1.
func (t *Territory) OwnerIndex(ownerID string) int {
	for i, o := range t.Owners {
		if o.OwnerID == ownerID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy. Territories in the shared collection are
// never mutated in place; arbitration clones, mutates the clone, and
// replaces the collection.
func (t Territory) Clone() Territory {
	out := t
	out.Polygon = ClonePath(t.Polygon)
	if t.Owners != nil {
		out.Owners = make([]Owner, len(t.Owners))
		copy(out.Owners, t.Owners)
	}
	return out
}

// CloneTerritories deep-copies a territory collection.
func CloneTerritories(ts []Territory) []Territory {
	if ts == nil {
		return nil
	}
	out := make([]Territory, len(ts))
	for i := range ts {
		out[i] = ts[i].Clone()
	}
	return out
}

// OwnerUpdate is the payload of a queued owners write: the full owners
// array for one territory, resent whole so retries are idempotent.
type OwnerUpdate struct {
	TerritoryID string  `json:"territoryId"`
	Owners      []Owner `json:"owners"`
}
