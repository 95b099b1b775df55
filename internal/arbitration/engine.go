// Package arbitration resolves ownership when a freshly captured
// polygon lands on the existing territory map.
package arbitration

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openturf/territory-backend-go/internal/models"
	"github.com/openturf/territory-backend-go/internal/spatial"
)

// Strength constants. Incumbents gain slowly (+0.2) while challengers
// gain fast (+0.5) but must exceed the combined incumbent strength
// before a claim-over, which discourages flipping from single
// incursions.
const (
	InitialStrength      = 1.0
	ExclusiveGain        = 0.2
	ContestEntryStrength = 0.5
	ContestGain          = 0.5
	ClaimOverThreshold   = 1.0
	MaxStrength          = 2.0
)

// Outcome labels what happened to one territory during arbitration.
type Outcome string

const (
	OutcomeCreated      Outcome = "created"
	OutcomeStrengthened Outcome = "strengthened"
	OutcomeContested    Outcome = "contested"
	OutcomeReinforced   Outcome = "reinforced"
	OutcomeClaimedOver  Outcome = "claimed_over"
)

// Claim is one captured polygon being arbitrated for an owner.
type Claim struct {
	OwnerID    string
	Mode       models.ActivityMode
	Polygon    []models.Point
	CapturedAt int64 // epoch millis
}

// Result carries the copy-on-write outcome of one arbitration pass.
// Territories is the replacement collection; Created is set when a new
// territory was inserted; Changed lists mutated existing territories,
// queued by the caller for durable write.
type Result struct {
	Territories []models.Territory
	Created     *models.Territory
	Changed     []models.Territory
	Outcomes    []Outcome
}

// Engine applies the ownership state machine. It is pure with respect
// to its inputs: the existing collection is never mutated in place.
type Engine struct {
	log *zap.Logger
}

// NewEngine creates an arbitration engine.
func NewEngine(log *zap.Logger) *Engine {
	return &Engine{log: log}
}

// Arbitrate decides what a captured polygon does to the territory map:
// create a new territory, strengthen the claimant's own, enter a
// contest, or claim over. Overlap is tested on bounding boxes only; a
// box hit with disjoint polygons still arbitrates, and any overlap
// suppresses insertion of the new territory so repeated loops over
// claimed ground fold into the existing records.
func (e *Engine) Arbitrate(territories []models.Territory, claim Claim) Result {
	if len(claim.Polygon) < 3 {
		return Result{Territories: territories}
	}

	claimBox := spatial.ComputeBoundingBox(claim.Polygon)

	result := Result{
		Territories: models.CloneTerritories(territories),
	}

	overlapped := false
	for i := range result.Territories {
		t := &result.Territories[i]
		if !claimBox.Overlaps(spatial.ComputeBoundingBox(t.Polygon)) {
			continue
		}
		overlapped = true

		outcome := e.resolve(t, claim.OwnerID)
		result.Outcomes = append(result.Outcomes, outcome)
		result.Changed = append(result.Changed, t.Clone())

		e.log.Info("territory arbitrated",
			zap.String("territoryId", t.ID),
			zap.String("ownerId", claim.OwnerID),
			zap.String("outcome", string(outcome)),
		)
	}

	if overlapped {
		return result
	}

	created := models.Territory{
		ID:        uuid.NewString(),
		Mode:      claim.Mode,
		Polygon:   models.ClonePath(claim.Polygon),
		CreatedAt: claim.CapturedAt,
		Owners:    []models.Owner{{OwnerID: claim.OwnerID, Strength: InitialStrength}},
	}
	result.Territories = append(result.Territories, created)
	result.Created = &created
	result.Outcomes = append(result.Outcomes, OutcomeCreated)

	e.log.Info("territory created",
		zap.String("territoryId", created.ID),
		zap.String("ownerId", claim.OwnerID),
	)

	return result
}

// resolve mutates one overlapped territory for the claimant and reports
// the transition taken.
func (e *Engine) resolve(t *models.Territory, ownerID string) Outcome {
	mineIdx := t.OwnerIndex(ownerID)

	var othersStrength float64
	others := 0
	for i, o := range t.Owners {
		if i == mineIdx {
			continue
		}
		othersStrength += o.Strength
		others++
	}

	switch {
	case mineIdx >= 0 && others == 0:
		// Exclusive owner looping their own ground.
		t.Owners[mineIdx].Strength = clampStrength(t.Owners[mineIdx].Strength + ExclusiveGain)
		return OutcomeStrengthened

	case mineIdx < 0:
		// First incursion onto someone else's territory.
		t.Owners = append(t.Owners, models.Owner{
			OwnerID:  ownerID,
			Strength: clampStrength(ContestEntryStrength),
		})
		return OutcomeContested

	default:
		// Already contesting; strengthen and check for eviction.
		mine := clampStrength(t.Owners[mineIdx].Strength + ContestGain)
		t.Owners[mineIdx].Strength = mine
		if mine >= ClaimOverThreshold && mine > othersStrength {
			t.Owners = []models.Owner{{OwnerID: ownerID, Strength: InitialStrength}}
			return OutcomeClaimedOver
		}
		return OutcomeReinforced
	}
}

// clampStrength bounds a strength to [0, MaxStrength]. Applied at every
// mutation point, not only the exclusive-strengthen path.
func clampStrength(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > MaxStrength {
		return MaxStrength
	}
	return s
}
