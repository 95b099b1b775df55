package arbitration

import (
	"math"

	"github.com/openturf/territory-backend-go/internal/models"
)

// DailyDecayRate is the fraction of displayed strength lost per day.
const DailyDecayRate = 0.02

const millisPerDay = 86_400_000

// DecayFactor returns the multiplier applied to stored strengths for a
// territory created at createdAt, evaluated at now (both epoch millis).
// Fractional days count; the factor never reaches zero.
func DecayFactor(createdAt, now int64) float64 {
	days := float64(now-createdAt) / millisPerDay
	if days < 0 {
		days = 0
	}
	return math.Pow(1-DailyDecayRate, days)
}

// ProjectDecay returns a deep copy of the territories with every
// owner's strength scaled by the territory's decay factor. Stored
// strengths are never mutated; decay is a read-time view, recomputed on
// every surface, and never removes a territory.
func ProjectDecay(territories []models.Territory, now int64) []models.Territory {
	out := models.CloneTerritories(territories)
	for i := range out {
		factor := DecayFactor(out[i].CreatedAt, now)
		for j := range out[i].Owners {
			out[i].Owners[j].Strength *= factor
		}
	}
	return out
}
