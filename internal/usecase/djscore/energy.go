package djscore

import (
	"math"

	"github.com/kailas-cloud/segue/internal/domain"
)

// Energy relationship descriptors.
const (
	EnergyUnknown     = "unknown energy"
	EnergySimilar     = "similar energy"
	EnergyRising      = "energy rising"
	EnergyFalling     = "energy falling"
	EnergyAgainstFlow = "against requested direction"
	EnergyLargeChange = "large energy change"
)

// energyCloseBand is the absolute difference under which any direction
// counts as a smooth transition.
const energyCloseBand = 0.1

// scoreEnergy rates the energy transition from seed to candidate under the
// requested direction. Differences within the close band score 0.95
// regardless of direction.
func scoreEnergy(seed, candidate *float64, dir domain.EnergyDirection) (float64, string) {
	if seed == nil || candidate == nil {
		return 0.5, EnergyUnknown
	}

	diff := *candidate - *seed
	abs := math.Abs(diff)
	if abs <= energyCloseBand {
		return 0.95, EnergySimilar
	}

	switch dir {
	case domain.EnergyRising:
		if diff > 0 {
			return clamp(0.9-(abs-energyCloseBand)*0.5, 0.4, 0.9), EnergyRising
		}
		return clamp(0.5-abs*0.8, 0.1, 0.5), EnergyAgainstFlow
	case domain.EnergyFalling:
		if diff < 0 {
			return clamp(0.9-(abs-energyCloseBand)*0.5, 0.4, 0.9), EnergyFalling
		}
		return clamp(0.5-abs*0.8, 0.1, 0.5), EnergyAgainstFlow
	default: // stable, any
		return clamp(0.95-(abs-energyCloseBand)*1.5, 0.2, 0.95), EnergyLargeChange
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
