package djscore

import (
	"testing"

	"github.com/kailas-cloud/segue/internal/domain"
)

func TestScoreEnergy_CloseBandIgnoresDirection(t *testing.T) {
	dirs := []domain.EnergyDirection{
		domain.EnergyRising, domain.EnergyFalling, domain.EnergyStable, domain.EnergyAny,
	}
	for _, dir := range dirs {
		t.Run(string(dir), func(t *testing.T) {
			score, rel := scoreEnergy(domain.Float(0.6), domain.Float(0.55), dir)
			if score != 0.95 {
				t.Errorf("score = %f, want 0.95", score)
			}
			if rel != EnergySimilar {
				t.Errorf("relation = %q, want %q", rel, EnergySimilar)
			}
		})
	}
}

func TestScoreEnergy_Missing(t *testing.T) {
	score, rel := scoreEnergy(nil, domain.Float(0.5), domain.EnergyAny)
	if score != 0.5 || rel != EnergyUnknown {
		t.Errorf("got %f/%q, want 0.5/%q", score, rel, EnergyUnknown)
	}
	score, _ = scoreEnergy(domain.Float(0.5), nil, domain.EnergyAny)
	if score != 0.5 {
		t.Errorf("score = %f, want 0.5", score)
	}
}

func TestScoreEnergy_Directional(t *testing.T) {
	t.Run("rising rewarded", func(t *testing.T) {
		up, _ := scoreEnergy(domain.Float(0.3), domain.Float(0.6), domain.EnergyRising)
		down, rel := scoreEnergy(domain.Float(0.6), domain.Float(0.3), domain.EnergyRising)
		if up <= down {
			t.Errorf("rising move %f should beat falling move %f", up, down)
		}
		if rel != EnergyAgainstFlow {
			t.Errorf("relation = %q, want %q", rel, EnergyAgainstFlow)
		}
	})

	t.Run("falling rewarded", func(t *testing.T) {
		down, _ := scoreEnergy(domain.Float(0.8), domain.Float(0.4), domain.EnergyFalling)
		up, _ := scoreEnergy(domain.Float(0.4), domain.Float(0.8), domain.EnergyFalling)
		if down <= up {
			t.Errorf("falling move %f should beat rising move %f", down, up)
		}
	})

	t.Run("stable penalizes drift", func(t *testing.T) {
		small, _ := scoreEnergy(domain.Float(0.5), domain.Float(0.65), domain.EnergyStable)
		large, _ := scoreEnergy(domain.Float(0.5), domain.Float(0.95), domain.EnergyStable)
		if small <= large {
			t.Errorf("small drift %f should beat large drift %f", small, large)
		}
	})
}
