// Package djscore rates tempo, key, and energy compatibility between two
// songs, the way a DJ judges whether one track can follow another.
package djscore

import "github.com/kailas-cloud/segue/internal/domain"

// Weights holds the sub-score weights of the composite DJ score.
type Weights struct {
	Tempo  float64
	Energy float64
	Key    float64
}

// DefaultWeights returns the standard tempo/energy/key split.
func DefaultWeights() Weights {
	return Weights{Tempo: 0.40, Energy: 0.35, Key: 0.25}
}

// recommendThreshold gates both the total and the tempo sub-score. Tempo
// compatibility is a hard gate: a harmonically perfect but rhythmically
// incompatible pair is never recommended.
const recommendThreshold = 0.5

// Score rates how well the candidate follows the seed. Missing attributes
// on either side degrade the affected sub-score to a neutral 0.5.
func Score(seed, candidate *domain.DJAttributes, dir domain.EnergyDirection, w Weights) domain.DJScoreResult {
	var seedTempo, candTempo, seedEnergy, candEnergy *float64
	var seedKey, candKey string
	if seed != nil {
		seedTempo, seedEnergy, seedKey = seed.Tempo, seed.Energy, seed.Key
	}
	if candidate != nil {
		candTempo, candEnergy, candKey = candidate.Tempo, candidate.Energy, candidate.Key
	}

	tempo, tempoRel := scoreTempo(seedTempo, candTempo)
	energy, energyRel := scoreEnergy(seedEnergy, candEnergy, dir)
	key, keyRel := scoreKey(seedKey, candKey)

	total := tempo*w.Tempo + energy*w.Energy + key*w.Key

	return domain.DJScoreResult{
		TotalScore:     total,
		TempoScore:     tempo,
		EnergyScore:    energy,
		KeyScore:       key,
		TempoRelation:  tempoRel,
		EnergyRelation: energyRel,
		KeyRelation:    keyRel,
		IsRecommended:  total >= recommendThreshold && tempo >= recommendThreshold,
	}
}
