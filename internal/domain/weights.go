package domain

import "math"

// ScoringWeights is the immutable per-signal weight set for blended scoring.
// Weights conventionally sum to 1.0; deviations are logged, not rejected.
type ScoringWeights struct {
	ExternalSimilarity float64
	HistoryCorrelation float64
	DJCompatibility    float64
	ExplicitFeedback   float64
	SkipAvoidance      float64
	TemporalFit        float64
	DiversityVsQueue   float64
}

// DefaultScoringWeights returns the standard weight set.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		ExternalSimilarity: 0.25,
		HistoryCorrelation: 0.20,
		DJCompatibility:    0.20,
		ExplicitFeedback:   0.15,
		SkipAvoidance:      0.10,
		TemporalFit:        0.05,
		DiversityVsQueue:   0.05,
	}
}

// Sum returns the total of all weights.
func (w ScoringWeights) Sum() float64 {
	return w.ExternalSimilarity + w.HistoryCorrelation + w.DJCompatibility +
		w.ExplicitFeedback + w.SkipAvoidance + w.TemporalFit + w.DiversityVsQueue
}

// SumDeviates reports whether the weight total strays from 1.0 by more than tolerance.
func (w ScoringWeights) SumDeviates(tolerance float64) bool {
	return math.Abs(w.Sum()-1.0) > tolerance
}

// Apply computes the weighted blend of a candidate's sub-scores.
func (w ScoringWeights) Apply(s SubScores) float64 {
	return s.ExternalSimilarity*w.ExternalSimilarity +
		s.HistoryCorrelation*w.HistoryCorrelation +
		s.DJCompatibility*w.DJCompatibility +
		s.ExplicitFeedback*w.ExplicitFeedback +
		s.SkipAvoidance*w.SkipAvoidance +
		s.TemporalFit*w.TemporalFit +
		s.DiversityVsQueue*w.DiversityVsQueue
}
