package djscore

import "math"

// Tempo band relationship descriptors.
const (
	TempoUnknown    = "unknown"
	TempoExact      = "exact match"
	TempoPerfect    = "perfect match"
	TempoSeamless   = "seamless transition"
	TempoGood       = "good match"
	TempoHalfTime   = "half-time match"
	TempoDoubleTime = "double-time match"
	TempoAdjustable = "requires tempo adjustment"
	TempoDifficult  = "difficult transition"
	TempoMismatch   = "tempo mismatch"
)

// Tempo tolerance bands. Empirically chosen constants; treat as tunable
// policy rather than derived values.
const (
	tempoExactBPM      = 1.0  // absolute beats/minute
	tempoPerfectBand   = 0.01 // relative to seed tempo
	tempoSeamlessBand  = 0.03
	tempoGoodBand      = 0.05
	tempoHalfDoubleTol = 0.03 // relative to the halved/doubled target
	tempoAdjustBand    = 0.08
	tempoDifficultBand = 0.20
	tempoFloor         = 0.1
)

// scoreTempo rates how well a candidate tempo follows a seed tempo.
// Relative differences are always computed against the seed's tempo.
// Half/double-time relationships are musically valid despite a large raw
// difference, so they are checked ahead of the wider generic bands.
func scoreTempo(seed, candidate *float64) (float64, string) {
	if seed == nil || candidate == nil || *seed <= 0 || *candidate <= 0 {
		return 0.5, TempoUnknown
	}

	s, c := *seed, *candidate
	diff := math.Abs(c - s)
	if diff < tempoExactBPM {
		return 1.0, TempoExact
	}

	rel := diff / s
	switch {
	case rel <= tempoPerfectBand:
		return 0.98, TempoPerfect
	case rel <= tempoSeamlessBand:
		return lerp(0.98, 0.90, rel, tempoPerfectBand, tempoSeamlessBand), TempoSeamless
	case rel <= tempoGoodBand:
		return lerp(0.90, 0.75, rel, tempoSeamlessBand, tempoGoodBand), TempoGood
	}

	if half := s / 2; math.Abs(c-half)/half <= tempoHalfDoubleTol {
		return 0.80, TempoHalfTime
	}
	if double := s * 2; math.Abs(c-double)/double <= tempoHalfDoubleTol {
		return 0.80, TempoDoubleTime
	}

	switch {
	case rel <= tempoAdjustBand:
		return lerp(0.75, 0.50, rel, tempoGoodBand, tempoAdjustBand), TempoAdjustable
	case rel <= tempoDifficultBand:
		return lerp(0.50, tempoFloor, rel, tempoAdjustBand, tempoDifficultBand), TempoDifficult
	default:
		return tempoFloor, TempoMismatch
	}
}

// lerp maps x in [x0, x1] linearly onto [y0, y1].
func lerp(y0, y1, x, x0, x1 float64) float64 {
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}
