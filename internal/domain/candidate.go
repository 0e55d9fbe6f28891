package domain

// SourceKind names the gathering strategy that nominated a candidate.
type SourceKind string

// Gathering strategy tags. The gatherer itself produces the first four;
// the remaining kinds are reserved for signals attached by the surrounding
// system (listening history, favorites, time-of-day playlists).
const (
	SourceLibrarySimilarity  SourceKind = "library-similarity"
	SourceSameArtist         SourceKind = "same-artist"
	SourceSimilarArtist      SourceKind = "similar-artist"
	SourceGenreMatch         SourceKind = "genre-match"
	SourceHistoryCorrelation SourceKind = "history-correlation"
	SourceLiked              SourceKind = "liked"
	SourceTemporal           SourceKind = "temporal"
)

var sourceWeights = map[SourceKind]float64{
	SourceLibrarySimilarity:  0.9,
	SourceSameArtist:         0.8,
	SourceSimilarArtist:      0.7,
	SourceGenreMatch:         0.5,
	SourceHistoryCorrelation: 0.6,
	SourceLiked:              0.6,
	SourceTemporal:           0.4,
}

// SourceWeight returns the confidence weight for a strategy, 0.5 for unknown kinds.
func SourceWeight(kind SourceKind) float64 {
	if w, ok := sourceWeights[kind]; ok {
		return w
	}
	return 0.5
}

// CandidateSource records one nomination of a song by a gathering strategy.
type CandidateSource struct {
	Kind       SourceKind
	Weight     float64
	MatchScore *float64 // 0..1, set when the strategy produced one
}

// Candidate is a song plus the ordered list of sources that nominated it.
// Sources accumulate during gathering; the song record is first-seen-wins.
type Candidate struct {
	Song    Song
	Sources []CandidateSource
}

// MatchScore returns the first match score recorded for the given source kind.
func (c *Candidate) MatchScore(kind SourceKind) (float64, bool) {
	for _, src := range c.Sources {
		if src.Kind == kind && src.MatchScore != nil {
			return *src.MatchScore, true
		}
	}
	return 0, false
}

// HasSource reports whether any source of the given kind nominated this candidate.
func (c *Candidate) HasSource(kind SourceKind) bool {
	for _, src := range c.Sources {
		if src.Kind == kind {
			return true
		}
	}
	return false
}

// SubScores holds the per-signal scores of one candidate.
type SubScores struct {
	ExternalSimilarity float64
	HistoryCorrelation float64
	DJCompatibility    float64
	ExplicitFeedback   float64
	SkipAvoidance      float64
	TemporalFit        float64
	DiversityVsQueue   float64
}

// ScoredCandidate is a candidate with its sub-scores and final blended score.
// It is derived from a Candidate and never mutated after creation.
type ScoredCandidate struct {
	Candidate  Candidate
	Scores     SubScores
	FinalScore float64
}
