package domain

// EnergyDirection states the desired energy movement from seed to candidate.
type EnergyDirection string

const (
	EnergyRising  EnergyDirection = "rising"
	EnergyFalling EnergyDirection = "falling"
	EnergyStable  EnergyDirection = "stable"
	EnergyAny     EnergyDirection = "any"
)

// DJScoreResult describes how well a candidate follows a seed on the decks.
type DJScoreResult struct {
	TotalScore  float64
	TempoScore  float64
	EnergyScore float64
	KeyScore    float64

	TempoRelation  string
	EnergyRelation string
	KeyRelation    string

	// IsRecommended requires both an acceptable total and an acceptable
	// tempo score; harmony alone never clears a rhythmic mismatch.
	IsRecommended bool
}

// SimilarTrack is one entry from the external similarity service,
// annotated with local catalogue membership.
type SimilarTrack struct {
	Artist     string
	Title      string
	MatchScore float64 // 0..1
	InLibrary  bool
	LibraryID  string // catalogue song id, set when InLibrary
}

// SimilarArtist is one artist entry from the external similarity service.
type SimilarArtist struct {
	Name       string
	MatchScore float64
	InLibrary  bool
}

// SeasonalPattern captures a user's recurring listening preferences.
type SeasonalPattern struct {
	PreferredGenres  []string
	PreferredArtists []string
}

// RecommendationRequest asks for ranked next-song candidates after a seed.
type RecommendationRequest struct {
	Seed   Song
	UserID string
	Limit  int

	ExcludeSongIDs []string
	ExcludeArtists []string

	// QueueGenres and QueuedArtists describe the caller's current queue,
	// steering the genre strategy and the diversity-vs-queue signal.
	QueueGenres   []string
	QueuedArtists []string

	DJMatching      bool
	EnergyDirection EnergyDirection
	Weights         *ScoringWeights // nil = defaults
}

// RecommendationMetadata aggregates provenance and score statistics for one run.
type RecommendationMetadata struct {
	RunID           string
	TimeOfDay       string
	TotalCandidates int
	SourceCounts    map[SourceKind]int
	MeanScores      SubScores
	DistinctArtists int
}

// RecommendationResult is the ordered final list plus run metadata.
type RecommendationResult struct {
	Items    []ScoredCandidate
	Metadata RecommendationMetadata
}

// Songs returns the final songs in ranked order.
func (r RecommendationResult) Songs() []Song {
	songs := make([]Song, 0, len(r.Items))
	for _, it := range r.Items {
		songs = append(songs, it.Candidate.Song)
	}
	return songs
}
