package chi

import (
	"fmt"

	"github.com/kailas-cloud/segue/internal/domain"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type songDTO struct {
	ID     string   `json:"id,omitempty"`
	Title  string   `json:"title"`
	Artist string   `json:"artist"`
	Genre  string   `json:"genre,omitempty"`
	Tempo  *float64 `json:"tempo,omitempty"`
	Key    string   `json:"key,omitempty"`
	Energy *float64 `json:"energy,omitempty"`
}

type weightsDTO struct {
	ExternalSimilarity float64 `json:"external_similarity"`
	HistoryCorrelation float64 `json:"history_correlation"`
	DJCompatibility    float64 `json:"dj_compatibility"`
	ExplicitFeedback   float64 `json:"explicit_feedback"`
	SkipAvoidance      float64 `json:"skip_avoidance"`
	TemporalFit        float64 `json:"temporal_fit"`
	DiversityVsQueue   float64 `json:"diversity_vs_queue"`
}

type recommendationRequest struct {
	Seed            songDTO     `json:"seed"`
	UserID          string      `json:"user_id,omitempty"`
	Limit           int         `json:"limit,omitempty"`
	ExcludeSongIDs  []string    `json:"exclude_song_ids,omitempty"`
	ExcludeArtists  []string    `json:"exclude_artists,omitempty"`
	QueueGenres     []string    `json:"queue_genres,omitempty"`
	QueuedArtists   []string    `json:"queued_artists,omitempty"`
	DJMatching      bool        `json:"dj_matching,omitempty"`
	EnergyDirection string      `json:"energy_direction,omitempty"`
	Weights         *weightsDTO `json:"weights,omitempty"`
}

func (r recommendationRequest) toDomain() (domain.RecommendationRequest, error) {
	if r.Seed.Artist == "" || r.Seed.Title == "" {
		return domain.RecommendationRequest{}, fmt.Errorf("seed artist and title are required")
	}
	if r.Limit < 0 {
		return domain.RecommendationRequest{}, fmt.Errorf("limit must not be negative")
	}

	direction := domain.EnergyAny
	switch r.EnergyDirection {
	case "":
	case string(domain.EnergyRising):
		direction = domain.EnergyRising
	case string(domain.EnergyFalling):
		direction = domain.EnergyFalling
	case string(domain.EnergyStable):
		direction = domain.EnergyStable
	case string(domain.EnergyAny):
	default:
		return domain.RecommendationRequest{}, fmt.Errorf("unknown energy_direction %q", r.EnergyDirection)
	}

	req := domain.RecommendationRequest{
		Seed:            r.Seed.toDomain(),
		UserID:          r.UserID,
		Limit:           r.Limit,
		ExcludeSongIDs:  r.ExcludeSongIDs,
		ExcludeArtists:  r.ExcludeArtists,
		QueueGenres:     r.QueueGenres,
		QueuedArtists:   r.QueuedArtists,
		DJMatching:      r.DJMatching,
		EnergyDirection: direction,
	}
	if r.Weights != nil {
		req.Weights = &domain.ScoringWeights{
			ExternalSimilarity: r.Weights.ExternalSimilarity,
			HistoryCorrelation: r.Weights.HistoryCorrelation,
			DJCompatibility:    r.Weights.DJCompatibility,
			ExplicitFeedback:   r.Weights.ExplicitFeedback,
			SkipAvoidance:      r.Weights.SkipAvoidance,
			TemporalFit:        r.Weights.TemporalFit,
			DiversityVsQueue:   r.Weights.DiversityVsQueue,
		}
	}
	return req, nil
}

func (s songDTO) toDomain() domain.Song {
	song := domain.Song{
		ID:     s.ID,
		Title:  s.Title,
		Artist: s.Artist,
		Genre:  s.Genre,
	}
	if s.Tempo != nil || s.Key != "" || s.Energy != nil {
		song.DJ = &domain.DJAttributes{
			Tempo:  s.Tempo,
			Key:    s.Key,
			Energy: s.Energy,
		}
	}
	return song
}

type subScoresDTO struct {
	ExternalSimilarity float64 `json:"external_similarity"`
	HistoryCorrelation float64 `json:"history_correlation"`
	DJCompatibility    float64 `json:"dj_compatibility"`
	ExplicitFeedback   float64 `json:"explicit_feedback"`
	SkipAvoidance      float64 `json:"skip_avoidance"`
	TemporalFit        float64 `json:"temporal_fit"`
	DiversityVsQueue   float64 `json:"diversity_vs_queue"`
}

type scoredItemDTO struct {
	Song       songDTO      `json:"song"`
	Sources    []string     `json:"sources"`
	Scores     subScoresDTO `json:"scores"`
	FinalScore float64      `json:"final_score"`
}

type metadataDTO struct {
	RunID           string         `json:"run_id"`
	TimeOfDay       string         `json:"time_of_day"`
	TotalCandidates int            `json:"total_candidates"`
	SourceCounts    map[string]int `json:"source_counts"`
	MeanScores      subScoresDTO   `json:"mean_scores"`
	DistinctArtists int            `json:"distinct_artists"`
}

type recommendationResponse struct {
	Items    []scoredItemDTO `json:"items"`
	Metadata metadataDTO     `json:"metadata"`
}

func resultToResponse(res domain.RecommendationResult) recommendationResponse {
	items := make([]scoredItemDTO, 0, len(res.Items))
	for _, it := range res.Items {
		items = append(items, scoredItemDTO{
			Song:       songToDTO(it.Candidate.Song),
			Sources:    sourceKinds(it.Candidate.Sources),
			Scores:     subScoresToDTO(it.Scores),
			FinalScore: it.FinalScore,
		})
	}

	counts := make(map[string]int, len(res.Metadata.SourceCounts))
	for kind, n := range res.Metadata.SourceCounts {
		counts[string(kind)] = n
	}

	return recommendationResponse{
		Items: items,
		Metadata: metadataDTO{
			RunID:           res.Metadata.RunID,
			TimeOfDay:       res.Metadata.TimeOfDay,
			TotalCandidates: res.Metadata.TotalCandidates,
			SourceCounts:    counts,
			MeanScores:      subScoresToDTO(res.Metadata.MeanScores),
			DistinctArtists: res.Metadata.DistinctArtists,
		},
	}
}

func songToDTO(song domain.Song) songDTO {
	dto := songDTO{
		ID:     song.ID,
		Title:  song.Title,
		Artist: song.Artist,
		Genre:  song.Genre,
	}
	if song.DJ != nil {
		dto.Tempo = song.DJ.Tempo
		dto.Key = song.DJ.Key
		dto.Energy = song.DJ.Energy
	}
	return dto
}

func sourceKinds(sources []domain.CandidateSource) []string {
	out := make([]string, 0, len(sources))
	for _, src := range sources {
		out = append(out, string(src.Kind))
	}
	return out
}

func subScoresToDTO(s domain.SubScores) subScoresDTO {
	return subScoresDTO{
		ExternalSimilarity: s.ExternalSimilarity,
		HistoryCorrelation: s.HistoryCorrelation,
		DJCompatibility:    s.DJCompatibility,
		ExplicitFeedback:   s.ExplicitFeedback,
		SkipAvoidance:      s.SkipAvoidance,
		TemporalFit:        s.TemporalFit,
		DiversityVsQueue:   s.DiversityVsQueue,
	}
}
