package blend

import (
	"context"

	"github.com/kailas-cloud/segue/internal/domain"
	"github.com/kailas-cloud/segue/internal/usecase/gather"
)

// Gatherer produces the provenance-tagged candidate set for a seed.
type Gatherer interface {
	Gather(ctx context.Context, req gather.Request) map[string]*domain.Candidate
}

// HistorySignals supplies per-song listening-history lookups. Each method
// is batched once per run; the four lookups hit independent backends and
// are queried concurrently.
type HistorySignals interface {
	FeedbackScores(ctx context.Context, userID string, songIDs []string) (map[string]float64, error)
	SkipPenalties(ctx context.Context, userID string, songIDs []string) (map[string]float64, error)
	CorrelationBoosts(ctx context.Context, userID string, songIDs []string) (map[string]float64, error)
	SeasonalPattern(ctx context.Context, userID string) (*domain.SeasonalPattern, error)
}

// AttributeResolver supplies (possibly estimated) DJ attributes for songs.
// Missing values stay nil, never zero.
type AttributeResolver interface {
	Resolve(ctx context.Context, songIDs []string) (map[string]domain.DJAttributes, error)
}

// GenreHierarchy scores genre relatedness for the temporal-fit signal.
type GenreHierarchy interface {
	Normalize(genre string) string
	Similarity(a, b string) float64
}
