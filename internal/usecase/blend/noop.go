package blend

import (
	"context"

	"github.com/kailas-cloud/segue/internal/domain"
)

// NoopSignals is the HistorySignals implementation wired when no history
// backend is configured: every signal resolves to its neutral default.
type NoopSignals struct{}

func (NoopSignals) FeedbackScores(context.Context, string, []string) (map[string]float64, error) {
	return nil, nil
}

func (NoopSignals) SkipPenalties(context.Context, string, []string) (map[string]float64, error) {
	return nil, nil
}

func (NoopSignals) CorrelationBoosts(context.Context, string, []string) (map[string]float64, error) {
	return nil, nil
}

func (NoopSignals) SeasonalPattern(context.Context, string) (*domain.SeasonalPattern, error) {
	return nil, nil
}
