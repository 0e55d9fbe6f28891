package blend

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/segue/internal/domain"
	"github.com/kailas-cloud/segue/internal/logger"
)

// scoringContext is the shared, read-only state every candidate is scored
// against. Built once per run; scoring a candidate never reads another
// candidate's score.
type scoringContext struct {
	seed      domain.Song
	weights   domain.ScoringWeights
	timeOfDay string

	seasonal    *domain.SeasonalPattern
	feedback    map[string]float64
	skips       map[string]float64
	correlation map[string]float64

	queuedArtists map[string]bool

	djMatching bool
	direction  domain.EnergyDirection
}

// buildScoringContext batches the four history lookups for all candidate
// ids and runs them concurrently — independent backends, no shared rate
// ceiling. A failing lookup degrades only its own dimension to the neutral
// default and never affects the others.
func (s *Service) buildScoringContext(ctx context.Context, req domain.RecommendationRequest, songIDs []string) *scoringContext {
	log := logger.FromContext(ctx)

	weights := domain.DefaultScoringWeights()
	if req.Weights != nil {
		weights = *req.Weights
		if weights.SumDeviates(weightSumTolerance) {
			log.Warn("scoring weights deviate from 1.0",
				zap.Float64("sum", weights.Sum()),
			)
		}
	}

	sctx := &scoringContext{
		seed:          req.Seed,
		weights:       weights,
		timeOfDay:     timeOfDayBucket(s.clock()),
		queuedArtists: lowerSet(req.QueuedArtists),
		djMatching:    req.DJMatching,
		direction:     req.EnergyDirection,
	}
	if sctx.direction == "" {
		sctx.direction = domain.EnergyAny
	}

	var wg sync.WaitGroup
	lookups := []struct {
		name string
		run  func(context.Context) error
	}{
		{"feedback", func(c context.Context) error {
			m, err := s.history.FeedbackScores(c, req.UserID, songIDs)
			sctx.feedback = m
			return err
		}},
		{"skip-penalties", func(c context.Context) error {
			m, err := s.history.SkipPenalties(c, req.UserID, songIDs)
			sctx.skips = m
			return err
		}},
		{"correlation", func(c context.Context) error {
			m, err := s.history.CorrelationBoosts(c, req.UserID, songIDs)
			sctx.correlation = m
			return err
		}},
		{"seasonal-pattern", func(c context.Context) error {
			p, err := s.history.SeasonalPattern(c, req.UserID)
			sctx.seasonal = p
			return err
		}},
	}

	for _, lk := range lookups {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
			defer cancel()
			if err := lk.run(lctx); err != nil {
				log.Warn("context lookup failed, using neutral default",
					zap.String("lookup", lk.name),
					zap.Error(err),
				)
			}
		}()
	}
	wg.Wait()

	return sctx
}

// timeOfDayBucket maps a clock reading to a coarse listening-context bucket.
func timeOfDayBucket(now time.Time) string {
	switch h := now.Hour(); {
	case h >= 5 && h < 12:
		return "morning"
	case h >= 12 && h < 18:
		return "afternoon"
	case h >= 18 && h < 23:
		return "evening"
	default:
		return "night"
	}
}

func lowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		if it = normalizeName(it); it != "" {
			set[it] = true
		}
	}
	return set
}
