// Package blend is the top-level recommendation entry point: it gathers
// candidates, scores each one against a shared context, enforces artist
// diversity, and returns the ranked list with run metadata.
package blend

import (
	"context"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/segue/internal/domain"
	"github.com/kailas-cloud/segue/internal/logger"
	"github.com/kailas-cloud/segue/internal/metrics"
	"github.com/kailas-cloud/segue/internal/usecase/diversity"
	"github.com/kailas-cloud/segue/internal/usecase/djscore"
	"github.com/kailas-cloud/segue/internal/usecase/gather"
)

const (
	defaultLimit       = 20
	maxLimit           = 100
	weightSumTolerance = 0.05

	defaultLookupTimeout = 3 * time.Second
)

// Service blends gathering, scoring, and diversity enforcement.
type Service struct {
	gatherer Gatherer
	history  HistorySignals
	resolver AttributeResolver
	genres   GenreHierarchy

	diversityOpts diversity.Options
	lookupTimeout time.Duration
	clock         func() time.Time
	rng           *rand.Rand
}

// New creates the blended scorer. resolver may be nil when DJ enrichment
// is unavailable; history may be NoopSignals.
func New(gatherer Gatherer, history HistorySignals, resolver AttributeResolver, genres GenreHierarchy) *Service {
	return &Service{
		gatherer:      gatherer,
		history:       history,
		resolver:      resolver,
		genres:        genres,
		diversityOpts: diversity.Options{},
		lookupTimeout: defaultLookupTimeout,
		clock:         time.Now,
		rng:           rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// WithDiversity overrides the diversity options.
func (s *Service) WithDiversity(opts diversity.Options) *Service {
	s.diversityOpts = opts
	return s
}

// WithLookupTimeout overrides the per-lookup timeout of the context fan-out.
func (s *Service) WithLookupTimeout(d time.Duration) *Service {
	if d > 0 {
		s.lookupTimeout = d
	}
	return s
}

// WithClock injects a clock, for deterministic tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// WithRand injects the shuffle source, for deterministic tests.
func (s *Service) WithRand(rng *rand.Rand) *Service {
	s.rng = rng
	return s
}

// Recommend produces the ranked, diversified next-song list for a seed.
// An empty candidate set is a normal outcome, returned with explanatory
// metadata rather than an error.
func (s *Service) Recommend(ctx context.Context, req domain.RecommendationRequest) (domain.RecommendationResult, error) {
	log := logger.FromContext(ctx)
	runID := uuid.NewString()
	limit := clampLimit(req.Limit)

	candidates := s.gatherer.Gather(ctx, gather.Request{
		Seed:           req.Seed,
		Limit:          limit,
		ExcludeSongIDs: req.ExcludeSongIDs,
		ExcludeArtists: req.ExcludeArtists,
		QueueGenres:    req.QueueGenres,
	})

	if len(candidates) == 0 {
		log.Info("no candidates gathered",
			zap.String("run_id", runID),
			zap.String("seed_id", req.Seed.ID),
		)
		return domain.RecommendationResult{
			Items: []domain.ScoredCandidate{},
			Metadata: domain.RecommendationMetadata{
				RunID:        runID,
				TimeOfDay:    timeOfDayBucket(s.clock()),
				SourceCounts: map[domain.SourceKind]int{},
			},
		}, nil
	}

	ids := make([]string, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	sctx := s.buildScoringContext(ctx, req, ids)
	seed := s.enrichForDJ(ctx, req, candidates, ids)
	sctx.seed = seed

	scored := make([]domain.ScoredCandidate, 0, len(candidates))
	for _, id := range ids {
		scored = append(scored, s.scoreCandidate(*candidates[id], sctx))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].FinalScore != scored[j].FinalScore {
			return scored[i].FinalScore > scored[j].FinalScore
		}
		return scored[i].Candidate.Song.ID < scored[j].Candidate.Song.ID
	})

	final := diversity.Enforce(scored, limit, s.diversityOpts, s.rng)

	meta := buildMetadata(runID, sctx.timeOfDay, candidates, scored, final)
	metrics.RecommendationsTotal.WithLabelValues("ok").Inc()
	metrics.RecommendationCandidates.Observe(float64(len(candidates)))

	log.Info("recommendation run finished",
		zap.String("run_id", runID),
		zap.String("seed_id", req.Seed.ID),
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(final)),
		zap.Int("distinct_artists", meta.DistinctArtists),
	)

	return domain.RecommendationResult{Items: final, Metadata: meta}, nil
}

// enrichForDJ synchronously resolves DJ attributes for the seed and any
// candidate missing them. Resolution failure degrades the DJ signal to its
// neutral default instead of failing the request.
func (s *Service) enrichForDJ(ctx context.Context, req domain.RecommendationRequest, candidates map[string]*domain.Candidate, ids []string) domain.Song {
	seed := req.Seed
	if !req.DJMatching || s.resolver == nil {
		return seed
	}

	missing := make([]string, 0, len(ids)+1)
	if seed.DJ == nil && seed.ID != "" {
		missing = append(missing, seed.ID)
	}
	for _, id := range ids {
		if candidates[id].Song.DJ == nil {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return seed
	}

	attrs, err := s.resolver.Resolve(ctx, missing)
	if err != nil {
		logger.FromContext(ctx).Warn("dj attribute enrichment failed, scoring neutrally",
			zap.Int("songs", len(missing)),
			zap.Error(err),
		)
		return seed
	}

	if seed.DJ == nil {
		if a, ok := attrs[seed.ID]; ok {
			seed.DJ = &a
		}
	}
	for _, id := range ids {
		if candidates[id].Song.DJ == nil {
			if a, ok := attrs[id]; ok {
				candidates[id].Song.DJ = &a
			}
		}
	}
	return seed
}

// scoreCandidate computes all sub-scores and the weighted final score for
// one candidate. Derived data only; no cross-candidate state.
func (s *Service) scoreCandidate(cand domain.Candidate, sctx *scoringContext) domain.ScoredCandidate {
	id := cand.Song.ID

	scores := domain.SubScores{
		ExternalSimilarity: 0.5,
		DJCompatibility:    0.5,
		ExplicitFeedback:   0.5,
		SkipAvoidance:      1.0,
		TemporalFit:        0.5,
		DiversityVsQueue:   1.0,
	}

	if match, ok := cand.MatchScore(domain.SourceLibrarySimilarity); ok {
		scores.ExternalSimilarity = match
	}
	if boost, ok := sctx.correlation[id]; ok {
		scores.HistoryCorrelation = boost
	}
	if sctx.djMatching {
		scores.DJCompatibility = djscore.Score(
			sctx.seed.DJ, cand.Song.DJ, sctx.direction, djscore.DefaultWeights(),
		).TotalScore
	}
	if raw, ok := sctx.feedback[id]; ok {
		scores.ExplicitFeedback = (raw + 1) / 2
	}
	if penalty, ok := sctx.skips[id]; ok {
		scores.SkipAvoidance = 1 - penalty
	}
	scores.TemporalFit = s.temporalFit(cand.Song, sctx)
	if sctx.queuedArtists[normalizeName(cand.Song.Artist)] {
		scores.DiversityVsQueue = 0.3
	}

	return domain.ScoredCandidate{
		Candidate:  cand,
		Scores:     scores,
		FinalScore: sctx.weights.Apply(scores),
	}
}

// temporalFit starts from a 0.5 baseline and boosts toward 1.0 on genre
// similarity to the seasonal pattern, with a flat 0.8 floor for an exact
// preferred-artist match.
func (s *Service) temporalFit(song domain.Song, sctx *scoringContext) float64 {
	if sctx.seasonal == nil {
		return 0.5
	}

	fit := 0.5
	if song.Genre != "" {
		best := 0.0
		for _, g := range sctx.seasonal.PreferredGenres {
			if sim := s.genres.Similarity(song.Genre, g); sim > best {
				best = sim
			}
		}
		fit = 0.5 + 0.5*best
	}
	for _, artist := range sctx.seasonal.PreferredArtists {
		if strings.EqualFold(strings.TrimSpace(artist), strings.TrimSpace(song.Artist)) {
			if fit < 0.8 {
				fit = 0.8
			}
			break
		}
	}
	if fit > 1.0 {
		fit = 1.0
	}
	return fit
}

// buildMetadata aggregates per-source counts, mean sub-scores across the
// full scored set, and the distinct-artist count of the final list.
func buildMetadata(runID, timeOfDay string, candidates map[string]*domain.Candidate, scored, final []domain.ScoredCandidate) domain.RecommendationMetadata {
	sourceCounts := make(map[domain.SourceKind]int)
	for _, cand := range candidates {
		seen := make(map[domain.SourceKind]bool, len(cand.Sources))
		for _, src := range cand.Sources {
			if !seen[src.Kind] {
				seen[src.Kind] = true
				sourceCounts[src.Kind]++
			}
		}
	}

	var mean domain.SubScores
	if n := float64(len(scored)); n > 0 {
		for _, sc := range scored {
			mean.ExternalSimilarity += sc.Scores.ExternalSimilarity
			mean.HistoryCorrelation += sc.Scores.HistoryCorrelation
			mean.DJCompatibility += sc.Scores.DJCompatibility
			mean.ExplicitFeedback += sc.Scores.ExplicitFeedback
			mean.SkipAvoidance += sc.Scores.SkipAvoidance
			mean.TemporalFit += sc.Scores.TemporalFit
			mean.DiversityVsQueue += sc.Scores.DiversityVsQueue
		}
		mean.ExternalSimilarity /= n
		mean.HistoryCorrelation /= n
		mean.DJCompatibility /= n
		mean.ExplicitFeedback /= n
		mean.SkipAvoidance /= n
		mean.TemporalFit /= n
		mean.DiversityVsQueue /= n
	}

	artists := make(map[string]bool)
	for _, sc := range final {
		artists[normalizeName(sc.Candidate.Song.Artist)] = true
	}

	return domain.RecommendationMetadata{
		RunID:           runID,
		TimeOfDay:       timeOfDay,
		TotalCandidates: len(candidates),
		SourceCounts:    sourceCounts,
		MeanScores:      mean,
		DistinctArtists: len(artists),
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
