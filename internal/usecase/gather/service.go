// Package gather produces the deduplicated, provenance-tagged candidate
// set for one recommendation run. Strategies execute strictly sequentially
// through a single-worker queue — a deliberate latency-for-safety
// trade-off against the external similarity service's rate ceiling.
package gather

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/segue/internal/domain"
	"github.com/kailas-cloud/segue/internal/logger"
)

// Options tunes the gathering strategies.
type Options struct {
	// MaxSameArtist caps the same-artist strategy so one artist cannot
	// dominate the candidate set (default 2).
	MaxSameArtist int
	// SimilarArtistPool is how many similar artists to request (default 10).
	SimilarArtistPool int
	// SimilarArtistFanout is how many of those trigger catalogue lookups
	// (default 3) to bound further calls.
	SimilarArtistFanout int
	// SongsPerSimilarArtist caps catalogue results kept per artist (default 5).
	SongsPerSimilarArtist int
	// GenrePoolMultiplier sizes the random pool relative to the desired
	// count (default 10), with GenrePoolFloor as the minimum (default 50).
	GenrePoolMultiplier int
	GenrePoolFloor      int
	// QueryDelay is the pause between successive queued calls (default 150ms).
	QueryDelay time.Duration
	// CallTimeout guards each individual external call (default 5s) so one
	// slow dependency degrades its own strategy instead of the whole run.
	CallTimeout time.Duration
}

func (o Options) normalized() Options {
	if o.MaxSameArtist <= 0 {
		o.MaxSameArtist = 2
	}
	if o.SimilarArtistPool <= 0 {
		o.SimilarArtistPool = 10
	}
	if o.SimilarArtistFanout <= 0 {
		o.SimilarArtistFanout = 3
	}
	if o.SongsPerSimilarArtist <= 0 {
		o.SongsPerSimilarArtist = 5
	}
	if o.GenrePoolMultiplier <= 0 {
		o.GenrePoolMultiplier = 10
	}
	if o.GenrePoolFloor <= 0 {
		o.GenrePoolFloor = 50
	}
	if o.QueryDelay <= 0 {
		o.QueryDelay = 150 * time.Millisecond
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = 5 * time.Second
	}
	return o
}

// Request describes one gathering run.
type Request struct {
	Seed           domain.Song
	Limit          int
	ExcludeSongIDs []string
	ExcludeArtists []string
	QueueGenres    []string
}

// Service orchestrates the sourcing strategies into one candidate set.
type Service struct {
	similarity SimilarityProvider
	catalogue  Catalogue
	genres     GenreHierarchy
	artists    ArtistSongs
	queue      *serialQueue
	opts       Options
}

// New creates a gatherer. artists may be nil to skip artist-song caching.
func New(similarity SimilarityProvider, catalogue Catalogue, genres GenreHierarchy, artists ArtistSongs, opts Options) *Service {
	opts = opts.normalized()
	return &Service{
		similarity: similarity,
		catalogue:  catalogue,
		genres:     genres,
		artists:    artists,
		queue:      newSerialQueue(opts.QueryDelay),
		opts:       opts,
	}
}

// Start launches the serial call queue.
func (s *Service) Start() { s.queue.Start() }

// Stop shuts the serial call queue down.
func (s *Service) Stop() { s.queue.Stop() }

// Gather runs the strategies in fixed priority order, each best-effort: a
// failing strategy logs and contributes zero candidates, never aborting
// the run. The returned map is keyed by catalogue song id.
func (s *Service) Gather(ctx context.Context, req Request) map[string]*domain.Candidate {
	log := logger.FromContext(ctx)
	candidates := make(map[string]*domain.Candidate)
	excl := newExclusions(req)

	strategies := []struct {
		kind domain.SourceKind
		run  func(context.Context, Request, map[string]*domain.Candidate, exclusions) error
	}{
		{domain.SourceLibrarySimilarity, s.gatherLibrarySimilarity},
		{domain.SourceSameArtist, s.gatherSameArtist},
		{domain.SourceSimilarArtist, s.gatherSimilarArtists},
		{domain.SourceGenreMatch, s.gatherByGenre},
	}

	for _, st := range strategies {
		before := len(candidates)
		if err := st.run(ctx, req, candidates, excl); err != nil {
			log.Warn("gathering strategy failed",
				zap.String("strategy", string(st.kind)),
				zap.Error(err),
			)
			continue
		}
		log.Debug("gathering strategy finished",
			zap.String("strategy", string(st.kind)),
			zap.Int("added", len(candidates)-before),
		)
	}

	return candidates
}

// call funnels one external query through the serial queue with its own
// timeout guard.
func (s *Service) call(ctx context.Context, fn func(context.Context) error) error {
	return s.queue.Do(ctx, func(qctx context.Context) error {
		cctx, cancel := context.WithTimeout(qctx, s.opts.CallTimeout)
		defer cancel()
		return fn(cctx)
	})
}

func (s *Service) gatherLibrarySimilarity(ctx context.Context, req Request, out map[string]*domain.Candidate, excl exclusions) error {
	var tracks []domain.SimilarTrack
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		tracks, err = s.similarity.SimilarTracks(ctx, req.Seed.Artist, req.Seed.Title, 50)
		return err
	})
	if err != nil {
		return err
	}

	for _, tr := range tracks {
		if !tr.InLibrary || tr.LibraryID == "" {
			continue
		}
		match := tr.MatchScore
		addCandidate(out, domain.Song{ID: tr.LibraryID, Title: tr.Title, Artist: tr.Artist},
			domain.CandidateSource{
				Kind:       domain.SourceLibrarySimilarity,
				Weight:     domain.SourceWeight(domain.SourceLibrarySimilarity),
				MatchScore: &match,
			}, req.Seed.ID, excl)
	}
	return nil
}

func (s *Service) gatherSameArtist(ctx context.Context, req Request, out map[string]*domain.Candidate, excl exclusions) error {
	if req.Seed.Artist == "" {
		return nil
	}
	songs, err := s.artistCatalogueSongs(ctx, req.Seed.Artist)
	if err != nil {
		return err
	}

	added := 0
	for _, song := range songs {
		if added >= s.opts.MaxSameArtist {
			break
		}
		if song.ID == req.Seed.ID {
			continue
		}
		if addCandidate(out, song, domain.CandidateSource{
			Kind:   domain.SourceSameArtist,
			Weight: domain.SourceWeight(domain.SourceSameArtist),
		}, req.Seed.ID, excl) {
			added++
		}
	}
	return nil
}

func (s *Service) gatherSimilarArtists(ctx context.Context, req Request, out map[string]*domain.Candidate, excl exclusions) error {
	if req.Seed.Artist == "" {
		return nil
	}
	var artists []domain.SimilarArtist
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		artists, err = s.similarity.SimilarArtists(ctx, req.Seed.Artist, s.opts.SimilarArtistPool)
		return err
	})
	if err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	fanout := 0
	for _, artist := range artists {
		if fanout >= s.opts.SimilarArtistFanout {
			break
		}
		if artist.Name == "" || strings.EqualFold(artist.Name, req.Seed.Artist) {
			continue
		}
		fanout++

		songs, err := s.artistCatalogueSongs(ctx, artist.Name)
		if err != nil {
			// One artist lookup failing must not sink the rest.
			log.Warn("similar-artist catalogue lookup failed",
				zap.String("artist", artist.Name),
				zap.Error(err),
			)
			continue
		}
		match := artist.MatchScore
		kept := 0
		for _, song := range songs {
			if kept >= s.opts.SongsPerSimilarArtist {
				break
			}
			if addCandidate(out, song, domain.CandidateSource{
				Kind:       domain.SourceSimilarArtist,
				Weight:     domain.SourceWeight(domain.SourceSimilarArtist),
				MatchScore: &match,
			}, req.Seed.ID, excl) {
				kept++
			}
		}
	}
	return nil
}

func (s *Service) gatherByGenre(ctx context.Context, req Request, out map[string]*domain.Candidate, excl exclusions) error {
	targets := s.targetGenres(req)
	if len(targets) == 0 {
		return nil
	}

	desired := req.Limit
	if desired <= 0 {
		desired = 10
	}
	poolSize := desired * s.opts.GenrePoolMultiplier
	if poolSize < s.opts.GenrePoolFloor {
		poolSize = s.opts.GenrePoolFloor
	}

	var pool []domain.Song
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		pool, err = s.catalogue.RandomSongs(ctx, poolSize)
		return err
	})
	if err != nil {
		return err
	}

	type genreMatch struct {
		song  domain.Song
		score float64
	}
	matches := make([]genreMatch, 0, len(pool))
	for _, song := range pool {
		if song.Genre == "" {
			continue
		}
		best := 0.0
		for _, target := range targets {
			if sim := s.genres.Similarity(song.Genre, target); sim > best {
				best = sim
			}
		}
		if best >= 0.3 {
			matches = append(matches, genreMatch{song: song, score: best})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	added := 0
	for _, m := range matches {
		if added >= desired {
			break
		}
		score := m.score
		if addCandidate(out, m.song, domain.CandidateSource{
			Kind:       domain.SourceGenreMatch,
			Weight:     domain.SourceWeight(domain.SourceGenreMatch),
			MatchScore: &score,
		}, req.Seed.ID, excl) {
			added++
		}
	}
	return nil
}

// targetGenres builds the normalized target list: queue-context genres
// first, then the seed's own genre.
func (s *Service) targetGenres(req Request) []string {
	seen := make(map[string]bool)
	targets := make([]string, 0, len(req.QueueGenres)+1)
	for _, g := range append(append([]string{}, req.QueueGenres...), req.Seed.Genre) {
		n := s.genres.Normalize(g)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		targets = append(targets, n)
	}
	return targets
}

// artistCatalogueSongs searches the catalogue for an artist's tracks,
// consulting the cross-request cache first.
func (s *Service) artistCatalogueSongs(ctx context.Context, artist string) ([]domain.Song, error) {
	if s.artists != nil {
		if songs, ok := s.artists.Get(ctx, artist); ok {
			return songs, nil
		}
	}

	var found []domain.Song
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		found, err = s.catalogue.Search(ctx, artist, 0, 20)
		return err
	})
	if err != nil {
		return nil, err
	}

	songs := make([]domain.Song, 0, len(found))
	for _, song := range found {
		if strings.EqualFold(song.Artist, artist) {
			songs = append(songs, song)
		}
	}
	if s.artists != nil {
		s.artists.Set(ctx, artist, songs)
	}
	return songs, nil
}

// addCandidate merges one nomination into the set. Repeat nominations only
// append to the source list; the stored song record is first-seen-wins.
// Returns true when the song entered the set or gained a source.
func addCandidate(out map[string]*domain.Candidate, song domain.Song, src domain.CandidateSource, seedID string, excl exclusions) bool {
	if song.ID == "" || song.ID == seedID || excl.blocks(song) {
		return false
	}
	if existing, ok := out[song.ID]; ok {
		existing.Sources = append(existing.Sources, src)
		return true
	}
	out[song.ID] = &domain.Candidate{
		Song:    song,
		Sources: []domain.CandidateSource{src},
	}
	return true
}

// exclusions holds the request's exclusion filters, applied before insertion.
type exclusions struct {
	songIDs map[string]bool
	artists []string // lowercased substrings
}

func newExclusions(req Request) exclusions {
	e := exclusions{songIDs: make(map[string]bool, len(req.ExcludeSongIDs))}
	for _, id := range req.ExcludeSongIDs {
		e.songIDs[id] = true
	}
	for _, a := range req.ExcludeArtists {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			e.artists = append(e.artists, a)
		}
	}
	return e
}

// blocks reports whether a song is excluded by id or by case-insensitive
// artist substring match.
func (e exclusions) blocks(song domain.Song) bool {
	if e.songIDs[song.ID] {
		return true
	}
	artist := strings.ToLower(song.Artist)
	for _, sub := range e.artists {
		if strings.Contains(artist, sub) {
			return true
		}
	}
	return false
}
