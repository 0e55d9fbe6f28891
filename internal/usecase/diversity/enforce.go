// Package diversity reduces a score-ranked candidate list to one that
// respects per-artist repetition limits. Pure score ordering clusters a
// dominant artist; pure round-robin throws away excellent matches. The
// bounded second pass limits how much diversity may cost in score quality.
package diversity

import (
	"math/rand/v2"
	"strings"

	"github.com/kailas-cloud/segue/internal/domain"
)

// Options tunes diversity enforcement.
type Options struct {
	// MaxPerArtist caps how often one artist may appear (default 1).
	MaxPerArtist int
	// MinDistinctArtists triggers the swap pass when the first pass
	// produced fewer distinct artists despite alternatives existing (default 2).
	MinDistinctArtists int
	// MaxSwaps bounds the second pass (default 3). Fewer swaps happen
	// silently when fewer alternate-artist candidates exist.
	MaxSwaps int
}

func (o Options) normalized() Options {
	if o.MaxPerArtist <= 0 {
		o.MaxPerArtist = 1
	}
	if o.MinDistinctArtists <= 0 {
		o.MinDistinctArtists = 2
	}
	if o.MaxSwaps <= 0 {
		o.MaxSwaps = 3
	}
	return o
}

// Enforce reduces a score-descending list to at most limit items with
// bounded artist repetition, then randomizes only the leading slice so
// repeated calls for the same seed do not return an identical order.
// rng may be nil to skip the shuffle (deterministic output).
func Enforce(ranked []domain.ScoredCandidate, limit int, opts Options, rng *rand.Rand) []domain.ScoredCandidate {
	if limit <= 0 || len(ranked) == 0 {
		return nil
	}
	opts = opts.normalized()

	result, artistCounts := firstPass(ranked, limit, opts.MaxPerArtist)
	result = swapPass(result, ranked, artistCounts, opts)

	shuffleHead(result, rng)
	return result
}

// firstPass walks the sorted list once, keeping an item only while its
// artist is under the cap.
func firstPass(ranked []domain.ScoredCandidate, limit, maxPerArtist int) ([]domain.ScoredCandidate, map[string]int) {
	result := make([]domain.ScoredCandidate, 0, limit)
	counts := make(map[string]int)
	for _, sc := range ranked {
		if len(result) >= limit {
			break
		}
		key := artistKey(sc)
		if counts[key] >= maxPerArtist {
			continue
		}
		counts[key]++
		result = append(result, sc)
	}
	return result, counts
}

// swapPass replaces duplicate-artist entries in the later half of the
// result with not-yet-included distinct artists, up to opts.MaxSwaps.
// Entries before the midpoint are never demoted.
func swapPass(result, ranked []domain.ScoredCandidate, counts map[string]int, opts Options) []domain.ScoredCandidate {
	if len(counts) >= opts.MinDistinctArtists {
		return result
	}

	included := make(map[string]bool, len(result))
	for _, sc := range result {
		included[sc.Candidate.Song.ID] = true
	}

	swaps := 0
	mid := len(result) / 2
	for _, alt := range ranked {
		if swaps >= opts.MaxSwaps || len(counts) >= opts.MinDistinctArtists {
			break
		}
		if included[alt.Candidate.Song.ID] || counts[artistKey(alt)] > 0 {
			continue
		}
		// Find a demotable duplicate in the later half, worst first.
		target := -1
		for i := len(result) - 1; i >= mid; i-- {
			if counts[artistKey(result[i])] > 1 {
				target = i
				break
			}
		}
		if target < 0 {
			break
		}
		counts[artistKey(result[target])]--
		delete(included, result[target].Candidate.Song.ID)
		result[target] = alt
		counts[artistKey(alt)]++
		included[alt.Candidate.Song.ID] = true
		swaps++
	}
	return result
}

// shuffleHead randomizes the leading ~20% (minimum 2 items) of the result,
// leaving the bulk of the ranking stable.
func shuffleHead(result []domain.ScoredCandidate, rng *rand.Rand) {
	if rng == nil || len(result) < 2 {
		return
	}
	n := len(result) / 5
	if n < 2 {
		n = 2
	}
	rng.Shuffle(n, func(i, j int) {
		result[i], result[j] = result[j], result[i]
	})
}

func artistKey(sc domain.ScoredCandidate) string {
	return strings.ToLower(strings.TrimSpace(sc.Candidate.Song.Artist))
}
