package diversity

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/kailas-cloud/segue/internal/domain"
)

func scored(id, artist string, score float64) domain.ScoredCandidate {
	return domain.ScoredCandidate{
		Candidate: domain.Candidate{
			Song: domain.Song{ID: id, Title: "t-" + id, Artist: artist},
		},
		FinalScore: score,
	}
}

func TestEnforce_OneArtistPerResult(t *testing.T) {
	ranked := []domain.ScoredCandidate{
		scored("1", "Radiohead", 0.9),
		scored("2", "Radiohead", 0.85),
		scored("3", "Portishead", 0.8),
		scored("4", "Massive Attack", 0.75),
		scored("5", "Portishead", 0.7),
		scored("6", "Björk", 0.65),
	}

	result := Enforce(ranked, 4, Options{MaxPerArtist: 1}, nil)

	if len(result) != 4 {
		t.Fatalf("len = %d, want 4", len(result))
	}
	seen := map[string]int{}
	for _, sc := range result {
		seen[strings.ToLower(sc.Candidate.Song.Artist)]++
	}
	for artist, n := range seen {
		if n > 1 {
			t.Errorf("artist %q appears %d times, want at most 1", artist, n)
		}
	}
}

func TestEnforce_SingleArtistInput(t *testing.T) {
	// 10 candidates all from one artist, cap 1, limit 5: a short result is
	// acceptable when no other artists exist.
	ranked := make([]domain.ScoredCandidate, 0, 10)
	for i := 0; i < 10; i++ {
		ranked = append(ranked, scored(string(rune('a'+i)), "Daft Punk", 1.0-float64(i)*0.05))
	}

	result := Enforce(ranked, 5, Options{MaxPerArtist: 1}, nil)

	if len(result) != 1 {
		t.Fatalf("len = %d, want 1", len(result))
	}
	if result[0].Candidate.Song.ID != "a" {
		t.Errorf("kept %q, want the top-scored candidate", result[0].Candidate.Song.ID)
	}
}

func TestEnforce_CaseInsensitiveArtists(t *testing.T) {
	ranked := []domain.ScoredCandidate{
		scored("1", "radiohead", 0.9),
		scored("2", "Radiohead", 0.8),
		scored("3", "RADIOHEAD", 0.7),
	}
	result := Enforce(ranked, 3, Options{MaxPerArtist: 1}, nil)
	if len(result) != 1 {
		t.Fatalf("len = %d, want 1 (case-insensitive artist matching)", len(result))
	}
}

func TestEnforce_SwapPassPromotesSecondArtist(t *testing.T) {
	// Cap 2 and a tiny limit lets one artist fill the result; the second
	// pass must promote a not-yet-included artist into the later half.
	ranked := []domain.ScoredCandidate{
		scored("1", "Moderat", 0.9),
		scored("2", "Moderat", 0.85),
		scored("3", "Apparat", 0.5),
	}

	result := Enforce(ranked, 2, Options{MaxPerArtist: 2}, nil)

	if len(result) != 2 {
		t.Fatalf("len = %d, want 2", len(result))
	}
	if result[0].Candidate.Song.ID != "1" {
		t.Errorf("head demoted: got %q, entries before the midpoint must stay", result[0].Candidate.Song.ID)
	}
	if result[1].Candidate.Song.Artist != "Apparat" {
		t.Errorf("tail = %q, want promoted Apparat", result[1].Candidate.Song.Artist)
	}
}

func TestEnforce_SwapPassBestEffort(t *testing.T) {
	// No alternate artists exist: the pass silently performs zero swaps.
	ranked := []domain.ScoredCandidate{
		scored("1", "Moderat", 0.9),
		scored("2", "Moderat", 0.85),
	}
	result := Enforce(ranked, 2, Options{MaxPerArtist: 2}, nil)
	if len(result) != 2 {
		t.Fatalf("len = %d, want 2", len(result))
	}
	for i, id := range []string{"1", "2"} {
		if result[i].Candidate.Song.ID != id {
			t.Errorf("result[%d] = %q, want %q", i, result[i].Candidate.Song.ID, id)
		}
	}
}

func TestEnforce_ShuffleOnlyTouchesHead(t *testing.T) {
	ranked := make([]domain.ScoredCandidate, 0, 10)
	for i := 0; i < 10; i++ {
		ranked = append(ranked, scored(string(rune('a'+i)), "artist-"+string(rune('a'+i)), 1.0-float64(i)*0.05))
	}

	rng := rand.New(rand.NewPCG(7, 7))
	result := Enforce(ranked, 10, Options{MaxPerArtist: 1}, rng)

	if len(result) != 10 {
		t.Fatalf("len = %d, want 10", len(result))
	}
	// 20% of 10 = 2 leading items may move; the tail must be untouched.
	for i := 2; i < 10; i++ {
		if result[i].Candidate.Song.ID != ranked[i].Candidate.Song.ID {
			t.Errorf("result[%d] = %q, tail order must be stable", i, result[i].Candidate.Song.ID)
		}
	}
	head := map[string]bool{
		result[0].Candidate.Song.ID: true,
		result[1].Candidate.Song.ID: true,
	}
	if !head["a"] || !head["b"] {
		t.Errorf("head = %v, want a permutation of the top items", head)
	}
}

func TestEnforce_EmptyAndZeroLimit(t *testing.T) {
	if got := Enforce(nil, 5, Options{}, nil); got != nil {
		t.Errorf("Enforce(nil) = %v, want nil", got)
	}
	if got := Enforce([]domain.ScoredCandidate{scored("1", "x", 1)}, 0, Options{}, nil); got != nil {
		t.Errorf("Enforce(limit=0) = %v, want nil", got)
	}
}
