package gather

import (
	"context"

	"github.com/kailas-cloud/segue/internal/domain"
)

// SimilarityProvider is the external track/artist similarity service.
// Unavailability and empty results are treated identically by the gatherer.
type SimilarityProvider interface {
	SimilarTracks(ctx context.Context, artist, title string, limit int) ([]domain.SimilarTrack, error)
	SimilarArtists(ctx context.Context, artist string, limit int) ([]domain.SimilarArtist, error)
}

// Catalogue reads the local music library.
type Catalogue interface {
	Search(ctx context.Context, query string, offset, limit int) ([]domain.Song, error)
	RandomSongs(ctx context.Context, count int) ([]domain.Song, error)
}

// GenreHierarchy scores genre relatedness for the genre strategy.
type GenreHierarchy interface {
	Normalize(genre string) string
	Similarity(a, b string) float64
}

// ArtistSongs caches per-artist catalogue lookups across requests.
// A miss is indistinguishable from an expired entry.
type ArtistSongs interface {
	Get(ctx context.Context, artist string) ([]domain.Song, bool)
	Set(ctx context.Context, artist string, songs []domain.Song)
}
