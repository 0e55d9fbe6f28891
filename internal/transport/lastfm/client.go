// Package lastfm adapts the Last.fm REST API to the similarity-provider
// contract of the gatherer.
package lastfm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kailas-cloud/segue/internal/domain"
	"github.com/kailas-cloud/segue/internal/metrics"
)

const defaultBaseURL = "https://ws.audioscrobbler.com/2.0"

// LibraryResolver checks whether an external track exists in the local
// library. nil disables resolution: every similar track reports not-in-library.
type LibraryResolver interface {
	FindSong(ctx context.Context, artist, title string) (domain.Song, bool)
}

// Config holds Last.fm client settings.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client calls the Last.fm API via resty.
type Client struct {
	http     *resty.Client
	apiKey   string
	resolver LibraryResolver
}

// New creates a Last.fm client. resolver may be nil.
func New(cfg Config, resolver LibraryResolver) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	http := resty.New().
		SetBaseURL(base).
		SetHeader("User-Agent", "segue/1.0")
	if cfg.Timeout > 0 {
		http.SetTimeout(cfg.Timeout)
	}
	return &Client{http: http, apiKey: cfg.APIKey, resolver: resolver}
}

// SimilarTracks returns tracks similar to artist/title, with library
// membership resolved when a resolver is configured.
func (c *Client) SimilarTracks(ctx context.Context, artist, title string, limit int) ([]domain.SimilarTrack, error) {
	var payload similarTracksResponse
	if err := c.call(ctx, "track.getsimilar", map[string]string{
		"artist": artist,
		"track":  title,
		"limit":  strconv.Itoa(limit),
	}, &payload); err != nil {
		return nil, err
	}

	out := make([]domain.SimilarTrack, 0, len(payload.SimilarTracks.Tracks))
	for _, t := range payload.SimilarTracks.Tracks {
		st := domain.SimilarTrack{
			Artist:     t.Artist.Name,
			Title:      t.Name,
			MatchScore: float64(t.Match),
		}
		if c.resolver != nil {
			if song, ok := c.resolver.FindSong(ctx, st.Artist, st.Title); ok {
				st.InLibrary = true
				st.LibraryID = song.ID
			}
		}
		out = append(out, st)
	}
	return out, nil
}

// SimilarArtists returns artists similar to the given one.
func (c *Client) SimilarArtists(ctx context.Context, artist string, limit int) ([]domain.SimilarArtist, error) {
	var payload similarArtistsResponse
	if err := c.call(ctx, "artist.getsimilar", map[string]string{
		"artist": artist,
		"limit":  strconv.Itoa(limit),
	}, &payload); err != nil {
		return nil, err
	}

	out := make([]domain.SimilarArtist, 0, len(payload.SimilarArtists.Artists))
	for _, a := range payload.SimilarArtists.Artists {
		out = append(out, domain.SimilarArtist{
			Name:       a.Name,
			MatchScore: float64(a.Match),
		})
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, method string, params map[string]string, result any) error {
	start := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("method", method).
		SetQueryParam("api_key", c.apiKey).
		SetQueryParam("format", "json").
		SetResult(result).
		Get("/")

	status := "ok"
	defer func() {
		metrics.ProviderRequestsTotal.WithLabelValues("lastfm", method, status).Inc()
		metrics.ProviderRequestDuration.WithLabelValues("lastfm", method).Observe(time.Since(start).Seconds())
	}()

	if err != nil {
		status = "error"
		return fmt.Errorf("lastfm %s: %w", method, err)
	}
	switch {
	case resp.StatusCode() == 429:
		status = "rate_limited"
		return fmt.Errorf("lastfm %s: %w", method, domain.ErrRateLimited)
	case resp.StatusCode() >= 500:
		status = "error"
		return fmt.Errorf("lastfm %s: status %d: %w", method, resp.StatusCode(), domain.ErrUpstreamUnavailable)
	case resp.StatusCode() >= 400:
		status = "error"
		return fmt.Errorf("lastfm %s: status %d", method, resp.StatusCode())
	}
	return nil
}

// flexFloat tolerates the API returning match scores as numbers or strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse match score %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}

type similarTracksResponse struct {
	SimilarTracks struct {
		Tracks []struct {
			Name   string    `json:"name"`
			Match  flexFloat `json:"match"`
			Artist struct {
				Name string `json:"name"`
			} `json:"artist"`
		} `json:"track"`
	} `json:"similartracks"`
}

type similarArtistsResponse struct {
	SimilarArtists struct {
		Artists []struct {
			Name  string    `json:"name"`
			Match flexFloat `json:"match"`
		} `json:"artist"`
	} `json:"similarartists"`
}
