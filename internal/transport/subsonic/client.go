// Package subsonic adapts a Subsonic-compatible media server (Navidrome,
// Airsonic) to the catalogue and DJ-attribute contracts.
package subsonic

import (
	"context"
	"crypto/md5" //nolint:gosec // Subsonic token auth mandates MD5
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/kailas-cloud/segue/internal/domain"
	"github.com/kailas-cloud/segue/internal/metrics"
)

const apiVersion = "1.16.1"

// Config holds media server connection settings.
type Config struct {
	BaseURL    string
	Username   string
	Password   string
	ClientName string
	Timeout    time.Duration
}

// Client calls the Subsonic REST API via resty.
type Client struct {
	http       *resty.Client
	username   string
	password   string
	clientName string
}

// New creates a Subsonic client.
func New(cfg Config) *Client {
	clientName := cfg.ClientName
	if clientName == "" {
		clientName = "segue"
	}
	http := resty.New().SetBaseURL(cfg.BaseURL)
	if cfg.Timeout > 0 {
		http.SetTimeout(cfg.Timeout)
	}
	return &Client{
		http:       http,
		username:   cfg.Username,
		password:   cfg.Password,
		clientName: clientName,
	}
}

// Search queries the library by free text.
func (c *Client) Search(ctx context.Context, query string, offset, limit int) ([]domain.Song, error) {
	var payload envelope
	if err := c.call(ctx, "search3", map[string]string{
		"query":       query,
		"songCount":   strconv.Itoa(limit),
		"songOffset":  strconv.Itoa(offset),
		"artistCount": "0",
		"albumCount":  "0",
	}, &payload); err != nil {
		return nil, err
	}
	return toSongs(payload.Response.SearchResult3.Songs), nil
}

// RandomSongs samples the library for the genre-match strategy pool.
func (c *Client) RandomSongs(ctx context.Context, count int) ([]domain.Song, error) {
	var payload envelope
	if err := c.call(ctx, "getRandomSongs", map[string]string{
		"size": strconv.Itoa(count),
	}, &payload); err != nil {
		return nil, err
	}
	return toSongs(payload.Response.RandomSongs.Songs), nil
}

// FindSong looks up a single track by artist and title. Used to resolve
// external similarity results to library entries.
func (c *Client) FindSong(ctx context.Context, artist, title string) (domain.Song, bool) {
	songs, err := c.Search(ctx, artist+" "+title, 0, 10)
	if err != nil {
		return domain.Song{}, false
	}
	for _, s := range songs {
		if strings.EqualFold(s.Artist, artist) && strings.EqualFold(s.Title, title) {
			return s, true
		}
	}
	return domain.Song{}, false
}

// Resolve fetches DJ attributes per song id. Songs the server cannot
// describe are omitted; the error is non-nil only when every lookup failed.
func (c *Client) Resolve(ctx context.Context, songIDs []string) (map[string]domain.DJAttributes, error) {
	out := make(map[string]domain.DJAttributes, len(songIDs))
	var lastErr error
	for _, id := range songIDs {
		var payload envelope
		if err := c.call(ctx, "getSong", map[string]string{"id": id}, &payload); err != nil {
			lastErr = err
			continue
		}
		song := payload.Response.Song
		attrs := domain.DJAttributes{}
		if song.BPM > 0 {
			attrs.Tempo = domain.Float(float64(song.BPM))
		}
		out[id] = attrs
	}
	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, endpoint string, params map[string]string, result *envelope) error {
	start := time.Now()
	salt := uuid.NewString()[:8]
	token := md5.Sum([]byte(c.password + salt)) //nolint:gosec // protocol requirement

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParams(map[string]string{
			"u": c.username,
			"t": hex.EncodeToString(token[:]),
			"s": salt,
			"v": apiVersion,
			"c": c.clientName,
			"f": "json",
		}).
		SetResult(result).
		Get("/rest/" + endpoint)

	status := "ok"
	defer func() {
		metrics.ProviderRequestsTotal.WithLabelValues("subsonic", endpoint, status).Inc()
		metrics.ProviderRequestDuration.WithLabelValues("subsonic", endpoint).Observe(time.Since(start).Seconds())
	}()

	if err != nil {
		status = "error"
		return fmt.Errorf("subsonic %s: %w", endpoint, err)
	}
	if resp.StatusCode() >= 500 {
		status = "error"
		return fmt.Errorf("subsonic %s: status %d: %w", endpoint, resp.StatusCode(), domain.ErrUpstreamUnavailable)
	}
	if resp.StatusCode() >= 400 {
		status = "error"
		return fmt.Errorf("subsonic %s: status %d", endpoint, resp.StatusCode())
	}
	if result.Response.Status == "failed" {
		status = "error"
		return fmt.Errorf("subsonic %s: %s (code %d)",
			endpoint, result.Response.Error.Message, result.Response.Error.Code)
	}
	return nil
}

func toSongs(entries []songEntry) []domain.Song {
	out := make([]domain.Song, 0, len(entries))
	for _, e := range entries {
		s := domain.Song{
			ID:     e.ID,
			Title:  e.Title,
			Artist: e.Artist,
			Genre:  e.Genre,
		}
		if e.BPM > 0 {
			s.DJ = &domain.DJAttributes{Tempo: domain.Float(float64(e.BPM))}
		}
		out = append(out, s)
	}
	return out
}

type songEntry struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Genre  string `json:"genre"`
	BPM    int    `json:"bpm"`
}

type envelope struct {
	Response struct {
		Status string `json:"status"`
		Error  struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		SearchResult3 struct {
			Songs []songEntry `json:"song"`
		} `json:"searchResult3"`
		RandomSongs struct {
			Songs []songEntry `json:"song"`
		} `json:"randomSongs"`
		Song songEntry `json:"song"`
	} `json:"subsonic-response"`
}
