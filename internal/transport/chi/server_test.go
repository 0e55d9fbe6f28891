package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/segue/internal/domain"
)

type mockRecommender struct {
	result  domain.RecommendationResult
	err     error
	lastReq domain.RecommendationRequest
}

func (m *mockRecommender) Recommend(_ context.Context, req domain.RecommendationRequest) (domain.RecommendationResult, error) {
	m.lastReq = req
	return m.result, m.err
}

type mockPinger struct{ err error }

func (m mockPinger) Ping(context.Context) error { return m.err }

func newTestRouter(rec Recommender, pinger Pinger) http.Handler {
	r := chirouter.NewRouter()
	NewServer(rec, pinger, zap.NewNop()).Routes(r)
	return r
}

func post(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/recommendations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestCreateRecommendations(t *testing.T) {
	rec := &mockRecommender{result: domain.RecommendationResult{
		Items: []domain.ScoredCandidate{
			{
				Candidate: domain.Candidate{
					Song: domain.Song{ID: "s1", Title: "Glory Box", Artist: "Portishead", Genre: "trip-hop"},
					Sources: []domain.CandidateSource{
						{Kind: domain.SourceSimilarArtist, Weight: 0.7},
					},
				},
				Scores:     domain.SubScores{ExternalSimilarity: 0.9},
				FinalScore: 0.83,
			},
		},
		Metadata: domain.RecommendationMetadata{
			RunID:           "run-1",
			TimeOfDay:       "evening",
			TotalCandidates: 12,
			SourceCounts:    map[domain.SourceKind]int{domain.SourceSimilarArtist: 5},
			DistinctArtists: 1,
		},
	}}
	router := newTestRouter(rec, nil)

	rr := post(t, router, `{
		"seed": {"title": "Karma Police", "artist": "Radiohead", "tempo": 82, "key": "Am"},
		"limit": 10,
		"dj_matching": true,
		"energy_direction": "falling",
		"queued_artists": ["Portishead"]
	}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	if rec.lastReq.Seed.Artist != "Radiohead" || rec.lastReq.Seed.Title != "Karma Police" {
		t.Errorf("seed not passed through: %+v", rec.lastReq.Seed)
	}
	if rec.lastReq.Seed.DJ == nil || rec.lastReq.Seed.DJ.Tempo == nil || *rec.lastReq.Seed.DJ.Tempo != 82 {
		t.Errorf("seed DJ attributes not mapped: %+v", rec.lastReq.Seed.DJ)
	}
	if rec.lastReq.EnergyDirection != domain.EnergyFalling {
		t.Errorf("direction = %q, want falling", rec.lastReq.EnergyDirection)
	}
	if !rec.lastReq.DJMatching || rec.lastReq.Limit != 10 {
		t.Errorf("request flags not mapped: %+v", rec.lastReq)
	}

	var resp recommendationResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Song.ID != "s1" || resp.Items[0].FinalScore != 0.83 {
		t.Errorf("unexpected items: %+v", resp.Items)
	}
	if resp.Items[0].Sources[0] != string(domain.SourceSimilarArtist) {
		t.Errorf("sources = %v", resp.Items[0].Sources)
	}
	if resp.Metadata.RunID != "run-1" || resp.Metadata.TotalCandidates != 12 {
		t.Errorf("unexpected metadata: %+v", resp.Metadata)
	}
}

func TestCreateRecommendations_Validation(t *testing.T) {
	router := newTestRouter(&mockRecommender{}, nil)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{broken`},
		{"missing seed", `{}`},
		{"missing title", `{"seed": {"artist": "Radiohead"}}`},
		{"negative limit", `{"seed": {"artist": "A", "title": "B"}, "limit": -1}`},
		{"bad direction", `{"seed": {"artist": "A", "title": "B"}, "energy_direction": "sideways"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := post(t, router, tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
		})
	}
}

func TestCreateRecommendations_DomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"rate limited", domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited},
		{"upstream down", domain.ErrUpstreamUnavailable, http.StatusBadGateway, codeUpstream},
		{"invalid request", domain.ErrInvalidRequest, http.StatusBadRequest, codeValidationFailed},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, codeInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&mockRecommender{err: tc.err}, nil)
			rr := post(t, router, `{"seed": {"artist": "A", "title": "B"}}`)

			if rr.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
			var resp errorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Code != tc.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tc.wantCode)
			}
			if tc.name == "unknown error" && strings.Contains(resp.Message, "boom") {
				t.Error("internal error detail must not leak to the client")
			}
		})
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&mockRecommender{}, mockPinger{})

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want ok", resp["status"])
	}
}

func TestHealth_DegradedStore(t *testing.T) {
	router := newTestRouter(&mockRecommender{}, mockPinger{err: errors.New("down")})

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "degraded" {
		t.Errorf("status = %q, want degraded", resp["status"])
	}
}
