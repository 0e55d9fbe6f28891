package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recommendation pipeline Prometheus metrics.
var (
	RecommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "segue",
			Name:      "recommendations_total",
			Help:      "Total number of recommendation runs",
		},
		[]string{"status"},
	)

	RecommendationCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "segue",
			Name:      "recommendation_candidates",
			Help:      "Candidate pool size per recommendation run",
			Buckets:   []float64{0, 5, 10, 25, 50, 100, 200, 400},
		},
	)

	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "segue",
			Name:      "provider_requests_total",
			Help:      "Total number of upstream provider requests",
		},
		[]string{"provider", "operation", "status"},
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "segue",
			Name:      "provider_request_duration_seconds",
			Help:      "Upstream provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "operation"},
	)

	ArtistCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "segue",
			Name:      "artist_cache_total",
			Help:      "Artist catalogue cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var recommendMetricsRegistered bool

// RegisterRecommendMetrics registers recommendation pipeline metrics.
// Must be called once from main.
func RegisterRecommendMetrics() {
	if recommendMetricsRegistered {
		return
	}
	prometheus.MustRegister(RecommendationsTotal)
	prometheus.MustRegister(RecommendationCandidates)
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(ProviderRequestDuration)
	prometheus.MustRegister(ArtistCacheTotal)
	recommendMetricsRegistered = true
}
