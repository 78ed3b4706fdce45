// Package metrics exposes the prometheus collectors of the recommender.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"yashubustudio/careermatch/careers"
)

var (
	// Engine metrics
	CorpusEntities = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "careermatch_corpus_entities",
			Help: "Number of careers in the loaded corpus",
		},
	)

	CorpusEmbeddingsUnavailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "careermatch_corpus_embeddings_unavailable",
			Help: "Careers loaded without an embedding",
		},
	)

	CorpusLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "careermatch_corpus_load_duration_seconds",
			Help:    "Time spent loading and embedding the corpus",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	CorpusLoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careermatch_corpus_load_errors_total",
			Help: "Failed corpus loads by cause",
		},
		[]string{"cause"},
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careermatch_recommendations_total",
			Help: "Recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "careermatch_recommendation_duration_seconds",
			Help:    "Recommendation latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	RecommendationResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "careermatch_recommendation_results",
			Help:    "Number of careers returned per request",
			Buckets: []float64{1, 3, 6, 10, 20, 50},
		},
	)

	SimilarityUnavailable = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "careermatch_similarity_unavailable_total",
			Help: "Careers scored without a semantic signal",
		},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careermatch_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "careermatch_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordAPIRequest records one served HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// Recorder feeds careers.Service events into the collectors.
type Recorder struct{}

var _ careers.Observer = Recorder{}

func (Recorder) CorpusLoaded(entities, unavailable int, took time.Duration) {
	CorpusEntities.Set(float64(entities))
	CorpusEmbeddingsUnavailable.Set(float64(unavailable))
	CorpusLoadDuration.Observe(took.Seconds())
}

func (Recorder) CorpusLoadFailed(err error) {
	CorpusLoadErrors.WithLabelValues(errorCause(err)).Inc()
}

func (Recorder) RecommendationServed(returned int, took time.Duration) {
	RecommendationsTotal.WithLabelValues("success").Inc()
	RecommendationDuration.Observe(took.Seconds())
	RecommendationResults.Observe(float64(returned))
}

func (Recorder) RecommendationFailed(err error) {
	RecommendationsTotal.WithLabelValues(errorCause(err)).Inc()
}

func (Recorder) SimilarityUnavailable(entities int) {
	SimilarityUnavailable.Add(float64(entities))
}

// errorCause buckets an error into a low-cardinality label.
func errorCause(err error) string {
	switch {
	case errors.Is(err, careers.ErrCorpusNotFound):
		return "corpus_not_found"
	case errors.Is(err, careers.ErrAmbiguousCorpus):
		return "ambiguous_corpus"
	case errors.Is(err, careers.ErrEmptyCorpus):
		return "empty_corpus"
	case errors.Is(err, careers.ErrEmbedderUnavailable):
		return "embedder_unavailable"
	default:
		return "error"
	}
}
