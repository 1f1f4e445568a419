package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cyberguard"

// Auth outcomes
const (
	StatusSuccess  = "success"
	StatusRejected = "rejected"
	StatusError    = "error"
)

var (
	quizSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quiz_submissions_total",
			Help:      "Graded quiz submissions",
		},
		[]string{"kind", "result"}, // result: correct/incorrect
	)

	challengesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "challenges_completed_total",
			Help:      "Challenge runs that reached the last quiz",
		},
		[]string{"challenge_id", "first"},
	)

	topicsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "topics_completed_total",
			Help:      "Learning topics marked complete",
		},
	)

	authAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Register and login attempts",
		},
		[]string{"operation", "status"},
	)

	eventPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Progress events that could not be published",
		},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time spent serving HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func QuizSubmitted(kind string, correct bool) {
	result := "incorrect"
	if correct {
		result = "correct"
	}
	quizSubmissions.WithLabelValues(kind, result).Inc()
}

func ChallengeCompleted(challengeID int, first bool) {
	challengesCompleted.WithLabelValues(strconv.Itoa(challengeID), strconv.FormatBool(first)).Inc()
}

func TopicCompleted() {
	topicsCompleted.Inc()
}

func AuthAttempt(operation, status string) {
	authAttempts.WithLabelValues(operation, status).Inc()
}

func EventPublishFailed() {
	eventPublishFailures.Inc()
}

// Middleware times every request by its route template. Unmatched paths
// share one label so scanners cannot blow up the series count.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.Handler()
}
