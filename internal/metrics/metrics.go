package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Enrollments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenge_enrollments_total",
			Help: "Challenge enrollments, split into first enrollments and re-registrations",
		},
		[]string{"kind"},
	)

	Unenrollments = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "challenge_unenrollments_total",
			Help: "Challenge unenrollments",
		},
	)

	TaskToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenge_task_toggles_total",
			Help: "Task completion changes that altered state",
		},
		[]string{"task_type", "completed"},
	)

	PointsAwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenge_points_awarded_total",
			Help: "Points awarded (positive deltas only)",
		},
		[]string{"task_type"},
	)

	DailyRollovers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "challenge_daily_rollovers_total",
			Help: "Progress records whose daily completions were reset",
		},
	)

	Completions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "challenge_completions_total",
			Help: "Progress records that reached Completed",
		},
	)

	CatalogCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_requests_total",
			Help: "Catalog cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error
	)
)
