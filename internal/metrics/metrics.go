// Package metrics exposes the engine's prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "juba_jobs_created_total",
		Help: "Jobs posted by clients",
	})
	JobsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "juba_jobs_completed_total",
		Help: "Jobs marked completed by their owner",
	})
	ApplicationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "juba_applications_created_total",
		Help: "Freelancer applications accepted by the registry",
	})
	Selections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "juba_selections_total",
		Help: "Freelancer selection attempts by outcome",
	}, []string{"outcome"}) // won | lost
	PaymentsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "juba_payments_completed_total",
		Help: "Transactions moved to completed",
	})
)
