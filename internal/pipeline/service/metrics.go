package service

import (
	"campaign_portal_backend/platform/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// stageTransitions counts committed prospect transitions.
	// Labels: stage (target stage)
	stageTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: "pipeline",
		Name:      "stage_transitions_total",
		Help:      "Committed prospect stage transitions",
	}, []string{"stage"})

	// inviteDispatches counts closed-won invite attempts.
	// Labels: result (queued, sent, failed)
	inviteDispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: "pipeline",
		Name:      "invite_dispatch_total",
		Help:      "Partner invite dispatch attempts after closed_won",
	}, []string{"result"})
)
