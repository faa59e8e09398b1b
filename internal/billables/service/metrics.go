package service

import (
	"campaign_portal_backend/platform/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// highVarianceBrands is the discrepancy count of the last aggregated month.
	highVarianceBrands = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metrics.Namespace,
		Subsystem: "billables",
		Name:      "high_variance_brands",
		Help:      "Brands over the discrepancy threshold in the last aggregated month",
	})

	// brandMonthActions counts approve and dispute requests.
	// Labels: action (approve, dispute)
	brandMonthActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: "billables",
		Name:      "brand_month_actions_total",
		Help:      "Approve and dispute actions on brand billing months",
	}, []string{"action"})
)
