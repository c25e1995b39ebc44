// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GuardRejections counts requests stopped by the access or refresh guard.
	GuardRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "furniture",
		Name:      "auth_guard_rejections_total",
		Help:      "Requests rejected by an auth guard, by guard and reason.",
	}, []string{"guard", "reason"})

	// ImageCleanups counts outcomes of orphaned image cleanup.
	ImageCleanups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "furniture",
		Name:      "image_cleanups_total",
		Help:      "Image cleanup attempts, by result (removed, kept, failed).",
	}, []string{"result"})

	// PrincipalRepairs counts role escalations that left a duplicate record.
	PrincipalRepairs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "furniture",
		Name:      "principal_repairs_total",
		Help:      "Duplicate principal repairs, by stage (enqueued, enqueue_failed, repaired, failed).",
	}, []string{"stage"})
)
