package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP instruments, recorded by the metrics middleware.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oms_http_requests_total",
		Help: "Total HTTP requests by method, path and status",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "oms_http_request_duration_seconds",
		Help:    "HTTP request latency by method and path",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Domain instruments, recorded by the order services.
var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oms_orders_created_total",
		Help: "Orders created",
	})

	CommitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oms_commits_total",
		Help: "Commits recorded, by source (direct, merge, revision)",
	}, []string{"source"})

	ChangeRequestsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oms_change_requests_opened_total",
		Help: "Change requests opened",
	})

	ChangeRequestsMerged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oms_change_requests_merged_total",
		Help: "Change requests merged",
	})

	ChangeRequestsClosed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oms_change_requests_closed_total",
		Help: "Change requests declined",
	})

	RollbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oms_rollbacks_total",
		Help: "Branch rollbacks performed",
	})

	RevisionsAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oms_revisions_added_total",
		Help: "File revisions attached to orders",
	})
)

// Factory-floor gauges, refreshed by the metrics collector.
var (
	OrdersTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "oms_orders_total",
		Help: "Orders currently tracked",
	})

	OrdersBlocked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "oms_orders_blocked",
		Help: "Orders with at least one blocked station",
	})

	OrdersCompleted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "oms_orders_completed",
		Help: "Orders with every station completed",
	})

	StationStageOrders = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "oms_station_stage_orders",
		Help: "Orders per station and stage state",
	}, []string{"station", "state"})

	StationReworks = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "oms_station_reworks",
		Help: "Accumulated rework cycles per station",
	}, []string{"station"})
)
