package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// metricRequestsCount counts the requests we served.
	metricRequestsCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkeddata_requests_count",
		Help: "Total number of processed requests",
	}, []string{"route", "status"})

	// metricRequestsInflight gauges the number of requests currently inflight.
	metricRequestsInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "linkeddata_requests_inflight_gauge",
		Help: "The number of requests currently inflight",
	})

	// metricRequestDurationSeconds summarizes request latency per route.
	metricRequestDurationSeconds = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Name:       "linkeddata_request_duration_seconds",
		Help:       "Summarizes the time to serve a request (in seconds)",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"route"})

	// metricReprocessCount counts reprocess attempts by outcome.
	metricReprocessCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkeddata_reprocess_count",
		Help: "Total number of reprocess requests",
	}, []string{"outcome"})

	// metricDatasetRecords gauges the records currently served.
	metricDatasetRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "linkeddata_dataset_records",
		Help: "Number of records in the dataset being served",
	})
)
