// Package metrics provides Prometheus metrics for the Sage service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransitionsTotal tracks relationship status transitions by outcome
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sage",
			Subsystem: "book",
			Name:      "transitions_total",
			Help:      "Total number of relationship status transitions by outcome",
		},
		[]string{"tenant_id", "to_status", "outcome"},
	)

	// RequestsCreatedTotal tracks approval requests created
	RequestsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sage",
			Subsystem: "requests",
			Name:      "created_total",
			Help:      "Total number of approval requests created",
		},
		[]string{"tenant_id", "action"},
	)

	// RequestsResolvedTotal tracks approval requests resolved
	RequestsResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sage",
			Subsystem: "requests",
			Name:      "resolved_total",
			Help:      "Total number of approval requests resolved",
		},
		[]string{"tenant_id", "resolution"},
	)

	// ImportRowsTotal tracks seed rows consumed from the import topic
	ImportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sage",
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Total number of seed rows processed by row type and status",
		},
		[]string{"tenant_id", "row_type", "status"},
	)

	// ImportBatchDuration tracks import batch processing duration
	ImportBatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sage",
			Subsystem: "import",
			Name:      "batch_duration_seconds",
			Help:      "Duration of import batch processing in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"row_type"},
	)

	// ChatMessagesTotal tracks chat messages posted
	ChatMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sage",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Total number of chat messages posted",
		},
		[]string{"tenant_id"},
	)

	// KafkaMessagesPublished tracks Kafka messages published
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sage",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)

	// KPICacheHits tracks seller KPI cache hits and misses
	KPICacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sage",
			Subsystem: "cache",
			Name:      "kpi_lookups_total",
			Help:      "Total number of seller KPI cache lookups by result",
		},
		[]string{"result"},
	)
)

// RecordTransition records a relationship status transition
func RecordTransition(tenantID, toStatus, outcome string) {
	TransitionsTotal.WithLabelValues(tenantID, toStatus, outcome).Inc()
}

// RecordRequestCreated records an approval request creation
func RecordRequestCreated(tenantID, action string) {
	RequestsCreatedTotal.WithLabelValues(tenantID, action).Inc()
}

// RecordRequestResolved records an approval request resolution
func RecordRequestResolved(tenantID, resolution string) {
	RequestsResolvedTotal.WithLabelValues(tenantID, resolution).Inc()
}

// RecordImportRows records processed seed rows
func RecordImportRows(tenantID, rowType, status string, count int) {
	ImportRowsTotal.WithLabelValues(tenantID, rowType, status).Add(float64(count))
}

// RecordChatMessage records a posted chat message
func RecordChatMessage(tenantID string) {
	ChatMessagesTotal.WithLabelValues(tenantID).Inc()
}

// RecordKPICacheLookup records a seller KPI cache lookup
func RecordKPICacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	KPICacheHits.WithLabelValues(result).Inc()
}
