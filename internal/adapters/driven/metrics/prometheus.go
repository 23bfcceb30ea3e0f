package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
)

// Ensure Prometheus implements the interface.
var _ driven.Metrics = (*Prometheus)(nil)

const namespace = "contentsync"

// Prometheus records export and import counters in its own registry.
// The registry is written to a node_exporter textfile with WriteTextfile.
type Prometheus struct {
	registry *prometheus.Registry

	// entitiesExported counts full exports.
	// Labels: entity_type
	entitiesExported *prometheus.CounterVec

	// entitiesImported counts full imports.
	// Labels: entity_type, created (true, false)
	entitiesImported *prometheus.CounterVec

	// stubsCreated counts entities created from reference stubs.
	// Labels: entity_type
	stubsCreated *prometheus.CounterVec

	// itemsFailed counts failed batch items.
	// Labels: operation (export, import, archive)
	itemsFailed *prometheus.CounterVec

	// assetsFetched counts remote asset downloads.
	// Labels: status (success, error)
	assetsFetched *prometheus.CounterVec
}

// NewPrometheus creates the counters and registers them.
func NewPrometheus() *Prometheus {
	m := &Prometheus{
		registry: prometheus.NewRegistry(),
		entitiesExported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_exported_total",
			Help:      "Entities exported in full",
		}, []string{"entity_type"}),
		entitiesImported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_imported_total",
			Help:      "Entities imported in full",
		}, []string{"entity_type", "created"}),
		stubsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stubs_created_total",
			Help:      "Entities created from reference stubs",
		}, []string{"entity_type"}),
		itemsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_failed_total",
			Help:      "Batch items that failed",
		}, []string{"operation"}),
		assetsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assets_fetched_total",
			Help:      "Remote asset downloads by status",
		}, []string{"status"}),
	}

	m.registry.MustRegister(
		m.entitiesExported,
		m.entitiesImported,
		m.stubsCreated,
		m.itemsFailed,
		m.assetsFetched,
	)
	return m
}

// Registry returns the registry holding the counters.
func (m *Prometheus) Registry() *prometheus.Registry {
	return m.registry
}

// EntityExported counts a full export.
func (m *Prometheus) EntityExported(entityType string) {
	m.entitiesExported.WithLabelValues(entityType).Inc()
}

// EntityImported counts a full import.
func (m *Prometheus) EntityImported(entityType string, created bool) {
	m.entitiesImported.WithLabelValues(entityType, strconv.FormatBool(created)).Inc()
}

// StubCreated counts a reference stub creation.
func (m *Prometheus) StubCreated(entityType string) {
	m.stubsCreated.WithLabelValues(entityType).Inc()
}

// ItemFailed counts a failed batch item.
func (m *Prometheus) ItemFailed(operation string) {
	m.itemsFailed.WithLabelValues(operation).Inc()
}

// AssetFetched counts a remote asset download.
func (m *Prometheus) AssetFetched(ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}
	m.assetsFetched.WithLabelValues(status).Inc()
}

// WriteTextfile writes the counters in the text exposition format to path,
// atomically, for the node_exporter textfile collector.
func (m *Prometheus) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
