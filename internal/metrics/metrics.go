package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the registry. Methods are safe on
// a nil *Metrics so callers may run without instrumentation.
type Metrics struct {
	registry *prometheus.Registry

	RecordsCreated prometheus.Counter
	RecordsUpdated prometheus.Counter
	RecordsDeleted prometheus.Counter
	Lookups        *prometheus.CounterVec
	ImportRows     *prometheus.CounterVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RecordsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "accreditations_records_created_total",
			Help: "Total number of accreditation records created",
		}),
		RecordsUpdated: f.NewCounter(prometheus.CounterOpts{
			Name: "accreditations_records_updated_total",
			Help: "Total number of accreditation records updated",
		}),
		RecordsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "accreditations_records_deleted_total",
			Help: "Total number of accreditation records deleted",
		}),
		Lookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "accreditations_lookups_total",
			Help: "National ID lookups by outcome",
		}, []string{"result"}),
		ImportRows: f.NewCounterVec(prometheus.CounterOpts{
			Name: "accreditations_import_rows_total",
			Help: "Bulk import rows by outcome",
		}, []string{"status"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) IncCreated() {
	if m != nil {
		m.RecordsCreated.Inc()
	}
}

func (m *Metrics) IncUpdated() {
	if m != nil {
		m.RecordsUpdated.Inc()
	}
}

func (m *Metrics) IncDeleted() {
	if m != nil {
		m.RecordsDeleted.Inc()
	}
}

func (m *Metrics) IncLookup(found bool) {
	if m == nil {
		return
	}
	result := "not_found"
	if found {
		result = "found"
	}
	m.Lookups.WithLabelValues(result).Inc()
}

func (m *Metrics) IncImportRow(status string) {
	if m != nil {
		m.ImportRows.WithLabelValues(status).Inc()
	}
}
