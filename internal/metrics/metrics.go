// Package metrics provides Prometheus metrics about the domain events and rule
// violations produced by routectl runs.
package metrics

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domain"
	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domainerr"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance
	Registry *prometheus.Registry

	// Domain metrics
	DomainEventsTotal      *prometheus.CounterVec
	RuleViolationsTotal    *prometheus.CounterVec
	MaintenanceAlertsTotal *prometheus.CounterVec
	RouteDistanceMeters    prometheus.Histogram

	// Command metrics
	OperationDuration *prometheus.HistogramVec

	// logger for error reporting
	logger *slog.Logger
}

// New creates and registers all application metrics with a new registry.
func New() *Metrics {
	return NewWithLogger(nil)
}

// NewWithLogger creates metrics with a logger for error reporting.
func NewWithLogger(logger *slog.Logger) *Metrics {
	registry := prometheus.NewRegistry()

	domainEventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routectl_domain_events_total",
			Help: "Total number of domain events produced, by kind",
		},
		[]string{"kind"},
	)

	ruleViolationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routectl_business_rule_violations_total",
			Help: "Total number of rejected operations, by violation code",
		},
		[]string{"code"},
	)

	maintenanceAlertsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routectl_maintenance_alerts_total",
			Help: "Total number of route maintenance alerts raised, by urgency",
		},
		[]string{"urgency"},
	)

	routeDistanceMeters := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "routectl_route_distance_meters",
		Help:    "Total length of the routes built",
		Buckets: prometheus.ExponentialBuckets(1000, 2, 10),
	})

	operationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "routectl_operation_duration_seconds",
			Help:    "Time spent per routectl operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Register all metrics with the custom registry
	registry.MustRegister(
		domainEventsTotal,
		ruleViolationsTotal,
		maintenanceAlertsTotal,
		routeDistanceMeters,
		operationDuration,
	)

	return &Metrics{
		Registry:               registry,
		DomainEventsTotal:      domainEventsTotal,
		RuleViolationsTotal:    ruleViolationsTotal,
		MaintenanceAlertsTotal: maintenanceAlertsTotal,
		RouteDistanceMeters:    routeDistanceMeters,
		OperationDuration:      operationDuration,
		logger:                 logger,
	}
}

// ObserveEvents counts events by kind, and maintenance alerts by urgency.
func (m *Metrics) ObserveEvents(events []domain.Event) {
	for _, e := range events {
		m.DomainEventsTotal.WithLabelValues(string(e.Kind)).Inc()
		if alert, ok := e.Payload.(domain.RouteMaintenanceAlert); ok {
			m.MaintenanceAlertsTotal.WithLabelValues(string(alert.Urgency)).Inc()
		}
	}
}

// ObserveError counts err when it is a business rule violation and reports
// whether it was one.
func (m *Metrics) ObserveError(err error) bool {
	code := domainerr.CodeOf(err)
	if code == "" {
		return false
	}
	m.RuleViolationsTotal.WithLabelValues(string(code)).Inc()
	return true
}

// ObserveRoute records the route's total length.
func (m *Metrics) ObserveRoute(r domain.Route) {
	m.RouteDistanceMeters.Observe(r.TotalDistance().Meters())
}

// TimeOperation starts a timer; call the returned func when the operation ends.
func (m *Metrics) TimeOperation(operation string) func() {
	start := time.Now()
	return func() {
		m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// WriteTextfile writes the registry in the text exposition format, for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		if m.logger != nil {
			m.logger.Error("failed to write metrics textfile", "path", path, "error", err)
		}
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
