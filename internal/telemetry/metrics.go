package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LeonardoBeccarini/farmassist/internal/model"
)

const namespace = "farmassist"

// Metrics groups every collector the services report to.
type Metrics struct {
	Ticks          *prometheus.CounterVec
	MoistureLevel  *prometheus.GaugeVec
	PumpOn         *prometheus.GaugeVec
	Commands       *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
	HTTPLatency    *prometheus.HistogramVec
	GRPCRequests   *prometheus.CounterVec
	GRPCLatency    *prometheus.HistogramVec
	Analyses       *prometheus.CounterVec
	ContactResults *prometheus.CounterVec
	Navigations    *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers the collectors on reg. reg must also be a Gatherer
// for Handler to serve them (a *prometheus.Registry is both).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "simulator_ticks_total",
			Help: "Simulator ticks applied.",
		}, []string{"field_id", "sensor_id"}),
		MoistureLevel: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "soil_moisture_percent",
			Help: "Last simulated soil moisture level.",
		}, []string{"field_id", "sensor_id"}),
		PumpOn: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "pump_on",
			Help: "1 while the pump runs.",
		}, []string{"field_id", "sensor_id"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "simulator_commands_total",
			Help: "Pump and auto-mode commands by outcome.",
		}, []string{"command", "result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		GRPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "grpc_requests_total",
			Help: "gRPC requests by method.",
		}, []string{"method"}),
		GRPCLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "grpc_request_duration_seconds",
			Help:    "gRPC request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "disease_analyses_total",
			Help: "Finished disease analyses by status.",
		}, []string{"status"}),
		ContactResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "contact_messages_total",
			Help: "Contact form submissions by result.",
		}, []string{"result"}),
		Navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "navigations_total",
			Help: "Page navigations by target path.",
		}, []string{"path"}),
	}
	reg.MustRegister(
		m.Ticks, m.MoistureLevel, m.PumpOn, m.Commands,
		m.HTTPRequests, m.HTTPLatency, m.GRPCRequests, m.GRPCLatency,
		m.Analyses, m.ContactResults, m.Navigations,
	)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// ObserveSnapshot is a simulator tick listener.
func (m *Metrics) ObserveSnapshot(s model.MoistureSnapshot) {
	m.Ticks.WithLabelValues(s.FieldID, s.SensorID).Inc()
	m.MoistureLevel.WithLabelValues(s.FieldID, s.SensorID).Set(s.Level)
	pump := 0.0
	if s.PumpOn {
		pump = 1
	}
	m.PumpOn.WithLabelValues(s.FieldID, s.SensorID).Set(pump)
}

// ObserveCommand records the outcome of a simulator command.
func (m *Metrics) ObserveCommand(command string, err error) {
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	m.Commands.WithLabelValues(command, result).Inc()
}

// ObserveAnalysis is a disease analyzer completion hook.
func (m *Metrics) ObserveAnalysis(a model.Analysis) {
	m.Analyses.WithLabelValues(string(a.Status)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
