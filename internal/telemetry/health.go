package telemetry

import (
	"encoding/json"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Health reports on the optional outbound dependencies. A nil MQTT client or
// Exporter means the dependency is disabled, not down.
type Health struct {
	MQTT     mqtt.Client
	Exporter *Exporter
	// MinErrorAge: readiness requires no Influx write error more recent than this.
	MinErrorAge time.Duration
}

type healthStatus struct {
	Status          string   `json:"status"`
	MQTTEnabled     bool     `json:"mqtt_enabled"`
	MQTTConnected   bool     `json:"mqtt_connected"`
	InfluxEnabled   bool     `json:"influx_enabled"`
	LastWriteErrorS *float64 `json:"last_write_error_age_sec,omitempty"`
}

func (h *Health) check() (healthStatus, bool) {
	st := healthStatus{
		MQTTEnabled:   h.MQTT != nil,
		MQTTConnected: h.MQTT != nil && h.MQTT.IsConnectionOpen(),
		InfluxEnabled: h.Exporter != nil,
	}
	mqttOK := !st.MQTTEnabled || st.MQTTConnected
	influxOK := true
	if h.Exporter != nil {
		age := h.Exporter.LastErrorAge()
		s := age.Seconds()
		st.LastWriteErrorS = &s
		influxOK = age > h.MinErrorAge
	}

	switch {
	case mqttOK && influxOK:
		st.Status = "ok"
	case mqttOK || influxOK:
		st.Status = "degraded"
	default:
		st.Status = "down"
	}
	return st, mqttOK && influxOK
}

// HealthHandler always answers 200 with the dependency summary.
func (h *Health) HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		st, _ := h.check()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(st)
	})
}

// ReadyHandler: 200 solo se tutte le dipendenze abilitate sono ok.
func (h *Health) ReadyHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, ready := h.check()
		w.Header().Set("Content-Type", "application/json")
		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(struct {
			Ready bool `json:"ready"`
		}{Ready: ready})
	})
}
