package telemetry

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/farmassist/internal/model"
	"github.com/LeonardoBeccarini/farmassist/internal/model/entities"
	"github.com/LeonardoBeccarini/farmassist/pkg/rabbitmq/rabbitmqtest"
)

func TestMetricsObserveSnapshot(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveSnapshot(model.MoistureSnapshot{FieldID: "f1", SensorID: "s1", Level: 42.5, PumpOn: true})
	m.ObserveSnapshot(model.MoistureSnapshot{FieldID: "f1", SensorID: "s1", Level: 40.1})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Ticks.WithLabelValues("f1", "s1")))
	assert.Equal(t, 40.1, testutil.ToFloat64(m.MoistureLevel.WithLabelValues("f1", "s1")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.PumpOn.WithLabelValues("f1", "s1")))

	m.ObserveCommand("toggle_pump", nil)
	m.ObserveCommand("toggle_pump", errors.New("auto"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("toggle_pump", "rejected")))

	m.ObserveAnalysis(model.Analysis{Status: entities.AnalysisDone})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Analyses.WithLabelValues("done")))
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ObserveSnapshot(model.MoistureSnapshot{FieldID: "f1", SensorID: "s1", Level: 55})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `farmassist_soil_moisture_percent{field_id="f1",sensor_id="s1"} 55`)
}

// fakeInflux records the line protocol bodies posted to /api/v2/write.
type fakeInflux struct {
	mu     sync.Mutex
	bodies []string
	status int
}

func (f *fakeInflux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/api/v2/write") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.bodies = append(f.bodies, string(b))
	status := f.status
	f.mu.Unlock()
	if status != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"code":"invalid","message":"bad point"}`))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeInflux) all() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.bodies, "\n")
}

func newExporter(t *testing.T, url string) *Exporter {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return NewExporter(InfluxConfig{
		URL: url, Token: "token", Org: "farm", Bucket: "agri",
		Measurement: "soil moisture", BatchSize: 1, FlushInterval: 10 * time.Millisecond,
	}, logger)
}

func TestExporterWritesPoints(t *testing.T) {
	influx := &fakeInflux{}
	srv := httptest.NewServer(influx)
	defer srv.Close()

	e := newExporter(t, srv.URL)
	e.Observe(model.MoistureSnapshot{
		FieldID: "f1", SensorID: "s1", Level: 33.3, PumpOn: true, AutoMode: true, Threshold: 30,
		Status: entities.StatusDry, Timestamp: time.Unix(1700000000, 0),
	})
	e.Close()

	body := influx.all()
	assert.Contains(t, body, "soil_moisture,field_id=f1,sensor_id=s1,status=Dry")
	assert.Contains(t, body, "level=33.3")
	assert.Contains(t, body, "pump_on=1i")
	assert.Contains(t, body, "1700000000000000000")
	assert.Equal(t, int64(1), e.Written())
	assert.Greater(t, e.LastErrorAge(), time.Hour)
}

func TestExporterTracksWriteErrors(t *testing.T) {
	influx := &fakeInflux{status: http.StatusBadRequest}
	srv := httptest.NewServer(influx)
	defer srv.Close()

	e := newExporter(t, srv.URL)
	defer e.Close()
	e.Observe(model.MoistureSnapshot{FieldID: "f1", SensorID: "s1", Level: 50})
	e.Flush()

	require.Eventually(t, func() bool { return e.LastErrorAge() < time.Minute }, 2*time.Second, 5*time.Millisecond)
}

func TestHealthHandlers(t *testing.T) {
	tests := []struct {
		name       string
		health     *Health
		wantStatus string
		wantReady  int
	}{
		{"nothing enabled", &Health{}, "ok", http.StatusOK},
		{"mqtt connected", &Health{MQTT: rabbitmqtest.NewClient()}, "ok", http.StatusOK},
		{"mqtt down", func() *Health {
			c := rabbitmqtest.NewClient()
			c.Disconnect(0)
			return &Health{MQTT: c}
		}(), "degraded", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.health.HealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			require.Equal(t, http.StatusOK, rec.Code)
			var st healthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
			assert.Equal(t, tt.wantStatus, st.Status)

			rec = httptest.NewRecorder()
			tt.health.ReadyHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			assert.Equal(t, tt.wantReady, rec.Code)
		})
	}
}
