package telemetry

import (
	"strings"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/sirupsen/logrus"

	"github.com/LeonardoBeccarini/farmassist/internal/model"
)

type InfluxConfig struct {
	URL           string
	Token         string
	Org           string
	Bucket        string
	Measurement   string
	BatchSize     uint
	FlushInterval time.Duration
}

// Exporter scrive ogni tick come punto Influx (solo scrittura, mai riletto)
// e traccia l'ultimo errore di scrittura per /readyz.
type Exporter struct {
	client      influxdb2.Client
	api         api.WriteAPI
	measurement string
	logger      logrus.FieldLogger

	mu      sync.RWMutex
	lastErr time.Time
	written int64
	done    chan struct{}
}

func NewExporter(cfg InfluxConfig, logger logrus.FieldLogger) *Exporter {
	opts := influxdb2.DefaultOptions()
	if cfg.BatchSize > 0 {
		opts.SetBatchSize(cfg.BatchSize)
	}
	if cfg.FlushInterval > 0 {
		opts.SetFlushInterval(uint(cfg.FlushInterval.Milliseconds()))
	}
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, opts)

	e := &Exporter{
		client:      client,
		api:         client.WriteAPI(cfg.Org, cfg.Bucket),
		measurement: sanitizeMeasurement(cfg.Measurement),
		logger:      logger.WithField("component", "influx"),
		lastErr:     time.Now().Add(-24 * time.Hour), // di default "lontano nel tempo"
		done:        make(chan struct{}),
	}
	errs := e.api.Errors()
	go func() {
		defer close(e.done)
		for err := range errs {
			if err != nil {
				e.mu.Lock()
				e.lastErr = time.Now()
				e.mu.Unlock()
				e.logger.WithError(err).Warn("influx write error")
			}
		}
	}()
	return e
}

// Observe is a simulator tick listener.
func (e *Exporter) Observe(s model.MoistureSnapshot) {
	t := s.Timestamp
	if t.IsZero() {
		t = time.Now()
	}
	pump := 0
	if s.PumpOn {
		pump = 1
	}
	p := influxdb2.NewPoint(e.measurement,
		map[string]string{
			"field_id":  s.FieldID,
			"sensor_id": s.SensorID,
			"status":    string(s.Status),
		},
		map[string]interface{}{
			"level":     s.Level,
			"pump_on":   pump,
			"auto_mode": s.AutoMode,
			"threshold": s.Threshold,
		},
		t)
	e.api.WritePoint(p)

	e.mu.Lock()
	e.written++
	e.mu.Unlock()
}

// LastErrorAge ritorna da quanto tempo non si verificano errori di scrittura.
func (e *Exporter) LastErrorAge() time.Duration {
	if e == nil {
		return 99999 * time.Hour
	}
	e.mu.RLock()
	t := e.lastErr
	e.mu.RUnlock()
	return time.Since(t)
}

// Written counts points handed to the write API.
func (e *Exporter) Written() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.written
}

func (e *Exporter) Flush() {
	e.api.Flush()
}

// Close flushes pending points and releases the client.
func (e *Exporter) Close() {
	e.api.Flush()
	e.client.Close()
	<-e.done
}

func sanitizeMeasurement(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "soil_moisture"
	}
	return strings.NewReplacer(" ", "_", ",", "_", "=", "_").Replace(s)
}
