package main

import (
	"context"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/LeonardoBeccarini/farmassist/internal/config"
	irrigation_simulator "github.com/LeonardoBeccarini/farmassist/internal/irrigation-simulator"
	"github.com/LeonardoBeccarini/farmassist/internal/model"
	"github.com/LeonardoBeccarini/farmassist/internal/services/contact"
	"github.com/LeonardoBeccarini/farmassist/internal/services/dashboard"
	"github.com/LeonardoBeccarini/farmassist/internal/services/disease"
	"github.com/LeonardoBeccarini/farmassist/internal/services/gateway/app"
	"github.com/LeonardoBeccarini/farmassist/internal/services/navigation"
	"github.com/LeonardoBeccarini/farmassist/internal/telemetry"
	"github.com/LeonardoBeccarini/farmassist/pkg/rabbitmq"
)

// application raccoglie tutte le dipendenze del processo serve.
type application struct {
	cfg    *config.Config
	logger logrus.FieldLogger

	registry *prometheus.Registry
	metrics  *telemetry.Metrics
	exporter *telemetry.Exporter

	mqtt       mqtt.Client
	aggregator *irrigation_simulator.Aggregator
	consumer   rabbitmq.IConsumer

	nav     *navigation.Navigator
	soil    *irrigation_simulator.View
	gateway *app.Gateway
}

func simulatorOptions(cfg config.SimulatorConfig, logger logrus.FieldLogger) irrigation_simulator.Options {
	opts := irrigation_simulator.DefaultOptions()
	opts.FieldID = cfg.FieldID
	opts.SensorID = cfg.SensorID
	opts.TickInterval = cfg.TickInterval
	opts.ToggleDelay = cfg.ToggleDelay
	opts.InitialLevel = cfg.InitialLevel
	opts.Threshold = cfg.Threshold
	opts.AutoMode = cfg.AutoMode
	opts.HistorySize = cfg.HistorySize
	opts.SummaryWindow = cfg.SummaryWindow
	opts.Logger = logger
	return opts
}

func buildApplication(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*application, error) {
	a := &application{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = telemetry.NewMetrics(a.registry)

	listeners := []irrigation_simulator.Listener{a.metrics.ObserveSnapshot}

	if cfg.Influx.Enabled {
		a.exporter = telemetry.NewExporter(telemetry.InfluxConfig{
			URL:           cfg.Influx.URL,
			Token:         cfg.Influx.Token,
			Org:           cfg.Influx.Org,
			Bucket:        cfg.Influx.Bucket,
			Measurement:   cfg.Influx.Measurement,
			BatchSize:     cfg.Influx.BatchSize,
			FlushInterval: cfg.Influx.FlushInterval,
		}, logger)
		listeners = append(listeners, a.exporter.Observe)
	}

	if cfg.MQTT.Enabled {
		client, err := rabbitmq.NewRabbitMQConn(ctx, mqttConfig(cfg.MQTT), logger)
		if err != nil {
			a.close()
			return nil, err
		}
		a.mqtt = client

		snapTopic := cfg.Simulator.Topic(cfg.MQTT.SnapshotTopic)
		listeners = append(listeners, irrigation_simulator.SnapshotPublisher(rabbitmq.NewPublisher(client, snapTopic, 0, logger), logger))

		aggTopic := cfg.Simulator.Topic(cfg.MQTT.AggregateTopic)
		a.aggregator = irrigation_simulator.NewAggregator(rabbitmq.NewPublisher(client, aggTopic, 1, logger), cfg.MQTT.AggregateInterval, logger)
		listeners = append(listeners, a.aggregator.Observe)
	}

	a.soil = irrigation_simulator.NewView(func() *irrigation_simulator.Simulator {
		sim := irrigation_simulator.NewSimulator(simulatorOptions(cfg.Simulator, logger))
		for _, l := range listeners {
			sim.OnTick(l)
		}
		return sim
	}, logger)

	if a.mqtt != nil {
		handler := irrigation_simulator.NewCommandHandler(a.soil, cfg.MQTT.DedupTTL, cfg.MQTT.DedupMax, logger)
		a.consumer = rabbitmq.NewConsumer(a.mqtt, cfg.Simulator.Topic(cfg.MQTT.CommandTopic), func(topic string, msg mqtt.Message) error {
			err := handler.HandleMessage(topic, msg)
			a.metrics.ObserveCommand("mqtt", err)
			return err
		}, logger)
	}

	a.nav = navigation.NewNavigator(ctx, logger)

	diseaseView := disease.NewView(disease.Options{
		PollInterval:   cfg.Disease.PollInterval,
		HistorySize:    cfg.Disease.HistorySize,
		StoreSize:      cfg.Disease.StoreSize,
		MaxUploadBytes: cfg.Disease.MaxUploadBytes,
		OnDone:         a.metrics.ObserveAnalysis,
	}, logger)

	dashboardView := dashboard.NewView(dashboard.Options{
		RefreshSpec: cfg.Dashboard.RefreshSpec,
		FetchDelay:  cfg.Dashboard.FetchDelay,
		RecordDelay: cfg.Dashboard.RecordDelay,
		Navigator:   a.nav,
	}, logger)

	relay := contact.NewEmailJSRelay(contact.EmailJSConfig{
		Endpoint:        cfg.Email.Endpoint,
		ServiceID:       cfg.Email.ServiceID,
		TemplateID:      cfg.Email.TemplateID,
		PublicKey:       cfg.Email.PublicKey,
		Timeout:         cfg.Email.Timeout,
		BreakerFailures: cfg.Email.BreakerFailures,
		BreakerOpenFor:  cfg.Email.BreakerOpenFor,
	}, logger)
	contactView := contact.NewView(relay, cfg.Email.SuccessFor, logger)

	views := map[string]navigation.View{
		navigation.PathSoilMoisture: a.soil,
		navigation.PathCropDisease:  diseaseView,
		navigation.PathDashboard:    dashboardView,
		navigation.PathContact:      contactView,
	}
	for path, v := range views {
		if err := a.nav.Register(path, v); err != nil {
			a.close()
			return nil, fmt.Errorf("register view %s: %w", path, err)
		}
	}

	health := &telemetry.Health{Exporter: a.exporter, MinErrorAge: cfg.Influx.FlushInterval * 2}
	if a.mqtt != nil {
		health.MQTT = a.mqtt
	}

	a.gateway = app.NewGateway(app.Config{
		Navigator:      a.nav,
		Soil:           a.soil,
		Disease:        diseaseView,
		Dashboard:      dashboardView,
		Contact:        contactView,
		Metrics:        a.metrics,
		Health:         health,
		RateLimit:      cfg.HTTP.RateLimit,
		RateBurst:      cfg.HTTP.RateLimitBurst,
		MaxUploadBytes: cfg.Disease.MaxUploadBytes,
		Logger:         logger,
	})
	return a, nil
}

// close unmounts the current page and flushes the exporter.
func (a *application) close() {
	if a.nav != nil {
		a.nav.Close()
	}
	if a.exporter != nil {
		a.exporter.Close()
	}
}

// logSnapshot is the headless listener of the simulate command.
func logSnapshot(logger logrus.FieldLogger) irrigation_simulator.Listener {
	return func(s model.MoistureSnapshot) {
		logger.WithFields(logrus.Fields{
			"level":     s.Level,
			"status":    s.Status,
			"pump_on":   s.PumpOn,
			"auto_mode": s.AutoMode,
			"threshold": s.Threshold,
		}).Info("tick")
	}
}
