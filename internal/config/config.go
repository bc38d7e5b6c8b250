package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override (FARM_HTTP_ADDR, ...).
const EnvPrefix = "FARM"

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	GRPC      GRPCConfig      `mapstructure:"grpc"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	Influx    InfluxConfig    `mapstructure:"influx"`
	Email     EmailConfig     `mapstructure:"email"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Disease   DiseaseConfig   `mapstructure:"disease"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"` // dev | prod
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | text
}

type HTTPConfig struct {
	Addr              string        `mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	// RateLimit is the steady number of POST requests per second allowed.
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

type GRPCConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type SimulatorConfig struct {
	FieldID       string        `mapstructure:"field_id"`
	SensorID      string        `mapstructure:"sensor_id"`
	TickInterval  time.Duration `mapstructure:"tick_interval"`
	ToggleDelay   time.Duration `mapstructure:"toggle_delay"`
	InitialLevel  float64       `mapstructure:"initial_level"`
	Threshold     float64       `mapstructure:"threshold"`
	AutoMode      bool          `mapstructure:"auto_mode"`
	HistorySize   int           `mapstructure:"history_size"`
	SummaryWindow int           `mapstructure:"summary_window"`
}

type MQTTConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	ClientID          string        `mapstructure:"client_id"`
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	MaxRetries        uint64        `mapstructure:"max_retries"`
	SnapshotTopic     string        `mapstructure:"snapshot_topic"`
	AggregateTopic    string        `mapstructure:"aggregate_topic"`
	CommandTopic      string        `mapstructure:"command_topic"`
	AggregateInterval time.Duration `mapstructure:"aggregate_interval"`
	DedupTTL          time.Duration `mapstructure:"dedup_ttl"`
	DedupMax          int           `mapstructure:"dedup_max"`
}

type InfluxConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	URL           string        `mapstructure:"url"`
	Token         string        `mapstructure:"token"`
	Org           string        `mapstructure:"org"`
	Bucket        string        `mapstructure:"bucket"`
	Measurement   string        `mapstructure:"measurement"`
	BatchSize     uint          `mapstructure:"batch_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

type EmailConfig struct {
	Endpoint        string        `mapstructure:"endpoint"`
	ServiceID       string        `mapstructure:"service_id"`
	TemplateID      string        `mapstructure:"template_id"`
	PublicKey       string        `mapstructure:"public_key"`
	Timeout         time.Duration `mapstructure:"timeout"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerOpenFor  time.Duration `mapstructure:"breaker_open_for"`
	SuccessFor      time.Duration `mapstructure:"success_for"`
}

type DashboardConfig struct {
	RefreshSpec string        `mapstructure:"refresh_spec"` // cron spec
	FetchDelay  time.Duration `mapstructure:"fetch_delay"`
	RecordDelay time.Duration `mapstructure:"record_delay"`
}

type DiseaseConfig struct {
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	HistorySize    int           `mapstructure:"history_size"`
	StoreSize      int           `mapstructure:"store_size"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
}

// Load reads defaults, then the optional YAML file at path, then FARM_* env vars.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the services cannot run with.
func (c *Config) Validate() error {
	var errs []error
	s := c.Simulator
	if s.TickInterval <= 0 {
		errs = append(errs, errors.New("simulator.tick_interval must be positive"))
	}
	if s.ToggleDelay < 0 {
		errs = append(errs, errors.New("simulator.toggle_delay must not be negative"))
	}
	if !finite(s.Threshold) || s.Threshold < 20 || s.Threshold > 60 {
		errs = append(errs, fmt.Errorf("simulator.threshold %.1f outside [20,60]", s.Threshold))
	}
	if !finite(s.InitialLevel) || s.InitialLevel < 20 || s.InitialLevel > 80 {
		errs = append(errs, fmt.Errorf("simulator.initial_level %.1f outside [20,80]", s.InitialLevel))
	}
	if s.HistorySize <= 0 {
		errs = append(errs, errors.New("simulator.history_size must be positive"))
	}
	if c.Disease.PollInterval <= 0 {
		errs = append(errs, errors.New("disease.poll_interval must be positive"))
	}
	if c.Disease.HistorySize <= 0 || c.Disease.StoreSize <= 0 {
		errs = append(errs, errors.New("disease.history_size and disease.store_size must be positive"))
	}
	if c.Email.SuccessFor <= 0 || c.Email.SuccessFor > 3*time.Second {
		errs = append(errs, fmt.Errorf("email.success_for %s outside (0s,3s]", c.Email.SuccessFor))
	}
	if c.MQTT.Enabled && c.MQTT.Host == "" {
		errs = append(errs, errors.New("mqtt.host is required when mqtt is enabled"))
	}
	if c.Influx.Enabled && (c.Influx.URL == "" || c.Influx.Bucket == "") {
		errs = append(errs, errors.New("influx.url and influx.bucket are required when influx is enabled"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Topic expands the {field} and {sensor} placeholders of an MQTT topic template.
func (s SimulatorConfig) Topic(template string) string {
	return strings.NewReplacer("{field}", s.FieldID, "{sensor}", s.SensorID).Replace(template)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "farmassist")
	v.SetDefault("app.env", "dev")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("http.addr", ":5009")
	v.SetDefault("http.read_header_timeout", 5*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.rate_limit", 5.0)
	v.SetDefault("http.rate_limit_burst", 10)

	v.SetDefault("grpc.enabled", true)
	v.SetDefault("grpc.addr", ":50051")

	v.SetDefault("simulator.field_id", "field1")
	v.SetDefault("simulator.sensor_id", "sensor1")
	v.SetDefault("simulator.tick_interval", 3*time.Second)
	v.SetDefault("simulator.toggle_delay", time.Second)
	v.SetDefault("simulator.initial_level", 45.0)
	v.SetDefault("simulator.threshold", 30.0)
	v.SetDefault("simulator.auto_mode", true)
	v.SetDefault("simulator.history_size", 10)
	v.SetDefault("simulator.summary_window", 20)

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.host", "localhost")
	v.SetDefault("mqtt.port", 1883)
	v.SetDefault("mqtt.user", "guest")
	v.SetDefault("mqtt.password", "guest")
	v.SetDefault("mqtt.client_id", "farmassist")
	v.SetDefault("mqtt.connect_timeout", 10*time.Second)
	v.SetDefault("mqtt.max_retries", 5)
	v.SetDefault("mqtt.snapshot_topic", "farm/{field}/moisture")
	v.SetDefault("mqtt.aggregate_topic", "farm/{field}/moisture/aggregated")
	v.SetDefault("mqtt.command_topic", "farm/{field}/command")
	v.SetDefault("mqtt.aggregate_interval", time.Minute)
	v.SetDefault("mqtt.dedup_ttl", 2*time.Minute)
	v.SetDefault("mqtt.dedup_max", 10000)

	v.SetDefault("influx.enabled", false)
	v.SetDefault("influx.url", "http://influxdb:8086")
	v.SetDefault("influx.token", "")
	v.SetDefault("influx.org", "farmassist")
	v.SetDefault("influx.bucket", "agri")
	v.SetDefault("influx.measurement", "soil_moisture")
	v.SetDefault("influx.batch_size", 50)
	v.SetDefault("influx.flush_interval", 5*time.Second)

	v.SetDefault("email.service_id", "")
	v.SetDefault("email.template_id", "")
	v.SetDefault("email.public_key", "")
	v.SetDefault("email.endpoint", "https://api.emailjs.com/api/v1.0/email/send")
	v.SetDefault("email.timeout", 10*time.Second)
	v.SetDefault("email.breaker_failures", 3)
	v.SetDefault("email.breaker_open_for", 30*time.Second)
	v.SetDefault("email.success_for", 3*time.Second)

	v.SetDefault("dashboard.refresh_spec", "@every 30s")
	v.SetDefault("dashboard.fetch_delay", time.Second)
	v.SetDefault("dashboard.record_delay", 1500*time.Millisecond)

	v.SetDefault("disease.poll_interval", 200*time.Millisecond)
	v.SetDefault("disease.history_size", 5)
	v.SetDefault("disease.store_size", 256)
	v.SetDefault("disease.max_upload_bytes", 10<<20)
}
