package app

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	irrigation_simulator "github.com/LeonardoBeccarini/farmassist/internal/irrigation-simulator"
	"github.com/LeonardoBeccarini/farmassist/internal/services/contact"
	"github.com/LeonardoBeccarini/farmassist/internal/services/dashboard"
	"github.com/LeonardoBeccarini/farmassist/internal/services/disease"
	"github.com/LeonardoBeccarini/farmassist/internal/services/navigation"
	"github.com/LeonardoBeccarini/farmassist/internal/telemetry"
)

var errNotMounted = errors.New("page not mounted")

type Config struct {
	Navigator *navigation.Navigator
	Soil      *irrigation_simulator.View
	Disease   *disease.View
	Dashboard *dashboard.View
	Contact   *contact.View

	Metrics *telemetry.Metrics
	Health  *telemetry.Health

	// RateLimit/RateBurst limitano le richieste che modificano stato (POST, PUT, DELETE).
	RateLimit      float64
	RateBurst      int
	MaxUploadBytes int64

	Logger logrus.FieldLogger
}

// Gateway espone le pagine dell'app via HTTP/JSON. Ogni endpoint di pagina
// naviga prima sulla pagina, montandone la vista.
type Gateway struct {
	cfg     Config
	limiter *rate.Limiter
	logger  logrus.FieldLogger
}

func NewGateway(cfg Config) *Gateway {
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 5
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 10
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	return &Gateway{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		logger:  cfg.Logger.WithField("component", "gateway"),
	}
}

// Handler builds the mux wrapped in the middleware chain.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()

	if g.cfg.Health != nil {
		mux.Handle("GET /healthz", g.cfg.Health.HealthHandler())
		mux.Handle("GET /readyz", g.cfg.Health.ReadyHandler())
	} else {
		mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	}
	if g.cfg.Metrics != nil {
		mux.Handle("GET /metrics", g.cfg.Metrics.Handler())
	}

	mux.HandleFunc("GET /api/routes", g.HandleRoutes)
	mux.HandleFunc("GET /api/navigation", g.HandleCurrent)
	mux.HandleFunc("POST /api/navigation", g.HandleNavigate)

	mux.HandleFunc("GET /api/soil-moisture", g.HandleSoilState)
	mux.HandleFunc("POST /api/soil-moisture/pump", g.HandleTogglePump)
	mux.HandleFunc("POST /api/soil-moisture/auto-mode", g.HandleToggleAutoMode)
	mux.HandleFunc("PUT /api/soil-moisture/threshold", g.HandleSetThreshold)
	mux.HandleFunc("GET /api/soil-moisture/history", g.HandleHistory)
	mux.HandleFunc("GET /api/soil-moisture/chart", g.HandleChart)

	mux.HandleFunc("GET /api/crop-disease/catalog", g.HandleDiseaseCatalog)
	mux.HandleFunc("POST /api/crop-disease/analyses", g.HandleSubmitAnalysis)
	mux.HandleFunc("GET /api/crop-disease/analyses", g.HandleAnalysisHistory)
	mux.HandleFunc("GET /api/crop-disease/analyses/{id}", g.HandleGetAnalysis)
	mux.HandleFunc("GET /api/crop-disease/current", g.HandleCurrentAnalysis)
	mux.HandleFunc("DELETE /api/crop-disease/current", g.HandleClearAnalysis)

	mux.HandleFunc("GET /api/dashboard", g.HandleDashboard)
	mux.HandleFunc("PUT /api/dashboard/tab", g.HandleSetTab)
	mux.HandleFunc("POST /api/dashboard/records", g.HandleAddRecord)
	mux.HandleFunc("POST /api/dashboard/actions/{action}", g.HandleQuickAction)

	mux.HandleFunc("GET /api/contact", g.HandleContactState)
	mux.HandleFunc("POST /api/contact", g.HandleContactSubmit)

	var h http.Handler = mux
	h = g.rateLimit(h)
	h = g.instrument(h)
	h = g.logRequests(h)
	h = requestID(h)
	return h
}

// enter navigates to path so that its view is mounted.
func (g *Gateway) enter(path string) error {
	if err := g.cfg.Navigator.Navigate(path); err != nil {
		return err
	}
	if g.cfg.Metrics != nil {
		g.cfg.Metrics.Navigations.WithLabelValues(g.cfg.Navigator.Current()).Inc()
	}
	return nil
}

// AcquireSimulator navigates to the soil-moisture page and returns its simulator.
func (g *Gateway) AcquireSimulator() (*irrigation_simulator.Simulator, error) {
	if err := g.enter(navigation.PathSoilMoisture); err != nil {
		return nil, err
	}
	sim, ok := g.cfg.Soil.Simulator()
	if !ok {
		return nil, errNotMounted
	}
	return sim, nil
}

func (g *Gateway) acquireAnalyzer() (*disease.Analyzer, error) {
	if err := g.enter(navigation.PathCropDisease); err != nil {
		return nil, err
	}
	a, ok := g.cfg.Disease.Analyzer()
	if !ok {
		return nil, errNotMounted
	}
	return a, nil
}

func (g *Gateway) acquireDashboard() (*dashboard.Dashboard, error) {
	if err := g.enter(navigation.PathDashboard); err != nil {
		return nil, err
	}
	d, ok := g.cfg.Dashboard.Dashboard()
	if !ok {
		return nil, errNotMounted
	}
	return d, nil
}

func (g *Gateway) acquireForm() (*contact.Form, error) {
	if err := g.enter(navigation.PathContact); err != nil {
		return nil, err
	}
	f, ok := g.cfg.Contact.Form()
	if !ok {
		return nil, errNotMounted
	}
	return f, nil
}
