package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/LeonardoBeccarini/farmassist/internal/model"
)

var (
	ErrInvalidRecord = errors.New("invalid crop record")
	ErrUnknownAction = errors.New("unknown quick action")
	ErrUnknownTab    = errors.New("unknown tab")
	ErrStopped       = errors.New("dashboard stopped")
)

const (
	TabOverview  = "overview"
	TabCrops     = "crops"
	TabAnalytics = "analytics"
	TabMarket    = "market"
	TabCropInfo  = "cropInfo"
)

var tabs = []string{TabOverview, TabCrops, TabAnalytics, TabMarket, TabCropInfo}

const cropInfoPath = "/crop-info"

// Navigator is the part of the router a quick action may use.
type Navigator interface {
	Navigate(path string) error
}

type Options struct {
	// RefreshSpec is a robfig/cron spec, "@every 30s" by default.
	RefreshSpec string
	// FetchDelay simulates the latency of a sensor read.
	FetchDelay time.Duration
	// RecordDelay simulates saving a crop record.
	RecordDelay time.Duration
	Readings    func(time.Time) model.SensorReadings
	Catalog     Catalog
	Navigator   Navigator
	Now         func() time.Time
	Logger      logrus.FieldLogger
}

// Panel is everything the dashboard shows at once.
type Panel struct {
	Readings  model.SensorReadings `json:"readings"`
	Statuses  ReadingStatuses      `json:"statuses"`
	ActiveTab string               `json:"active_tab"`
	Catalog
	Records []model.CropRecord `json:"records"`
}

// ActionResult is the outcome of a quick action.
type ActionResult struct {
	Action    string `json:"action"`
	Message   string `json:"message,omitempty"`
	ActiveTab string `json:"active_tab,omitempty"`
	Navigated string `json:"navigated,omitempty"`
}

// Dashboard aggiorna le letture dei sensori a intervalli cron e gestisce
// record colturali e azioni rapide.
type Dashboard struct {
	opts   Options
	logger logrus.FieldLogger
	cron   *cron.Cron

	mu        sync.Mutex
	readings  model.SensorReadings
	activeTab string
	records   []model.CropRecord
	pending   map[*time.Timer]struct{}
	stopped   bool
	done      chan struct{}
}

func New(opts Options) *Dashboard {
	if opts.RefreshSpec == "" {
		opts.RefreshSpec = "@every 30s"
	}
	if opts.Readings == nil {
		opts.Readings = RandomReadings
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Catalog.Suggestions == nil && opts.Catalog.Prices == nil && opts.Catalog.CropInfo == nil {
		opts.Catalog = DefaultCatalog()
	}
	return &Dashboard{
		opts:      opts,
		logger:    opts.Logger.WithField("component", "dashboard"),
		cron:      cron.New(),
		readings:  InitialReadings(opts.Now()),
		activeTab: TabOverview,
		pending:   make(map[*time.Timer]struct{}),
		done:      make(chan struct{}),
	}
}

// Start fetches once and then on every cron tick.
func (d *Dashboard) Start() error {
	if _, err := d.cron.AddFunc(d.opts.RefreshSpec, d.fetch); err != nil {
		return fmt.Errorf("schedule sensor refresh %q: %w", d.opts.RefreshSpec, err)
	}
	d.fetch()
	d.cron.Start()
	return nil
}

// fetch applies a new reading after FetchDelay.
func (d *Dashboard) fetch() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(d.opts.FetchDelay, func() {
		r := d.opts.Readings(d.opts.Now())
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.pending, t)
		if d.stopped {
			return
		}
		d.readings = r
		d.logger.WithField("temperature", r.Temperature).Debug("sensor readings refreshed")
	})
	d.pending[t] = struct{}{}
}

// Stop halts the cron and drops any fetch still in flight.
func (d *Dashboard) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.done)
	for t := range d.pending {
		t.Stop()
		delete(d.pending, t)
	}
	d.mu.Unlock()

	<-d.cron.Stop().Done()
}

func (d *Dashboard) Readings() model.SensorReadings {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readings
}

func (d *Dashboard) Panel() Panel {
	d.mu.Lock()
	defer d.mu.Unlock()
	records := make([]model.CropRecord, len(d.records))
	copy(records, d.records)
	return Panel{
		Readings:  d.readings,
		Statuses:  StatusesFor(d.readings),
		ActiveTab: d.activeTab,
		Catalog:   d.opts.Catalog,
		Records:   records,
	}
}

func (d *Dashboard) SetTab(tab string) error {
	for _, t := range tabs {
		if t == tab {
			d.mu.Lock()
			d.activeTab = tab
			d.mu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownTab, tab)
}

// RecordInput is the crop record form.
type RecordInput struct {
	Crop            string  `json:"crop"`
	CultivationDate string  `json:"cultivation_date"`
	Quantity        float64 `json:"quantity"`
	Description     string  `json:"description"`
}

func (in RecordInput) validate() error {
	var problems []string
	if strings.TrimSpace(in.Crop) == "" {
		problems = append(problems, "crop is required")
	}
	if _, err := time.Parse("2006-01-02", in.CultivationDate); err != nil {
		problems = append(problems, "cultivation_date must be YYYY-MM-DD")
	}
	if in.Quantity <= 0 {
		problems = append(problems, "quantity must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(problems, "; "))
	}
	return nil
}

// AddRecord validates in, waits RecordDelay and stores the record.
func (d *Dashboard) AddRecord(ctx context.Context, in RecordInput) (model.CropRecord, error) {
	if err := in.validate(); err != nil {
		return model.CropRecord{}, err
	}

	timer := time.NewTimer(d.opts.RecordDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return model.CropRecord{}, ctx.Err()
	case <-d.done:
		return model.CropRecord{}, ErrStopped
	case <-timer.C:
	}

	rec := model.CropRecord{
		ID:              uuid.NewString(),
		Crop:            strings.TrimSpace(in.Crop),
		CultivationDate: in.CultivationDate,
		Quantity:        in.Quantity,
		Description:     in.Description,
		CreatedAt:       d.opts.Now(),
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return model.CropRecord{}, ErrStopped
	}
	d.records = append([]model.CropRecord{rec}, d.records...)
	d.logger.WithFields(logrus.Fields{"record_id": rec.ID, "crop": rec.Crop}).Info("crop record added")
	return rec, nil
}

// QuickAction runs one of the dashboard shortcuts.
func (d *Dashboard) QuickAction(action string) (ActionResult, error) {
	res := ActionResult{Action: action}
	switch action {
	case "irrigation":
		res.Message = "Starting irrigation system..."
	case "analytics":
		res.ActiveTab = TabAnalytics
	case "prediction":
		res.ActiveTab = TabCrops
	case "market":
		res.ActiveTab = TabMarket
	case "cropInfo":
		if d.opts.Navigator == nil {
			return res, errors.New("no navigator configured")
		}
		if err := d.opts.Navigator.Navigate(cropInfoPath); err != nil {
			return res, fmt.Errorf("navigate to %s: %w", cropInfoPath, err)
		}
		res.Navigated = cropInfoPath
		return res, nil
	default:
		return res, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	if res.ActiveTab != "" {
		if err := d.SetTab(res.ActiveTab); err != nil {
			return res, err
		}
	}
	return res, nil
}
