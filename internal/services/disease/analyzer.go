package disease

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"

	"github.com/LeonardoBeccarini/farmassist/internal/model"
	"github.com/LeonardoBeccarini/farmassist/internal/model/entities"
)

var (
	ErrNotImage = errors.New("please upload an image file (JPEG, PNG, etc.)")
	ErrTooLarge = errors.New("image too large")
	ErrNotFound = errors.New("analysis not found")
	ErrStopped  = errors.New("analyzer stopped")
)

type Options struct {
	PollInterval   time.Duration
	HistorySize    int
	StoreSize      int
	MaxUploadBytes int64
	Classifier     DiseaseClassifier
	// Step returns the progress increment applied at every poll.
	Step   func() float64
	OnDone func(model.Analysis)
	Now    func() time.Time
	Logger logrus.FieldLogger
}

// Analyzer runs simulated image analyses, one goroutine each, and keeps
// the last few results as history.
type Analyzer struct {
	opts   Options
	logger logrus.FieldLogger

	mu      sync.Mutex
	store   *lru.Cache // id -> *model.Analysis
	history []model.AnalysisRecord
	latest  string
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewAnalyzer(ctx context.Context, opts Options) (*Analyzer, error) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 200 * time.Millisecond
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = 5
	}
	if opts.StoreSize <= 0 {
		opts.StoreSize = 256
	}
	if opts.Classifier == nil {
		opts.Classifier = NewRandomClassifier(DefaultCatalog())
	}
	if opts.Step == nil {
		opts.Step = RandomStep
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	store, err := lru.New(opts.StoreSize)
	if err != nil {
		return nil, fmt.Errorf("create analysis store: %w", err)
	}
	a := &Analyzer{
		opts:   opts,
		logger: opts.Logger.WithField("component", "disease-analyzer"),
		store:  store,
	}
	a.ctx, a.cancel = context.WithCancel(ctx)
	return a, nil
}

// Submit validates the upload and starts its analysis. Non-images are
// rejected with ErrNotImage and nothing is stored.
func (a *Analyzer) Submit(fileName, contentType string, data []byte) (model.Analysis, error) {
	if err := a.validate(contentType, data); err != nil {
		return model.Analysis{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return model.Analysis{}, ErrStopped
	}

	an := &model.Analysis{
		ID:        uuid.NewString(),
		FileName:  fileName,
		Status:    entities.AnalysisRunning,
		StartedAt: a.opts.Now(),
	}
	a.store.Add(an.ID, an)
	a.latest = an.ID

	a.wg.Add(1)
	go a.run(an.ID, data)

	a.logger.WithFields(logrus.Fields{"analysis_id": an.ID, "file": fileName, "bytes": len(data)}).Info("analysis started")
	return *an, nil
}

func (a *Analyzer) validate(contentType string, data []byte) error {
	if len(data) == 0 {
		return ErrNotImage
	}
	if a.opts.MaxUploadBytes > 0 && int64(len(data)) > a.opts.MaxUploadBytes {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("%w: declared %s", ErrNotImage, contentType)
	}
	if sniffed := http.DetectContentType(data); !strings.HasPrefix(sniffed, "image/") {
		return fmt.Errorf("%w: detected %s", ErrNotImage, sniffed)
	}
	return nil
}

func (a *Analyzer) run(id string, data []byte) {
	defer a.wg.Done()
	ticker := time.NewTicker(a.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			a.finish(id, func(an *model.Analysis) { an.Status = entities.AnalysisCancelled })
			return
		case <-ticker.C:
			if !a.advance(id) {
				continue
			}
			d, err := a.opts.Classifier.Classify(a.ctx, data)
			a.finish(id, func(an *model.Analysis) {
				if err != nil {
					an.Status = entities.AnalysisFailed
					an.Error = err.Error()
					return
				}
				an.Status = entities.AnalysisDone
				an.Prediction = &d
			})
			return
		}
	}
}

// advance adds one step of progress; true once 100 is reached.
func (a *Analyzer) advance(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	an, ok := a.lookupLocked(id)
	if !ok {
		return true
	}
	an.Progress = math.Min(100, an.Progress+a.opts.Step())
	return an.Progress >= 100
}

func (a *Analyzer) finish(id string, apply func(*model.Analysis)) {
	a.mu.Lock()
	an, ok := a.lookupLocked(id)
	if !ok {
		a.mu.Unlock()
		return
	}
	apply(an)
	an.CompletedAt = a.opts.Now()
	if an.Status == entities.AnalysisDone {
		an.Progress = 100
		a.recordLocked(an)
	}
	out := *an
	a.mu.Unlock()

	a.logger.WithFields(logrus.Fields{"analysis_id": id, "status": out.Status}).Info("analysis finished")
	if a.opts.OnDone != nil {
		a.opts.OnDone(out)
	}
}

func (a *Analyzer) recordLocked(an *model.Analysis) {
	rec := model.AnalysisRecord{
		ID:         an.ID,
		Disease:    an.Prediction.Name,
		Confidence: an.Prediction.Confidence,
		Severity:   an.Prediction.Severity,
		Timestamp:  an.CompletedAt,
	}
	keep := a.history
	if len(keep) >= a.opts.HistorySize {
		keep = keep[:a.opts.HistorySize-1]
	}
	a.history = append([]model.AnalysisRecord{rec}, keep...)
}

func (a *Analyzer) lookupLocked(id string) (*model.Analysis, bool) {
	v, ok := a.store.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*model.Analysis), true
}

func (a *Analyzer) Get(id string) (model.Analysis, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	an, ok := a.lookupLocked(id)
	if !ok {
		return model.Analysis{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *an, nil
}

// Latest returns the most recently submitted analysis, if it was not cleared.
func (a *Analyzer) Latest() (model.Analysis, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.latest == "" {
		return model.Analysis{}, false
	}
	an, ok := a.lookupLocked(a.latest)
	if !ok {
		return model.Analysis{}, false
	}
	return *an, true
}

// Clear forgets the current image and prediction; history is kept.
func (a *Analyzer) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.latest = ""
}

// History returns finished analyses, newest first.
func (a *Analyzer) History() []model.AnalysisRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.AnalysisRecord, len(a.history))
	copy(out, a.history)
	return out
}

// Stop cancels running analyses and waits for them.
func (a *Analyzer) Stop() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	a.mu.Unlock()

	a.cancel()
	a.wg.Wait()
}
