package entities

import "time"

// Disease is one entry of the crop disease catalog.
type Disease struct {
	Name          string   `json:"disease" yaml:"name"`
	Confidence    float64  `json:"confidence" yaml:"confidence"`
	Description   string   `json:"description" yaml:"description"`
	Symptoms      []string `json:"symptoms" yaml:"symptoms"`
	Prevention    []string `json:"prevention" yaml:"prevention"`
	Treatment     string   `json:"treatment" yaml:"treatment"`
	Severity      string   `json:"severity" yaml:"severity"` // High | Medium | Low | None
	Season        string   `json:"season" yaml:"season"`
	AffectedCrops []string `json:"affected_crops" yaml:"affected_crops"`
}

// AnalysisStatus tracks a simulated image analysis.
type AnalysisStatus string

const (
	AnalysisRunning   AnalysisStatus = "running"
	AnalysisDone      AnalysisStatus = "done"
	AnalysisFailed    AnalysisStatus = "failed"
	AnalysisCancelled AnalysisStatus = "cancelled"
)

// Analysis is the state of one uploaded image being classified.
type Analysis struct {
	ID          string         `json:"id"`
	FileName    string         `json:"file_name"`
	Status      AnalysisStatus `json:"status"`
	Progress    float64        `json:"progress"` // 0..100
	Prediction  *Disease       `json:"prediction,omitempty"`
	Error       string         `json:"error,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at,omitempty"`
}

// AnalysisRecord is a compact history row of a finished analysis.
type AnalysisRecord struct {
	ID         string    `json:"id"`
	Disease    string    `json:"disease"`
	Confidence float64   `json:"confidence"`
	Severity   string    `json:"severity"`
	Timestamp  time.Time `json:"timestamp"`
}
