package jobs

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type Trigger string

const (
	TriggerWeekly Trigger = "weekly"
	TriggerDaily  Trigger = "daily"
	TriggerManual Trigger = "manual"
)

type StepStatus string

const (
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
	StepTimedOut  StepStatus = "timed_out"
	StepSkipped   StepStatus = "skipped"
)

type Outcome string

const (
	// OutcomeCompleted means at least the steps ran; see Steps for per-step status.
	OutcomeCompleted          Outcome = "completed"
	OutcomeNoFreshData        Outcome = "no_fresh_data"
	OutcomeAwaitingCollection Outcome = "awaiting_collection"
)

type StepOutcome struct {
	Name       string         `json:"name"`
	Status     StepStatus     `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Error      string         `json:"error,omitempty"`
	ErrorKind  string         `json:"error_kind,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	Duration   time.Duration  `json:"duration"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func (s StepOutcome) Succeeded() bool { return s.Status == StepSucceeded }

// RunSummary aggregates one orchestrator cycle.
type RunSummary struct {
	RunID        string        `json:"run_id"`
	Trigger      Trigger       `json:"trigger"`
	Outcome      Outcome       `json:"outcome"`
	SnapshotPath string        `json:"snapshot_path,omitempty"`
	SnapshotAge  time.Duration `json:"snapshot_age,omitempty"`
	Stale        bool          `json:"stale"`
	Steps        []StepOutcome `json:"steps"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
}

// Step returns the named step outcome, if the step ran.
func (r *RunSummary) Step(name string) (StepOutcome, bool) {
	if r == nil {
		return StepOutcome{}, false
	}
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepOutcome{}, false
}

// Failed counts steps that did not succeed or skip.
func (r *RunSummary) Failed() int {
	n := 0
	for _, s := range r.Steps {
		if s.Status == StepFailed || s.Status == StepTimedOut {
			n++
		}
	}
	return n
}

// RunRecord is the persisted ledger row for a RunSummary.
type RunRecord struct {
	ID           string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Trigger      string         `gorm:"column:run_trigger;not null;index" json:"trigger"`
	Outcome      string         `gorm:"column:outcome;not null;index" json:"outcome"`
	SnapshotPath string         `gorm:"column:snapshot_path" json:"snapshot_path,omitempty"`
	SnapshotAgeS int64          `gorm:"column:snapshot_age_s" json:"snapshot_age_s"`
	Stale        bool           `gorm:"column:stale;not null;default:false" json:"stale"`
	FailedSteps  int            `gorm:"column:failed_steps;not null;default:0" json:"failed_steps"`
	Steps        datatypes.JSON `gorm:"column:steps" json:"steps"`
	StartedAt    time.Time      `gorm:"column:started_at;not null;index" json:"started_at"`
	FinishedAt   time.Time      `gorm:"column:finished_at;not null" json:"finished_at"`
	CreatedAt    time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (RunRecord) TableName() string { return "run_record" }

func NewRunRecord(s RunSummary) (*RunRecord, error) {
	steps, err := json.Marshal(s.Steps)
	if err != nil {
		return nil, err
	}
	return &RunRecord{
		ID:           s.RunID,
		Trigger:      string(s.Trigger),
		Outcome:      string(s.Outcome),
		SnapshotPath: s.SnapshotPath,
		SnapshotAgeS: int64(s.SnapshotAge / time.Second),
		Stale:        s.Stale,
		FailedSteps:  s.Failed(),
		Steps:        datatypes.JSON(steps),
		StartedAt:    s.StartedAt.UTC(),
		FinishedAt:   s.FinishedAt.UTC(),
	}, nil
}

// Summary rebuilds the RunSummary the record was created from.
func (r *RunRecord) Summary() (RunSummary, error) {
	out := RunSummary{
		RunID:        r.ID,
		Trigger:      Trigger(r.Trigger),
		Outcome:      Outcome(r.Outcome),
		SnapshotPath: r.SnapshotPath,
		SnapshotAge:  time.Duration(r.SnapshotAgeS) * time.Second,
		Stale:        r.Stale,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
	}
	if len(r.Steps) > 0 {
		if err := json.Unmarshal(r.Steps, &out.Steps); err != nil {
			return RunSummary{}, err
		}
	}
	return out, nil
}
