package service

import (
	"time"

	"github.com/google/uuid"
)

// Stage names the step a device outcome was decided at
type Stage string

const (
	StageAddress     Stage = "address"
	StagePreflight   Stage = "preflight"
	StageCredentials Stage = "credentials"
	StageCollect     Stage = "collect"
	StageReconcile   Stage = "reconcile"
	StageInterfaces  Stage = "interfaces"
	StageDone        Stage = "done"
)

// DeviceOutcome records what happened to one device during a run
type DeviceOutcome struct {
	Device         string          `json:"device" yaml:"device"`
	Host           string          `json:"host,omitempty" yaml:"host,omitempty"`
	Stage          Stage           `json:"stage" yaml:"stage"`
	Action         Action          `json:"action" yaml:"action"`
	Err            error           `json:"-" yaml:"-"`
	Error          string          `json:"error,omitempty" yaml:"error,omitempty"`
	FactsCollected bool            `json:"facts_collected" yaml:"facts_collected"`
	Interfaces     InterfaceCounts `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
	Warnings       []string        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Duration       time.Duration   `json:"duration" yaml:"duration"`
}

func (o *DeviceOutcome) fail(stage Stage, err error) {
	o.Stage = stage
	o.Action = ActionFailed
	o.Err = err
	o.Error = err.Error()
}

func (o *DeviceOutcome) skip(stage Stage, err error) {
	o.Stage = stage
	o.Action = ActionSkipped
	o.Err = err
	o.Error = err.Error()
}

func (o *DeviceOutcome) warn(err error) {
	o.Warnings = append(o.Warnings, err.Error())
}

// Summary counts device outcomes by action
type Summary struct {
	Total          int `json:"total" yaml:"total"`
	Created        int `json:"created" yaml:"created"`
	Updated        int `json:"updated" yaml:"updated"`
	Unchanged      int `json:"unchanged" yaml:"unchanged"`
	Failed         int `json:"failed" yaml:"failed"`
	Skipped        int `json:"skipped" yaml:"skipped"`
	Collected      int `json:"collected,omitempty" yaml:"collected,omitempty"`
	FactsCollected int `json:"facts_collected" yaml:"facts_collected"`
}

// Report is the result of one run over a site
type Report struct {
	RunID      uuid.UUID       `json:"run_id" yaml:"run_id"`
	Site       string          `json:"site" yaml:"site"`
	Driver     string          `json:"driver" yaml:"driver"`
	SiteAction Action          `json:"site_action" yaml:"site_action"`
	SiteError  string          `json:"site_error,omitempty" yaml:"site_error,omitempty"`
	StartedAt  time.Time       `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time       `json:"finished_at" yaml:"finished_at"`
	Outcomes   []DeviceOutcome `json:"outcomes" yaml:"outcomes"`
	Summary    Summary         `json:"summary" yaml:"summary"`
}

func newReport(site, driverName string) *Report {
	return &Report{
		RunID:     uuid.New(),
		Site:      site,
		Driver:    driverName,
		StartedAt: time.Now().UTC(),
	}
}

// Duration is the wall time of the run
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Failed reports whether the site or any device failed
func (r *Report) Failed() bool {
	return r.SiteAction == ActionFailed || r.Summary.Failed > 0
}

func (r *Report) finish() {
	r.FinishedAt = time.Now().UTC()
	r.Summary = summarize(r.Outcomes)
}

func summarize(outcomes []DeviceOutcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		switch o.Action {
		case ActionCreated:
			s.Created++
		case ActionUpdated:
			s.Updated++
		case ActionUnchanged:
			s.Unchanged++
		case ActionFailed:
			s.Failed++
		case ActionSkipped:
			s.Skipped++
		case ActionCollected:
			s.Collected++
		}
		if o.FactsCollected {
			s.FactsCollected++
		}
	}
	return s
}
