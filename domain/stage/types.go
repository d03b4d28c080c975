package stage

import (
	"encoding/json"
	"fmt"

	"goeda/domain/core"
)

// StageName represents a named stage in the pipeline
type StageName string

// Predefined stage names, in execution order
const (
	StageLoad    StageName = "load"
	StageClean   StageName = "clean"
	StageAnalyze StageName = "analyze"
	StageReport  StageName = "report"
)

// FailurePolicy says what a failed stage does to the rest of the run
type FailurePolicy string

const (
	PolicyAbort    FailurePolicy = "abort"    // no later stage runs
	PolicyContinue FailurePolicy = "continue" // later stages run on what is available
)

// StageSpec defines a single stage in the pipeline
type StageSpec struct {
	Name      StageName     `json:"name"`
	OnFailure FailurePolicy `json:"on_failure"`
}

// StageResult represents the output of a stage execution
type StageResult struct {
	StageName StageName    `json:"stage_name"`
	Success   bool         `json:"success"`
	Skipped   bool         `json:"skipped,omitempty"`
	Metrics   StageMetrics `json:"metrics"`
	Artifacts []string     `json:"artifacts,omitempty"` // files written
	Warnings  []string     `json:"warnings,omitempty"`
	Error     string       `json:"error,omitempty"`
	Duration  int64        `json:"duration_ms"` // milliseconds
}

// StageMetrics contains canonical metrics for stage results
type StageMetrics struct {
	Tables  int `json:"tables"`
	RowsIn  int `json:"rows_in"`
	RowsOut int `json:"rows_out"`

	// Fingerprint of the stage's output tables, when it produces any
	Fingerprint core.Hash `json:"fingerprint,omitempty"`
}

// StagePlan represents an ordered list of stages with configuration
type StagePlan struct {
	Stages []StageSpec `json:"stages"`
}

// NewStagePlan creates a new stage plan
func NewStagePlan(stages []StageSpec) *StagePlan {
	return &StagePlan{Stages: stages}
}

// DefaultPlan is load, clean, analyze, report. Analysis failures do not stop
// the cleaned tables from being written.
func DefaultPlan() *StagePlan {
	return NewStagePlan([]StageSpec{
		{Name: StageLoad, OnFailure: PolicyAbort},
		{Name: StageClean, OnFailure: PolicyAbort},
		{Name: StageAnalyze, OnFailure: PolicyContinue},
		{Name: StageReport, OnFailure: PolicyAbort},
	})
}

// Hash computes a deterministic hash of the stage plan
func (p *StagePlan) Hash() core.Hash {
	data, _ := json.Marshal(p.Stages)
	return core.NewHash(data)
}

// Validate checks if the stage plan is valid
func (p *StagePlan) Validate() error {
	if len(p.Stages) == 0 {
		return fmt.Errorf("stage plan must contain at least one stage")
	}

	seenNames := make(map[StageName]bool)
	for _, stage := range p.Stages {
		if stage.Name == "" {
			return fmt.Errorf("stage name cannot be empty")
		}
		if seenNames[stage.Name] {
			return fmt.Errorf("duplicate stage name: %s", stage.Name)
		}
		switch stage.OnFailure {
		case PolicyAbort, PolicyContinue:
		default:
			return fmt.Errorf("stage %s has unknown failure policy %q", stage.Name, stage.OnFailure)
		}
		seenNames[stage.Name] = true
	}

	return nil
}

// PipelineResult contains the results of executing a stage plan
type PipelineResult struct {
	Plan    *StagePlan      `json:"plan"`
	Results []StageResult   `json:"results"`
	Overall PipelineSummary `json:"overall"`
}

// PipelineSummary provides high-level pipeline statistics
type PipelineSummary struct {
	TotalStages    int   `json:"total_stages"`
	Successful     int   `json:"successful"`
	Failed         int   `json:"failed"`
	Skipped        int   `json:"skipped"`
	TotalDuration  int64 `json:"total_duration_ms"`
	ArtifactsCount int   `json:"artifacts_count"`
}

// NewPipelineResult creates a new pipeline result
func NewPipelineResult(plan *StagePlan) *PipelineResult {
	return &PipelineResult{
		Plan:    plan,
		Results: make([]StageResult, 0, len(plan.Stages)),
	}
}

// AddResult adds a stage result and updates summary
func (r *PipelineResult) AddResult(result StageResult) {
	r.Results = append(r.Results, result)
	r.Overall.TotalStages++

	switch {
	case result.Skipped:
		r.Overall.Skipped++
	case result.Success:
		r.Overall.Successful++
	default:
		r.Overall.Failed++
	}

	r.Overall.TotalDuration += result.Duration
	r.Overall.ArtifactsCount += len(result.Artifacts)
}

// Result returns the result recorded for a stage
func (r *PipelineResult) Result(name StageName) (StageResult, bool) {
	for _, res := range r.Results {
		if res.StageName == name {
			return res, true
		}
	}
	return StageResult{}, false
}

// Succeeded reports whether no stage failed
func (r *PipelineResult) Succeeded() bool {
	return r.Overall.Failed == 0
}
