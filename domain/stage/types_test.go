package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPlan(t *testing.T) {
	plan := DefaultPlan()
	require.NoError(t, plan.Validate())

	names := make([]StageName, len(plan.Stages))
	for i, s := range plan.Stages {
		names[i] = s.Name
	}
	assert.Equal(t, []StageName{StageLoad, StageClean, StageAnalyze, StageReport}, names)
	assert.Equal(t, plan.Hash(), DefaultPlan().Hash())
}

func TestStagePlanValidate(t *testing.T) {
	tests := []struct {
		name   string
		stages []StageSpec
	}{
		{"empty", nil},
		{"unnamed", []StageSpec{{OnFailure: PolicyAbort}}},
		{"duplicate", []StageSpec{{Name: StageLoad, OnFailure: PolicyAbort}, {Name: StageLoad, OnFailure: PolicyAbort}}},
		{"bad policy", []StageSpec{{Name: StageLoad, OnFailure: "retry"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, NewStagePlan(tt.stages).Validate())
		})
	}
}

func TestPipelineResult(t *testing.T) {
	r := NewPipelineResult(DefaultPlan())
	r.AddResult(StageResult{StageName: StageLoad, Success: true, Duration: 5})
	r.AddResult(StageResult{StageName: StageAnalyze, Error: "boom", Duration: 2})
	r.AddResult(StageResult{StageName: StageReport, Skipped: true, Artifacts: []string{"a.csv"}})

	assert.Equal(t, PipelineSummary{TotalStages: 3, Successful: 1, Failed: 1, Skipped: 1, TotalDuration: 7, ArtifactsCount: 1}, r.Overall)
	assert.False(t, r.Succeeded())

	res, ok := r.Result(StageAnalyze)
	require.True(t, ok)
	assert.Equal(t, "boom", res.Error)
	_, ok = r.Result(StageClean)
	assert.False(t, ok)
}
