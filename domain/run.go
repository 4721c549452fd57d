package domain

import (
	"time"

	"github.com/beka-birhanu/vinom-nav/game/grid"
	"github.com/beka-birhanu/vinom-nav/game/simulation"
	"github.com/google/uuid"
)

// AgentOutcome is the final state of one agent in a finished run.
type AgentOutcome struct {
	AgentID         string        `bson:"agentId" json:"agent_id"`
	Start           grid.Position `bson:"start" json:"start"`
	Goal            grid.Position `bson:"goal" json:"goal"`
	Final           grid.Position `bson:"final" json:"final"`
	Status          string        `bson:"status" json:"status"`
	StepsTaken      int           `bson:"stepsTaken" json:"steps_taken"`
	MaxSteps        int           `bson:"maxSteps" json:"max_steps"`
	InitialDistance int           `bson:"initialDistance" json:"initial_distance"`
}

// RunReport summarizes a finished simulation run. Learned value tables are
// not part of it.
type RunReport struct {
	ID         uuid.UUID      `bson:"_id" json:"id"`
	OperatorID uuid.UUID      `bson:"operatorId" json:"operator_id"`
	Scenario   string         `bson:"scenario" json:"scenario"`
	Width      int            `bson:"width" json:"width"`
	Height     int            `bson:"height" json:"height"`
	Ticks      int            `bson:"ticks" json:"ticks"`
	TotalSteps int            `bson:"totalSteps" json:"total_steps"`
	Reached    int            `bson:"reached" json:"reached"`
	Outcomes   []AgentOutcome `bson:"outcomes" json:"outcomes"`
	StartedAt  time.Time      `bson:"startedAt" json:"started_at"`
	FinishedAt time.Time      `bson:"finishedAt" json:"finished_at"`
}

// RunReportConfig holds what a report is built from.
type RunReportConfig struct {
	ID         uuid.UUID
	OperatorID uuid.UUID
	Scenario   string
	Width      int
	Height     int
	Snapshot   simulation.Snapshot
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewRunReport builds a report from the last snapshot of a run.
func NewRunReport(config RunReportConfig) *RunReport {
	snap := config.Snapshot
	report := &RunReport{
		ID:         config.ID,
		OperatorID: config.OperatorID,
		Scenario:   config.Scenario,
		Width:      config.Width,
		Height:     config.Height,
		Ticks:      snap.Tick,
		TotalSteps: snap.TotalSteps,
		Reached:    len(snap.Reached()),
		Outcomes:   make([]AgentOutcome, 0, len(snap.Agents)),
		StartedAt:  config.StartedAt,
		FinishedAt: config.FinishedAt,
	}
	for _, st := range snap.Agents {
		report.Outcomes = append(report.Outcomes, AgentOutcome{
			AgentID:         st.ID,
			Start:           st.Start,
			Goal:            st.Goal,
			Final:           st.Position,
			Status:          st.Status,
			StepsTaken:      st.StepsTaken,
			MaxSteps:        st.MaxSteps,
			InitialDistance: st.InitialDistance,
		})
	}
	return report
}

// SuccessRate is the share of agents that reached their goal.
func (r *RunReport) SuccessRate() float64 {
	if len(r.Outcomes) == 0 {
		return 0
	}
	return float64(r.Reached) / float64(len(r.Outcomes))
}
