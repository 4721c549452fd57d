package domain

import (
	"time"

	"github.com/beka-birhanu/vinom-nav/game/grid"
	"github.com/beka-birhanu/vinom-nav/game/scenario"
	"github.com/beka-birhanu/vinom-nav/game/simulation"
	"github.com/google/uuid"
)

// SessionRequest asks for a new simulation session.
type SessionRequest struct {
	OperatorID uuid.UUID
	Scenario   *scenario.Scenario
	AutoRun    bool // tick on the server clock instead of on demand
	Parallel   bool // step agents concurrently within a tick
}

// SessionInfo describes a running or finished session.
type SessionInfo struct {
	ID         uuid.UUID           `json:"id"`
	OperatorID uuid.UUID           `json:"operator_id"`
	Scenario   string              `json:"scenario"`
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	Obstacles  []grid.Position     `json:"obstacles"`
	AutoRun    bool                `json:"auto_run"`
	Finished   bool                `json:"finished"`
	StartedAt  time.Time           `json:"started_at"`
	Snapshot   simulation.Snapshot `json:"snapshot"`
}
