// Package simulationapi exposes simulation sessions and the leaderboard over HTTP.
package simulationapi

import (
	"github.com/beka-birhanu/vinom-nav/domain"
	"github.com/beka-birhanu/vinom-nav/game/grid"
	"github.com/beka-birhanu/vinom-nav/game/scenario"
)

// GenerateRequest asks the server to build a random scenario.
type GenerateRequest struct {
	Width            int   `json:"width" binding:"required,min=1,max=128"`
	Height           int   `json:"height" binding:"required,min=1,max=128"`
	Obstacles        int   `json:"obstacles" binding:"min=0"`
	Agents           int   `json:"agents" binding:"required,min=1,max=64"`
	RequireReachable bool  `json:"require_reachable"`
	Maze             bool  `json:"maze"` // width and height count maze rooms instead of cells
	Seed             int64 `json:"seed"`
}

// CreateSimulationRequest starts a session from an explicit or a generated scenario.
type CreateSimulationRequest struct {
	Scenario *scenario.Scenario `json:"scenario"`
	Generate *GenerateRequest   `json:"generate"`
	AutoRun  bool               `json:"auto_run"`
	Parallel bool               `json:"parallel"`
}

// CreateSimulationResponse carries the new session id.
type CreateSimulationResponse struct {
	ID string `json:"id"`
}

// PathResponse is a planned path for one agent.
type PathResponse struct {
	AgentID   string          `json:"agent_id"`
	Reachable bool            `json:"reachable"`
	Path      []grid.Position `json:"path"`
	Cost      int             `json:"cost"`
}

// LeaderboardResponse lists the best finishers.
type LeaderboardResponse struct {
	Entries []domain.LeaderboardEntry `json:"entries"`
	Total   int64                     `json:"total"`
}

// SessionListResponse lists live session ids.
type SessionListResponse struct {
	IDs []string `json:"ids"`
}
