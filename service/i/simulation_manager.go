package i

import (
	"context"

	dmn "github.com/beka-birhanu/vinom-nav/domain"
	"github.com/beka-birhanu/vinom-nav/game/grid"
	"github.com/beka-birhanu/vinom-nav/game/simulation"
	"github.com/google/uuid"
)

// SimulationManager owns the live simulation sessions.
type SimulationManager interface {
	// Create starts a session and returns its id.
	Create(ctx context.Context, req dmn.SessionRequest) (uuid.UUID, error)

	// Session returns the current state of a session.
	Session(id uuid.UUID) (*dmn.SessionInfo, error)

	// Sessions lists the ids of live sessions.
	Sessions() []uuid.UUID

	// Tick advances a session by one tick.
	Tick(ctx context.Context, id uuid.UUID) (simulation.Snapshot, error)

	// Path plans an A* path for one agent from its current cell.
	Path(id uuid.UUID, agentID string) ([]grid.Position, bool, error)

	// Stop ends a session, persists its report and forgets it.
	Stop(ctx context.Context, id uuid.UUID) (*dmn.RunReport, error)

	// StopAll stops every session.
	StopAll()
}
