package i

import (
	"context"

	dmn "github.com/beka-birhanu/vinom-nav/domain"
)

// Leaderboard ranks agents that reached their goals, best score first.
type Leaderboard interface {
	Record(ctx context.Context, entry dmn.LeaderboardEntry) error
	Top(ctx context.Context, n int64) ([]dmn.LeaderboardEntry, error)
	Count(ctx context.Context) int64
	Trim(ctx context.Context, keep int64) error
}
