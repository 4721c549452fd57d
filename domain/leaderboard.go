package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// LeaderboardEntry ranks one agent that reached its goal. Lower scores rank higher.
type LeaderboardEntry struct {
	SessionID uuid.UUID `json:"session_id"`
	AgentID   string    `json:"agent_id"`
	Score     float64   `json:"score"`
}

// NewLeaderboardEntry scores a finisher by steps taken per unit of initial
// distance, so 1 means it walked a straight line.
func NewLeaderboardEntry(sessionID uuid.UUID, outcome AgentOutcome) LeaderboardEntry {
	score := float64(outcome.StepsTaken)
	if outcome.InitialDistance > 0 {
		score /= float64(outcome.InitialDistance)
	}
	return LeaderboardEntry{SessionID: sessionID, AgentID: outcome.AgentID, Score: score}
}

// Member is the storage key of the entry.
func (e LeaderboardEntry) Member() string {
	return e.SessionID.String() + "|" + e.AgentID
}

// ParseLeaderboardMember reverses Member.
func ParseLeaderboardMember(member string, score float64) (LeaderboardEntry, error) {
	sessionPart, agentID, ok := strings.Cut(member, "|")
	if !ok || agentID == "" {
		return LeaderboardEntry{}, fmt.Errorf("malformed leaderboard member %q", member)
	}
	sessionID, err := uuid.Parse(sessionPart)
	if err != nil {
		return LeaderboardEntry{}, fmt.Errorf("malformed leaderboard member %q: %w", member, err)
	}
	return LeaderboardEntry{SessionID: sessionID, AgentID: agentID, Score: score}, nil
}
