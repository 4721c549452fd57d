package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardEntry(t *testing.T) {
	session := uuid.New()
	entry := NewLeaderboardEntry(session, AgentOutcome{AgentID: "agent|7", StepsTaken: 12, InitialDistance: 8})
	assert.InDelta(t, 1.5, entry.Score, 1e-9)

	parsed, err := ParseLeaderboardMember(entry.Member(), entry.Score)
	require.NoError(t, err)
	assert.Equal(t, entry, parsed)

	zero := NewLeaderboardEntry(session, AgentOutcome{AgentID: "a", StepsTaken: 0, InitialDistance: 0})
	assert.Zero(t, zero.Score)

	for _, member := range []string{"no-separator", "not-a-uuid|a", session.String() + "|"} {
		_, err := ParseLeaderboardMember(member, 1)
		assert.Error(t, err, member)
	}
}
