package agent

import (
	"github.com/beka-birhanu/vinom-nav/game/grid"
)

// NumActions is the size of the action space, one per grid direction.
const NumActions = 4

// ActionValues holds one value estimate per action.
type ActionValues [NumActions]float64

// Max returns the largest estimate.
func (v ActionValues) Max() float64 {
	best := v[0]
	for _, value := range v[1:] {
		if value > best {
			best = value
		}
	}
	return best
}

// Argmax returns the index of the largest estimate, the first one on ties.
func (v ActionValues) Argmax() int {
	best := 0
	for action := 1; action < NumActions; action++ {
		if v[action] > v[best] {
			best = action
		}
	}
	return best
}

// QTable maps states to action-value estimates.
// Rows are created on first access with all estimates at zero and are never removed.
type QTable struct {
	data map[grid.Position]*ActionValues
}

// NewQTable returns an empty table.
func NewQTable() *QTable {
	return &QTable{data: make(map[grid.Position]*ActionValues)}
}

// row returns the estimates for state, creating a zero row if needed.
func (q *QTable) row(state grid.Position) *ActionValues {
	values, ok := q.data[state]
	if !ok {
		values = &ActionValues{}
		q.data[state] = values
	}
	return values
}

// Values returns a copy of the estimates for state. Unseen states read as zero
// without being added to the table.
func (q *QTable) Values(state grid.Position) ActionValues {
	if values, ok := q.data[state]; ok {
		return *values
	}
	return ActionValues{}
}

// Get returns the estimate for one state-action pair.
func (q *QTable) Get(state grid.Position, action int) float64 {
	return q.Values(state)[action]
}

// Set overwrites the estimate for one state-action pair.
func (q *QTable) Set(state grid.Position, action int, value float64) {
	q.row(state)[action] = value
}

// Len returns the number of distinct states in the table.
func (q *QTable) Len() int {
	return len(q.data)
}

// StateValues returns max_a Q(s, a) for every known state.
func (q *QTable) StateValues() map[grid.Position]float64 {
	result := make(map[grid.Position]float64, len(q.data))
	for state, values := range q.data {
		result[state] = values.Max()
	}
	return result
}
