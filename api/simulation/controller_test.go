package simulationapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/beka-birhanu/vinom-nav/api"
	"github.com/beka-birhanu/vinom-nav/api/i"
	"github.com/beka-birhanu/vinom-nav/api/identity"
	dmn "github.com/beka-birhanu/vinom-nav/domain"
	"github.com/beka-birhanu/vinom-nav/game/grid"
	"github.com/beka-birhanu/vinom-nav/game/scenario"
	"github.com/beka-birhanu/vinom-nav/game/simulation"
	"github.com/beka-birhanu/vinom-nav/service"
	si "github.com/beka-birhanu/vinom-nav/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "valid"

var testOperator = uuid.MustParse("8a7b4c9e-4a11-4c1f-9a3e-0f1d2c3b4a59")

type nopLogger struct{}

func (nopLogger) Debug(string)   {}
func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}

type staticLeaderboard struct {
	entries []dmn.LeaderboardEntry
	err     error
}

func (l *staticLeaderboard) Record(context.Context, dmn.LeaderboardEntry) error { return nil }
func (l *staticLeaderboard) Count(context.Context) int64                        { return int64(len(l.entries)) }
func (l *staticLeaderboard) Trim(context.Context, int64) error                  { return nil }
func (l *staticLeaderboard) Top(_ context.Context, n int64) ([]dmn.LeaderboardEntry, error) {
	if l.err != nil {
		return nil, l.err
	}
	if int64(len(l.entries)) < n {
		n = int64(len(l.entries))
	}
	return l.entries[:n], nil
}

type memRuns struct {
	mu      sync.Mutex
	reports []*dmn.RunReport
}

func (r *memRuns) Save(_ context.Context, report *dmn.RunReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
	return nil
}

func (r *memRuns) ByID(_ context.Context, id uuid.UUID) (*dmn.RunReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, report := range r.reports {
		if report.ID == id {
			return report, nil
		}
	}
	return nil, dmn.ErrRunNotFound
}

func (r *memRuns) Recent(_ context.Context, limit int64) ([]*dmn.RunReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*dmn.RunReport, 0, len(r.reports))
	for n := len(r.reports) - 1; n >= 0 && int64(len(out)) < limit; n-- {
		out = append(out, r.reports[n])
	}
	return out, nil
}

// authorize accepts testToken and stores claims for testOperator.
func authorize(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+testToken {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.Set(identity.ContextOperatorClaims, map[string]interface{}{"operatorID": testOperator.String()})
	c.Next()
}

type fixture struct {
	engine  *gin.Engine
	manager *service.SimulationManager
}

func newFixture(t *testing.T, lb *staticLeaderboard) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	runs := &memRuns{}
	manager, err := service.NewSimulationManager(service.SimulationManagerConfig{RunRepo: runs, Logger: nopLogger{}})
	require.NoError(t, err)
	t.Cleanup(manager.StopAll)

	var board si.Leaderboard
	if lb != nil {
		board = lb
	}
	controller, err := NewSimulationController(manager, board, runs)
	require.NoError(t, err)

	router := api.NewRouter(api.Config{
		BaseURL:                 "/api",
		Controllers:             []i.Controller{controller},
		AuthorizationMiddleware: authorize,
	})
	return fixture{engine: router.Engine(), manager: manager}
}

func (f fixture) do(t *testing.T, method, path string, body interface{}, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func adjacentScenario() *scenario.Scenario {
	zero := 0.0
	return &scenario.Scenario{
		Name:     "adjacent",
		Width:    3,
		Height:   3,
		Agents:   []scenario.AgentSpec{{ID: "a", Start: grid.Position{X: 0, Y: 0}, Goal: grid.Position{X: 1, Y: 0}}},
		Learning: scenario.Learning{ExplorationRate: &zero},
		Seed:     1,
	}
}

func createSession(t *testing.T, f fixture, request CreateSimulationRequest) uuid.UUID {
	t.Helper()
	w := f.do(t, http.MethodPost, "/simulations", request, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response CreateSimulationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	id, err := uuid.Parse(response.ID)
	require.NoError(t, err)
	return id
}

func TestCreateRequiresAuthorization(t *testing.T) {
	f := newFixture(t, nil)
	w := f.do(t, http.MethodPost, "/simulations", CreateSimulationRequest{Scenario: adjacentScenario()}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, f.manager.Sessions())
}

func TestCreateAndTick(t *testing.T) {
	f := newFixture(t, nil)
	id := createSession(t, f, CreateSimulationRequest{Scenario: adjacentScenario()})

	w := f.do(t, http.MethodGet, "/simulations/"+id.String(), nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var info dmn.SessionInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, testOperator, info.OperatorID)
	assert.Equal(t, "adjacent", info.Scenario)
	assert.False(t, info.Finished)

	var snap simulation.Snapshot
	w = f.do(t, http.MethodPost, "/simulations/"+id.String()+"/tick", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.Tick)

	w = f.do(t, http.MethodPost, "/simulations/"+id.String()+"/tick", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.True(t, snap.Done)

	w = f.do(t, http.MethodPost, "/simulations/"+id.String()+"/tick", nil, true)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodGet, "/simulations", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var list SessionListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, []string{id.String()}, list.IDs)

	w = f.do(t, http.MethodDelete, "/simulations/"+id.String(), nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var report dmn.RunReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Reached)

	w = f.do(t, http.MethodGet, "/simulations/"+id.String(), nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/runs/"+id.String(), nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var stored dmn.RunReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Equal(t, id, stored.ID)
	assert.Equal(t, testOperator, stored.OperatorID)
}

func TestRuns(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/runs", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	first := createSession(t, f, CreateSimulationRequest{Scenario: adjacentScenario()})
	second := createSession(t, f, CreateSimulationRequest{Scenario: adjacentScenario()})
	for _, id := range []uuid.UUID{first, second} {
		w = f.do(t, http.MethodDelete, "/simulations/"+id.String(), nil, true)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w = f.do(t, http.MethodGet, "/runs?limit=1", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var reports []dmn.RunReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, second, reports[0].ID)

	w = f.do(t, http.MethodGet, "/runs/"+uuid.NewString(), nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = f.do(t, http.MethodGet, "/runs?limit=0", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateGenerated(t *testing.T) {
	f := newFixture(t, nil)

	id := createSession(t, f, CreateSimulationRequest{
		Generate: &GenerateRequest{Width: 6, Height: 6, Obstacles: 4, Agents: 3, RequireReachable: true, Seed: 5},
	})
	info, err := f.manager.Session(id)
	require.NoError(t, err)
	assert.Equal(t, "generated-5", info.Scenario)
	assert.Len(t, info.Snapshot.Agents, 3)
	assert.Len(t, info.Obstacles, 4)

	id = createSession(t, f, CreateSimulationRequest{
		Generate: &GenerateRequest{Width: 3, Height: 2, Agents: 2, Maze: true, Seed: 9},
	})
	info, err = f.manager.Session(id)
	require.NoError(t, err)
	assert.Equal(t, 7, info.Width)
	assert.Equal(t, 5, info.Height)
}

func TestCreateRejects(t *testing.T) {
	f := newFixture(t, nil)

	cases := map[string]CreateSimulationRequest{
		"empty":          {},
		"bad scenario":   {Scenario: &scenario.Scenario{Width: 0, Height: 3}},
		"too many rooms": {Generate: &GenerateRequest{Width: 100, Height: 2, Agents: 1, Maze: true}},
		"no free cells":  {Generate: &GenerateRequest{Width: 2, Height: 1, Obstacles: 1, Agents: 1}},
		"missing agents": {Generate: &GenerateRequest{Width: 4, Height: 4}},
	}
	for name, request := range cases {
		t.Run(name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/simulations", request, true)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
	assert.Empty(t, f.manager.Sessions())
}

func TestCreateRejectsOversizedScenario(t *testing.T) {
	f := newFixture(t, nil)

	wide := adjacentScenario()
	wide.Width, wide.Height = 2000, 2000
	wide.Obstacles = []grid.Position{{X: 1998, Y: 1999}, {X: 1999, Y: 1998}}
	wide.Agents[0].Goal = grid.Position{X: 1999, Y: 1999}

	crowded := adjacentScenario()
	crowded.Agents = nil
	for n := 0; n <= scenario.DefaultMaxAgents; n++ {
		crowded.Agents = append(crowded.Agents, scenario.AgentSpec{ID: fmt.Sprintf("agent_%d", n), Goal: grid.Position{X: 2, Y: 2}})
	}

	cluttered := adjacentScenario()
	limit := scenario.DefaultLimits().MaxObstacles
	for n := 0; n <= limit; n++ {
		cluttered.Obstacles = append(cluttered.Obstacles, grid.Position{X: 2, Y: 2})
	}

	for name, sc := range map[string]*scenario.Scenario{
		"too large":          wide,
		"too many agents":    crowded,
		"too many obstacles": cluttered,
	} {
		t.Run(name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/simulations", CreateSimulationRequest{Scenario: sc}, true)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), "exceed")
		})
	}
	assert.Empty(t, f.manager.Sessions())
}

func TestSessionErrors(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/simulations/not-a-uuid", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/simulations/"+uuid.NewString()+"/tick", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodDelete, "/simulations/"+uuid.NewString(), nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPath(t *testing.T) {
	f := newFixture(t, nil)
	sc := adjacentScenario()
	sc.Obstacles = []grid.Position{{X: 1, Y: 0}, {X: 1, Y: 1}}
	sc.Agents[0].Goal = grid.Position{X: 2, Y: 0}
	id := createSession(t, f, CreateSimulationRequest{Scenario: sc})

	w := f.do(t, http.MethodGet, "/simulations/"+id.String()+"/agents/a/path", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var response PathResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Reachable)
	assert.Equal(t, 6, response.Cost)
	assert.Equal(t, grid.Position{X: 0, Y: 0}, response.Path[0])
	assert.Equal(t, grid.Position{X: 2, Y: 0}, response.Path[6])

	w = f.do(t, http.MethodGet, "/simulations/"+id.String()+"/agents/ghost/path", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	sc = adjacentScenario()
	sc.Obstacles = []grid.Position{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 2}}
	sc.Agents[0].Goal = grid.Position{X: 2, Y: 0}
	id = createSession(t, f, CreateSimulationRequest{Scenario: sc})

	w = f.do(t, http.MethodGet, "/simulations/"+id.String()+"/agents/a/path", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	response = PathResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(t, response.Reachable)
	assert.Empty(t, response.Path)
	assert.Zero(t, response.Cost)
}

func TestLeaderboard(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		f := newFixture(t, nil)
		w := f.do(t, http.MethodGet, "/leaderboard", nil, false)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("top", func(t *testing.T) {
		session := uuid.New()
		lb := &staticLeaderboard{entries: []dmn.LeaderboardEntry{
			{SessionID: session, AgentID: "a", Score: 1},
			{SessionID: session, AgentID: "b", Score: 1.5},
			{SessionID: session, AgentID: "c", Score: 3},
		}}
		f := newFixture(t, lb)

		w := f.do(t, http.MethodGet, "/leaderboard?limit=2", nil, false)
		require.Equal(t, http.StatusOK, w.Code)
		var response LeaderboardResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, int64(3), response.Total)
		require.Len(t, response.Entries, 2)
		assert.Equal(t, "b", response.Entries[1].AgentID)

		for _, limit := range []string{"0", "101", "ten"} {
			w = f.do(t, http.MethodGet, "/leaderboard?limit="+limit, nil, false)
			assert.Equal(t, http.StatusBadRequest, w.Code, limit)
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newFixture(t, &staticLeaderboard{err: errors.New("redis down")})
		w := f.do(t, http.MethodGet, "/leaderboard", nil, false)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
