package simulationapi

import (
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/beka-birhanu/vinom-nav/api/identity"
	dmn "github.com/beka-birhanu/vinom-nav/domain"
	"github.com/beka-birhanu/vinom-nav/game/maze"
	"github.com/beka-birhanu/vinom-nav/game/scenario"
	"github.com/beka-birhanu/vinom-nav/game/simulation"
	"github.com/beka-birhanu/vinom-nav/service"
	"github.com/beka-birhanu/vinom-nav/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

var errNoScenario = errors.New("either scenario or generate is required")

// SimulationController manages simulation sessions and serves their results.
type SimulationController struct {
	manager     i.SimulationManager
	leaderboard i.Leaderboard
	runs        i.RunRepo
}

// NewSimulationController initializes a SimulationController. The leaderboard
// and run repository are optional; their routes answer 503 without them.
func NewSimulationController(m i.SimulationManager, l i.Leaderboard, runs i.RunRepo) (*SimulationController, error) {
	if m == nil {
		return nil, errors.New("simulation controller needs a simulation manager")
	}
	return &SimulationController{manager: m, leaderboard: l, runs: runs}, nil
}

// RegisterPublic registers read-only routes.
func (sc *SimulationController) RegisterPublic(route *gin.RouterGroup) {
	simulations := route.Group("/simulations")
	{
		simulations.GET("", sc.list)
		simulations.GET("/:ID", sc.session)
	}
	route.GET("/leaderboard", sc.topFinishers)

	runs := route.Group("/runs")
	{
		runs.GET("", sc.recentRuns)
		runs.GET("/:ID", sc.run)
	}
}

// RegisterProtected registers routes that change sessions.
func (sc *SimulationController) RegisterProtected(route *gin.RouterGroup) {
	simulations := route.Group("/simulations")
	{
		simulations.POST("", sc.create)
		simulations.POST("/:ID/tick", sc.tick)
		simulations.DELETE("/:ID", sc.stop)
		simulations.GET("/:ID/agents/:agentID/path", sc.path)
	}
}

// statusFor maps service and game errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dmn.ErrSessionNotFound),
		errors.Is(err, dmn.ErrRunNotFound),
		errors.Is(err, simulation.ErrAgentNotFound):
		return http.StatusNotFound
	case errors.Is(err, dmn.ErrSessionFinished):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, scenario.ErrInvalidScenario),
		errors.Is(err, scenario.ErrGenerationFailed),
		errors.Is(err, maze.ErrInvalidDimensions),
		errors.Is(err, errNoScenario):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// listLimit reads the optional limit query parameter.
func listLimit(ctx *gin.Context) (int64, bool) {
	raw := ctx.Query("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 || n > maxListLimit {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return 0, false
	}
	return n, true
}

func abortWithError(ctx *gin.Context, err error) {
	ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func pathID(ctx *gin.Context) (uuid.UUID, bool) {
	ID, err := uuid.Parse(ctx.Params.ByName("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return ID, true
}

// buildScenario picks the explicit scenario or generates one.
func buildScenario(request *CreateSimulationRequest) (*scenario.Scenario, error) {
	if request.Scenario != nil {
		return request.Scenario, nil
	}
	g := request.Generate
	if g == nil {
		return nil, errNoScenario
	}

	seed := g.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	var (
		sc  *scenario.Scenario
		err error
	)
	if g.Maze {
		m, mazeErr := maze.New(g.Width, g.Height, rng)
		if mazeErr != nil {
			return nil, mazeErr
		}
		sc, err = scenario.FromMaze(rng, m, g.Agents)
	} else {
		sc, err = scenario.Generate(rng, scenario.GeneratorConfig{
			Width:            g.Width,
			Height:           g.Height,
			Obstacles:        g.Obstacles,
			Agents:           g.Agents,
			RequireReachable: g.RequireReachable,
		})
	}
	if err != nil {
		return nil, err
	}
	sc.Name = "generated-" + strconv.FormatInt(seed, 10)
	sc.Seed = seed
	return sc, nil
}

// create starts a simulation session.
func (sc *SimulationController) create(ctx *gin.Context) {
	var request CreateSimulationRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scn, err := buildScenario(&request)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ID, err := sc.manager.Create(ctx, dmn.SessionRequest{
		OperatorID: identity.OperatorID(ctx),
		Scenario:   scn,
		AutoRun:    request.AutoRun,
		Parallel:   request.Parallel,
	})
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, &CreateSimulationResponse{ID: ID.String()})
}

// list returns live session ids.
func (sc *SimulationController) list(ctx *gin.Context) {
	ids := sc.manager.Sessions()
	response := &SessionListResponse{IDs: make([]string, 0, len(ids))}
	for _, id := range ids {
		response.IDs = append(response.IDs, id.String())
	}
	ctx.JSON(http.StatusOK, response)
}

// session returns one session's state.
func (sc *SimulationController) session(ctx *gin.Context) {
	ID, ok := pathID(ctx)
	if !ok {
		return
	}

	info, err := sc.manager.Session(ID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, info)
}

// tick advances a session by one tick.
func (sc *SimulationController) tick(ctx *gin.Context) {
	ID, ok := pathID(ctx)
	if !ok {
		return
	}

	snap, err := sc.manager.Tick(ctx, ID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, snap)
}

// stop ends a session and returns its report.
func (sc *SimulationController) stop(ctx *gin.Context) {
	ID, ok := pathID(ctx)
	if !ok {
		return
	}

	report, err := sc.manager.Stop(ctx, ID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, report)
}

// path plans an A* path for one agent.
func (sc *SimulationController) path(ctx *gin.Context) {
	ID, ok := pathID(ctx)
	if !ok {
		return
	}
	agentID := ctx.Params.ByName("agentID")

	path, reachable, err := sc.manager.Path(ID, agentID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	response := &PathResponse{AgentID: agentID, Reachable: reachable, Path: path}
	if reachable {
		response.Cost = len(path) - 1
	}
	ctx.JSON(http.StatusOK, response)
}

// topFinishers returns the best leaderboard entries.
func (sc *SimulationController) topFinishers(ctx *gin.Context) {
	if sc.leaderboard == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "leaderboard disabled"})
		return
	}

	limit, ok := listLimit(ctx)
	if !ok {
		return
	}

	entries, err := sc.leaderboard.Top(ctx, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not read leaderboard"})
		return
	}
	ctx.JSON(http.StatusOK, &LeaderboardResponse{Entries: entries, Total: sc.leaderboard.Count(ctx)})
}

// recentRuns lists the newest run reports.
func (sc *SimulationController) recentRuns(ctx *gin.Context) {
	if sc.runs == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history disabled"})
		return
	}
	limit, ok := listLimit(ctx)
	if !ok {
		return
	}

	reports, err := sc.runs.Recent(ctx, limit)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	if reports == nil {
		reports = []*dmn.RunReport{}
	}
	ctx.JSON(http.StatusOK, reports)
}

// run returns one run report.
func (sc *SimulationController) run(ctx *gin.Context) {
	if sc.runs == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history disabled"})
		return
	}
	ID, ok := pathID(ctx)
	if !ok {
		return
	}

	report, err := sc.runs.ByID(ctx, ID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, report)
}
