package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	dmn "github.com/beka-birhanu/vinom-nav/domain"
	"github.com/beka-birhanu/vinom-nav/game/agent"
	"github.com/beka-birhanu/vinom-nav/game/grid"
	"github.com/beka-birhanu/vinom-nav/game/scenario"
	"github.com/beka-birhanu/vinom-nav/game/simulation"
	"github.com/beka-birhanu/vinom-nav/service/i"
	"github.com/google/uuid"
)

const (
	defaultTickInterval = 200 * time.Millisecond
	defaultMaxTicks     = 10000
	defaultRetention    = 5 * time.Minute
	persistTimeout      = 5 * time.Second
	leaderboardSize     = 100
)

var (
	ErrInvalidRequest = errors.New("invalid simulation request")
)

var _ i.SimulationManager = &SimulationManager{}

// session is one live simulation. mu serializes ticks and reads so a
// snapshot never sees a half-finished tick.
type session struct {
	id         uuid.UUID
	operatorID uuid.UUID
	name       string
	width      int
	height     int
	obstacles  []grid.Position
	autoRun    bool
	startedAt  time.Time

	mu       sync.Mutex
	sim      *simulation.Simulation
	finished bool
	report   *dmn.RunReport

	stop chan struct{}
	done chan struct{}
}

// SimulationManager runs simulation sessions, pacing auto-run sessions on a
// ticker and persisting a report for each finished one.
type SimulationManager struct {
	sessions     map[uuid.UUID]*session
	runRepo      i.RunRepo
	leaderboard  i.Leaderboard
	logger       i.Logger
	simLogger    simulation.Logger
	tickInterval time.Duration
	maxTicks     int
	retention    time.Duration
	limits       scenario.Limits
	sync.RWMutex
}

// SimulationManagerConfig wires a SimulationManager. RunRepo and Leaderboard are optional.
type SimulationManagerConfig struct {
	RunRepo      i.RunRepo
	Leaderboard  i.Leaderboard
	Logger       i.Logger
	SimLogger    simulation.Logger // receives agent events; defaults to Logger
	TickInterval time.Duration
	MaxTicks     int
	Retention    time.Duration    // how long a finished session stays readable
	Limits       *scenario.Limits // nil means scenario.DefaultLimits
}

// NewSimulationManager creates a manager with no sessions.
func NewSimulationManager(c SimulationManagerConfig) (*SimulationManager, error) {
	if c.Logger == nil {
		return nil, fmt.Errorf("%w: simulation manager needs a logger", ErrMissingDependency)
	}

	m := &SimulationManager{
		sessions:     make(map[uuid.UUID]*session),
		runRepo:      c.RunRepo,
		leaderboard:  c.Leaderboard,
		logger:       c.Logger,
		simLogger:    c.SimLogger,
		tickInterval: c.TickInterval,
		maxTicks:     c.MaxTicks,
		retention:    c.Retention,
		limits:       scenario.DefaultLimits(),
	}
	if c.Limits != nil {
		m.limits = *c.Limits
	}
	if m.simLogger == nil {
		m.simLogger = c.Logger
	}
	if m.tickInterval <= 0 {
		m.tickInterval = defaultTickInterval
	}
	if m.maxTicks <= 0 {
		m.maxTicks = defaultMaxTicks
	}
	if m.retention <= 0 {
		m.retention = defaultRetention
	}
	return m, nil
}

// Create builds the scenario and registers a session for it.
func (m *SimulationManager) Create(ctx context.Context, req dmn.SessionRequest) (uuid.UUID, error) {
	if req.Scenario == nil {
		return uuid.Nil, fmt.Errorf("%w: no scenario", ErrInvalidRequest)
	}
	if err := req.Scenario.CheckLimits(m.limits); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	sim, err := req.Scenario.Build(
		simulation.WithLogger(m.simLogger),
		simulation.WithParallel(req.Parallel),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	s := &session{
		operatorID: req.OperatorID,
		name:       req.Scenario.Name,
		width:      req.Scenario.Width,
		height:     req.Scenario.Height,
		obstacles:  sim.Grid().Obstacles(),
		autoRun:    req.AutoRun,
		startedAt:  time.Now().UTC(),
		sim:        sim,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}

	m.Lock()
	s.id = uuid.New()
	for {
		if _, ok := m.sessions[s.id]; !ok {
			break
		}
		s.id = uuid.New()
	}
	m.sessions[s.id] = s
	m.Unlock()

	if s.autoRun {
		go m.drive(s)
	} else {
		close(s.done)
	}

	m.logger.Info(fmt.Sprintf("started simulation %s with %d agents on a %dx%d grid", s.id, len(sim.Agents()), s.width, s.height))
	return s.id, nil
}

func (m *SimulationManager) session(id uuid.UUID) (*session, error) {
	m.RLock()
	defer m.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dmn.ErrSessionNotFound, id)
	}
	return s, nil
}

// drive ticks an auto-run session until it finishes or is stopped.
func (m *SimulationManager) drive(s *session) {
	defer close(s.done)

	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.finished {
				s.mu.Unlock()
				return
			}
			if err := s.sim.Tick(context.Background()); err != nil {
				m.logger.Error(fmt.Sprintf("ticking simulation %s: %v", s.id, err))
			}
			over := m.over(s)
			if over {
				m.finishLocked(s)
			}
			s.mu.Unlock()

			if over {
				m.persist(context.Background(), s)
				m.retire(s)
				return
			}
		}
	}
}

func (m *SimulationManager) over(s *session) bool {
	return s.sim.Done() || s.sim.Ticks() >= m.maxTicks
}

// finishLocked freezes the session and builds its report. Callers hold s.mu.
func (m *SimulationManager) finishLocked(s *session) {
	if s.finished {
		return
	}
	s.finished = true
	s.report = dmn.NewRunReport(dmn.RunReportConfig{
		ID:         s.id,
		OperatorID: s.operatorID,
		Scenario:   s.name,
		Width:      s.width,
		Height:     s.height,
		Snapshot:   s.sim.Snapshot(),
		StartedAt:  s.startedAt,
		FinishedAt: time.Now().UTC(),
	})
	m.logger.Info(fmt.Sprintf("simulation %s finished after %d ticks: %d/%d agents reached their goals",
		s.id, s.report.Ticks, s.report.Reached, len(s.report.Outcomes)))
}

// persist stores the report and ranks the finishers. Failures are logged, not returned.
// The caller's cancellation does not cut the writes short.
func (m *SimulationManager) persist(parent context.Context, s *session) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), persistTimeout)
	defer cancel()

	if m.runRepo != nil {
		if err := m.runRepo.Save(ctx, s.report); err != nil {
			m.logger.Error(fmt.Sprintf("saving report for simulation %s: %v", s.id, err))
		}
	}

	if m.leaderboard == nil {
		return
	}
	for _, outcome := range s.report.Outcomes {
		if outcome.Status != agent.StatusGoalReached.String() {
			continue
		}
		if err := m.leaderboard.Record(ctx, dmn.NewLeaderboardEntry(s.id, outcome)); err != nil {
			m.logger.Error(fmt.Sprintf("recording %s on the leaderboard: %v", outcome.AgentID, err))
		}
	}
	if m.leaderboard.Count(ctx) > leaderboardSize {
		if err := m.leaderboard.Trim(ctx, leaderboardSize); err != nil {
			m.logger.Warning(fmt.Sprintf("trimming leaderboard: %v", err))
		}
	}
}

// retire forgets a finished session once its retention period ends. Its
// report stays in the run repository.
func (m *SimulationManager) retire(s *session) {
	time.AfterFunc(m.retention, func() {
		m.Lock()
		evicted := m.sessions[s.id] == s
		if evicted {
			delete(m.sessions, s.id)
		}
		m.Unlock()

		if evicted {
			m.logger.Info(fmt.Sprintf("evicted finished simulation %s", s.id))
		}
	})
}

// Session returns the current state of a session.
func (m *SimulationManager) Session(id uuid.UUID) (*dmn.SessionInfo, error) {
	s, err := m.session(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return &dmn.SessionInfo{
		ID:         s.id,
		OperatorID: s.operatorID,
		Scenario:   s.name,
		Width:      s.width,
		Height:     s.height,
		Obstacles:  s.obstacles,
		AutoRun:    s.autoRun,
		Finished:   s.finished,
		StartedAt:  s.startedAt,
		Snapshot:   s.sim.Snapshot(),
	}, nil
}

// Sessions lists live session ids.
func (m *SimulationManager) Sessions() []uuid.UUID {
	m.RLock()
	defer m.RUnlock()
	ids := make([]uuid.UUID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Tick advances a session by one tick. Auto-run sessions may be ticked by
// hand as well; both paths share the session lock.
func (m *SimulationManager) Tick(ctx context.Context, id uuid.UUID) (simulation.Snapshot, error) {
	s, err := m.session(id)
	if err != nil {
		return simulation.Snapshot{}, err
	}

	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return simulation.Snapshot{}, fmt.Errorf("%w: %s", dmn.ErrSessionFinished, id)
	}
	if err := s.sim.Tick(ctx); err != nil {
		s.mu.Unlock()
		return simulation.Snapshot{}, err
	}
	snap := s.sim.Snapshot()
	over := m.over(s)
	if over {
		m.finishLocked(s)
	}
	s.mu.Unlock()

	if over {
		m.persist(ctx, s)
		m.retire(s)
	}
	return snap, nil
}

// Path plans an A* path for one agent and stores it on the agent.
func (m *SimulationManager) Path(id uuid.UUID, agentID string) ([]grid.Position, bool, error) {
	s, err := m.session(id)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.PlanPath(agentID)
}

// Stop halts the session, persists its report if it had not finished on its own and forgets it.
// Once the session is found the report is always persisted, even if ctx is already done.
func (m *SimulationManager) Stop(ctx context.Context, id uuid.UUID) (*dmn.RunReport, error) {
	m.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", dmn.ErrSessionNotFound, id)
	}

	// drive returns within one tick and its own persist.
	close(s.stop)
	<-s.done

	s.mu.Lock()
	alreadyFinished := s.finished
	m.finishLocked(s)
	report := s.report
	s.mu.Unlock()

	if !alreadyFinished {
		m.persist(ctx, s)
	}
	m.logger.Info(fmt.Sprintf("stopped simulation %s", id))
	return report, nil
}

// StopAll stops every live session.
func (m *SimulationManager) StopAll() {
	for _, id := range m.Sessions() {
		if _, err := m.Stop(context.Background(), id); err != nil && !errors.Is(err, dmn.ErrSessionNotFound) {
			m.logger.Error(fmt.Sprintf("stopping simulation %s: %v", id, err))
		}
	}
}
