package service

import (
	"context"
	"sort"
	"sync"
	"time"

	dmn "github.com/beka-birhanu/vinom-nav/domain"
	"github.com/google/uuid"
)

type fakeLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *fakeLogger) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+msg)
}

func (l *fakeLogger) Debug(msg string)   {}
func (l *fakeLogger) Info(msg string)    { l.add("INFO", msg) }
func (l *fakeLogger) Warning(msg string) { l.add("WARN", msg) }
func (l *fakeLogger) Error(msg string)   { l.add("ERROR", msg) }

type fakeOperatorRepo struct {
	mu        sync.Mutex
	operators map[uuid.UUID]*dmn.Operator
}

func newFakeOperatorRepo() *fakeOperatorRepo {
	return &fakeOperatorRepo{operators: make(map[uuid.UUID]*dmn.Operator)}
}

func (r *fakeOperatorRepo) Save(operator *dmn.Operator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.operators[operator.ID] = operator
	return nil
}

func (r *fakeOperatorRepo) ByID(id uuid.UUID) (*dmn.Operator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if op, ok := r.operators[id]; ok {
		return op, nil
	}
	return nil, dmn.ErrOperatorNotFound
}

func (r *fakeOperatorRepo) ByUsername(username string) (*dmn.Operator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, op := range r.operators {
		if op.Username == username {
			return op, nil
		}
	}
	return nil, dmn.ErrOperatorNotFound
}

type fakeRunRepo struct {
	mu      sync.Mutex
	reports map[uuid.UUID]*dmn.RunReport
	saves   int
}

func newFakeRunRepo() *fakeRunRepo {
	return &fakeRunRepo{reports: make(map[uuid.UUID]*dmn.RunReport)}
}

func (r *fakeRunRepo) Save(_ context.Context, report *dmn.RunReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[report.ID] = report
	r.saves++
	return nil
}

func (r *fakeRunRepo) ByID(_ context.Context, id uuid.UUID) (*dmn.RunReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if report, ok := r.reports[id]; ok {
		return report, nil
	}
	return nil, dmn.ErrRunNotFound
}

func (r *fakeRunRepo) Recent(_ context.Context, limit int64) ([]*dmn.RunReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*dmn.RunReport
	for _, report := range r.reports {
		out = append(out, report)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].FinishedAt.After(out[b].FinishedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRunRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

type fakeLeaderboard struct {
	mu      sync.Mutex
	entries []dmn.LeaderboardEntry
}

func (l *fakeLeaderboard) Record(_ context.Context, entry dmn.LeaderboardEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	sort.SliceStable(l.entries, func(a, b int) bool { return l.entries[a].Score < l.entries[b].Score })
	return nil
}

func (l *fakeLeaderboard) Top(_ context.Context, n int64) ([]dmn.LeaderboardEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if int64(len(l.entries)) < n {
		n = int64(len(l.entries))
	}
	return append([]dmn.LeaderboardEntry(nil), l.entries[:n]...), nil
}

func (l *fakeLeaderboard) Count(context.Context) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return int64(len(l.entries))
}

func (l *fakeLeaderboard) Trim(_ context.Context, keep int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if int64(len(l.entries)) > keep {
		l.entries = l.entries[:keep]
	}
	return nil
}

type fakeTokenizer struct{}

func (fakeTokenizer) Generate(claims map[string]interface{}, _ time.Duration) (string, error) {
	return "token-for-" + claims["username"].(string), nil
}

func (fakeTokenizer) Decode(string) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}
