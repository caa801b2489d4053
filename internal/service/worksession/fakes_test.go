package worksession

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/aim"
	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/worksession"
	"github.com/shopspring/decimal"
)

func sessionKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format("2006-01-02")
}

type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]worksession.WorkSession
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: make(map[string]worksession.WorkSession)}
}

func (r *memorySessionRepo) Create(ctx context.Context, s worksession.WorkSession) (worksession.WorkSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := sessionKey(s.EmployeeID, s.Date)
	if _, ok := r.sessions[k]; ok {
		return worksession.WorkSession{}, worksession.ErrDayAlreadyStarted
	}
	s.CreatedAt = s.StartTime
	s.UpdatedAt = s.StartTime
	r.sessions[k] = s
	return s, nil
}

func (r *memorySessionRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*worksession.WorkSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionKey(employeeID, date)]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *memorySessionRepo) GetOpenSession(ctx context.Context, employeeID string) (*worksession.WorkSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *worksession.WorkSession
	for _, s := range r.sessions {
		if s.EmployeeID != employeeID || !s.IsOpen() {
			continue
		}
		if latest == nil || s.StartTime.After(latest.StartTime) {
			latest = &s
		}
	}
	return latest, nil
}

func (r *memorySessionRepo) Update(ctx context.Context, s worksession.WorkSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := sessionKey(s.EmployeeID, s.Date)
	if _, ok := r.sessions[k]; !ok {
		return worksession.ErrSessionNotFound
	}
	r.sessions[k] = s
	return nil
}

func (r *memorySessionRepo) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]worksession.WorkSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []worksession.WorkSession
	for _, s := range r.sessions {
		if s.EmployeeID == employeeID && !s.Date.Before(from) && !s.Date.After(to) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// snapshotTransactor restores the session store when fn fails.
type snapshotTransactor struct {
	repo *memorySessionRepo
}

func (t snapshotTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.repo.mu.Lock()
	saved := maps.Clone(t.repo.sessions)
	t.repo.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.repo.mu.Lock()
		t.repo.sessions = saved
		t.repo.mu.Unlock()
		return err
	}
	return nil
}

type memoryAimRepo struct {
	aims map[string]aim.DailyAim
}

func (r *memoryAimRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*aim.DailyAim, error) {
	a, ok := r.aims[sessionKey(employeeID, date)]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

type recordingAttendance struct {
	synced []worksession.WorkSession
	err    error
}

func (r *recordingAttendance) SyncSession(ctx context.Context, s worksession.WorkSession) error {
	if r.err != nil {
		return r.err
	}
	r.synced = append(r.synced, s)
	return nil
}

type hourlyEstimator struct {
	rate decimal.Decimal
}

func (e hourlyEstimator) EstimateEarnings(ctx context.Context, employeeID string, at time.Time, hours float64) (decimal.Decimal, string, error) {
	return e.rate.Mul(decimal.NewFromFloat(hours)).Round(2), "IDR", nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
