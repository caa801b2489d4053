package attendance

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/worksession-backend-go/internal/config"
	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/worksession"
	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format("2006-01-02")
}

type memoryStore struct {
	mu       sync.Mutex
	records  map[string]attendance.AttendanceRecord
	events   []attendance.AttendanceEvent
	sessions map[string]worksession.WorkSession

	failBatch error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		records:  map[string]attendance.AttendanceRecord{},
		sessions: map[string]worksession.WorkSession{},
	}
}

type recordRepo struct{ *memoryStore }

func (r recordRepo) Upsert(ctx context.Context, rec attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.UpdatedAt = time.Now()
	r.records[dayKey(rec.EmployeeID, rec.Date)] = rec
	return rec, nil
}

func (r recordRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[dayKey(employeeID, date)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r recordRepo) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.AttendanceRecord
	for _, rec := range r.records {
		if rec.EmployeeID == employeeID && !rec.Date.Before(from) && !rec.Date.After(to) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type eventRepo struct{ *memoryStore }

func (r eventRepo) Create(ctx context.Context, e attendance.AttendanceEvent) (attendance.AttendanceEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.CreatedAt = time.Now()
	r.events = append(r.events, e)
	return e, nil
}

func (r eventRepo) CreateBatch(ctx context.Context, events []attendance.AttendanceEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failBatch != nil {
		return r.failBatch
	}
	r.events = append(r.events, events...)
	return nil
}

func (r eventRepo) ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]attendance.AttendanceEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.AttendanceEvent
	for _, e := range r.events {
		if e.EmployeeID == employeeID && e.Date.Equal(date) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r eventRepo) ListEmployeeIDsByDate(ctx context.Context, date time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	var ids []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, e := range r.events {
		if e.Date.Equal(date) {
			add(e.EmployeeID)
		}
	}
	for _, s := range r.sessions {
		if s.Date.Equal(date) {
			add(s.EmployeeID)
		}
	}
	return ids, nil
}

// sessionRepo is a read-only view for the reconciler.
type sessionRepo struct{ *memoryStore }

func (r sessionRepo) Create(ctx context.Context, s worksession.WorkSession) (worksession.WorkSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[dayKey(s.EmployeeID, s.Date)] = s
	return s, nil
}

func (r sessionRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*worksession.WorkSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[dayKey(employeeID, date)]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r sessionRepo) GetOpenSession(ctx context.Context, employeeID string) (*worksession.WorkSession, error) {
	return nil, nil
}

func (r sessionRepo) Update(ctx context.Context, s worksession.WorkSession) error {
	_, err := r.Create(ctx, s)
	return err
}

func (r sessionRepo) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]worksession.WorkSession, error) {
	return nil, nil
}

// storeTransactor rolls the whole store back when fn fails.
type storeTransactor struct{ *memoryStore }

func (t storeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	records := make(map[string]attendance.AttendanceRecord, len(t.records))
	for k, v := range t.records {
		records[k] = v
	}
	events := append([]attendance.AttendanceEvent(nil), t.events...)
	t.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.mu.Lock()
		t.records, t.events = records, events
		t.mu.Unlock()
		return err
	}
	return nil
}

func newTestService(t *testing.T) (*AttendanceServiceImpl, *memoryStore) {
	t.Helper()
	store := newMemoryStore()
	cfg := &config.Config{
		App:        config.AppConfig{Timezone: "UTC"},
		Attendance: config.AttendanceConfig{DiscrepancyTolerance: 2 * time.Minute},
	}
	svc := NewAttendanceService(storeTransactor{store}, recordRepo{store}, eventRepo{store}, sessionRepo{store}, cfg)
	svc.now = func() time.Time { return noonNow }
	return svc, store
}

func TestRecordEvent_DerivesRecord(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.RecordEvent(ctx, attendance.RecordEventRequest{
		EmployeeID: "emp-1",
		Kind:       "start",
		OccurredAt: "2025-03-10T09:00:00Z",
		Source:     "StartDay",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Event.ID)
	assert.Equal(t, "2025-03-10", resp.Event.Date)
	require.NotNil(t, resp.Record)
	assert.Equal(t, "active", resp.Record.Status)
	assert.Equal(t, "StartDay", resp.Record.Source)

	today, err := svc.GetDailyRecord(ctx, "emp-1", "")
	require.NoError(t, err)
	require.NotNil(t, today)
	assert.Equal(t, resp.Record.ID, today.ID)

	resp, err = svc.RecordEvent(ctx, attendance.RecordEventRequest{
		EmployeeID: "emp-1",
		Kind:       "end",
		OccurredAt: "2025-03-10T17:00:00Z",
		Source:     "StartDay",
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Record.Status)
	assert.Equal(t, today.ID, resp.Record.ID)
	assert.Equal(t, 480.0, resp.Record.WorkedMinutes)
}

func TestRecordEvent_Validation(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.RecordEvent(context.Background(), attendance.RecordEventRequest{
		EmployeeID: "emp-1",
		Kind:       "lunch",
		OccurredAt: "yesterday",
		Source:     "Monitoring",
	})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "kind")
	assert.Contains(t, fields, "occurred_at")
	assert.Contains(t, fields, "source")
	assert.Empty(t, store.events)
}

func TestImportEvents(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	resp, err := svc.ImportEvents(ctx, attendance.ImportEventsRequest{
		Events: []attendance.RecordEventRequest{
			{EmployeeID: "emp-1", Kind: "start", OccurredAt: "2025-03-10T09:00:00Z"},
			{EmployeeID: "emp-1", Kind: "end", OccurredAt: "2025-03-10T17:00:00Z"},
			{EmployeeID: "emp-2", Kind: "start", OccurredAt: "2025-03-10T08:55:00Z"},
			{EmployeeID: "emp-3", Kind: "end", OccurredAt: "2025-03-10T17:00:00Z"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Imported)
	assert.Equal(t, 2, resp.Reconciled)
	assert.Len(t, store.records, 2)

	record, err := svc.GetDailyRecord(ctx, "emp-1", "2025-03-10")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "Biometric", record.Source)
	assert.Equal(t, "completed", record.Status)
}

func TestImportEvents_Atomic(t *testing.T) {
	svc, store := newTestService(t)
	store.failBatch = errors.New("disk full")

	_, err := svc.ImportEvents(context.Background(), attendance.ImportEventsRequest{
		Events: []attendance.RecordEventRequest{
			{EmployeeID: "emp-1", Kind: "start", OccurredAt: "2025-03-10T09:00:00Z"},
		},
	})
	require.Error(t, err)
	assert.Empty(t, store.events)
	assert.Empty(t, store.records)
}

func TestImportEvents_RejectsWholeBatchOnInvalidEvent(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.ImportEvents(context.Background(), attendance.ImportEventsRequest{
		Events: []attendance.RecordEventRequest{
			{EmployeeID: "emp-1", Kind: "start", OccurredAt: "2025-03-10T09:00:00Z"},
			{EmployeeID: "", Kind: "start", OccurredAt: "2025-03-10T09:00:00Z"},
		},
	})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "events[1].employee_id")
	assert.Empty(t, store.events)

	_, err = svc.ImportEvents(context.Background(), attendance.ImportEventsRequest{})
	assert.ErrorIs(t, err, attendance.ErrNoEventsToImport)
}

func TestSyncSession_MonitoringOverridesEvents(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.RecordEvent(ctx, attendance.RecordEventRequest{
		EmployeeID: "emp-1", Kind: "start", OccurredAt: "2025-03-10T09:10:00Z", Source: "StartDay",
	})
	require.NoError(t, err)

	session := worksession.NewWorkSession("emp-1", nineAM, worksession.WorkLocationOffice, 8, nil)
	store.sessions[dayKey("emp-1", day)] = session
	require.NoError(t, svc.SyncSession(ctx, session))

	record, err := svc.GetDailyRecord(ctx, "emp-1", "2025-03-10")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "Monitoring", record.Source)
	assert.True(t, record.HasDiscrepancy)
	assert.Equal(t, 10.0, record.DiscrepancyMinutes)
	assert.Len(t, store.records, 1)
}

func TestReconcileAndReconcileDay(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	session := worksession.NewWorkSession("emp-1", nineAM, worksession.WorkLocationHome, 8, nil)
	store.sessions[dayKey("emp-1", day)] = session
	store.events = append(store.events, event(attendance.SourceBiometric, attendance.EventKindStart, nineAM))
	store.events[0].EmployeeID = "emp-2"

	record, err := svc.Reconcile(ctx, attendance.ReconcileRequest{EmployeeID: "emp-1", Date: "2025-03-10"})
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "Monitoring", record.Source)

	written, err := svc.ReconcileDay(ctx, day.Add(23*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	records, err := svc.ListRecords(ctx, attendance.AttendanceFilter{EmployeeID: "emp-2"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Biometric", records[0].Source)

	_, err = svc.Reconcile(ctx, attendance.ReconcileRequest{EmployeeID: "emp-1", Date: "10/03/2025"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}
