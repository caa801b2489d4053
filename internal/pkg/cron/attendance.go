package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DayReconciler re-derives the attendance records of every employee active on date.
type DayReconciler interface {
	ReconcileDay(ctx context.Context, date time.Time) (int, error)
}

// AttendanceJobs closes out each day's attendance once the day is over.
type AttendanceJobs struct {
	reconciler DayReconciler
	loc        *time.Location
	runHour    int
	now        func() time.Time

	mu         sync.Mutex
	lastRunDay string
}

// NewAttendanceJobs reconciles the previous day once the local clock reaches runHour.
func NewAttendanceJobs(reconciler DayReconciler, loc *time.Location, runHour int) *AttendanceJobs {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceJobs{
		reconciler: reconciler,
		loc:        loc,
		runHour:    runHour,
		now:        time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(Job{
		Name:       "reconcile_previous_day",
		Interval:   15 * time.Minute,
		RunOnStart: true,
		Fn:         j.ReconcilePreviousDay,
	})
}

// ReconcilePreviousDay runs at most once per local day, at or after runHour.
func (j *AttendanceJobs) ReconcilePreviousDay(ctx context.Context) error {
	now := j.now().In(j.loc)
	if now.Hour() < j.runHour {
		return nil
	}

	today := now.Format("2006-01-02")
	j.mu.Lock()
	if j.lastRunDay == today {
		j.mu.Unlock()
		return nil
	}
	j.mu.Unlock()

	y, m, d := now.AddDate(0, 0, -1).Date()
	yesterday := time.Date(y, m, d, 0, 0, 0, 0, j.loc)

	slog.Info("Cron: Starting attendance reconciliation", "date", yesterday.Format("2006-01-02"))

	count, err := j.reconciler.ReconcileDay(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("failed to reconcile %s: %w", yesterday.Format("2006-01-02"), err)
	}

	j.mu.Lock()
	j.lastRunDay = today
	j.mu.Unlock()

	slog.Info("Cron: Reconciled attendance", "date", yesterday.Format("2006-01-02"), "count", count)
	return nil
}
