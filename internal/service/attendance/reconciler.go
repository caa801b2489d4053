package attendance

import (
	"math"
	"sort"
	"time"

	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/worksession"
)

// DefaultDiscrepancyTolerance is used when no tolerance is configured.
const DefaultDiscrepancyTolerance = 2 * time.Minute

// basePrecedence orders the origins that may own a whole record.
// AdminOverride is layered on top field by field.
var basePrecedence = []attendance.Source{
	attendance.SourceMonitoring,
	attendance.SourceStartDay,
	attendance.SourceBiometric,
}

// observation is what one origin reported for the day.
type observation struct {
	source attendance.Source
	start  *time.Time
	end    *time.Time
}

// Reconciler merges a day's work session and raw events into one record.
type Reconciler struct {
	Tolerance time.Duration
}

func NewReconciler(tolerance time.Duration) Reconciler {
	if tolerance <= 0 {
		tolerance = DefaultDiscrepancyTolerance
	}
	return Reconciler{Tolerance: tolerance}
}

// Reconcile derives the record for (employeeID, date). It returns nil when no
// origin reports a start, which means the day has not been started.
//
// A monitoring session owns the record when present, then StartDay events,
// then Biometric ones. AdminOverride start/end events replace the matching
// field of whichever origin owns the record.
func (r Reconciler) Reconcile(employeeID string, date time.Time, session *worksession.WorkSession, events []attendance.AttendanceEvent, now time.Time) *attendance.AttendanceRecord {
	observations := collect(session, events)

	var base *observation
	for _, src := range basePrecedence {
		if o, ok := observations[src]; ok && o.start != nil {
			base = o
			break
		}
	}

	record := attendance.AttendanceRecord{
		EmployeeID: employeeID,
		Date:       date,
		Presence:   attendance.PresencePresent,
	}
	if base != nil {
		record.StartDayTime = base.start
		record.EndDayTime = base.end
		record.Source = base.source
	}

	override, overridden := observations[attendance.SourceAdminOverride]
	if overridden {
		if override.start != nil {
			record.StartDayTime = override.start
			record.Source = attendance.SourceAdminOverride
		}
		if override.end != nil && record.StartDayTime != nil {
			record.EndDayTime = override.end
			record.Source = attendance.SourceAdminOverride
		}
	}

	if record.StartDayTime == nil {
		return nil
	}
	if record.EndDayTime != nil && record.EndDayTime.Before(*record.StartDayTime) {
		record.EndDayTime = nil
	}

	record.Status = attendance.RecordStatusActive
	if record.EndDayTime != nil {
		record.Status = attendance.RecordStatusCompleted
	}

	if record.Source == attendance.SourceMonitoring && session != nil {
		record.WorkedMinutes = round2(session.ActualWorkDuration(now))
	} else {
		end := now
		if record.EndDayTime != nil {
			end = *record.EndDayTime
		}
		record.WorkedMinutes = round2(math.Max(0, end.Sub(*record.StartDayTime).Minutes()))
	}

	disagreement := r.maxDisagreement(observations)
	record.DiscrepancyMinutes = round2(disagreement.Minutes())
	record.HasDiscrepancy = disagreement > r.Tolerance

	return &record
}

// maxDisagreement is the largest start-vs-start or end-vs-end gap between any
// two non-override origins.
func (r Reconciler) maxDisagreement(observations map[attendance.Source]*observation) time.Duration {
	var starts, ends []time.Time
	for _, src := range basePrecedence {
		o, ok := observations[src]
		if !ok {
			continue
		}
		if o.start != nil {
			starts = append(starts, *o.start)
		}
		if o.end != nil {
			ends = append(ends, *o.end)
		}
	}
	return max(spread(starts), spread(ends))
}

func spread(times []time.Time) time.Duration {
	if len(times) < 2 {
		return 0
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return times[len(times)-1].Sub(times[0])
}

// collect folds raw events into one observation per origin. StartDay and
// Biometric keep the earliest start and latest end; AdminOverride keeps the
// most recently recorded value of each kind.
func collect(session *worksession.WorkSession, events []attendance.AttendanceEvent) map[attendance.Source]*observation {
	observations := make(map[attendance.Source]*observation)

	if session != nil {
		start := session.StartTime
		observations[attendance.SourceMonitoring] = &observation{
			source: attendance.SourceMonitoring,
			start:  &start,
			end:    session.EndTime,
		}
	}

	overrideRecorded := map[attendance.EventKind]time.Time{}

	for _, e := range events {
		o, ok := observations[e.Source]
		if !ok {
			o = &observation{source: e.Source}
			observations[e.Source] = o
		}
		at := e.OccurredAt

		if e.Source == attendance.SourceAdminOverride {
			if prev, seen := overrideRecorded[e.Kind]; seen && e.CreatedAt.Before(prev) {
				continue
			}
			overrideRecorded[e.Kind] = e.CreatedAt
			if e.Kind == attendance.EventKindStart {
				o.start = &at
			} else {
				o.end = &at
			}
			continue
		}

		switch e.Kind {
		case attendance.EventKindStart:
			if o.start == nil || at.Before(*o.start) {
				o.start = &at
			}
		case attendance.EventKindEnd:
			if o.end == nil || at.After(*o.end) {
				o.end = &at
			}
		}
	}

	return observations
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
