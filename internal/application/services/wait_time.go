package services

import (
	"time"

	"github.com/zatekoja/patientqueue/internal/domain/criteria"
	"github.com/zatekoja/patientqueue/internal/domain/entities"
)

// WaitWindow decides which entries belong to a day when averaging wait times
type WaitWindow string

const (
	// WaitWindowStarted counts entries that joined the queue during the day and
	// either left the same day or are still open.
	WaitWindowStarted WaitWindow = "started"

	// WaitWindowOverlap counts every entry present at some point of the day,
	// including ones carried over open from earlier days.
	WaitWindowOverlap WaitWindow = "overlap"
)

// DayBounds returns [start, end) of the calendar day of date in loc. The
// year, month and day of date are used as given; end is the next local
// midnight, so DST days are 23 or 25 hours long.
func DayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// waitTimeFilter selects the non-voided entries of a queue that count for the day
func waitTimeFilter(queueID int64, status *string, start, end time.Time, window WaitWindow) criteria.Predicate {
	preds := []criteria.Predicate{
		criteria.Eq(entities.QueueEntryFieldQueueID, queueID),
		criteria.Eq(entities.QueueEntryFieldVoided, false),
	}

	switch window {
	case WaitWindowOverlap:
		preds = append(preds,
			criteria.Lt(entities.QueueEntryFieldStartedAt, end),
			criteria.Or(
				criteria.Gte(entities.QueueEntryFieldEndedAt, start),
				criteria.IsNull(entities.QueueEntryFieldEndedAt),
			),
		)
	default:
		preds = append(preds,
			criteria.InRange(entities.QueueEntryFieldStartedAt, start, end),
			criteria.Or(
				criteria.InRange(entities.QueueEntryFieldEndedAt, start, end),
				criteria.IsNull(entities.QueueEntryFieldEndedAt),
			),
		)
	}

	if status != nil {
		preds = append(preds, criteria.Eq(entities.QueueEntryFieldStatus, *status))
	}
	return criteria.And(preds...)
}

// averageWaitMinutes is the mean of the truncated per-entry waits, 0 for no entries
func averageWaitMinutes(entries []*entities.QueueEntry, now time.Time) float64 {
	if len(entries) == 0 {
		return 0.0
	}
	var total int64
	for _, e := range entries {
		total += e.WaitMinutes(now)
	}
	return float64(total) / float64(len(entries))
}
