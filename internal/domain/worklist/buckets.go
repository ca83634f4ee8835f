package worklist

import (
	"fmt"
	"time"
)

// Bucket is one day slot in the Scheduled column: yesterday ("Postponed"),
// today, and the next five days.
type Bucket struct {
	Key   string      `json:"key"`
	Label string      `json:"label"`
	Date  time.Time   `json:"date"`
	Items []*WorkItem `json:"items"`
}

// truncateDay drops the time-of-day component in UTC. All day comparisons on
// the board go through this so boundary behavior is timezone independent.
func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// BucketWindow builds the empty 7-day bucket layout relative to now.
func BucketWindow(now time.Time) []*Bucket {
	today := truncateDay(now)
	buckets := make([]*Bucket, 0, 7)
	for i := -1; i <= 5; i++ {
		d := today.AddDate(0, 0, i)
		var label string
		switch i {
		case -1:
			label = "Postponed"
		case 0:
			label = fmt.Sprintf("Today (%s)", d.Weekday())
		default:
			label = fmt.Sprintf("%s, %s", d.Weekday(), d.Format("02/01/2006"))
		}
		buckets = append(buckets, &Bucket{
			Key:   d.Format(time.RFC3339),
			Label: label,
			Date:  d,
		})
	}
	return buckets
}

// AssignBuckets distributes Scheduled items into the window by their
// dateScheduled day. Items dated outside the window land in no bucket; they
// stay in the Scheduled stage data but are not rendered.
func AssignBuckets(buckets []*Bucket, items []*WorkItem) {
	byDay := make(map[time.Time]*Bucket, len(buckets))
	for _, b := range buckets {
		byDay[b.Date] = b
	}
	for _, it := range items {
		if it.Stage.Normalize() != StageScheduled || it.DateScheduled == nil {
			continue
		}
		if b, ok := byDay[truncateDay(*it.DateScheduled)]; ok {
			b.Items = append(b.Items, it)
		}
	}
}

// Board is the full worklist layout: the three plain columns plus the
// bucketed Scheduled column.
type Board struct {
	Pending      []*WorkItem `json:"pending"`
	OnEvaluation []*WorkItem `json:"onEvaluation"`
	Done         []*WorkItem `json:"done"`
	Scheduled    []*Bucket   `json:"scheduled"`
}

// BuildBoard lays out items into columns, normalizing unknown stages to
// Pending and bucketing the Scheduled column against now.
func BuildBoard(items []*WorkItem, now time.Time) *Board {
	b := &Board{Scheduled: BucketWindow(now)}
	var scheduled []*WorkItem
	for _, it := range items {
		switch it.Stage.Normalize() {
		case StagePending:
			b.Pending = append(b.Pending, it)
		case StageOnEvaluation:
			b.OnEvaluation = append(b.OnEvaluation, it)
		case StageDone:
			b.Done = append(b.Done, it)
		case StageScheduled:
			scheduled = append(scheduled, it)
		}
	}
	AssignBuckets(b.Scheduled, scheduled)
	return b
}

// StaleScheduled returns the items whose dateScheduled fell off the visible
// window: strictly before yesterday. Items already pinned to yesterday are
// excluded so repeated passes write nothing.
func StaleScheduled(items []*WorkItem, now time.Time) []*WorkItem {
	yesterday := truncateDay(now).AddDate(0, 0, -1)
	var stale []*WorkItem
	for _, it := range items {
		if it.Stage.Normalize() != StageScheduled || it.DateScheduled == nil {
			continue
		}
		if truncateDay(*it.DateScheduled).Before(yesterday) {
			stale = append(stale, it)
		}
	}
	return stale
}
