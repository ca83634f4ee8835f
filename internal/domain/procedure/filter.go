package procedure

import (
	"fmt"
	"strings"
	"time"
)

// RangeKind names a date-range preset resolved against today.
type RangeKind string

const (
	RangeAll          RangeKind = "all"
	RangeToday        RangeKind = "today"
	RangeYesterday    RangeKind = "yesterday"
	RangeLast7        RangeKind = "last7"
	RangeCurrentMonth RangeKind = "currentMonth"
	RangeLastMonth    RangeKind = "lastMonth"
	RangeLastYear     RangeKind = "lastYear"
	RangeCustom       RangeKind = "custom"
)

// DateRange is the date predicate of a filter. Custom ranges carry explicit
// bounds; all other kinds resolve relative to now.
type DateRange struct {
	Kind RangeKind  `json:"kind"`
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// truncateDay drops the time-of-day component in UTC. Every day comparison in
// the pipeline goes through this so range boundaries don't shift with the
// server timezone.
func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Resolve returns the inclusive [from, to] day bounds, or ok=false when the
// range passes everything (kind "all", or a custom range missing a bound).
func (r DateRange) Resolve(now time.Time) (from, to time.Time, ok bool) {
	today := truncateDay(now)
	switch r.Kind {
	case RangeToday:
		return today, today, true
	case RangeYesterday:
		y := today.AddDate(0, 0, -1)
		return y, y, true
	case RangeLast7:
		return today.AddDate(0, 0, -6), today, true
	case RangeCurrentMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first, today, true
	case RangeLastMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
		last := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
		return first, last, true
	case RangeLastYear:
		return today.AddDate(-1, 0, 0), today, true
	case RangeCustom:
		if r.From == nil || r.To == nil {
			return time.Time{}, time.Time{}, false
		}
		return truncateDay(*r.From), truncateDay(*r.To), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// Contains reports whether d (compared at day granularity) falls inside the
// resolved range.
func (r DateRange) Contains(d, now time.Time) bool {
	from, to, ok := r.Resolve(now)
	if !ok {
		return true
	}
	day := truncateDay(d)
	return !day.Before(from) && !day.After(to)
}

// Description renders the range for report headers.
func (r DateRange) Description(now time.Time) string {
	from, to, ok := r.Resolve(now)
	if !ok {
		return "Date Range: All dates"
	}
	return fmt.Sprintf("Date Range: %s to %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
}

// DefaultSearchFields is the free-text search target when the caller selects
// none.
var DefaultSearchFields = []string{"patientID", "patientName", "diagnosis"}

// Criteria is a conjunction of optional predicates; zero values match
// everything.
type Criteria struct {
	Search         string    `json:"search"`
	SearchFields   []string  `json:"searchFields"`
	Status         string    `json:"status"`
	Modality       string    `json:"modality"`
	ProcedureName  string    `json:"procedureName"`
	DateRange      DateRange `json:"dateRange"`
	RefPhysicianID int       `json:"refPhysician"`
	DoneByID       int       `json:"doneBy"`
}

// searchValue pulls the searchable text for a field name. "notes" reads the
// procedure notes with the plain notes field as fallback, mirroring how the
// table renders that column.
func searchValue(p *Log, field string) string {
	switch field {
	case "patientID":
		return p.PatientID
	case "patientName":
		return p.PatientName
	case "diagnosis":
		return deref(p.Diagnosis)
	case "procedureName":
		return p.ProcedureName
	case "notes":
		if v := deref(p.ProcedureNotes); v != "" {
			return v
		}
		return deref(p.Notes)
	case "followUp":
		return deref(p.FollowUp)
	}
	return ""
}

// Matches evaluates every active predicate against one record.
func (c Criteria) Matches(p *Log, now time.Time) bool {
	if search := strings.ToLower(strings.TrimSpace(c.Search)); search != "" {
		fields := c.SearchFields
		if len(fields) == 0 {
			fields = DefaultSearchFields
		}
		hit := false
		for _, f := range fields {
			if strings.Contains(strings.ToLower(searchValue(p, f)), search) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if c.Status != "" && deref(p.Status) != c.Status {
		return false
	}
	if c.Modality != "" && deref(p.Modality) != c.Modality {
		return false
	}
	if c.ProcedureName != "" &&
		!strings.Contains(strings.ToLower(p.ProcedureName), strings.ToLower(c.ProcedureName)) {
		return false
	}
	if !c.DateRange.Contains(p.ProcedureDate, now) {
		return false
	}
	if c.RefPhysicianID != 0 {
		if p.RefPhysician == nil || p.RefPhysician.PhysicianID != c.RefPhysicianID {
			return false
		}
	}
	if c.DoneByID != 0 {
		hit := false
		for _, d := range p.DoneBy {
			if d.PhysicianID == c.DoneByID {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// Filter returns the records matching every active predicate, in input order.
func Filter(records []*Log, c Criteria, now time.Time) []*Log {
	var out []*Log
	for _, p := range records {
		if c.Matches(p, now) {
			out = append(out, p)
		}
	}
	return out
}
