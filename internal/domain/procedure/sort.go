package procedure

import (
	"sort"
	"strings"
	"time"
)

// Direction orders a sort ascending or descending.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type keyKind int

const (
	kindNull keyKind = iota
	kindString
	kindTime
	kindFloat
)

// sortKey is one record's comparable value for a column. Null keys compare
// after everything else regardless of direction.
type sortKey struct {
	kind keyKind
	str  string
	t    time.Time
	f    float64
}

func stringKey(s string) sortKey {
	return sortKey{kind: kindString, str: strings.ToLower(s)}
}

func optStringKey(s *string) sortKey {
	if s == nil || *s == "" {
		return sortKey{kind: kindNull}
	}
	return stringKey(*s)
}

func keyFor(p *Log, column string) sortKey {
	switch column {
	case "procedureDate":
		return sortKey{kind: kindTime, t: p.ProcedureDate}
	case "procedureTime":
		return optStringKey(p.ProcedureTime)
	case "patientID":
		return stringKey(p.PatientID)
	case "patientName":
		return stringKey(p.PatientName)
	case "patientAgeSex":
		if p.PatientAge == nil {
			return sortKey{kind: kindNull}
		}
		return sortKey{kind: kindFloat, f: float64(*p.PatientAge)}
	case "patientStatus":
		return optStringKey(p.Status)
	case "modality":
		return optStringKey(p.Modality)
	case "procedureName":
		return stringKey(p.ProcedureName)
	case "doneBy":
		if len(p.DoneBy) == 0 {
			return sortKey{kind: kindNull}
		}
		names := make([]string, len(p.DoneBy))
		for i, d := range p.DoneBy {
			names[i] = d.Name
		}
		return stringKey(strings.Join(names, ", "))
	case "refPhysician":
		if p.RefPhysician == nil {
			return sortKey{kind: kindNull}
		}
		return stringKey(p.RefPhysician.Name)
	case "diagnosis":
		return optStringKey(p.Diagnosis)
	case "procedureNotes":
		if v := deref(p.ProcedureNotes); v != "" {
			return stringKey(v)
		}
		return optStringKey(p.Notes)
	case "notes":
		return optStringKey(p.Notes)
	case "followUp":
		return optStringKey(p.FollowUp)
	case "procedureCost":
		if p.ProcedureCost == nil {
			return sortKey{kind: kindNull}
		}
		return sortKey{kind: kindFloat, f: *p.ProcedureCost}
	}
	return sortKey{kind: kindNull}
}

// less compares two non-null keys of the same kind.
func (a sortKey) less(b sortKey) bool {
	switch a.kind {
	case kindTime:
		return a.t.Before(b.t)
	case kindFloat:
		return a.f < b.f
	default:
		return a.str < b.str
	}
}

// Sort orders records by column without mutating the input. Equal keys keep
// their input order; null keys sink to the bottom in both directions.
func Sort(records []*Log, column string, dir Direction) []*Log {
	out := append([]*Log(nil), records...)
	if column == "" {
		return out
	}
	keys := make([]sortKey, len(out))
	for i, p := range out {
		keys[i] = keyFor(p, column)
	}
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(x, y int) bool {
		a, b := keys[idx[x]], keys[idx[y]]
		if a.kind == kindNull {
			return false
		}
		if b.kind == kindNull {
			return true
		}
		if dir == Desc {
			return b.less(a)
		}
		return a.less(b)
	})
	sorted := make([]*Log, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}
