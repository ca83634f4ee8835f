package procedure

import (
	"testing"
	"time"
)

func ids(logs []*Log) []int {
	out := make([]int, len(logs))
	for i, p := range logs {
		out[i] = p.ID
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSortByDate(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC) }
	records := []*Log{
		{ID: 1, ProcedureDate: d(15)},
		{ID: 2, ProcedureDate: d(5)},
		{ID: 3, ProcedureDate: d(25)},
	}
	asc := Sort(records, "procedureDate", Asc)
	if !equalInts(ids(asc), []int{2, 1, 3}) {
		t.Errorf("asc order = %v", ids(asc))
	}
	desc := Sort(records, "procedureDate", Desc)
	if !equalInts(ids(desc), []int{3, 1, 2}) {
		t.Errorf("desc order = %v", ids(desc))
	}
	// Input untouched.
	if !equalInts(ids(records), []int{1, 2, 3}) {
		t.Errorf("input mutated: %v", ids(records))
	}
}

func TestSortIsStable(t *testing.T) {
	records := []*Log{
		{ID: 1, PatientName: "alpha"},
		{ID: 2, PatientName: "ALPHA"},
		{ID: 3, PatientName: "beta"},
		{ID: 4, PatientName: "Alpha"},
	}
	asc := Sort(records, "patientName", Asc)
	if !equalInts(ids(asc), []int{1, 2, 4, 3}) {
		t.Errorf("equal keys reordered: %v", ids(asc))
	}
	desc := Sort(records, "patientName", Desc)
	if !equalInts(ids(desc), []int{3, 1, 2, 4}) {
		t.Errorf("desc equal keys reordered: %v", ids(desc))
	}
}

func TestNullsSortLastBothDirections(t *testing.T) {
	cost := func(v float64) *float64 { return &v }
	records := []*Log{
		{ID: 1},
		{ID: 2, ProcedureCost: cost(100)},
		{ID: 3},
		{ID: 4, ProcedureCost: cost(50)},
	}
	asc := Sort(records, "procedureCost", Asc)
	if !equalInts(ids(asc), []int{4, 2, 1, 3}) {
		t.Errorf("asc = %v", ids(asc))
	}
	desc := Sort(records, "procedureCost", Desc)
	if !equalInts(ids(desc), []int{2, 4, 1, 3}) {
		t.Errorf("desc = %v, nulls must stay last", ids(desc))
	}
}

func TestSortByDerivedKeys(t *testing.T) {
	records := []*Log{
		{ID: 1, DoneBy: []DoneBy{{Name: "Zed"}, {Name: "Amy"}}},
		{ID: 2, DoneBy: []DoneBy{{Name: "Amy"}}},
		{ID: 3},
	}
	got := Sort(records, "doneBy", Asc)
	// "amy" < "zed, amy"; the record with no performers sorts last.
	if !equalInts(ids(got), []int{2, 1, 3}) {
		t.Errorf("doneBy order = %v", ids(got))
	}

	records = []*Log{
		{ID: 1, RefPhysician: &RefPhysician{Name: "Watts"}},
		{ID: 2, RefPhysician: &RefPhysician{Name: "adams"}},
		{ID: 3},
	}
	got = Sort(records, "refPhysician", Asc)
	if !equalInts(ids(got), []int{2, 1, 3}) {
		t.Errorf("refPhysician order = %v", ids(got))
	}
}

func TestSortUnknownColumnKeepsOrder(t *testing.T) {
	records := []*Log{{ID: 1}, {ID: 2}, {ID: 3}}
	got := Sort(records, "nonexistent", Asc)
	if !equalInts(ids(got), []int{1, 2, 3}) {
		t.Errorf("order changed: %v", ids(got))
	}
}
