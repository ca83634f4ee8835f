package worklist

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/NLight-n/IRLog/internal/domain/audit"
)

// -- Mock Repository --

type mockWorkItemRepo struct {
	store   map[int]*WorkItem
	nextID  int
	updates int
}

func newMockWorkItemRepo() *mockWorkItemRepo {
	return &mockWorkItemRepo{store: make(map[int]*WorkItem), nextID: 1}
}

func (m *mockWorkItemRepo) Create(_ context.Context, w *WorkItem) error {
	w.ID = m.nextID
	m.nextID++
	cp := *w
	m.store[w.ID] = &cp
	return nil
}

func (m *mockWorkItemRepo) GetByID(_ context.Context, id int) (*WorkItem, error) {
	w, ok := m.store[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *w
	return &cp, nil
}

func (m *mockWorkItemRepo) List(_ context.Context) ([]*WorkItem, error) {
	var items []*WorkItem
	for id := 1; id < m.nextID; id++ {
		if w, ok := m.store[id]; ok {
			cp := *w
			items = append(items, &cp)
		}
	}
	return items, nil
}

func (m *mockWorkItemRepo) Update(_ context.Context, w *WorkItem) error {
	if _, ok := m.store[w.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.updates++
	cp := *w
	m.store[w.ID] = &cp
	return nil
}

func (m *mockWorkItemRepo) Delete(_ context.Context, id int) error {
	delete(m.store, id)
	return nil
}

type nullAuditRepo struct{}

func (nullAuditRepo) Insert(context.Context, *audit.Entry) error { return nil }
func (nullAuditRepo) List(context.Context, audit.Filter, int, int) ([]*audit.Entry, int, error) {
	return nil, 0, nil
}

func newTestService(repo Repository, now time.Time) *Service {
	svc := NewService(repo, audit.NewRecorder(nullAuditRepo{}, zerolog.Nop()))
	svc.SetClock(func() time.Time { return now })
	return svc
}

var testNow = time.Date(2025, 6, 18, 14, 30, 0, 0, time.UTC) // a Wednesday

func TestCreateStartsPendingWithDateAdded(t *testing.T) {
	repo := newMockWorkItemRepo()
	svc := newTestService(repo, testNow)

	w, err := svc.Create(context.Background(), CreateInput{
		PatientID: "P100", PatientName: "Jane Roe", ProcedureName: "PTBD",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if w.Stage != StagePending {
		t.Errorf("stage = %s, want Pending", w.Stage)
	}
	if w.DateAdded == nil || !w.DateAdded.Equal(testNow) {
		t.Errorf("dateAdded = %v, want %v", w.DateAdded, testNow)
	}
	if w.DateEvaluated != nil || w.DateScheduled != nil || w.DateDone != nil {
		t.Error("unvisited stage dates must stay unset")
	}
}

func TestCreateRequiresFields(t *testing.T) {
	svc := newTestService(newMockWorkItemRepo(), testNow)
	cases := []CreateInput{
		{PatientName: "A", ProcedureName: "B"},
		{PatientID: "P1", ProcedureName: "B"},
		{PatientID: "P1", PatientName: "A"},
	}
	for i, in := range cases {
		if _, err := svc.Create(context.Background(), in); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestTransitionStampsOnlyDestinationDate(t *testing.T) {
	repo := newMockWorkItemRepo()
	svc := newTestService(repo, testNow)
	w, _ := svc.Create(context.Background(), CreateInput{PatientID: "P1", PatientName: "A", ProcedureName: "X"})

	got, err := svc.Transition(context.Background(), w.ID, "OnEvaluation")
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if got.Stage != StageOnEvaluation {
		t.Errorf("stage = %s", got.Stage)
	}
	if got.DateEvaluated == nil || !got.DateEvaluated.Equal(testNow) {
		t.Errorf("dateEvaluated = %v, want %v", got.DateEvaluated, testNow)
	}

	// A later transition stamps only its own stage's date.
	got, err = svc.Transition(context.Background(), w.ID, "Done")
	if err != nil {
		t.Fatalf("Transition to Done: %v", err)
	}
	if got.DateDone == nil {
		t.Error("dateDone not stamped")
	}
	if got.DateEvaluated == nil {
		t.Error("earlier stage date lost on later transition")
	}
}

func TestTransitionScheduledLaneUsesExplicitDate(t *testing.T) {
	repo := newMockWorkItemRepo()
	svc := newTestService(repo, testNow)
	w, _ := svc.Create(context.Background(), CreateInput{PatientID: "P1", PatientName: "A", ProcedureName: "X"})

	target := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	lane := Lane{Stage: StageScheduled, Date: target}
	got, err := svc.Transition(context.Background(), w.ID, lane.String())
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if got.Stage != StageScheduled {
		t.Errorf("stage = %s", got.Stage)
	}
	if got.DateScheduled == nil || !got.DateScheduled.Equal(target) {
		t.Errorf("dateScheduled = %v, want %v", got.DateScheduled, target)
	}
}

func TestTransitionAnyStageReachesAnyStage(t *testing.T) {
	repo := newMockWorkItemRepo()
	svc := newTestService(repo, testNow)
	w, _ := svc.Create(context.Background(), CreateInput{PatientID: "P1", PatientName: "A", ProcedureName: "X"})

	// Done items can move back; the lanes are a convention, not a protocol.
	if _, err := svc.Transition(context.Background(), w.ID, "Done"); err != nil {
		t.Fatalf("to Done: %v", err)
	}
	got, err := svc.Transition(context.Background(), w.ID, "Pending")
	if err != nil {
		t.Fatalf("back to Pending: %v", err)
	}
	if got.Stage != StagePending {
		t.Errorf("stage = %s", got.Stage)
	}

	if _, err := svc.Transition(context.Background(), w.ID, "Archived"); err == nil {
		t.Error("unknown lane should be rejected")
	}
}

func TestParseLaneRoundTrip(t *testing.T) {
	d := time.Date(2025, 6, 19, 0, 0, 0, 0, time.UTC)
	lane := Lane{Stage: StageScheduled, Date: d}
	parsed, err := ParseLane(lane.String())
	if err != nil {
		t.Fatalf("ParseLane: %v", err)
	}
	if parsed.Stage != StageScheduled || !parsed.Date.Equal(d) {
		t.Errorf("round trip lost data: %+v", parsed)
	}

	plain, err := ParseLane("Done")
	if err != nil || plain.Stage != StageDone || !plain.Date.IsZero() {
		t.Errorf("plain lane parse: %+v, %v", plain, err)
	}
}

func TestHousekeepingPinsStaleToYesterday(t *testing.T) {
	repo := newMockWorkItemRepo()
	svc := newTestService(repo, testNow)
	ctx := context.Background()

	stale := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	w, _ := svc.Create(ctx, CreateInput{PatientID: "P1", PatientName: "A", ProcedureName: "X"})
	if _, err := svc.Update(ctx, w.ID, UpdateInput{Stage: strp("Scheduled"), DateScheduled: &stale}); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if _, err := svc.Board(ctx); err != nil {
		t.Fatalf("Board: %v", err)
	}
	yesterday := time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC)
	got, _ := svc.Get(ctx, w.ID)
	if got.DateScheduled == nil || !got.DateScheduled.Equal(yesterday) {
		t.Errorf("dateScheduled = %v, want %v", got.DateScheduled, yesterday)
	}

	// Second pass writes nothing.
	writes := repo.updates
	if _, err := svc.Board(ctx); err != nil {
		t.Fatalf("second Board: %v", err)
	}
	if repo.updates != writes {
		t.Errorf("housekeeping not idempotent: %d extra writes", repo.updates-writes)
	}
}

func TestBoardBucketsSevenDayWindow(t *testing.T) {
	repo := newMockWorkItemRepo()
	svc := newTestService(repo, testNow)
	ctx := context.Background()

	mk := func(sched *time.Time, stage Stage) int {
		w, _ := svc.Create(ctx, CreateInput{PatientID: "P", PatientName: "N", ProcedureName: "X"})
		in := UpdateInput{Stage: strp(string(stage))}
		if sched != nil {
			in.DateScheduled = sched
		}
		if _, err := svc.Update(ctx, w.ID, in); err != nil {
			t.Fatalf("setup: %v", err)
		}
		return w.ID
	}

	today := time.Date(2025, 6, 18, 8, 0, 0, 0, time.UTC)
	far := today.AddDate(0, 0, 10)
	mk(nil, StagePending)
	todayID := mk(&today, StageScheduled)
	mk(&far, StageScheduled)

	board, err := svc.Board(ctx)
	if err != nil {
		t.Fatalf("Board: %v", err)
	}
	if len(board.Pending) != 1 {
		t.Errorf("pending = %d, want 1", len(board.Pending))
	}
	if len(board.Scheduled) != 7 {
		t.Fatalf("buckets = %d, want 7", len(board.Scheduled))
	}
	var placed int
	for i, b := range board.Scheduled {
		placed += len(b.Items)
		if i == 1 {
			if len(b.Items) != 1 || b.Items[0].ID != todayID {
				t.Errorf("today bucket items = %v", b.Items)
			}
			if b.Label != "Today (Wednesday)" {
				t.Errorf("today label = %q", b.Label)
			}
		} else if len(b.Items) != 0 {
			t.Errorf("bucket %d (%s) has %d items, want 0", i, b.Label, len(b.Items))
		}
	}
	// The +10 day item is outside the window and appears nowhere.
	if placed != 1 {
		t.Errorf("placed = %d, want 1", placed)
	}
	if board.Scheduled[0].Label != "Postponed" {
		t.Errorf("first bucket label = %q", board.Scheduled[0].Label)
	}
}

func strp(s string) *string { return &s }
