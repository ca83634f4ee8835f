package audit

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/NLight-n/IRLog/internal/platform/auth"
)

// -- Mock Repository --

type mockAuditRepo struct {
	entries []*Entry
	failing bool
}

func (m *mockAuditRepo) Insert(_ context.Context, e *Entry) error {
	if m.failing {
		return fmt.Errorf("insert failed")
	}
	e.ID = len(m.entries) + 1
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockAuditRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Entry, int, error) {
	return m.entries, len(m.entries), nil
}

func ctxWithUser(id int) context.Context {
	return context.WithValue(context.Background(), auth.UserIDKey, id)
}

func TestRecorderPersistsEntry(t *testing.T) {
	repo := &mockAuditRepo{}
	rec := NewRecorder(repo, zerolog.Nop())

	rec.Record(ctxWithUser(7), ActionUpdate, "procedure_log", "42",
		map[string]string{"status": "IP"}, map[string]string{"status": "DIS"})

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	e := repo.entries[0]
	if e.ActionType != ActionUpdate || e.UserID != 7 || e.AffectedTable != "procedure_log" || e.AffectedRowID != "42" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if len(e.DataBefore) == 0 || len(e.DataAfter) == 0 {
		t.Error("before/after payloads should be captured")
	}
}

func TestRecorderCreateOmitsBefore(t *testing.T) {
	repo := &mockAuditRepo{}
	rec := NewRecorder(repo, zerolog.Nop())

	rec.Record(ctxWithUser(1), ActionCreate, "physicians", "3", nil, map[string]string{"name": "Dr. A"})

	e := repo.entries[0]
	if e.DataBefore != nil {
		t.Errorf("DataBefore = %s, want nil", e.DataBefore)
	}
	if len(e.DataAfter) == 0 {
		t.Error("DataAfter should be set on create")
	}
}

func TestRecorderNeverPanicsOnFailure(t *testing.T) {
	rec := NewRecorder(&mockAuditRepo{failing: true}, zerolog.Nop())
	// A failed insert is swallowed; the caller's mutation must not be affected.
	rec.Record(ctxWithUser(1), ActionDelete, "work_item", "9", map[string]int{"id": 9}, nil)

	var nilRec *Recorder
	nilRec.Record(context.Background(), ActionCreate, "x", "1", nil, nil)
}
