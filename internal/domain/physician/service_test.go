package physician

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/NLight-n/IRLog/internal/domain/audit"
)

// -- Mock Repository --

type mockPhysicianRepo struct {
	store  map[int]*Physician
	nextID int
	refs   map[int]int
}

func newMockPhysicianRepo() *mockPhysicianRepo {
	return &mockPhysicianRepo{store: make(map[int]*Physician), nextID: 1, refs: make(map[int]int)}
}

func (m *mockPhysicianRepo) Create(_ context.Context, p *Physician) error {
	p.ID = m.nextID
	m.nextID++
	m.store[p.ID] = p
	return nil
}

func (m *mockPhysicianRepo) GetByID(_ context.Context, id int) (*Physician, error) {
	p, ok := m.store[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockPhysicianRepo) List(_ context.Context, role string) ([]*Physician, error) {
	var out []*Physician
	for id := 1; id < m.nextID; id++ {
		p, ok := m.store[id]
		if !ok {
			continue
		}
		if role == "" || p.Role == role {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPhysicianRepo) Update(_ context.Context, p *Physician) error {
	if _, ok := m.store[p.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.store[p.ID] = p
	return nil
}

func (m *mockPhysicianRepo) Delete(_ context.Context, id int) error {
	delete(m.store, id)
	return nil
}

func (m *mockPhysicianRepo) ReferenceCount(_ context.Context, id int) (int, error) {
	return m.refs[id], nil
}

type nullAuditRepo struct{}

func (nullAuditRepo) Insert(context.Context, *audit.Entry) error { return nil }
func (nullAuditRepo) List(context.Context, audit.Filter, int, int) ([]*audit.Entry, int, error) {
	return nil, 0, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, audit.NewRecorder(nullAuditRepo{}, zerolog.Nop()))
}

func TestCreateValidatesRole(t *testing.T) {
	svc := newTestService(newMockPhysicianRepo())
	ctx := context.Background()

	if err := svc.Create(ctx, &Physician{Name: "Dr. A", Role: "IR"}); err != nil {
		t.Errorf("valid IR create: %v", err)
	}
	if err := svc.Create(ctx, &Physician{Name: "Dr. B", Role: "Surgeon"}); err == nil {
		t.Error("expected error for unknown role")
	}
	if err := svc.Create(ctx, &Physician{Role: "IR"}); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestListFiltersByRole(t *testing.T) {
	repo := newMockPhysicianRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	svc.Create(ctx, &Physician{Name: "Dr. A", Role: RoleIR})
	svc.Create(ctx, &Physician{Name: "Dr. B", Role: RoleReferrer})
	svc.Create(ctx, &Physician{Name: "Dr. C", Role: RoleIR})

	irs, _ := svc.List(ctx, RoleIR)
	if len(irs) != 2 {
		t.Errorf("IR count = %d, want 2", len(irs))
	}
	all, _ := svc.List(ctx, "")
	if len(all) != 3 {
		t.Errorf("all count = %d, want 3", len(all))
	}
}

func TestDeleteBlockedWhileReferenced(t *testing.T) {
	repo := newMockPhysicianRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	p := &Physician{Name: "Dr. A", Role: RoleReferrer}
	svc.Create(ctx, p)
	repo.refs[p.ID] = 3

	if err := svc.Delete(ctx, p.ID); err == nil {
		t.Fatal("expected delete to be blocked")
	}
	repo.refs[p.ID] = 0
	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("unreferenced delete: %v", err)
	}
}
