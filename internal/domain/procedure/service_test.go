package procedure

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/NLight-n/IRLog/internal/domain/audit"
	"github.com/NLight-n/IRLog/internal/domain/settings"
	"github.com/NLight-n/IRLog/pkg/columns"
)

// -- Mock Repositories --

type mockLogRepo struct {
	store  map[int]*Log
	nextID int
	months []MonthStat
}

func newMockLogRepo() *mockLogRepo {
	return &mockLogRepo{store: make(map[int]*Log), nextID: 1}
}

func (m *mockLogRepo) Create(_ context.Context, p *Log) error {
	p.ID = m.nextID
	m.nextID++
	m.store[p.ID] = p
	return nil
}

func (m *mockLogRepo) GetByID(_ context.Context, id int) (*Log, error) {
	p, ok := m.store[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockLogRepo) List(_ context.Context) ([]*Log, error) {
	var out []*Log
	for id := 1; id < m.nextID; id++ {
		if p, ok := m.store[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockLogRepo) Update(_ context.Context, p *Log) error {
	if _, ok := m.store[p.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.store[p.ID] = p
	return nil
}

func (m *mockLogRepo) Delete(_ context.Context, id int) error {
	delete(m.store, id)
	return nil
}

func (m *mockLogRepo) ProcedureNames(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var names []string
	for id := 1; id < m.nextID; id++ {
		if p, ok := m.store[id]; ok && !seen[p.ProcedureName] {
			seen[p.ProcedureName] = true
			names = append(names, p.ProcedureName)
		}
	}
	return names, nil
}

func (m *mockLogRepo) MonthlyStats(_ context.Context, from, to time.Time, modality string) ([]MonthStat, error) {
	return m.months, nil
}

func (m *mockLogRepo) ModalityCounts(_ context.Context, from, to time.Time) (map[string]int, error) {
	counts := make(map[string]int)
	for _, p := range m.store {
		if p.Modality != nil {
			counts[*p.Modality]++
		}
	}
	return counts, nil
}

func (m *mockLogRepo) RefPhysicianCounts(_ context.Context, from, to time.Time) ([]NameCount, error) {
	return nil, nil
}

func (m *mockLogRepo) YearlyCounts(_ context.Context, modality string) ([]YearCount, error) {
	return nil, nil
}

type mockSettingsRepo struct{ current *settings.Settings }

func (m *mockSettingsRepo) Get(_ context.Context) (*settings.Settings, error) {
	if m.current == nil {
		m.current = settings.Default()
	}
	return m.current, nil
}

func (m *mockSettingsRepo) Update(_ context.Context, s *settings.Settings) error {
	m.current = s
	return nil
}

func (m *mockSettingsRepo) GetLogo(_ context.Context) (*settings.Logo, error) {
	return nil, fmt.Errorf("no logo")
}

func (m *mockSettingsRepo) UpdateLogo(_ context.Context, _ *settings.Logo) error { return nil }

type nullAuditRepo struct{}

func (nullAuditRepo) Insert(context.Context, *audit.Entry) error { return nil }
func (nullAuditRepo) List(context.Context, audit.Filter, int, int) ([]*audit.Entry, int, error) {
	return nil, 0, nil
}

var svcNow = time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)

func newTestService(repo Repository) *Service {
	svc := NewService(repo,
		settings.NewService(&mockSettingsRepo{}),
		audit.NewRecorder(nullAuditRepo{}, zerolog.Nop()))
	svc.SetClock(func() time.Time { return svcNow })
	return svc
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newMockLogRepo())
	ctx := context.Background()

	bad := "MRI"
	cases := []*Log{
		{PatientName: "A", ProcedureName: "X", ProcedureDate: svcNow},
		{PatientID: "P1", ProcedureName: "X", ProcedureDate: svcNow},
		{PatientID: "P1", PatientName: "A", ProcedureDate: svcNow},
		{PatientID: "P1", PatientName: "A", ProcedureName: "X"},
		{PatientID: "P1", PatientName: "A", ProcedureName: "X", ProcedureDate: svcNow, Modality: &bad},
	}
	for i, p := range cases {
		if err := svc.Create(ctx, p); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}

	usg := "USG"
	ok := &Log{PatientID: "P1", PatientName: "A", ProcedureName: "X", ProcedureDate: svcNow, Modality: &usg}
	if err := svc.Create(ctx, ok); err != nil {
		t.Fatalf("valid create: %v", err)
	}
	if ok.ID == 0 {
		t.Error("id not assigned")
	}
}

func TestQueryAppliesFilterThenSort(t *testing.T) {
	repo := newMockLogRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	usg, ct := "USG", "CT"
	mk := func(name string, modality *string, day int) {
		p := &Log{PatientID: "P", PatientName: name, ProcedureName: "X",
			ProcedureDate: time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC), Modality: modality}
		if err := svc.Create(ctx, p); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
	mk("Carol", &usg, 10)
	mk("Alice", &ct, 11)
	mk("Bob", &usg, 12)

	got, err := svc.Query(ctx, Criteria{Modality: "USG"}, "patientName", Asc)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 2 || got[0].PatientName != "Bob" || got[1].PatientName != "Carol" {
		t.Errorf("query result = %v", got)
	}
}

func TestMonthlyTrendZeroFillsTwelveMonths(t *testing.T) {
	repo := newMockLogRepo()
	repo.months = []MonthStat{
		{Month: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Count: 4, Cost: 600},
		{Month: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Count: 2, Cost: 100},
	}
	svc := newTestService(repo)

	chart, err := svc.MonthlyTrend(context.Background(), "")
	if err != nil {
		t.Fatalf("MonthlyTrend: %v", err)
	}
	if len(chart.Labels) != 12 {
		t.Fatalf("labels = %d, want 12", len(chart.Labels))
	}
	if chart.Labels[0] != "Jul 2024" || chart.Labels[11] != "Jun 2025" {
		t.Errorf("label window = %s .. %s", chart.Labels[0], chart.Labels[11])
	}
	if chart.Series[0].Data[11] != 4 || chart.Series[1].Data[11] != 600 {
		t.Errorf("current month stats = %v / %v", chart.Series[0].Data[11], chart.Series[1].Data[11])
	}
	if chart.Series[0].Data[0] != 0 {
		t.Errorf("empty month not zero-filled: %v", chart.Series[0].Data[0])
	}
}

func TestModalityBreakdownCoversAllModalities(t *testing.T) {
	repo := newMockLogRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	usg := "USG"
	svc.Create(ctx, &Log{PatientID: "P", PatientName: "A", ProcedureName: "X", ProcedureDate: svcNow, Modality: &usg})

	chart, err := svc.ModalityBreakdown(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("ModalityBreakdown: %v", err)
	}
	if len(chart.Labels) != len(Modalities) {
		t.Fatalf("labels = %v", chart.Labels)
	}
	if chart.Data[0] != 1 {
		t.Errorf("USG count = %d, want 1", chart.Data[0])
	}
	for i := 1; i < len(chart.Data); i++ {
		if chart.Data[i] != 0 {
			t.Errorf("%s count = %d, want 0", chart.Labels[i], chart.Data[i])
		}
	}
}

func TestExportProducesWorkbook(t *testing.T) {
	repo := newMockLogRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	cost := 150.0
	svc.Create(ctx, &Log{PatientID: "P1", PatientName: "A", ProcedureName: "X",
		ProcedureDate: svcNow, ProcedureCost: &cost})

	var buf bytes.Buffer
	visible := []columns.Column{
		{Key: "patientID", Label: "Patient ID", Visible: true},
		{Key: "procedureCost", Label: "Cost", Visible: true},
	}
	if err := svc.Export(ctx, Criteria{}, "", Asc, visible, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("empty workbook written")
	}
}
