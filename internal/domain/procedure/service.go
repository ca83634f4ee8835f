package procedure

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/NLight-n/IRLog/internal/domain/audit"
	"github.com/NLight-n/IRLog/internal/domain/settings"
	"github.com/NLight-n/IRLog/pkg/columns"
)

type Service struct {
	repo     Repository
	settings *settings.Service
	recorder *audit.Recorder
	store    BlobStore
	now      func() time.Time
}

func NewService(repo Repository, settingsSvc *settings.Service, recorder *audit.Recorder) *Service {
	return &Service{repo: repo, settings: settingsSvc, recorder: recorder, now: time.Now}
}

// SetClock overrides the service clock.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

var validStatuses = map[string]bool{"IP": true, "OP": true}

var validModalities = func() map[string]bool {
	m := make(map[string]bool, len(Modalities))
	for _, v := range Modalities {
		m[v] = true
	}
	return m
}()

func (s *Service) validate(p *Log) error {
	if p.PatientID == "" {
		return fmt.Errorf("patientID is required")
	}
	if p.PatientName == "" {
		return fmt.Errorf("patientName is required")
	}
	if p.ProcedureName == "" {
		return fmt.Errorf("procedureName is required")
	}
	if p.ProcedureDate.IsZero() {
		return fmt.Errorf("procedureDate is required")
	}
	if st := deref(p.Status); st != "" && !validStatuses[st] {
		return fmt.Errorf("invalid status: %s", st)
	}
	if m := deref(p.Modality); m != "" && !validModalities[m] {
		return fmt.Errorf("invalid modality: %s", m)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p *Log) error {
	if err := s.validate(p); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	s.recorder.Record(ctx, audit.ActionCreate, "procedure_log", fmt.Sprint(p.ID), nil, p)
	return nil
}

func (s *Service) Get(ctx context.Context, id int) (*Log, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Log, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, p *Log) error {
	if err := s.validate(p); err != nil {
		return err
	}
	before, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.recorder.Record(ctx, audit.ActionUpdate, "procedure_log", fmt.Sprint(p.ID), before, p)
	return nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recorder.Record(ctx, audit.ActionDelete, "procedure_log", fmt.Sprint(id), before, nil)
	return nil
}

func (s *Service) ProcedureNames(ctx context.Context) ([]string, error) {
	return s.repo.ProcedureNames(ctx)
}

// Query fetches all logs and applies the filter and sort pipeline.
func (s *Service) Query(ctx context.Context, c Criteria, sortColumn string, dir Direction) ([]*Log, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return Sort(Filter(items, c, s.now()), sortColumn, dir), nil
}

// Export runs the query pipeline and writes the spreadsheet to w. Report
// headers come from the department settings; visible picks and orders the
// exported columns.
func (s *Service) Export(ctx context.Context, c Criteria, sortColumn string, dir Direction, visible []columns.Column, w io.Writer) error {
	items, err := s.Query(ctx, c, sortColumn, dir)
	if err != nil {
		return err
	}
	st, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}
	if len(visible) == 0 {
		visible = columns.Defaults()
	}
	meta := ReportMeta{
		Title:            st.AppHeading,
		Subtitle:         st.AppSubheading,
		RangeDescription: c.DateRange.Description(s.now()),
	}
	return WriteXLSX(w, BuildGrid(items, visible, meta, st))
}
