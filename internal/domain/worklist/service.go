package worklist

import (
	"context"
	"fmt"
	"time"

	"github.com/NLight-n/IRLog/internal/domain/audit"
	"github.com/NLight-n/IRLog/internal/platform/auth"
)

type Service struct {
	repo     Repository
	recorder *audit.Recorder
	now      func() time.Time
}

func NewService(repo Repository, recorder *audit.Recorder) *Service {
	return &Service{repo: repo, recorder: recorder, now: time.Now}
}

// SetClock overrides the service clock.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CreateInput carries the fields accepted on work item creation.
type CreateInput struct {
	PatientID     string  `json:"patientID"`
	PatientName   string  `json:"patientName"`
	ProcedureName string  `json:"procedureName"`
	Modality      *string `json:"modality"`
	Notes         *string `json:"notes"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*WorkItem, error) {
	if in.PatientID == "" {
		return nil, fmt.Errorf("patientID is required")
	}
	if in.PatientName == "" {
		return nil, fmt.Errorf("patientName is required")
	}
	if in.ProcedureName == "" {
		return nil, fmt.Errorf("procedureName is required")
	}
	now := s.now().UTC()
	w := &WorkItem{
		PatientID:     in.PatientID,
		PatientName:   in.PatientName,
		ProcedureName: in.ProcedureName,
		Modality:      in.Modality,
		Notes:         in.Notes,
		Stage:         StagePending,
		DateAdded:     &now,
	}
	if uid := auth.UserIDFromContext(ctx); uid != 0 {
		w.CreatedByID = &uid
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, audit.ActionCreate, "work_item", fmt.Sprint(w.ID), nil, w)
	return w, nil
}

func (s *Service) Get(ctx context.Context, id int) (*WorkItem, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*WorkItem, error) {
	return s.repo.List(ctx)
}

// UpdateInput is a partial update. A set Stage triggers the transition date
// stamping; explicit date fields override the stamp or adjust dates without a
// stage change.
type UpdateInput struct {
	Stage         *string    `json:"stage"`
	DateAdded     *time.Time `json:"dateAdded"`
	DateEvaluated *time.Time `json:"dateEvaluated"`
	DateScheduled *time.Time `json:"dateScheduled"`
	DateDone      *time.Time `json:"dateDone"`
	PatientID     *string    `json:"patientID"`
	PatientName   *string    `json:"patientName"`
	ProcedureName *string    `json:"procedureName"`
	Modality      *string    `json:"modality"`
	Notes         *string    `json:"notes"`
}

// Update applies a partial update. Any stage may move to any other stage;
// entering a stage stamps its date field with now unless the caller supplies
// an explicit date for that stage. Other date fields are never touched.
func (s *Service) Update(ctx context.Context, id int, in UpdateInput) (*WorkItem, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *w

	if in.Stage != nil {
		stage := Stage(*in.Stage)
		if !validStages[stage] {
			return nil, fmt.Errorf("invalid stage: %s", *in.Stage)
		}
		w.Stage = stage
		if !s.explicitDateFor(stage, in) {
			now := s.now().UTC()
			*w.StageDate(stage) = &now
		}
	}
	if in.DateAdded != nil {
		t := in.DateAdded.UTC()
		w.DateAdded = &t
	}
	if in.DateEvaluated != nil {
		t := in.DateEvaluated.UTC()
		w.DateEvaluated = &t
	}
	if in.DateScheduled != nil {
		t := in.DateScheduled.UTC()
		w.DateScheduled = &t
	}
	if in.DateDone != nil {
		t := in.DateDone.UTC()
		w.DateDone = &t
	}
	if in.PatientID != nil {
		w.PatientID = *in.PatientID
	}
	if in.PatientName != nil {
		w.PatientName = *in.PatientName
	}
	if in.ProcedureName != nil {
		w.ProcedureName = *in.ProcedureName
	}
	if in.Modality != nil {
		w.Modality = in.Modality
	}
	if in.Notes != nil {
		w.Notes = in.Notes
	}
	if uid := auth.UserIDFromContext(ctx); uid != 0 {
		w.UpdatedByID = &uid
	}

	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, audit.ActionUpdate, "work_item", fmt.Sprint(id), &before, w)
	return w, nil
}

func (s *Service) explicitDateFor(stage Stage, in UpdateInput) bool {
	switch stage {
	case StagePending:
		return in.DateAdded != nil
	case StageOnEvaluation:
		return in.DateEvaluated != nil
	case StageScheduled:
		return in.DateScheduled != nil
	case StageDone:
		return in.DateDone != nil
	}
	return false
}

// Transition moves an item to the lane named by desc, stamping the stage's
// date field. Scheduled sub-lanes carry the target day in the descriptor.
func (s *Service) Transition(ctx context.Context, id int, desc string) (*WorkItem, error) {
	lane, err := ParseLane(desc)
	if err != nil {
		return nil, err
	}
	in := UpdateInput{Stage: (*string)(&lane.Stage)}
	if lane.Stage == StageScheduled && !lane.Date.IsZero() {
		in.DateScheduled = &lane.Date
	}
	return s.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recorder.Record(ctx, audit.ActionDelete, "work_item", fmt.Sprint(id), before, nil)
	return nil
}

// Board lists all items, runs the housekeeping pass, and lays out the board.
func (s *Service) Board(ctx context.Context) (*Board, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.housekeep(ctx, items, now); err != nil {
		return nil, err
	}
	return BuildBoard(items, now), nil
}

// housekeep pins Scheduled items dated before yesterday to yesterday so they
// surface in the Postponed bucket instead of falling off the window. Items
// already at yesterday are left alone, so the pass is idempotent.
func (s *Service) housekeep(ctx context.Context, items []*WorkItem, now time.Time) error {
	yesterday := truncateDay(now).AddDate(0, 0, -1)
	for _, it := range StaleScheduled(items, now) {
		before := *it
		d := yesterday
		it.DateScheduled = &d
		if err := s.repo.Update(ctx, it); err != nil {
			return err
		}
		s.recorder.Record(ctx, audit.ActionUpdate, "work_item", fmt.Sprint(it.ID), &before, it)
	}
	return nil
}
