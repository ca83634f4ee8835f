package physician

import (
	"context"
	"fmt"

	"github.com/NLight-n/IRLog/internal/domain/audit"
)

type Service struct {
	repo     Repository
	recorder *audit.Recorder
}

func NewService(repo Repository, recorder *audit.Recorder) *Service {
	return &Service{repo: repo, recorder: recorder}
}

var validRoles = map[string]bool{
	RoleIR:       true,
	RoleReferrer: true,
}

func (s *Service) Create(ctx context.Context, p *Physician) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !validRoles[p.Role] {
		return fmt.Errorf("invalid role: %s", p.Role)
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	s.recorder.Record(ctx, audit.ActionCreate, "physicians", fmt.Sprint(p.ID), nil, p)
	return nil
}

func (s *Service) Get(ctx context.Context, id int) (*Physician, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, role string) ([]*Physician, error) {
	return s.repo.List(ctx, role)
}

func (s *Service) Update(ctx context.Context, p *Physician) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !validRoles[p.Role] {
		return fmt.Errorf("invalid role: %s", p.Role)
	}
	before, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.recorder.Record(ctx, audit.ActionUpdate, "physicians", fmt.Sprint(p.ID), before, p)
	return nil
}

// Delete removes a physician. Physicians still referenced by procedure log
// entries cannot be deleted; reassign or remove those entries first.
func (s *Service) Delete(ctx context.Context, id int) error {
	refs, err := s.repo.ReferenceCount(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("physician is referenced by %d procedure log entries", refs)
	}
	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recorder.Record(ctx, audit.ActionDelete, "physicians", fmt.Sprint(id), before, nil)
	return nil
}
