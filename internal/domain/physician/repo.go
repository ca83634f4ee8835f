package physician

import "context"

type Repository interface {
	Create(ctx context.Context, p *Physician) error
	GetByID(ctx context.Context, id int) (*Physician, error)
	List(ctx context.Context, role string) ([]*Physician, error)
	Update(ctx context.Context, p *Physician) error
	Delete(ctx context.Context, id int) error
	// ReferenceCount reports how many procedure log rows reference the
	// physician, either as referring physician or as a performer.
	ReferenceCount(ctx context.Context, id int) (int, error)
}
