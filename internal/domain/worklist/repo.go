package worklist

import "context"

type Repository interface {
	Create(ctx context.Context, w *WorkItem) error
	GetByID(ctx context.Context, id int) (*WorkItem, error)
	List(ctx context.Context) ([]*WorkItem, error)
	Update(ctx context.Context, w *WorkItem) error
	Delete(ctx context.Context, id int) error
}
