package settings

import "context"

// Repository stores the single department settings row.
type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, s *Settings) error
	GetLogo(ctx context.Context) (*Logo, error)
	UpdateLogo(ctx context.Context, l *Logo) error
}
