package settings

import (
	"context"
	"fmt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context) (*Settings, error) {
	return s.repo.Get(ctx)
}

// UpdateInput carries the fields a PATCH may change. Nil fields are left as-is.
type UpdateInput struct {
	AppHeading    *string `json:"appHeading"`
	AppSubheading *string `json:"appSubheading"`
	Currency      *string `json:"currency"`
	DateFormat    *string `json:"dateFormat"`
	TimeFormat    *string `json:"timeFormat"`
}

func (s *Service) Update(ctx context.Context, in UpdateInput) (*Settings, error) {
	cur, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if in.AppHeading != nil {
		if *in.AppHeading == "" {
			return nil, fmt.Errorf("appHeading cannot be empty")
		}
		cur.AppHeading = *in.AppHeading
	}
	if in.AppSubheading != nil {
		cur.AppSubheading = *in.AppSubheading
	}
	if in.Currency != nil {
		if *in.Currency == "" {
			return nil, fmt.Errorf("currency cannot be empty")
		}
		cur.Currency = *in.Currency
	}
	if in.DateFormat != nil {
		if !validDateFormats[*in.DateFormat] {
			return nil, fmt.Errorf("invalid dateFormat: %s", *in.DateFormat)
		}
		cur.DateFormat = *in.DateFormat
	}
	if in.TimeFormat != nil {
		if !validTimeFormats[*in.TimeFormat] {
			return nil, fmt.Errorf("invalid timeFormat: %s", *in.TimeFormat)
		}
		cur.TimeFormat = *in.TimeFormat
	}
	if err := s.repo.Update(ctx, cur); err != nil {
		return nil, err
	}
	return cur, nil
}

const maxLogoBytes = 1 << 20

var allowedLogoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// UpdateLogo replaces the application logo. Only common web image types are
// accepted, capped at 1MB.
func (s *Service) UpdateLogo(ctx context.Context, data []byte, mimeType string) error {
	if len(data) == 0 {
		return fmt.Errorf("logo image is required")
	}
	if len(data) > maxLogoBytes {
		return fmt.Errorf("logo too large: maximum size is 1MB")
	}
	if !allowedLogoTypes[mimeType] {
		return fmt.Errorf("invalid logo type %q: only JPG, PNG, GIF and WebP are allowed", mimeType)
	}
	// The settings row must exist before the logo UPDATE can land.
	if _, err := s.repo.Get(ctx); err != nil {
		return err
	}
	return s.repo.UpdateLogo(ctx, &Logo{Data: data, MimeType: mimeType})
}

func (s *Service) GetLogo(ctx context.Context) (*Logo, error) {
	return s.repo.GetLogo(ctx)
}
