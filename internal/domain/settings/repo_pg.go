package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type settingsRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &settingsRepoPG{pool: pool}
}

const settingsCols = `id, app_heading, app_subheading, currency, date_format, time_format, updated_at`

func (r *settingsRepoPG) scan(row pgx.Row) (*Settings, error) {
	var s Settings
	err := row.Scan(&s.ID, &s.AppHeading, &s.AppSubheading, &s.Currency,
		&s.DateFormat, &s.TimeFormat, &s.UpdatedAt)
	return &s, err
}

// Get returns the settings row, inserting the defaults on first access.
func (r *settingsRepoPG) Get(ctx context.Context) (*Settings, error) {
	s, err := r.scan(r.pool.QueryRow(ctx, `SELECT `+settingsCols+` FROM system_settings WHERE id = 1`))
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	d := Default()
	return r.scan(r.pool.QueryRow(ctx, `
		INSERT INTO system_settings (id, app_heading, app_subheading, currency, date_format, time_format)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET id = system_settings.id
		RETURNING `+settingsCols,
		d.AppHeading, d.AppSubheading, d.Currency, d.DateFormat, d.TimeFormat))
}

func (r *settingsRepoPG) GetLogo(ctx context.Context) (*Logo, error) {
	var data []byte
	var mime *string
	err := r.pool.QueryRow(ctx, `
		SELECT app_logo_data, app_logo_mime_type FROM system_settings WHERE id = 1`).
		Scan(&data, &mime)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || mime == nil {
		return nil, pgx.ErrNoRows
	}
	return &Logo{Data: data, MimeType: *mime}, nil
}

func (r *settingsRepoPG) UpdateLogo(ctx context.Context, l *Logo) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE system_settings
		SET app_logo_data=$1, app_logo_mime_type=$2, updated_at=NOW()
		WHERE id = 1`, l.Data, l.MimeType)
	return err
}

func (r *settingsRepoPG) Update(ctx context.Context, s *Settings) error {
	return r.pool.QueryRow(ctx, `
		UPDATE system_settings
		SET app_heading=$1, app_subheading=$2, currency=$3, date_format=$4, time_format=$5, updated_at=NOW()
		WHERE id = 1
		RETURNING updated_at`,
		s.AppHeading, s.AppSubheading, s.Currency, s.DateFormat, s.TimeFormat).Scan(&s.UpdatedAt)
}
