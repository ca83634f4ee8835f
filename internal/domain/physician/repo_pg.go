package physician

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type physicianRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &physicianRepoPG{pool: pool}
}

const physicianCols = `id, name, credentials, department, role, created_at, updated_at`

func (r *physicianRepoPG) scan(row pgx.Row) (*Physician, error) {
	var p Physician
	err := row.Scan(&p.ID, &p.Name, &p.Credentials, &p.Department, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *physicianRepoPG) Create(ctx context.Context, p *Physician) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO physicians (name, credentials, department, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		p.Name, p.Credentials, p.Department, p.Role).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *physicianRepoPG) GetByID(ctx context.Context, id int) (*Physician, error) {
	return r.scan(r.pool.QueryRow(ctx, `SELECT `+physicianCols+` FROM physicians WHERE id = $1`, id))
}

func (r *physicianRepoPG) List(ctx context.Context, role string) ([]*Physician, error) {
	sql := `SELECT ` + physicianCols + ` FROM physicians`
	var args []interface{}
	if role != "" {
		sql += ` WHERE LOWER(role) = LOWER($1)`
		args = append(args, role)
	}
	sql += ` ORDER BY name`
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Physician
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *physicianRepoPG) Update(ctx context.Context, p *Physician) error {
	return r.pool.QueryRow(ctx, `
		UPDATE physicians
		SET name=$2, credentials=$3, department=$4, role=$5, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.Name, p.Credentials, p.Department, p.Role).Scan(&p.UpdatedAt)
}

func (r *physicianRepoPG) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM physicians WHERE id = $1`, id)
	return err
}

func (r *physicianRepoPG) ReferenceCount(ctx context.Context, id int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM procedure_log WHERE ref_physician_id = $1)
		     + (SELECT COUNT(*) FROM procedure_done_by WHERE physician_id = $1)`, id).Scan(&n)
	return n, err
}
