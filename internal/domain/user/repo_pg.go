package user

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NLight-n/IRLog/pkg/columns"
)

type userRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &userRepoPG{pool: pool}
}

const userCols = `u.id, u.username, u.email, u.role, u.theme, u.accent_color, u.columns, u.password,
	u.created_at, u.updated_at,
	COALESCE(p.view_only, FALSE), COALESCE(p.create_procedure_log, FALSE),
	COALESCE(p.edit_procedure_log, FALSE), COALESCE(p.edit_settings, FALSE),
	COALESCE(p.manage_users, FALSE)`

const userJoin = ` FROM users u LEFT JOIN permissions p ON p.user_id = u.id`

func (r *userRepoPG) scan(row pgx.Row) (*User, error) {
	var u User
	var cols []byte
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.Theme, &u.AccentColor, &cols, &u.PasswordHash,
		&u.CreatedAt, &u.UpdatedAt,
		&u.Permissions.ViewOnly, &u.Permissions.CreateProcedureLog,
		&u.Permissions.EditProcedureLog, &u.Permissions.EditSettings,
		&u.Permissions.ManageUsers)
	if err != nil {
		return nil, err
	}
	if len(cols) > 0 {
		var saved []columns.Column
		if err := json.Unmarshal(cols, &saved); err == nil {
			u.Columns = saved
		}
	}
	return &u, nil
}

func marshalColumns(u *User) ([]byte, error) {
	if u.Columns == nil {
		return nil, nil
	}
	return json.Marshal(u.Columns)
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	cols, err := marshalColumns(u)
	if err != nil {
		return err
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO users (username, email, role, theme, accent_color, columns, password)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		u.Username, u.Email, u.Role, u.Theme, u.AccentColor, cols, u.PasswordHash).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO permissions (user_id, view_only, create_procedure_log, edit_procedure_log, edit_settings, manage_users)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Permissions.ViewOnly, u.Permissions.CreateProcedureLog,
		u.Permissions.EditProcedureLog, u.Permissions.EditSettings, u.Permissions.ManageUsers)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *userRepoPG) GetByID(ctx context.Context, id int) (*User, error) {
	return r.scan(r.pool.QueryRow(ctx, `SELECT `+userCols+userJoin+` WHERE u.id = $1`, id))
}

func (r *userRepoPG) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.scan(r.pool.QueryRow(ctx, `SELECT `+userCols+userJoin+` WHERE u.username = $1`, username))
}

func (r *userRepoPG) List(ctx context.Context) ([]*User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userCols+userJoin+` ORDER BY u.username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*User
	for rows.Next() {
		u, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

func (r *userRepoPG) Update(ctx context.Context, u *User) error {
	cols, err := marshalColumns(u)
	if err != nil {
		return err
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		UPDATE users
		SET username=$2, email=$3, role=$4, theme=$5, accent_color=$6, columns=$7, password=$8, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		u.ID, u.Username, u.Email, u.Role, u.Theme, u.AccentColor, cols, u.PasswordHash).
		Scan(&u.UpdatedAt)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE permissions
		SET view_only=$2, create_procedure_log=$3, edit_procedure_log=$4, edit_settings=$5, manage_users=$6
		WHERE user_id = $1`,
		u.ID, u.Permissions.ViewOnly, u.Permissions.CreateProcedureLog,
		u.Permissions.EditProcedureLog, u.Permissions.EditSettings, u.Permissions.ManageUsers)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *userRepoPG) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *userRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
