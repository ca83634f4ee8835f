package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type auditRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &auditRepoPG{pool: pool}
}

const auditCols = `a.id, a.action_type, a.user_id, COALESCE(u.username, ''), a.timestamp,
	a.affected_table, a.affected_row_id, a.data_before, a.data_after`

func (r *auditRepoPG) scan(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.ActionType, &e.UserID, &e.Username, &e.Timestamp,
		&e.AffectedTable, &e.AffectedRowID, &e.DataBefore, &e.DataAfter)
	return &e, err
}

func (r *auditRepoPG) Insert(ctx context.Context, e *Entry) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO audit_log (action_type, user_id, affected_table, affected_row_id, data_before, data_after)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, timestamp`,
		e.ActionType, e.UserID, e.AffectedTable, e.AffectedRowID, e.DataBefore, e.DataAfter).
		Scan(&e.ID, &e.Timestamp)
}

func (r *auditRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Entry, int, error) {
	var conds []string
	var args []interface{}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.ActionType != "" {
		add("a.action_type = $%d", f.ActionType)
	}
	if f.AffectedTable != "" {
		add("a.affected_table = $%d", f.AffectedTable)
	}
	if f.UserID != 0 {
		add("a.user_id = $%d", f.UserID)
	}
	if !f.From.IsZero() {
		add("a.timestamp >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("a.timestamp <= $%d", f.To)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countSQL := `SELECT COUNT(*) FROM audit_log a` + where
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := `SELECT ` + auditCols + ` FROM audit_log a LEFT JOIN users u ON u.id = a.user_id` +
		where + fmt.Sprintf(` ORDER BY a.timestamp DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, dataSQL, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Entry
	for rows.Next() {
		e, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}
