package worklist

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type workItemRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &workItemRepoPG{pool: pool}
}

const workItemCols = `id, patient_id, patient_name, procedure_name, modality, notes, stage,
	date_added, date_evaluated, date_scheduled, date_done,
	created_by_id, updated_by_id, created_at, updated_at`

func (r *workItemRepoPG) scan(row pgx.Row) (*WorkItem, error) {
	var w WorkItem
	err := row.Scan(&w.ID, &w.PatientID, &w.PatientName, &w.ProcedureName, &w.Modality, &w.Notes, &w.Stage,
		&w.DateAdded, &w.DateEvaluated, &w.DateScheduled, &w.DateDone,
		&w.CreatedByID, &w.UpdatedByID, &w.CreatedAt, &w.UpdatedAt)
	return &w, err
}

func (r *workItemRepoPG) Create(ctx context.Context, w *WorkItem) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO work_item (patient_id, patient_name, procedure_name, modality, notes, stage,
			date_added, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		w.PatientID, w.PatientName, w.ProcedureName, w.Modality, w.Notes, w.Stage,
		w.DateAdded, w.CreatedByID).
		Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
}

func (r *workItemRepoPG) GetByID(ctx context.Context, id int) (*WorkItem, error) {
	return r.scan(r.pool.QueryRow(ctx, `SELECT `+workItemCols+` FROM work_item WHERE id = $1`, id))
}

func (r *workItemRepoPG) List(ctx context.Context) ([]*WorkItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+workItemCols+` FROM work_item ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*WorkItem
	for rows.Next() {
		w, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

func (r *workItemRepoPG) Update(ctx context.Context, w *WorkItem) error {
	return r.pool.QueryRow(ctx, `
		UPDATE work_item
		SET patient_id=$2, patient_name=$3, procedure_name=$4, modality=$5, notes=$6, stage=$7,
			date_added=$8, date_evaluated=$9, date_scheduled=$10, date_done=$11,
			updated_by_id=$12, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		w.ID, w.PatientID, w.PatientName, w.ProcedureName, w.Modality, w.Notes, w.Stage,
		w.DateAdded, w.DateEvaluated, w.DateScheduled, w.DateDone, w.UpdatedByID).
		Scan(&w.UpdatedAt)
}

func (r *workItemRepoPG) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM work_item WHERE id = $1`, id)
	return err
}
