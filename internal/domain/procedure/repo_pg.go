package procedure

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type logRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &logRepoPG{pool: pool}
}

const logCols = `p.id, p.patient_id, p.patient_name, p.patient_age, p.patient_sex, p.status,
	p.modality, p.procedure_name, p.procedure_date, p.procedure_time,
	p.ref_physician_id, rp.name,
	p.diagnosis, p.procedure_notes, p.notes, p.follow_up, p.procedure_cost,
	p.created_by_id, p.created_at, p.updated_at`

func (r *logRepoPG) scan(row pgx.Row) (*Log, error) {
	var p Log
	var refID *int
	var refName *string
	err := row.Scan(&p.ID, &p.PatientID, &p.PatientName, &p.PatientAge, &p.PatientSex, &p.Status,
		&p.Modality, &p.ProcedureName, &p.ProcedureDate, &p.ProcedureTime,
		&refID, &refName,
		&p.Diagnosis, &p.ProcedureNotes, &p.Notes, &p.FollowUp, &p.ProcedureCost,
		&p.CreatedByID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if refID != nil {
		name := ""
		if refName != nil {
			name = *refName
		}
		p.RefPhysician = &RefPhysician{PhysicianID: *refID, Name: name}
	}
	return &p, nil
}

// loadDoneBy fills the performer lists for the given logs in one query.
func (r *logRepoPG) loadDoneBy(ctx context.Context, logs []*Log) error {
	if len(logs) == 0 {
		return nil
	}
	byID := make(map[int]*Log, len(logs))
	ids := make([]int, 0, len(logs))
	for _, p := range logs {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}
	rows, err := r.pool.Query(ctx, `
		SELECT d.procedure_id, d.physician_id, ph.name
		FROM procedure_done_by d
		JOIN physicians ph ON ph.id = d.physician_id
		WHERE d.procedure_id = ANY($1)
		ORDER BY d.procedure_id, d.id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var procID int
		var d DoneBy
		if err := rows.Scan(&procID, &d.PhysicianID, &d.Name); err != nil {
			return err
		}
		if p, ok := byID[procID]; ok {
			p.DoneBy = append(p.DoneBy, d)
		}
	}
	return rows.Err()
}

func (r *logRepoPG) refPhysicianID(p *Log) *int {
	if p.RefPhysician == nil {
		return nil
	}
	id := p.RefPhysician.PhysicianID
	return &id
}

func (r *logRepoPG) Create(ctx context.Context, p *Log) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO procedure_log (patient_id, patient_name, patient_age, patient_sex, status,
			modality, procedure_name, procedure_date, procedure_time, ref_physician_id,
			diagnosis, procedure_notes, notes, follow_up, procedure_cost, created_by_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING id, created_at, updated_at`,
		p.PatientID, p.PatientName, p.PatientAge, p.PatientSex, p.Status,
		p.Modality, p.ProcedureName, p.ProcedureDate, p.ProcedureTime, r.refPhysicianID(p),
		p.Diagnosis, p.ProcedureNotes, p.Notes, p.FollowUp, p.ProcedureCost, p.CreatedByID).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return err
	}
	for _, d := range p.DoneBy {
		if _, err := tx.Exec(ctx, `
			INSERT INTO procedure_done_by (procedure_id, physician_id) VALUES ($1, $2)`,
			p.ID, d.PhysicianID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *logRepoPG) GetByID(ctx context.Context, id int) (*Log, error) {
	p, err := r.scan(r.pool.QueryRow(ctx, `
		SELECT `+logCols+` FROM procedure_log p
		LEFT JOIN physicians rp ON rp.id = p.ref_physician_id
		WHERE p.id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadDoneBy(ctx, []*Log{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *logRepoPG) List(ctx context.Context) ([]*Log, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+logCols+` FROM procedure_log p
		LEFT JOIN physicians rp ON rp.id = p.ref_physician_id
		ORDER BY p.procedure_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Log
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadDoneBy(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *logRepoPG) Update(ctx context.Context, p *Log) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		UPDATE procedure_log
		SET patient_id=$2, patient_name=$3, patient_age=$4, patient_sex=$5, status=$6,
			modality=$7, procedure_name=$8, procedure_date=$9, procedure_time=$10,
			ref_physician_id=$11, diagnosis=$12, procedure_notes=$13, notes=$14,
			follow_up=$15, procedure_cost=$16, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.PatientID, p.PatientName, p.PatientAge, p.PatientSex, p.Status,
		p.Modality, p.ProcedureName, p.ProcedureDate, p.ProcedureTime,
		r.refPhysicianID(p), p.Diagnosis, p.ProcedureNotes, p.Notes,
		p.FollowUp, p.ProcedureCost).Scan(&p.UpdatedAt)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM procedure_done_by WHERE procedure_id = $1`, p.ID); err != nil {
		return err
	}
	for _, d := range p.DoneBy {
		if _, err := tx.Exec(ctx, `
			INSERT INTO procedure_done_by (procedure_id, physician_id) VALUES ($1, $2)`,
			p.ID, d.PhysicianID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *logRepoPG) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM procedure_log WHERE id = $1`, id)
	return err
}

func (r *logRepoPG) ProcedureNames(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT procedure_name FROM procedure_log ORDER BY procedure_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (r *logRepoPG) MonthlyStats(ctx context.Context, from, to time.Time, modality string) ([]MonthStat, error) {
	sql := `
		SELECT date_trunc('month', procedure_date AT TIME ZONE 'UTC') AS month,
			COUNT(*), COALESCE(SUM(procedure_cost), 0)
		FROM procedure_log
		WHERE procedure_date >= $1 AND procedure_date <= $2`
	args := []interface{}{from, to}
	if modality != "" {
		sql += ` AND modality = $3`
		args = append(args, modality)
	}
	sql += ` GROUP BY month ORDER BY month`
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stats []MonthStat
	for rows.Next() {
		var s MonthStat
		if err := rows.Scan(&s.Month, &s.Count, &s.Cost); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *logRepoPG) ModalityCounts(ctx context.Context, from, to time.Time) (map[string]int, error) {
	sql := `SELECT modality, COUNT(*) FROM procedure_log WHERE modality IS NOT NULL`
	var args []interface{}
	if !from.IsZero() {
		args = append(args, from)
		sql += ` AND procedure_date >= $1`
	}
	if !to.IsZero() {
		args = append(args, to)
		if len(args) == 1 {
			sql += ` AND procedure_date <= $1`
		} else {
			sql += ` AND procedure_date <= $2`
		}
	}
	sql += ` GROUP BY modality`
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var m string
		var n int
		if err := rows.Scan(&m, &n); err != nil {
			return nil, err
		}
		counts[m] = n
	}
	return counts, rows.Err()
}

func (r *logRepoPG) RefPhysicianCounts(ctx context.Context, from, to time.Time) ([]NameCount, error) {
	sql := `
		SELECT COALESCE(ph.name, 'Unknown'), COUNT(*)
		FROM procedure_log p
		LEFT JOIN physicians ph ON ph.id = p.ref_physician_id
		WHERE TRUE`
	var args []interface{}
	if !from.IsZero() {
		args = append(args, from)
		sql += ` AND p.procedure_date >= $1`
	}
	if !to.IsZero() {
		args = append(args, to)
		if len(args) == 1 {
			sql += ` AND p.procedure_date <= $1`
		} else {
			sql += ` AND p.procedure_date <= $2`
		}
	}
	sql += ` GROUP BY 1 ORDER BY 2 DESC`
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []NameCount
	for rows.Next() {
		var nc NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, err
		}
		out = append(out, nc)
	}
	return out, rows.Err()
}

func (r *logRepoPG) YearlyCounts(ctx context.Context, modality string) ([]YearCount, error) {
	sql := `
		SELECT EXTRACT(YEAR FROM procedure_date AT TIME ZONE 'UTC')::int AS year, COUNT(*)
		FROM procedure_log`
	var args []interface{}
	if modality != "" {
		args = append(args, modality)
		sql += ` WHERE modality = $1`
	}
	sql += ` GROUP BY year ORDER BY year`
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []YearCount
	for rows.Next() {
		var yc YearCount
		if err := rows.Scan(&yc.Year, &yc.Count); err != nil {
			return nil, err
		}
		out = append(out, yc)
	}
	return out, rows.Err()
}
