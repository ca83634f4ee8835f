package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/NLight-n/IRLog/internal/platform/auth"
)

// Recorder persists audit entries for data mutations. Recording is
// best-effort: a failed audit write is logged and never fails the mutation
// that triggered it.
type Recorder struct {
	repo   Repository
	logger zerolog.Logger
}

func NewRecorder(repo Repository, logger zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record writes one audit entry. The acting user is taken from ctx. Before
// and after are marshalled to JSON; pass nil for the side that does not
// apply (nil before on CREATE, nil after on DELETE).
func (r *Recorder) Record(ctx context.Context, action ActionType, table, rowID string, before, after interface{}) {
	if r == nil || r.repo == nil {
		return
	}
	e := &Entry{
		ActionType:    action,
		UserID:        auth.UserIDFromContext(ctx),
		AffectedTable: table,
		AffectedRowID: rowID,
	}
	var err error
	if before != nil {
		if e.DataBefore, err = json.Marshal(before); err != nil {
			r.logError(table, rowID, fmt.Errorf("marshal before: %w", err))
			return
		}
	}
	if after != nil {
		if e.DataAfter, err = json.Marshal(after); err != nil {
			r.logError(table, rowID, fmt.Errorf("marshal after: %w", err))
			return
		}
	}
	if err := r.repo.Insert(ctx, e); err != nil {
		r.logError(table, rowID, err)
	}
}

func (r *Recorder) logError(table, rowID string, err error) {
	r.logger.Error().
		Err(err).
		Str("table", table).
		Str("row_id", rowID).
		Msg("audit record failed")
}
