package audit

import (
	"encoding/json"
	"time"
)

// ActionType classifies a recorded mutation.
type ActionType string

const (
	ActionCreate ActionType = "CREATE"
	ActionUpdate ActionType = "UPDATE"
	ActionDelete ActionType = "DELETE"
)

// Entry is one persisted audit record: who changed which row, and the row
// state before and after.
type Entry struct {
	ID            int             `json:"id" db:"id"`
	ActionType    ActionType      `json:"actionType" db:"action_type"`
	UserID        int             `json:"userId" db:"user_id"`
	Username      string          `json:"username" db:"username"`
	Timestamp     time.Time       `json:"timestamp" db:"timestamp"`
	AffectedTable string          `json:"affectedTable" db:"affected_table"`
	AffectedRowID string          `json:"affectedRowId" db:"affected_row_id"`
	DataBefore    json.RawMessage `json:"dataBefore,omitempty" db:"data_before"`
	DataAfter     json.RawMessage `json:"dataAfter,omitempty" db:"data_after"`
}

// Filter narrows an audit log listing. Zero values match everything.
type Filter struct {
	ActionType    string
	AffectedTable string
	UserID        int
	From          time.Time
	To            time.Time
}
