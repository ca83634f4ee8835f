package worklist

import (
	"fmt"
	"strings"
	"time"
)

// Stage is the worklist column a work item currently occupies.
type Stage string

const (
	StagePending      Stage = "Pending"
	StageOnEvaluation Stage = "OnEvaluation"
	StageScheduled    Stage = "Scheduled"
	StageDone         Stage = "Done"
)

// Stages lists the board columns in display order.
var Stages = []Stage{StagePending, StageOnEvaluation, StageScheduled, StageDone}

var validStages = map[Stage]bool{
	StagePending:      true,
	StageOnEvaluation: true,
	StageScheduled:    true,
	StageDone:         true,
}

// Normalize maps unrecognized stage values to Pending so a corrupt row still
// lands on the board.
func (s Stage) Normalize() Stage {
	if validStages[s] {
		return s
	}
	return StagePending
}

// WorkItem is one case moving across the worklist board. Each stage has a
// companion date field stamped when the item enters that stage; fields for
// stages never visited stay nil.
type WorkItem struct {
	ID            int        `json:"id" db:"id"`
	PatientID     string     `json:"patientID" db:"patient_id"`
	PatientName   string     `json:"patientName" db:"patient_name"`
	ProcedureName string     `json:"procedureName" db:"procedure_name"`
	Modality      *string    `json:"modality,omitempty" db:"modality"`
	Notes         *string    `json:"notes,omitempty" db:"notes"`
	Stage         Stage      `json:"stage" db:"stage"`
	DateAdded     *time.Time `json:"dateAdded,omitempty" db:"date_added"`
	DateEvaluated *time.Time `json:"dateEvaluated,omitempty" db:"date_evaluated"`
	DateScheduled *time.Time `json:"dateScheduled,omitempty" db:"date_scheduled"`
	DateDone      *time.Time `json:"dateDone,omitempty" db:"date_done"`
	CreatedByID   *int       `json:"createdById,omitempty" db:"created_by_id"`
	UpdatedByID   *int       `json:"updatedById,omitempty" db:"updated_by_id"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
}

// StageDate returns a pointer to the date field paired with the given stage.
func (w *WorkItem) StageDate(s Stage) **time.Time {
	switch s {
	case StagePending:
		return &w.DateAdded
	case StageOnEvaluation:
		return &w.DateEvaluated
	case StageScheduled:
		return &w.DateScheduled
	case StageDone:
		return &w.DateDone
	}
	return nil
}

const scheduledLanePrefix = "Scheduled__"

// Lane identifies a drop target on the board: a plain stage, or for the
// Scheduled column a specific day sub-lane.
type Lane struct {
	Stage Stage
	// Date is set only for Scheduled sub-lanes; zero otherwise.
	Date time.Time
}

// ParseLane parses a lane descriptor. Plain stage names map to their stage;
// "Scheduled__<RFC3339>" carries the target schedule date.
func ParseLane(desc string) (Lane, error) {
	if strings.HasPrefix(desc, scheduledLanePrefix) {
		raw := strings.TrimPrefix(desc, scheduledLanePrefix)
		d, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Lane{}, fmt.Errorf("invalid scheduled lane date %q: %w", raw, err)
		}
		return Lane{Stage: StageScheduled, Date: d.UTC()}, nil
	}
	s := Stage(desc)
	if !validStages[s] {
		return Lane{}, fmt.Errorf("unknown lane %q", desc)
	}
	return Lane{Stage: s}, nil
}

// String renders the descriptor form ParseLane accepts.
func (l Lane) String() string {
	if l.Stage == StageScheduled && !l.Date.IsZero() {
		return scheduledLanePrefix + l.Date.UTC().Format(time.RFC3339)
	}
	return string(l.Stage)
}
