package procedure

import "time"

// DoneBy is a performing-physician reference on a log entry.
type DoneBy struct {
	PhysicianID int    `json:"physicianID" db:"physician_id"`
	Name        string `json:"name" db:"name"`
}

// RefPhysician is the resolved referring-physician reference.
type RefPhysician struct {
	PhysicianID int    `json:"physicianID" db:"physician_id"`
	Name        string `json:"name" db:"name"`
}

// Log is one completed procedure record. The filter, sort, and export
// pipeline treats these as immutable inputs and only derives views.
type Log struct {
	ID             int           `json:"procedureID" db:"id"`
	PatientID      string        `json:"patientID" db:"patient_id"`
	PatientName    string        `json:"patientName" db:"patient_name"`
	PatientAge     *int          `json:"patientAge,omitempty" db:"patient_age"`
	PatientSex     *string       `json:"patientSex,omitempty" db:"patient_sex"`
	Status         *string       `json:"status,omitempty" db:"status"`
	Modality       *string       `json:"modality,omitempty" db:"modality"`
	ProcedureName  string        `json:"procedureName" db:"procedure_name"`
	ProcedureDate  time.Time     `json:"procedureDate" db:"procedure_date"`
	ProcedureTime  *string       `json:"procedureTime,omitempty" db:"procedure_time"`
	DoneBy         []DoneBy      `json:"doneBy,omitempty"`
	RefPhysician   *RefPhysician `json:"refPhysicianObj,omitempty"`
	Diagnosis      *string       `json:"diagnosis,omitempty" db:"diagnosis"`
	ProcedureNotes *string       `json:"procedureNotesText,omitempty" db:"procedure_notes"`
	Notes          *string       `json:"notes,omitempty" db:"notes"`
	FollowUp       *string       `json:"followUp,omitempty" db:"follow_up"`
	ProcedureCost  *float64      `json:"procedureCost,omitempty" db:"procedure_cost"`
	CreatedByID    *int          `json:"createdById,omitempty" db:"created_by_id"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time     `json:"updatedAt" db:"updated_at"`
}

// Modalities enumerates the imaging modalities a procedure can use.
var Modalities = []string{"USG", "CT", "OT", "XF", "DSA"}

// Statuses enumerates patient admission statuses.
var Statuses = []string{"IP", "OP"}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
