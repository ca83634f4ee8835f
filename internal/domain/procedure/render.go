package procedure

import (
	"fmt"
	"strings"

	"github.com/NLight-n/IRLog/internal/domain/settings"
)

// CellValue renders one column of one record as plain text, using the same
// rules the live table uses. Rich display values are reduced to their text.
func CellValue(p *Log, key string, st *settings.Settings) string {
	switch key {
	case "patientID":
		return p.PatientID
	case "patientName":
		return p.PatientName
	case "patientAgeSex":
		if p.PatientAge == nil && p.PatientSex == nil {
			return ""
		}
		age := ""
		if p.PatientAge != nil {
			age = fmt.Sprint(*p.PatientAge)
		}
		return fmt.Sprintf("%s/%s", age, deref(p.PatientSex))
	case "patientStatus":
		return deref(p.Status)
	case "modality":
		return deref(p.Modality)
	case "procedureName":
		return p.ProcedureName
	case "procedureDate":
		return st.FormatDate(p.ProcedureDate)
	case "procedureTime":
		if p.ProcedureTime == nil {
			return ""
		}
		return st.FormatTime(*p.ProcedureTime)
	case "doneBy":
		names := make([]string, len(p.DoneBy))
		for i, d := range p.DoneBy {
			names[i] = d.Name
		}
		return strings.Join(names, ", ")
	case "refPhysician":
		if p.RefPhysician == nil {
			return ""
		}
		return p.RefPhysician.Name
	case "diagnosis":
		return deref(p.Diagnosis)
	case "procedureNotes":
		if v := deref(p.ProcedureNotes); v != "" {
			return v
		}
		if v := deref(p.Notes); v != "" {
			return v
		}
		return "-"
	case "notes":
		return deref(p.Notes)
	case "followUp":
		return deref(p.FollowUp)
	case "procedureCost":
		if p.ProcedureCost == nil {
			return "-"
		}
		return st.FormatCost(*p.ProcedureCost)
	}
	return ""
}
