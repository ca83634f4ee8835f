// Package columns maintains per-user table column preferences: an ordered list
// of visible and hidden columns reconciled against the system-wide defaults as
// those defaults evolve.
package columns

// Column is a single entry in a user's column preference list. Order within
// the list determines left-to-right table order.
type Column struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Visible bool   `json:"visible"`
}

// Defaults is the system-wide default column set for the procedure log table.
// Every resolved preference list covers exactly these keys.
func Defaults() []Column {
	return []Column{
		{Key: "patientID", Label: "Patient ID", Visible: true},
		{Key: "patientName", Label: "Patient Name", Visible: true},
		{Key: "patientAgeSex", Label: "Age/Sex", Visible: true},
		{Key: "patientStatus", Label: "Status", Visible: true},
		{Key: "modality", Label: "Modality", Visible: true},
		{Key: "procedureName", Label: "Procedure Name", Visible: true},
		{Key: "procedureDate", Label: "Date", Visible: true},
		{Key: "procedureTime", Label: "Time", Visible: true},
		{Key: "doneBy", Label: "Done By", Visible: true},
		{Key: "refPhysician", Label: "Referring Physician", Visible: true},
		{Key: "diagnosis", Label: "Diagnosis", Visible: true},
		{Key: "procedureNotes", Label: "Procedure Notes", Visible: true},
		{Key: "followUp", Label: "Follow-up", Visible: true},
		{Key: "notes", Label: "Notes", Visible: true},
		{Key: "procedureCost", Label: "Cost", Visible: true},
	}
}

// Resolve reconciles a user's saved column list against the current defaults.
// Saved entries whose key no longer exists are dropped; defaults missing from
// the saved list are appended at the end with their default visibility. The
// result contains exactly one entry per default key, with saved entries
// keeping their position and visibility.
func Resolve(user, defaults []Column) []Column {
	byKey := make(map[string]Column, len(defaults))
	for _, d := range defaults {
		byKey[d.Key] = d
	}

	resolved := make([]Column, 0, len(defaults))
	seen := make(map[string]bool, len(defaults))
	for _, u := range user {
		d, ok := byKey[u.Key]
		if !ok || seen[u.Key] {
			continue
		}
		// Labels follow the current defaults so renames propagate.
		resolved = append(resolved, Column{Key: u.Key, Label: d.Label, Visible: u.Visible})
		seen[u.Key] = true
	}
	for _, d := range defaults {
		if !seen[d.Key] {
			resolved = append(resolved, d)
		}
	}
	return resolved
}

// Visible returns the visible sublist in order.
func Visible(cols []Column) []Column {
	var out []Column
	for _, c := range cols {
		if c.Visible {
			out = append(out, c)
		}
	}
	return out
}

// Available returns the defaults not currently in the visible sublist.
func Available(cols []Column, defaults []Column) []Column {
	visible := make(map[string]bool)
	for _, c := range cols {
		if c.Visible {
			visible[c.Key] = true
		}
	}
	var out []Column
	for _, d := range defaults {
		if !visible[d.Key] {
			out = append(out, d)
		}
	}
	return out
}

// MoveUp swaps the entry with key k with its previous neighbor among the
// visible entries. Hidden entries between them are skipped over.
func MoveUp(cols []Column, k string) []Column {
	out := append([]Column(nil), cols...)
	idx := indexOf(out, k)
	if idx <= 0 || !out[idx].Visible {
		return out
	}
	for prev := idx - 1; prev >= 0; prev-- {
		if out[prev].Visible {
			out[prev], out[idx] = out[idx], out[prev]
			break
		}
	}
	return out
}

// MoveDown swaps the entry with key k with its next visible neighbor.
func MoveDown(cols []Column, k string) []Column {
	out := append([]Column(nil), cols...)
	idx := indexOf(out, k)
	if idx < 0 || !out[idx].Visible {
		return out
	}
	for next := idx + 1; next < len(out); next++ {
		if out[next].Visible {
			out[next], out[idx] = out[idx], out[next]
			break
		}
	}
	return out
}

// Add marks the entry with key k visible. No-op if the key is unknown.
func Add(cols []Column, k string) []Column {
	out := append([]Column(nil), cols...)
	if idx := indexOf(out, k); idx >= 0 {
		out[idx].Visible = true
	}
	return out
}

// Remove marks the entry with key k hidden. No-op if the key is unknown.
func Remove(cols []Column, k string) []Column {
	out := append([]Column(nil), cols...)
	if idx := indexOf(out, k); idx >= 0 {
		out[idx].Visible = false
	}
	return out
}

// Persist builds the full ordered list to save: the visible columns in their
// configured order followed by the remaining defaults marked hidden, so that a
// round-trip through Resolve reproduces the same view.
func Persist(visible, defaults []Column) []Column {
	out := make([]Column, 0, len(defaults))
	seen := make(map[string]bool, len(defaults))
	for _, v := range visible {
		if seen[v.Key] {
			continue
		}
		out = append(out, Column{Key: v.Key, Label: v.Label, Visible: true})
		seen[v.Key] = true
	}
	for _, d := range defaults {
		if !seen[d.Key] {
			out = append(out, Column{Key: d.Key, Label: d.Label, Visible: false})
		}
	}
	return out
}

func indexOf(cols []Column, k string) int {
	for i, c := range cols {
		if c.Key == k {
			return i
		}
	}
	return -1
}
