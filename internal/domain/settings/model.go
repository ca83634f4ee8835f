package settings

import (
	"fmt"
	"time"
)

// Settings is the department-wide display configuration. A single row exists;
// it is created with defaults on first read.
type Settings struct {
	ID            int       `json:"id" db:"id"`
	AppHeading    string    `json:"appHeading" db:"app_heading"`
	AppSubheading string    `json:"appSubheading" db:"app_subheading"`
	Currency      string    `json:"currency" db:"currency"`
	DateFormat    string    `json:"dateFormat" db:"date_format"`
	TimeFormat    string    `json:"timeFormat" db:"time_format"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

const (
	DateFormatDMY     = "DD/MM/YYYY"
	DateFormatMDY     = "MM/DD/YYYY"
	DateFormatISO     = "YYYY-MM-DD"
	DateFormatDMYDash = "DD-MM-YYYY"

	TimeFormat12 = "12hr"
	TimeFormat24 = "24hr"
)

// Logo is the application logo image shown in the navbar and on the login
// page. Stored inline on the settings row rather than in object storage
// because it is a single small image read on every page load.
type Logo struct {
	Data     []byte
	MimeType string
}

// Default returns the settings used before anyone has saved a configuration.
func Default() *Settings {
	return &Settings{
		ID:            1,
		AppHeading:    "IR Procedure Log",
		AppSubheading: "Interventional Radiology",
		Currency:      "$",
		DateFormat:    DateFormatDMY,
		TimeFormat:    TimeFormat24,
	}
}

var dateLayouts = map[string]string{
	DateFormatDMY:     "02/01/2006",
	DateFormatMDY:     "01/02/2006",
	DateFormatISO:     "2006-01-02",
	DateFormatDMYDash: "02-01-2006",
}

// FormatDate renders t according to the configured date format. Unknown
// formats fall back to DD/MM/YYYY.
func (s *Settings) FormatDate(t time.Time) string {
	layout, ok := dateLayouts[s.DateFormat]
	if !ok {
		layout = dateLayouts[DateFormatDMY]
	}
	return t.UTC().Format(layout)
}

// FormatTime renders a clock time stored as "HH:MM" according to the
// configured time format. Values that do not parse are returned unchanged.
func (s *Settings) FormatTime(hhmm string) string {
	if s.TimeFormat != TimeFormat12 {
		return hhmm
	}
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return hhmm
	}
	return t.Format("3:04 PM")
}

// FormatCost renders a cost with the configured currency symbol prefixed.
// Whole amounts print without decimals.
func (s *Settings) FormatCost(amount float64) string {
	if amount == float64(int64(amount)) {
		return fmt.Sprintf("%s%d", s.Currency, int64(amount))
	}
	return fmt.Sprintf("%s%.2f", s.Currency, amount)
}

var validDateFormats = map[string]bool{
	DateFormatDMY:     true,
	DateFormatMDY:     true,
	DateFormatISO:     true,
	DateFormatDMYDash: true,
}

var validTimeFormats = map[string]bool{
	TimeFormat12: true,
	TimeFormat24: true,
}
