package settings

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

// -- Mock Repository --

type mockSettingsRepo struct {
	current *Settings
	logo    *Logo
}

func (m *mockSettingsRepo) Get(_ context.Context) (*Settings, error) {
	if m.current == nil {
		m.current = Default()
	}
	out := *m.current
	return &out, nil
}

func (m *mockSettingsRepo) Update(_ context.Context, s *Settings) error {
	cp := *s
	m.current = &cp
	return nil
}

func (m *mockSettingsRepo) GetLogo(_ context.Context) (*Logo, error) {
	if m.logo == nil {
		return nil, errNoLogo
	}
	return m.logo, nil
}

func (m *mockSettingsRepo) UpdateLogo(_ context.Context, l *Logo) error {
	m.logo = l
	return nil
}

var errNoLogo = errors.New("no logo")

func strp(s string) *string { return &s }

func TestUpdatePartialPatch(t *testing.T) {
	svc := NewService(&mockSettingsRepo{})

	got, err := svc.Update(context.Background(), UpdateInput{
		AppHeading: strp("Cath Lab Log"),
		Currency:   strp("₹"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.AppHeading != "Cath Lab Log" || got.Currency != "₹" {
		t.Errorf("patched fields not applied: %+v", got)
	}
	if got.DateFormat != DateFormatDMY {
		t.Errorf("untouched field changed: %s", got.DateFormat)
	}
}

func TestUpdateAcceptsEveryDateFormat(t *testing.T) {
	svc := NewService(&mockSettingsRepo{})

	for _, f := range []string{DateFormatDMY, DateFormatMDY, DateFormatISO, DateFormatDMYDash} {
		got, err := svc.Update(context.Background(), UpdateInput{DateFormat: strp(f)})
		if err != nil {
			t.Errorf("Update(dateFormat=%s): %v", f, err)
			continue
		}
		if got.DateFormat != f {
			t.Errorf("dateFormat = %q, want %q", got.DateFormat, f)
		}
	}
}

func TestUpdateRejectsInvalidFormats(t *testing.T) {
	svc := NewService(&mockSettingsRepo{})

	if _, err := svc.Update(context.Background(), UpdateInput{DateFormat: strp("YYYY/DD/MM")}); err == nil {
		t.Error("expected error for invalid dateFormat")
	}
	if _, err := svc.Update(context.Background(), UpdateInput{TimeFormat: strp("military")}); err == nil {
		t.Error("expected error for invalid timeFormat")
	}
	if _, err := svc.Update(context.Background(), UpdateInput{AppHeading: strp("")}); err == nil {
		t.Error("expected error for empty heading")
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2025, 3, 7, 10, 30, 0, 0, time.UTC)
	cases := []struct {
		format string
		want   string
	}{
		{DateFormatDMY, "07/03/2025"},
		{DateFormatMDY, "03/07/2025"},
		{DateFormatISO, "2025-03-07"},
		{DateFormatDMYDash, "07-03-2025"},
		{"bogus", "07/03/2025"},
	}
	for _, tc := range cases {
		s := &Settings{DateFormat: tc.format}
		if got := s.FormatDate(d); got != tc.want {
			t.Errorf("FormatDate(%s) = %q, want %q", tc.format, got, tc.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	s12 := &Settings{TimeFormat: TimeFormat12}
	s24 := &Settings{TimeFormat: TimeFormat24}

	if got := s12.FormatTime("14:05"); got != "2:05 PM" {
		t.Errorf("12hr format = %q", got)
	}
	if got := s24.FormatTime("14:05"); got != "14:05" {
		t.Errorf("24hr format = %q", got)
	}
	if got := s12.FormatTime("not-a-time"); got != "not-a-time" {
		t.Errorf("unparseable time should pass through, got %q", got)
	}
}

func TestUpdateLogo(t *testing.T) {
	svc := NewService(&mockSettingsRepo{})
	ctx := context.Background()

	if err := svc.UpdateLogo(ctx, []byte("png-bytes"), "image/svg+xml"); err == nil {
		t.Error("expected error for disallowed mime type")
	}
	if err := svc.UpdateLogo(ctx, bytes.Repeat([]byte("x"), maxLogoBytes+1), "image/png"); err == nil {
		t.Error("expected error for oversized logo")
	}
	if err := svc.UpdateLogo(ctx, nil, "image/png"); err == nil {
		t.Error("expected error for empty logo")
	}

	if err := svc.UpdateLogo(ctx, []byte("png-bytes"), "image/png"); err != nil {
		t.Fatalf("UpdateLogo: %v", err)
	}
	l, err := svc.GetLogo(ctx)
	if err != nil {
		t.Fatalf("GetLogo: %v", err)
	}
	if l.MimeType != "image/png" || !bytes.Equal(l.Data, []byte("png-bytes")) {
		t.Errorf("stored logo = %q %q", l.MimeType, l.Data)
	}
}

func TestFormatCost(t *testing.T) {
	s := &Settings{Currency: "$"}
	if got := s.FormatCost(150); got != "$150" {
		t.Errorf("whole cost = %q", got)
	}
	if got := s.FormatCost(99.5); got != "$99.50" {
		t.Errorf("fractional cost = %q", got)
	}
}
