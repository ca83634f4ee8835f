package procedure

import (
	"context"
	"time"
)

// Series is one named data series in a chart payload.
type Series struct {
	Name string    `json:"name"`
	Data []float64 `json:"data"`
}

// Chart is the shape every analytics endpoint returns. Single-series charts
// use Data; the monthly trend uses Series for cases and cost together.
type Chart struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data,omitempty"`
	Series []Series `json:"series,omitempty"`
}

// MonthlyTrend aggregates the trailing 12 calendar months (UTC), oldest
// first, zero-filling months with no cases.
func (s *Service) MonthlyTrend(ctx context.Context, modality string) (*Chart, error) {
	now := s.now().UTC()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	from := thisMonth.AddDate(0, -11, 0)
	to := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)

	stats, err := s.repo.MonthlyStats(ctx, from, to, modality)
	if err != nil {
		return nil, err
	}
	byMonth := make(map[time.Time]MonthStat, len(stats))
	for _, st := range stats {
		byMonth[st.Month] = st
	}

	chart := &Chart{Series: []Series{{Name: "Cases"}, {Name: "Cost"}}}
	for i := 0; i < 12; i++ {
		m := from.AddDate(0, i, 0)
		chart.Labels = append(chart.Labels, m.Format("Jan 2006"))
		st := byMonth[m]
		chart.Series[0].Data = append(chart.Series[0].Data, float64(st.Count))
		chart.Series[1].Data = append(chart.Series[1].Data, st.Cost)
	}
	return chart, nil
}

// ModalityBreakdown counts cases per modality over an optional date window,
// reporting every known modality even at zero.
func (s *Service) ModalityBreakdown(ctx context.Context, from, to time.Time) (*Chart, error) {
	counts, err := s.repo.ModalityCounts(ctx, from, to)
	if err != nil {
		return nil, err
	}
	chart := &Chart{}
	for _, m := range Modalities {
		chart.Labels = append(chart.Labels, m)
		chart.Data = append(chart.Data, counts[m])
	}
	return chart, nil
}

// ReferringPhysicianBreakdown counts cases per referring physician, most
// active first.
func (s *Service) ReferringPhysicianBreakdown(ctx context.Context, from, to time.Time) (*Chart, error) {
	counts, err := s.repo.RefPhysicianCounts(ctx, from, to)
	if err != nil {
		return nil, err
	}
	chart := &Chart{}
	for _, nc := range counts {
		chart.Labels = append(chart.Labels, nc.Name)
		chart.Data = append(chart.Data, nc.Count)
	}
	return chart, nil
}

// YearlyTrend counts cases per calendar year, optionally restricted to one
// modality.
func (s *Service) YearlyTrend(ctx context.Context, modality string) (*Chart, error) {
	counts, err := s.repo.YearlyCounts(ctx, modality)
	if err != nil {
		return nil, err
	}
	chart := &Chart{}
	for _, yc := range counts {
		chart.Labels = append(chart.Labels, fmtYear(yc.Year))
		chart.Data = append(chart.Data, yc.Count)
	}
	return chart, nil
}

func fmtYear(y int) string {
	return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006")
}
