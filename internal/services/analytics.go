package services

import (
	"context"
	"sort"

	"github.com/soaringjerry/valoracion/internal/models"
)

// DailyStats counts the reviews submitted on one UTC calendar day.
type DailyStats struct {
	Date  string `json:"date"`
	Total int    `json:"total"`
	Q1    int    `json:"q1"`
	Q2    int    `json:"q2"`
	Q3    int    `json:"q3"`
	Q4    int    `json:"q4"`
}

// Daily groups the review history by UTC day, oldest day first.
func (s *ReviewService) Daily(ctx context.Context, claims *AccountClaims) ([]DailyStats, error) {
	rs, err := s.List(ctx, claims)
	if err != nil {
		return nil, err
	}
	return buildDailyStats(rs), nil
}

func buildDailyStats(rs []*models.Review) []DailyStats {
	byDay := map[string]*DailyStats{}
	for _, r := range rs {
		day := r.CreatedAt.UTC().Format("2006-01-02")
		d := byDay[day]
		if d == nil {
			d = &DailyStats{Date: day}
			byDay[day] = d
		}
		d.Total++
		if r.Q1 {
			d.Q1++
		}
		if r.Q2 {
			d.Q2++
		}
		if r.Q3 {
			d.Q3++
		}
		if r.Q4 {
			d.Q4++
		}
	}
	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)
	out := make([]DailyStats, 0, len(days))
	for _, d := range days {
		out = append(out, *byDay[d])
	}
	return out
}
