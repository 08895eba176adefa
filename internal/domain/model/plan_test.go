package model_test

import (
	"testing"
	"time"

	"classroom-subscription/internal/domain/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPlan_ExpiryFrom(t *testing.T) {
	cases := []struct {
		name   string
		value  int
		unit   model.DurationType
		anchor time.Time
		want   time.Time
	}{
		{"seven days", 7, model.DurationDay, date(2024, time.March, 1), date(2024, time.March, 8)},
		{"two weeks", 2, model.DurationWeek, date(2024, time.March, 1), date(2024, time.March, 15)},
		{"plain month", 1, model.DurationMonth, date(2024, time.March, 10), date(2024, time.April, 10)},
		{"month-end clamps to leap February", 1, model.DurationMonth, date(2024, time.January, 31), date(2024, time.February, 29)},
		{"month-end clamps to non-leap February", 1, model.DurationMonth, date(2023, time.January, 31), date(2023, time.February, 28)},
		{"31st into 30-day month", 1, model.DurationMonth, date(2024, time.March, 31), date(2024, time.April, 30)},
		{"months across year boundary", 3, model.DurationMonth, date(2024, time.November, 15), date(2025, time.February, 15)},
		{"leap day plus one year", 1, model.DurationYear, date(2024, time.February, 29), date(2025, time.February, 28)},
		{"two years", 2, model.DurationYear, date(2024, time.June, 1), date(2026, time.June, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &model.Plan{ID: "p", Title: "t", PriceCents: 100, DurationValue: tc.value, DurationType: tc.unit}
			got := p.ExpiryFrom(tc.anchor)
			if !got.Equal(tc.want) {
				t.Errorf("ExpiryFrom(%s) = %s, want %s", tc.anchor, got, tc.want)
			}
		})
	}
}

func TestPlan_ExpiryFrom_KeepsClock(t *testing.T) {
	p := &model.Plan{ID: "p", Title: "t", PriceCents: 100, DurationValue: 1, DurationType: model.DurationMonth}
	anchor := time.Date(2024, time.January, 31, 14, 30, 5, 0, time.UTC)
	got := p.ExpiryFrom(anchor)
	if got.Hour() != 14 || got.Minute() != 30 || got.Second() != 5 {
		t.Errorf("expected time-of-day preserved, got %s", got)
	}
}

func TestNewPlan_Validation(t *testing.T) {
	if _, err := model.NewPlan("id", "Basic", "", 500, 1, model.DurationMonth); err != nil {
		t.Fatalf("valid plan rejected: %v", err)
	}
	invalid := []struct {
		name  string
		title string
		price int64
		value int
		unit  model.DurationType
	}{
		{"empty title", "", 500, 1, model.DurationMonth},
		{"zero price", "Basic", 0, 1, model.DurationMonth},
		{"zero duration", "Basic", 500, 0, model.DurationMonth},
		{"bad unit", "Basic", 500, 1, model.DurationType("fortnight")},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := model.NewPlan("id", tc.title, "", tc.price, tc.value, tc.unit); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
