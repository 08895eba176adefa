package model

import (
	"time"

	"classroom-subscription/internal/domain"
)

type DurationType string

const (
	DurationDay   DurationType = "day"
	DurationWeek  DurationType = "week"
	DurationMonth DurationType = "month"
	DurationYear  DurationType = "year"
)

// Plan represents a purchasable subscription tier with a fixed duration and
// a price in minor currency units (cents).
type Plan struct {
	ID            string
	Title         string
	Description   string
	PriceCents    int64
	DurationValue int
	DurationType  DurationType
	CreatedAt     time.Time
}

func (p *Plan) IsZero() bool { return p == nil || p.ID == "" }

// NewPlan validates and constructs a plan.
func NewPlan(id, title, description string, priceCents int64, durationValue int, durationType DurationType) (*Plan, error) {
	if id == "" || title == "" || priceCents <= 0 || durationValue <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	switch durationType {
	case DurationDay, DurationWeek, DurationMonth, DurationYear:
	default:
		return nil, domain.ErrInvalidArgument
	}
	return &Plan{
		ID:            id,
		Title:         title,
		Description:   description,
		PriceCents:    priceCents,
		DurationValue: durationValue,
		DurationType:  durationType,
		CreatedAt:     time.Now(),
	}, nil
}

// ExpiryFrom adds the plan duration to the anchor instant using
// calendar-aware addition. Month and year adds clamp to the last day of the
// target month, so Jan 31 + 1 month lands on Feb 29 in a leap year rather
// than rolling over into March. Weeks are exactly 7*n days.
func (p *Plan) ExpiryFrom(anchor time.Time) time.Time {
	switch p.DurationType {
	case DurationDay:
		return anchor.AddDate(0, 0, p.DurationValue)
	case DurationWeek:
		return anchor.AddDate(0, 0, p.DurationValue*7)
	case DurationMonth:
		return addMonthsClamped(anchor, p.DurationValue)
	case DurationYear:
		return addMonthsClamped(anchor, p.DurationValue*12)
	}
	return anchor
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	// normalize target year/month without letting the day overflow
	total := int(m) - 1 + months
	ty := y + total/12
	tm := time.Month(total%12 + 1)
	if total < 0 {
		// Go's % keeps sign; shift into range
		ty = y + (total-11)/12
		tm = time.Month((total%12+12)%12 + 1)
	}
	if last := daysIn(ty, tm); d > last {
		d = last
	}
	return time.Date(ty, tm, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
