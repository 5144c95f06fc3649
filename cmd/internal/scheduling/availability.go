package scheduling

import (
	"time"

	"healtogether/cmd/internal/domain/entity"
)

// DefaultWindowDays is how far ahead providers can be booked.
const DefaultWindowDays = 7

// Slot is a template slot projected onto a calendar date.
type Slot struct {
	Date string
	Time string
	Day  string
}

// Resolve projects template onto windowDays consecutive days starting at
// anchor (inclusive) and drops every (date, time) pair held by a live
// appointment in booked. Slots keep template order within a day; they are
// not sorted by time of day.
func Resolve(template entity.WeeklyTemplate, anchor time.Time, windowDays int, booked []*entity.Appointment) []Slot {
	slots := make([]Slot, 0)
	if !template.HasAnySlot() || windowDays <= 0 {
		return slots
	}

	taken := make(map[string]struct{}, len(booked))
	for _, appt := range booked {
		if appt.Status.IsLive() {
			taken[appt.Date+" "+appt.Time] = struct{}{}
		}
	}

	start := StartOfDay(anchor)
	for i := 0; i < windowDays; i++ {
		day := start.AddDate(0, 0, i)
		name := Weekday(day)
		date := day.Format(DateLayout)

		for _, t := range template.SlotsOn(name) {
			if _, ok := taken[date+" "+t]; ok {
				continue
			}
			slots = append(slots, Slot{Date: date, Time: t, Day: name})
		}
	}
	return slots
}
