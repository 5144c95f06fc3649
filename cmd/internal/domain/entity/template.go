package entity

// DaySlots is one entry of a weekly availability template. Slots are "HH:MM"
// strings and keep the order in which the provider declared them.
type DaySlots struct {
	Day   string   `json:"day" bson:"day"`
	Slots []string `json:"slots" bson:"slots"`
}

// WeeklyTemplate holds at most one DaySlots entry per lower-case weekday name.
type WeeklyTemplate []DaySlots

// HasAnySlot reports whether at least one day declares a slot.
func (w WeeklyTemplate) HasAnySlot() bool {
	for _, d := range w {
		if len(d.Slots) > 0 {
			return true
		}
	}
	return false
}

// SlotsOn returns the slots declared for day, or nil when the day is absent.
func (w WeeklyTemplate) SlotsOn(day string) []string {
	for _, d := range w {
		if d.Day == day {
			return d.Slots
		}
	}
	return nil
}

// Offers matches time by exact string equality.
func (w WeeklyTemplate) Offers(day, time string) bool {
	for _, s := range w.SlotsOn(day) {
		if s == time {
			return true
		}
	}
	return false
}

// DuplicateDay returns the first weekday declared more than once.
func (w WeeklyTemplate) DuplicateDay() (string, bool) {
	seen := make(map[string]struct{}, len(w))
	for _, d := range w {
		if _, ok := seen[d.Day]; ok {
			return d.Day, true
		}
		seen[d.Day] = struct{}{}
	}
	return "", false
}
