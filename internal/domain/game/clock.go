package game

// Advance moves the clock forward and re-derives day, hour and minute.
func (t *TimeState) Advance(minutes int) {
	if minutes <= 0 {
		return
	}
	t.TotalMinutes += minutes
	t.sync()
}

func (t *TimeState) sync() {
	t.Day = t.TotalMinutes/MinutesPerDay + 1
	t.Hour = (t.TotalMinutes % MinutesPerDay) / MinutesPerHour
	t.Minute = t.TotalMinutes % MinutesPerHour
}

// DaysPassed counts completed sim-days.
func (t TimeState) DaysPassed() int {
	return t.TotalMinutes / MinutesPerDay
}
