package histdata

import (
	"time"

	"fx-data/internal/model"
)

// closeHour is 17:00 in the reference zone: New York close on Friday, Wellington open on Sunday.
const closeHour = 17

// IsWeekend reports whether t falls in [Fri 17:00, Sun 17:00) in ref.
func IsWeekend(t time.Time, ref *time.Location) bool {
	t = t.In(ref)
	switch t.Weekday() {
	case time.Friday:
		return t.Hour() >= closeHour
	case time.Saturday:
		return true
	case time.Sunday:
		return t.Hour() < closeHour
	}
	return false
}

// DropWeekends returns the ticks outside the weekend window, order preserved.
func DropWeekends(series model.Series, ref *time.Location) model.Series {
	out := make(model.Series, 0, len(series))
	for _, tk := range series {
		if !IsWeekend(tk.Time, ref) {
			out = append(out, tk)
		}
	}
	return out
}
