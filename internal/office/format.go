package office

import (
	"fmt"
	"time"
)

const (
	dateLayout = "Monday, 2006-01-02"
	timeLayout = "15:04"
)

func NewRecord(date, tm, room, doctor, patient string) Record {
	return Record{
		Date:    date,
		Time:    tm,
		Room:    room,
		Doctor:  doctor,
		Patient: patient,
	}
}

// Map returns the record as a flat field -> value mapping.
func (r Record) Map() map[string]string {
	return map[string]string{
		"Date":    r.Date,
		"Time":    r.Time,
		"Room":    r.Room,
		"Doctor":  r.Doctor,
		"Patient": r.Patient,
	}
}

func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func FormatTime(t time.Time) string {
	return t.Format(timeLayout)
}

// InWeek reports whether t falls between Monday 00:00:00 and Sunday 23:59:59
// of the calendar week containing week. A zero week matches everything.
func InWeek(t, week time.Time) bool {
	if week.IsZero() {
		return true
	}
	start, end := WeekBounds(week)
	return !t.Before(start) && !t.After(end)
}

// WeekBounds returns Monday 00:00:00 and Sunday 23:59:59 of the week
// containing day, in day's location.
func WeekBounds(day time.Time) (time.Time, time.Time) {
	y, m, d := day.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	offset := (int(midnight.Weekday()) + 6) % 7
	start := midnight.AddDate(0, 0, -offset)
	sy, sm, sd := start.AddDate(0, 0, 6).Date()
	end := time.Date(sy, sm, sd, 23, 59, 59, 0, day.Location())
	return start, end
}

func doctorLabel(d Doctor, duplicated bool) string {
	if duplicated {
		return fmt.Sprintf("%s (%d)", d.name, d.id)
	}
	return d.name
}
