// Package dates localizes calendar dates to Spanish day strings and back.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// isoLayout matches the wire format expected by the appointments endpoint.
const isoLayout = "2006-01-02T15:04:05.000Z"

var spanishWeekdays = map[time.Weekday]string{
	time.Monday:    "Lunes",
	time.Tuesday:   "Martes",
	time.Wednesday: "Miercoles",
	time.Thursday:  "Jueves",
	time.Friday:    "Viernes",
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var monthNumbers = map[string]time.Month{
	"enero": time.January, "febrero": time.February, "marzo": time.March,
	"abril": time.April, "mayo": time.May, "junio": time.June,
	"julio": time.July, "agosto": time.August, "septiembre": time.September,
	"octubre": time.October, "noviembre": time.November, "diciembre": time.December,
}

// ParseError reports a localized day or time string that could not be
// resolved to a calendar instant.
type ParseError struct {
	Day    string
	Time   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dates: cannot parse %q %q: %s", e.Day, e.Time, e.Reason)
}

// FormatSpanish renders a weekday date as "<Weekday> <day> de <month>".
// Only Monday through Friday are supported; business-day generation never
// produces weekend dates.
func FormatSpanish(t time.Time) string {
	return fmt.Sprintf("%s %d de %s", spanishWeekdays[t.Weekday()], t.Day(), spanishMonths[t.Month()-1])
}

// NextBusinessDays returns the next n weekdays after now, formatted with
// FormatSpanish, in ascending order.
func NextBusinessDays(now time.Time, n int) []string {
	days := make([]string, 0, n)
	current := now
	for len(days) < n {
		current = current.AddDate(0, 0, 1)
		if wd := current.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days = append(days, FormatSpanish(current))
	}
	return days
}

// ToAbsoluteTimestamp resolves a localized day string ("<ignored> <day> de
// <month>") plus an "HH:MM" time into a calendar instant. The current year is
// assumed; if the composed instant is already past, the year rolls forward by
// one.
func ToAbsoluteTimestamp(dayStr, timeStr string, now time.Time) (time.Time, error) {
	parts := strings.Fields(dayStr)
	if len(parts) < 4 || parts[2] != "de" {
		return time.Time{}, &ParseError{Day: dayStr, Time: timeStr, Reason: "expected \"<weekday> <day> de <month>\""}
	}

	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, &ParseError{Day: dayStr, Time: timeStr, Reason: "day number is not numeric"}
	}

	month, ok := monthNumbers[strings.ToLower(parts[3])]
	if !ok {
		return time.Time{}, &ParseError{Day: dayStr, Time: timeStr, Reason: fmt.Sprintf("mes no reconocido: %s", parts[3])}
	}

	hourMin := strings.Split(timeStr, ":")
	if len(hourMin) != 2 {
		return time.Time{}, &ParseError{Day: dayStr, Time: timeStr, Reason: "time must be HH:MM"}
	}
	hour, err := strconv.Atoi(hourMin[0])
	if err != nil {
		return time.Time{}, &ParseError{Day: dayStr, Time: timeStr, Reason: "hour is not numeric"}
	}
	minute, err := strconv.Atoi(hourMin[1])
	if err != nil {
		return time.Time{}, &ParseError{Day: dayStr, Time: timeStr, Reason: "minute is not numeric"}
	}

	dt := time.Date(now.Year(), month, day, hour, minute, 0, 0, now.Location())
	if dt.Before(now) {
		dt = time.Date(now.Year()+1, month, day, hour, minute, 0, 0, now.Location())
	}
	return dt, nil
}

// ToISO converts a localized day plus "HH:MM" time into the ISO-8601 string
// the appointments endpoint expects.
func ToISO(dayStr, timeStr string, now time.Time) (string, error) {
	dt, err := ToAbsoluteTimestamp(dayStr, timeStr, now)
	if err != nil {
		return "", err
	}
	return dt.Format(isoLayout), nil
}
