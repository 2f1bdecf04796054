package core

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the calendar-date wire format used by every record.
const DateLayout = "2006-01-02"

var (
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
	scopePattern = regexp.MustCompile(`^\d{4}(-\d{2})?$`)
)

// Date is a calendar day stored at midnight UTC.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t as seen in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate accepts strict YYYY-MM-DD strings naming a real calendar day.
// Anything else is reported as absent rather than as an error.
func ParseDate(s string) (Date, bool) {
	if !datePattern.MatchString(s) {
		return Date{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, false
	}
	return Date{Time: t}, true
}

// FormatDate renders the date from its own calendar fields, never shifted to UTC.
func FormatDate(d Date) string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year(), d.Month(), d.Day())
}

func (d Date) String() string {
	return FormatDate(d)
}

// MarshalJSON writes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD" or an empty string for the zero date.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, ok := ParseDate(s)
	if !ok {
		return fmt.Errorf("invalid calendar date %q", s)
	}
	*d = parsed
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// Compare returns -1, 0 or +1 comparing calendar days.
func (d Date) Compare(o Date) int {
	return d.Time.Compare(o.Time)
}

// AddMonths moves d by n calendar months. When the day does not exist in the
// target month it is clamped to that month's last day (Jan 31 + 1 -> Feb 28/29).
func AddMonths(d Date, n int) Date {
	total := d.Year()*12 + d.Month() - 1 + n
	year, month := total/12, total%12
	if month < 0 {
		month += 12
		year--
	}
	day := min(d.Day(), DaysInMonth(year, month+1))
	return NewDate(year, month+1, day)
}

// DaysInMonth returns the number of days of month (1-12) in year.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysBetween returns the signed number of whole days from a to b.
func DaysBetween(a, b Date) int {
	return int(math.Round(b.Sub(a.Time).Hours() / 24))
}

// MonthKey formats a "YYYY-MM" key.
func MonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// YearScope formats a "YYYY" scope.
func YearScope(year int) string {
	return fmt.Sprintf("%04d", year)
}

// ParseMonth splits a "YYYY-MM" key. ok is false for malformed keys or months
// outside 1-12.
func ParseMonth(key string) (year, month int, ok bool) {
	if !monthPattern.MatchString(key) {
		return 0, 0, false
	}
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return 0, 0, false
	}
	return t.Year(), int(t.Month()), true
}

// InScope reports whether date falls inside scope, a "YYYY" or "YYYY-MM"
// prefix. An empty scope matches every valid date; a malformed scope or date
// matches nothing.
func InScope(date, scope string) bool {
	if _, ok := ParseDate(date); !ok {
		return false
	}
	if scope == "" {
		return true
	}
	if !scopePattern.MatchString(scope) {
		return false
	}
	return strings.HasPrefix(date, scope+"-")
}
