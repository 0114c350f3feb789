package timex

import (
	"fmt"
	"time"
)

const (
	layoutYMD = "2006-01-02"
	layoutYM  = "2006-01"
)

// Clock yields the current time. The zero Clock uses time.Now.
type Clock struct {
	Now func() time.Time
}

func (c Clock) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// TodayYMD returns the local date as YYYY-MM-DD.
func (c Clock) TodayYMD() string {
	return c.now().Format(layoutYMD)
}

// CurrentYM returns the local year-month as YYYY-MM.
func (c Clock) CurrentYM() string {
	return c.now().Format(layoutYM)
}

// ParseYM parses YYYY-MM into the first day of that month, UTC.
func ParseYM(ym string) (time.Time, error) {
	t, err := time.Parse(layoutYM, ym)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year-month %q", ym)
	}
	return t, nil
}

// AddMonths shifts ym by delta months, crossing year boundaries as needed.
func AddMonths(ym string, delta int) (string, error) {
	t, err := ParseYM(ym)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, delta, 0).Format(layoutYM), nil
}

// FormatYMLabel renders YYYY-MM as "March 2024". Input that does not parse
// is returned unchanged.
func FormatYMLabel(ym string) string {
	t, err := ParseYM(ym)
	if err != nil {
		return ym
	}
	return fmt.Sprintf("%s %d", t.Month(), t.Year())
}
