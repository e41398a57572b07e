package workunit

import (
	"fmt"
	"time"
)

// Unit is one (location, calendar day) pair to fetch
type Unit struct {
	LocationIndex int
	Location      string
	Year          int
	Month         time.Month
	Day           int
}

// Date returns the unit's calendar day at midnight UTC
func (u Unit) Date() time.Time {
	return time.Date(u.Year, u.Month, u.Day, 0, 0, 0, 0, time.UTC)
}

// DateString formats the day as YYYY-MM-DD, the observation key format
func (u Unit) DateString() string {
	return u.Date().Format(time.DateOnly)
}

func (u Unit) String() string {
	return fmt.Sprintf("%s@%s", u.Location, u.DateString())
}

// LastDay returns the number of days in month of year
func LastDay(year int, month time.Month) int {
	// day 0 of the following month normalizes to the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func daysInYear(year int) int {
	if LastDay(year, time.February) == 29 {
		return 366
	}
	return 365
}
