package workunit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"aqiscraper/pkg/checkpoint"
)

// ErrMalformedCursor is returned for a cursor that names no unit of the plan
var ErrMalformedCursor = errors.New("malformed cursor")

// Plan is the fixed cross product of years, locations and calendar days.
// Units are ordered year (configured order) > location > month > day.
type Plan struct {
	locations []string
	years     []int
	yearIndex map[int]int
}

// NewPlan validates and freezes the harvest plan
func NewPlan(locations []string, years []int) (*Plan, error) {
	if len(locations) == 0 {
		return nil, errors.New("plan needs at least one location")
	}
	if len(years) == 0 {
		return nil, errors.New("plan needs at least one year")
	}

	seen := make(map[string]bool, len(locations))
	for _, loc := range locations {
		if strings.TrimSpace(loc) == "" {
			return nil, errors.New("location ids must not be empty")
		}
		if seen[loc] {
			return nil, fmt.Errorf("location %s is listed twice", loc)
		}
		seen[loc] = true
	}

	yearIndex := make(map[int]int, len(years))
	for i, year := range years {
		if _, dup := yearIndex[year]; dup {
			return nil, fmt.Errorf("year %d is listed twice", year)
		}
		yearIndex[year] = i
	}

	return &Plan{
		locations: append([]string(nil), locations...),
		years:     append([]int(nil), years...),
		yearIndex: yearIndex,
	}, nil
}

// Locations returns the configured location ids in order
func (p *Plan) Locations() []string {
	return append([]string(nil), p.locations...)
}

// Years returns the configured years in order
func (p *Plan) Years() []int {
	return append([]int(nil), p.years...)
}

// Initial is the cursor of the first unit
func (p *Plan) Initial() checkpoint.Cursor {
	return checkpoint.Cursor{Year: p.years[0], Month: 1, Day: 1, LocationIndex: 0}
}

// Exhausted is the cursor denoting that every unit has been handled
func (p *Plan) Exhausted() checkpoint.Cursor {
	return checkpoint.Cursor{
		Year:          p.years[len(p.years)-1],
		Month:         1,
		Day:           1,
		LocationIndex: len(p.locations),
	}
}

// IsExhausted reports whether c lies past the last unit
func (p *Plan) IsExhausted(c checkpoint.Cursor) bool {
	return c.Year == p.years[len(p.years)-1] && c.LocationIndex == len(p.locations)
}

// Validate reports whether c names a unit of the plan or the exhausted state
func (p *Plan) Validate(c checkpoint.Cursor) error {
	if _, ok := p.yearIndex[c.Year]; !ok {
		return fmt.Errorf("%w: year %d is not configured", ErrMalformedCursor, c.Year)
	}
	if c.Month < 1 || c.Month > 12 {
		return fmt.Errorf("%w: month %d out of range", ErrMalformedCursor, c.Month)
	}
	if last := LastDay(c.Year, time.Month(c.Month)); c.Day < 1 || c.Day > last {
		return fmt.Errorf("%w: day %d out of range for %04d-%02d", ErrMalformedCursor, c.Day, c.Year, c.Month)
	}
	if p.IsExhausted(c) {
		return nil
	}
	if c.LocationIndex < 0 || c.LocationIndex >= len(p.locations) {
		return fmt.Errorf("%w: location index %d out of range", ErrMalformedCursor, c.LocationIndex)
	}
	return nil
}

// Total is the number of units in the plan
func (p *Plan) Total() int {
	total := 0
	for _, year := range p.years {
		total += daysInYear(year) * len(p.locations)
	}
	return total
}

// Ordinal is the zero-based position of the unit c names in the total order.
// The exhausted cursor maps to Total().
func (p *Plan) Ordinal(c checkpoint.Cursor) (int, error) {
	if err := p.Validate(c); err != nil {
		return 0, err
	}
	if p.IsExhausted(c) {
		return p.Total(), nil
	}

	ordinal := 0
	for _, year := range p.years[:p.yearIndex[c.Year]] {
		ordinal += daysInYear(year) * len(p.locations)
	}
	ordinal += c.LocationIndex * daysInYear(c.Year)
	for m := time.January; m < time.Month(c.Month); m++ {
		ordinal += LastDay(c.Year, m)
	}
	return ordinal + c.Day - 1, nil
}

// Successor returns the cursor of the unit immediately after u, or the
// exhausted cursor when u is the last unit
func (p *Plan) Successor(u Unit) checkpoint.Cursor {
	next := checkpoint.Cursor{
		Year:          u.Year,
		Month:         int(u.Month),
		Day:           u.Day + 1,
		LocationIndex: u.LocationIndex,
	}

	if next.Day > LastDay(u.Year, u.Month) {
		next.Day = 1
		next.Month++
	}
	if next.Month > 12 {
		next.Month = 1
		next.LocationIndex++
	}
	if next.LocationIndex >= len(p.locations) {
		yi := p.yearIndex[u.Year]
		if yi == len(p.years)-1 {
			return p.Exhausted()
		}
		next.Year = p.years[yi+1]
		next.LocationIndex = 0
	}

	return next
}

// Enumerate yields the suffix of the plan starting at from
func (p *Plan) Enumerate(from checkpoint.Cursor) (*Enumerator, error) {
	if err := p.Validate(from); err != nil {
		return nil, err
	}
	return &Enumerator{plan: p, next: from}, nil
}

// Enumerator walks the plan lazily, one unit per Next call
type Enumerator struct {
	plan *Plan
	next checkpoint.Cursor
}

// Next returns the following unit, or false once the plan is exhausted
func (e *Enumerator) Next() (Unit, bool) {
	if e.plan.IsExhausted(e.next) {
		return Unit{}, false
	}

	u := e.plan.unitAt(e.next)
	e.next = e.plan.Successor(u)
	return u, true
}

func (p *Plan) unitAt(c checkpoint.Cursor) Unit {
	return Unit{
		LocationIndex: c.LocationIndex,
		Location:      p.locations[c.LocationIndex],
		Year:          c.Year,
		Month:         time.Month(c.Month),
		Day:           c.Day,
	}
}
