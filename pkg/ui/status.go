package ui

import (
	"fmt"
	"sort"
	"strings"
)

// StatusReport is what `aqiscraper status` shows about a database
type StatusReport struct {
	DatabasePath string
	// Cursor is the next unit to fetch, already formatted
	Cursor    string
	Exhausted bool
	Position  int
	Total     int
	Stored    map[string]int
	// Expected is the number of units per location in the plan
	Expected int
	APIKey   string
}

// RenderStatus formats a status report as a bordered panel
func RenderStatus(r StatusReport) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("AirNow harvest status"))
	b.WriteString("\n\n")

	row := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", label)), valueStyle.Render(value))
	}

	row("Database", r.DatabasePath)
	if r.Exhausted {
		row("Cursor", "complete")
	} else {
		row("Cursor", r.Cursor)
	}
	row("Progress", fmt.Sprintf("%d / %d units (%s)", r.Position, r.Total, percent(r.Position, r.Total)))
	if r.APIKey != "" {
		row("API key", r.APIKey)
	}

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Stored observations"))
	b.WriteString("\n")

	locations := make([]string, 0, len(r.Stored))
	for loc := range r.Stored {
		locations = append(locations, loc)
	}
	sort.Strings(locations)

	if len(locations) == 0 {
		b.WriteString(mutedStyle.Render("none yet"))
		b.WriteString("\n")
	}
	for _, loc := range locations {
		count := r.Stored[loc]
		line := fmt.Sprintf("%s %s", labelStyle.Render(fmt.Sprintf("%-10s", loc)), valueStyle.Render(fmt.Sprintf("%6d", count)))
		if r.Expected > 0 {
			line += mutedStyle.Render(fmt.Sprintf(" of %d", r.Expected))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func percent(n, total int) string {
	if total <= 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)/float64(total)*100)
}
