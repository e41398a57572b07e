// Package ui renders operator-facing terminal output with lipgloss: short
// status lines for the CLI and the panel printed by `aqiscraper status`.
// Logging does not go through this package.
package ui
