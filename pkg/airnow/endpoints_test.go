package airnow

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		expected string
	}{
		{"mid year", time.Date(2022, 6, 15, 0, 0, 0, 0, time.UTC), "2022-06-15T00-0000"},
		{"leap day", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), "2024-02-29T00-0000"},
		{"new year", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), "2023-01-01T00-0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDate(tt.date))
		})
	}
}

func TestBuildURL(t *testing.T) {
	raw, err := BuildURL(HistoricalObservationURL, QueryParams{
		ZipCode: "02109",
		Date:    time.Date(2022, 1, 2, 0, 0, 0, 0, time.UTC),
		APIKey:  "abc",
	})
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "www.airnowapi.org", u.Host)
	assert.Equal(t, "/aq/observation/zipCode/historical", u.Path)

	q := u.Query()
	assert.Equal(t, "application/json", q.Get("format"))
	assert.Equal(t, "02109", q.Get("zipCode"))
	assert.Equal(t, "2022-01-02T00-0000", q.Get("date"))
	assert.Equal(t, "25", q.Get("distance"))
	assert.Equal(t, "abc", q.Get("API_KEY"))
}

func TestBuildURLInvalidBase(t *testing.T) {
	_, err := BuildURL("://bad", QueryParams{})
	assert.Error(t, err)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t,
		"https://x/?API_KEY=REDACTED&date=2022",
		RedactURL("https://x/?API_KEY=secret&date=2022"),
	)
	assert.Equal(t,
		`Get "https://x/?API_KEY=REDACTED": dial tcp: connection refused`,
		RedactURL(`Get "https://x/?API_KEY=secret": dial tcp: connection refused`),
	)
}
