package airnow

import (
	"fmt"
	"net/url"
	"regexp"
	"time"
)

const (
	// HistoricalObservationURL is the AirNow "observation by zip code, historical" endpoint
	HistoricalObservationURL = "https://www.airnowapi.org/aq/observation/zipCode/historical"

	// DateFormat is how the endpoint expects the observation day
	DateFormat = "2006-01-02T00-0000"

	// DefaultDistance is the search radius in miles around the zip code
	DefaultDistance = 25

	// FormatJSON asks for a JSON response body
	FormatJSON = "application/json"
)

// QueryParams are the parameters of one historical observation request
type QueryParams struct {
	ZipCode  string
	Date     time.Time
	Distance int
	Format   string
	APIKey   string
}

// Values encodes the parameters as a query string
func (q QueryParams) Values() url.Values {
	distance := q.Distance
	if distance <= 0 {
		distance = DefaultDistance
	}
	format := q.Format
	if format == "" {
		format = FormatJSON
	}

	params := url.Values{}
	params.Set("format", format)
	params.Set("zipCode", q.ZipCode)
	params.Set("date", FormatDate(q.Date))
	params.Set("distance", fmt.Sprintf("%d", distance))
	params.Set("API_KEY", q.APIKey)
	return params
}

// FormatDate renders a day in the endpoint's date format
func FormatDate(date time.Time) string {
	return date.Format(DateFormat)
}

// BuildURL constructs the full request URL for q against baseURL
func BuildURL(baseURL string, q QueryParams) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	u.RawQuery = q.Values().Encode()
	return u.String(), nil
}

var apiKeyPattern = regexp.MustCompile(`(API_KEY=)[^&"\s]*`)

// RedactURL hides the API key in a request URL or error message before logging
func RedactURL(s string) string {
	return apiKeyPattern.ReplaceAllString(s, "${1}REDACTED")
}
