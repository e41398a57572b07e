// Package airnow is a client for the AirNow historical observation API.
//
// Each Fetch issues one GET for a zip code and day:
//
//	client := airnow.NewClient(&cfg.AirNow, retry.ConnectPolicy(3, 500*time.Millisecond, 2, log), limiter, log)
//	res := client.Fetch(ctx, "02109", time.Date(2022, 6, 15, 0, 0, 0, 0, time.UTC))
//	if !res.OK() {
//		// res.Failure.Kind is one of http_status, connection, timeout, other
//	}
//
// Only failures to establish a connection are retried, per the injected
// retry.Policy. Error statuses and timeouts are reported after the first
// attempt. A successful body must be JSON; it is returned compacted and is
// otherwise not interpreted.
package airnow
