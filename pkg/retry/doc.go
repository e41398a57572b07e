// Package retry runs an operation again after transient failures.
//
// A Policy bundles the three decisions a retry needs: how many retries
// (MaxRetries), how long to wait before each (Backoff) and which errors
// qualify (RetryIf). ConnectPolicy builds the policy the AirNow client uses,
// retrying only failures to establish a connection:
//
//	policy := retry.ConnectPolicy(3, 500*time.Millisecond, 2, log)
//	resp, err := retry.DoWithResult(ctx, policy, func(ctx context.Context) (*http.Response, error) {
//		return client.Do(req.WithContext(ctx))
//	})
//
// HTTP error statuses and timeouts are not connection failures, so they are
// returned after the first attempt.
package retry
