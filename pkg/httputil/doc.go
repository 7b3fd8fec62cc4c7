// Package httputil holds the retry policy shared by the API clients.
//
// Wrap transient failures (network errors, 5xx responses) with [Retryable]
// and run the request through [Retry]; everything else is returned on the
// first attempt:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := http.DefaultClient.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// [StatusError] classifies an HTTP status code so clients agree on which
// responses are worth retrying.
package httputil
