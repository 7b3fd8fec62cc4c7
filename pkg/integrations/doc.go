// Package integrations provides the HTTP plumbing shared by the external
// API clients.
//
// [Client] wraps net/http with JSON decoding, response caching through
// [cache.Cache], and retries of transient failures via [httputil.Retry].
// API-specific clients live in subpackages:
//
//   - [coeqwal]: scenario tier results from the COEQWAL API
//
// Errors are reported with the sentinels [ErrNotFound] (HTTP 404) and
// [ErrNetwork] (transport failures and other unexpected statuses); check
// them with errors.Is.
package integrations
