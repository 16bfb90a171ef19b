// Package services defines the [Service] interface for podcast hosting providers and implements it for the provider HTTP API.
//
// # Service Interface
//
// The pipeline only ever talks to the provider through [Service]: paginated
// episode listings, embedded-artwork downloads, artwork uploads, and a
// connectivity probe. Tests substitute mocks for the whole surface.
//
// # Provider Implementation
//
// [ProviderService] authenticates with a static API key sent as a bearer
// token, or with OAuth2 client credentials when no key is configured
// (the [clientcredentials] client fetches and refreshes tokens itself).
//
// # Retry Policy
//
// All four operations share one policy: transport failures and non-2xx
// statuses are retried up to [RetryConfig.Attempts] times (default 3) with
// exponential backoff (BaseDelay × 2^attempt). Callers only ever see the
// final success or the final attempt's error.
//
// A successful download with an empty body is NOT a failure: it means the
// source media has no embedded art, is never retried, and surfaces as zero
// bytes for the processor to classify.
//
// # Rate Limiting
//
// A [rate.Limiter] paces every request (including retries) so the strictly
// sequential pipeline cannot burst against the provider.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrMissingCredentials] : Authenticate() given no usable credentials
//   - [shared.ErrAPIRequest] : HTTP request failed after retries
//   - [shared.ErrServiceUnavailable] : connectivity probe failed
package services
