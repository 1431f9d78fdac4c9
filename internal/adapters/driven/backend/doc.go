// Package backend implements the driven backend ports over the workspace
// management HTTP API.
//
// Every request carries a bearer token through an oauth2 transport and a
// fresh X-Correlation-Id. Requests are rate limited client-side. Transport
// failures, 429 and 5xx responses are retried with capped exponential
// backoff that honours Retry-After. Other non-2xx responses become
// *domain.APIError carrying the server's detail text.
//
// Upload bodies are streamed and therefore never retried.
package backend
