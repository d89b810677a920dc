// Package handlers provides the HTTP handlers of the vid2pdf service.
//
// It includes handlers for:
//   - Video to PDF conversion (POST /api/convert)
//   - Health, liveness and readiness probes
//   - Version information
//   - Prometheus metrics
//
// Conversions run in parallel up to the number of slots given to [New].
// Requests beyond that wait for a slot, and for the memory monitor to admit
// them, until the client goes away.
package handlers
