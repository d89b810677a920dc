// Package middleware provides HTTP middleware for the conversion service.
//
// It includes:
//   - Access logging in W3C Extended Log Format
//   - Prometheus request metrics labelled by route template
//   - gzip compression for JSON responses
//   - Optional suppression of health probe noise
package middleware
