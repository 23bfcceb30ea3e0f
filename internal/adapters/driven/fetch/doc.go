// Package fetch downloads remote assets for imported file entities.
//
// Requests are paced by a token bucket (golang.org/x/time/rate) and back
// off after 429 responses.
package fetch
