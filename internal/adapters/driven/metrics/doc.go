// Package metrics counts exports, imports and asset downloads with the
// Prometheus client. A run writes its counters to a textfile on exit.
package metrics
