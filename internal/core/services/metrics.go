package services

import "github.com/custodia-labs/contentsync/internal/core/ports/driven"

// nopMetrics discards all measurements.
type nopMetrics struct{}

func (nopMetrics) EntityExported(string)       {}
func (nopMetrics) EntityImported(string, bool) {}
func (nopMetrics) StubCreated(string)          {}
func (nopMetrics) ItemFailed(string)           {}
func (nopMetrics) AssetFetched(bool)           {}

func orNopMetrics(m driven.Metrics) driven.Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
