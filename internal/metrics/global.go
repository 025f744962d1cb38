package metrics

import "sync"

var (
	globalCollector *Collector
	once            sync.Once
)

// Global returns the process-wide collector used by the CLI.
func Global() *Collector {
	once.Do(func() {
		globalCollector = NewCollector()
	})
	return globalCollector
}

// Metric names
const (
	// Codacy API
	MetricRequests = "eslintsync_codacy_requests_total"
	MetricErrors   = "eslintsync_codacy_errors_total"
	MetricRetries  = "eslintsync_codacy_retries_total"
	MetricLatency  = "eslintsync_codacy_request"

	// Sync
	MetricCatalogSize      = "eslintsync_catalog_patterns"
	MetricBatchesSent      = "eslintsync_batches_sent_total"
	MetricPatternsEnabled  = "eslintsync_patterns_enabled_total"
	MetricPatternsDisabled = "eslintsync_patterns_disabled_total"
	MetricRulesUnmatched   = "eslintsync_rules_unmatched_total"
)
