// internal/metrics/noop.go
package metrics

import "time"

// NoopMetrics discards everything. Used when metrics are disabled and in tests.
type NoopMetrics struct{}

var _ Recorder = (*NoopMetrics)(nil)

func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordActivation(strategy, outcome string)                       {}
func (n *NoopMetrics) RecordLicensesIssued(count int)                                  {}
func (n *NoopMetrics) RecordLicensesRemoved(count int)                                 {}
func (n *NoopMetrics) RecordBindConflict()                                             {}
func (n *NoopMetrics) RecordGatewayCall(operation string, success bool, d time.Duration) {}
func (n *NoopMetrics) RecordHTTPRequest(method, path, status string, d time.Duration)  {}
