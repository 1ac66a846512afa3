package authsessions

import (
	internalmetrics "github.com/joaofns/authsessions/internal/metrics"
)

// MetricID defines a public type used by authsessions APIs.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID = internalmetrics.MetricID

const (
	// MetricLoginSuccess is an exported constant or variable used by the session engine.
	MetricLoginSuccess = internalmetrics.MetricLoginSuccess
	// MetricLoginFailure is an exported constant or variable used by the session engine.
	MetricLoginFailure = internalmetrics.MetricLoginFailure
	// MetricLoginRateLimited is an exported constant or variable used by the session engine.
	MetricLoginRateLimited = internalmetrics.MetricLoginRateLimited
	// MetricRefreshSuccess is an exported constant or variable used by the session engine.
	MetricRefreshSuccess = internalmetrics.MetricRefreshSuccess
	// MetricRefreshFailure is an exported constant or variable used by the session engine.
	MetricRefreshFailure = internalmetrics.MetricRefreshFailure
	// MetricRefreshRateLimited is an exported constant or variable used by the session engine.
	MetricRefreshRateLimited = internalmetrics.MetricRefreshRateLimited
	// MetricLogout is an exported constant or variable used by the session engine.
	MetricLogout = internalmetrics.MetricLogout
	// MetricLogoutAll is an exported constant or variable used by the session engine.
	MetricLogoutAll = internalmetrics.MetricLogoutAll
	// MetricSessionCreated is an exported constant or variable used by the session engine.
	MetricSessionCreated = internalmetrics.MetricSessionCreated
	// MetricSessionRevoked is an exported constant or variable used by the session engine.
	MetricSessionRevoked = internalmetrics.MetricSessionRevoked
	// MetricAccountCreationSuccess is an exported constant or variable used by the session engine.
	MetricAccountCreationSuccess = internalmetrics.MetricAccountCreationSuccess
	// MetricAccountCreationDuplicate is an exported constant or variable used by the session engine.
	MetricAccountCreationDuplicate = internalmetrics.MetricAccountCreationDuplicate
	// MetricPasswordChangeSuccess is an exported constant or variable used by the session engine.
	MetricPasswordChangeSuccess = internalmetrics.MetricPasswordChangeSuccess
	// MetricPasswordChangeInvalidOld is an exported constant or variable used by the session engine.
	MetricPasswordChangeInvalidOld = internalmetrics.MetricPasswordChangeInvalidOld
	// MetricPasswordChangeReuseRejected is an exported constant or variable used by the session engine.
	MetricPasswordChangeReuseRejected = internalmetrics.MetricPasswordChangeReuseRejected
	// MetricNotifyFailure is an exported constant or variable used by the session engine.
	MetricNotifyFailure = internalmetrics.MetricNotifyFailure
	// MetricValidateSuccess is an exported constant or variable used by the session engine.
	MetricValidateSuccess = internalmetrics.MetricValidateSuccess
	// MetricValidateFailure is an exported constant or variable used by the session engine.
	MetricValidateFailure = internalmetrics.MetricValidateFailure
	// MetricValidateLatency is an exported constant or variable used by the session engine.
	MetricValidateLatency = internalmetrics.MetricValidateLatency
)

// MetricsSnapshot is a point-in-time deep copy of all metric values.
type MetricsSnapshot = internalmetrics.Snapshot

// MetricsSnapshot returns a copy of every counter and histogram. When metrics
// are disabled the maps are empty.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{}
	}
	return e.metrics.Snapshot()
}
