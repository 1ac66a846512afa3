package internaldefs

import (
	authsessions "github.com/joaofns/authsessions"
)

// CounterDef defines a public type used by authsessions APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   authsessions.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by authsessions APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   authsessions.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session engine.
var CounterDefs = []CounterDef{
	{ID: authsessions.MetricLoginSuccess, Name: "authsessions_login_success_total", Help: "Successful login attempts."},
	{ID: authsessions.MetricLoginFailure, Name: "authsessions_login_failure_total", Help: "Failed login attempts."},
	{ID: authsessions.MetricLoginRateLimited, Name: "authsessions_login_rate_limited_total", Help: "Rate-limited login attempts."},
	{ID: authsessions.MetricRefreshSuccess, Name: "authsessions_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: authsessions.MetricRefreshFailure, Name: "authsessions_refresh_failure_total", Help: "Failed refresh rotations."},
	{ID: authsessions.MetricRefreshRateLimited, Name: "authsessions_refresh_rate_limited_total", Help: "Rate-limited refresh attempts."},
	{ID: authsessions.MetricLogout, Name: "authsessions_logout_total", Help: "Single-session logout operations."},
	{ID: authsessions.MetricLogoutAll, Name: "authsessions_logout_all_total", Help: "Bulk logout operations."},
	{ID: authsessions.MetricSessionCreated, Name: "authsessions_session_created_total", Help: "Sessions written to the cache."},
	{ID: authsessions.MetricSessionRevoked, Name: "authsessions_session_revoked_total", Help: "Sessions removed from the cache."},
	{ID: authsessions.MetricAccountCreationSuccess, Name: "authsessions_account_creation_success_total", Help: "Successful account creations."},
	{ID: authsessions.MetricAccountCreationDuplicate, Name: "authsessions_account_creation_duplicate_total", Help: "Account creation attempts rejected as duplicate."},
	{ID: authsessions.MetricPasswordChangeSuccess, Name: "authsessions_password_change_success_total", Help: "Successful password changes."},
	{ID: authsessions.MetricPasswordChangeInvalidOld, Name: "authsessions_password_change_invalid_old_total", Help: "Password change attempts with invalid old password."},
	{ID: authsessions.MetricPasswordChangeReuseRejected, Name: "authsessions_password_change_reuse_rejected_total", Help: "Password change attempts rejected for reuse."},
	{ID: authsessions.MetricNotifyFailure, Name: "authsessions_notify_failure_total", Help: "Failed login notice publications."},
	{ID: authsessions.MetricValidateSuccess, Name: "authsessions_validate_success_total", Help: "Access tokens that passed validation."},
	{ID: authsessions.MetricValidateFailure, Name: "authsessions_validate_failure_total", Help: "Access tokens that failed validation."},
}

// HistogramDefs is an exported constant or variable used by the session engine.
var HistogramDefs = []HistogramDef{
	{ID: authsessions.MetricValidateLatency, Name: "authsessions_validate_latency_seconds", Help: "Validate latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"1",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"1",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
