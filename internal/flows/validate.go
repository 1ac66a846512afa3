package flows

import "time"

// ValidateMetrics carries metric IDs needed by the validate flow.
type ValidateMetrics struct {
	ValidateSuccess int
	ValidateFailure int
	ValidateLatency int
}

// ValidateDeps captures validate flow dependencies.
type ValidateDeps struct {
	Validate func(token string) bool

	MetricInc    func(int)
	ObserveNanos func(id int, nanos int64)
	Now          func() time.Time

	Metrics ValidateMetrics
}

// RunValidate delegates token validation to the issuer and records metrics.
// Every failure mode collapses into false; garbage input never panics.
func RunValidate(token string, deps ValidateDeps) bool {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Validate == nil {
		return false
	}

	start := deps.Now()
	ok := deps.Validate(token)
	if deps.ObserveNanos != nil {
		deps.ObserveNanos(deps.Metrics.ValidateLatency, time.Since(start).Nanoseconds())
	}

	if ok {
		deps.MetricInc(deps.Metrics.ValidateSuccess)
	} else {
		deps.MetricInc(deps.Metrics.ValidateFailure)
	}
	return ok
}
