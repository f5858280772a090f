package status

import "sync/atomic"

// Metric keys published by the engine
const (
	KeyParses          = "upi.parses"
	KeyParseErrors     = "upi.errors"
	KeyLastExpression  = "upi.last_expression"
	KeyLastError       = "upi.last_error"
	KeyLastDensity     = "upi.last_density"
	KeySessions        = "progressive.sessions"
	KeySteps           = "progressive.steps"
	KeyEvictions       = "progressive.evictions"
	KeyResets          = "progressive.resets"
	KeyClicksRendered  = "audio.clicks"
	KeyAccentsRendered = "audio.accents"
)

// Registry is the central metrics facade
// Components cache pointers at construction; hot paths write directly to atomics
type Registry struct {
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// Counter returns the integer metric for key; nil registry yields a detached counter
func (r *Registry) Counter(key string) *atomic.Int64 {
	if r == nil {
		return new(atomic.Int64)
	}
	return r.Ints.Get(key)
}

// Gauge returns the float metric for key; nil registry yields a detached gauge
func (r *Registry) Gauge(key string) *AtomicFloat {
	if r == nil {
		return new(AtomicFloat)
	}
	return r.Floats.Get(key)
}

// Label returns the string metric for key; nil registry yields a detached label
func (r *Registry) Label(key string) *AtomicString {
	if r == nil {
		return new(AtomicString)
	}
	return r.Strings.Get(key)
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Counters copies every integer metric into a map
func (r *Registry) Counters() map[string]int64 {
	out := make(map[string]int64, r.Ints.Count())
	r.Ints.Range(func(key string, ptr *atomic.Int64) {
		out[key] = ptr.Load()
	})
	return out
}
