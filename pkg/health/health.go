// Package health serves liveness and readiness probes.
//
// Checks run on demand: every probe request executes the registered checks
// concurrently, each under its own timeout, and reports the failures.
package health

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
	"golang.org/x/sync/errgroup"
)

// CheckFunc returns nil when the checked component is healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc
}

// Health holds the registered probes and the manual readiness flag.
type Health struct {
	ready atomic.Bool

	mu        sync.RWMutex
	liveness  []check
	readiness []check
}

// New creates a Health that reports not ready until SetReady(true).
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a check answering whether the process works.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, check{name: name, timeout: timeout, fn: fn})
}

// AddReadinessCheck registers a check answering whether traffic can be served.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, check{name: name, timeout: timeout, fn: fn})
}

// SetReady flips the manual readiness flag. It is set after start-up and
// cleared at the beginning of a graceful shutdown.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the manual flag is set and every readiness check
// passes.
func (h *Health) IsReady(ctx context.Context) bool {
	if !h.ready.Load() {
		return false
	}
	return len(runChecks(ctx, h.snapshot(&h.readiness))) == 0
}

func (h *Health) snapshot(checks *[]check) []check {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(*checks)
}

// runChecks runs all checks concurrently and returns the failures by name.
func runChecks(ctx context.Context, checks []check) map[string]string {
	errs := make([]error, len(checks))

	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			errs[i] = c.fn(checkCtx)
			return nil
		})
	}
	_ = g.Wait()

	failures := make(map[string]string)
	for i, err := range errs {
		if err != nil {
			failures[checks[i].name] = err.Error()
		}
	}
	return failures
}

// LiveEndpoint serves /livez: 200 {"status":"ok"} when every liveness check
// passes, otherwise 503 with the failing checks.
func (h *Health) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, runChecks(r.Context(), h.snapshot(&h.liveness)))
}

// ReadyEndpoint serves /readyz. A cleared manual flag is reported as the
// "_readiness" failure.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	failures := runChecks(r.Context(), h.snapshot(&h.readiness))
	if !h.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	writeResponse(w, failures)
}

func writeResponse(w http.ResponseWriter, failures map[string]string) {
	status, code := "ok", http.StatusOK
	if len(failures) > 0 {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("status")
	e.Str(status)
	if len(failures) > 0 {
		names := make([]string, 0, len(failures))
		for name := range failures {
			names = append(names, name)
		}
		slices.Sort(names)

		e.FieldStart("checks")
		e.ObjStart()
		for _, name := range names {
			e.FieldStart(name)
			e.Str(failures[name])
		}
		e.ObjEnd()
	}
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	// The status is already written; a failed write means the client is gone.
	_, _ = w.Write(e.Bytes())
}
