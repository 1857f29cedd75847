package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/httputil"
)

// Checker probes one dependency.
type Checker func(ctx context.Context) error

type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Response is the body of both health endpoints.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

type CheckResult struct {
	Status   Status `json:"status"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

// Handler serves liveness and readiness probes.
type Handler struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	timeout  time.Duration
}

// NewHandler returns a Handler whose readiness checks share a 5s budget.
func NewHandler() *Handler {
	return &Handler{checkers: make(map[string]Checker), timeout: 5 * time.Second}
}

// Register adds or replaces a named readiness check.
func (h *Handler) Register(name string, c Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = c
}

// LivenessHandler reports 200 while the process can serve HTTP.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, Response{Status: StatusUp, Timestamp: time.Now().UTC()})
	}
}

// ReadinessHandler runs every check concurrently and answers 503 if any
// fails.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		h.mu.RLock()
		checkers := make(map[string]Checker, len(h.checkers))
		for k, v := range h.checkers {
			checkers[k] = v
		}
		h.mu.RUnlock()

		var (
			mu     sync.Mutex
			wg     sync.WaitGroup
			checks = make(map[string]CheckResult, len(checkers))
		)
		for name, check := range checkers {
			wg.Add(1)
			go func(name string, check Checker) {
				defer wg.Done()
				start := time.Now()
				res := CheckResult{Status: StatusUp}
				if err := check(ctx); err != nil {
					res = CheckResult{Status: StatusDown, Error: err.Error()}
				}
				res.Duration = time.Since(start).String()
				mu.Lock()
				checks[name] = res
				mu.Unlock()
			}(name, check)
		}
		wg.Wait()

		resp := Response{Status: StatusUp, Timestamp: time.Now().UTC(), Checks: checks}
		status := http.StatusOK
		for _, c := range checks {
			if c.Status == StatusDown {
				resp.Status = StatusDown
				status = http.StatusServiceUnavailable
				break
			}
		}
		httputil.WriteJSON(w, status, resp)
	}
}
