package handlers

import (
	"context"
	"net/http"
	"time"
)

// Probe checks one dependency's health.
type Probe func(ctx context.Context) error

// HealthHandler serves liveness and readiness.  Liveness is unconditional;
// readiness runs the registered dependency probes.
type HealthHandler struct {
	probes  map[string]Probe
	timeout time.Duration
	version string
}

func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		probes:  make(map[string]Probe),
		timeout: 5 * time.Second,
		version: version,
	}
}

// AddProbe registers a named readiness probe.
func (h *HealthHandler) AddProbe(name string, probe Probe) {
	h.probes[name] = probe
}

type healthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// Liveness reports that the process is up.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: h.version})
}

// Readiness runs every probe and reports 503 when any dependency is down.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	checks := make(map[string]string, len(h.probes))
	healthy := true
	for name, probe := range h.probes {
		if err := probe(ctx); err != nil {
			checks[name] = err.Error()
			healthy = false
		} else {
			checks[name] = "ok"
		}
	}

	status := http.StatusOK
	resp := healthResponse{Status: "ok", Version: h.version, Checks: checks}
	if !healthy {
		status = http.StatusServiceUnavailable
		resp.Status = "degraded"
	}
	writeJSON(w, status, resp)
}
