package prometheus

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppMetricsRegistersWithoutPanic(t *testing.T) {
	c := NewBareCollector()
	m := NewAppMetrics(c)
	require.NotNil(t, m)

	// Registering the same set twice on one registry must panic (duplicate
	// names), which guards against accidental double wiring.
	assert.Panics(t, func() { NewAppMetrics(c) })
}

func TestObserveHelpersAndExposition(t *testing.T) {
	c := NewBareCollector()
	m := NewAppMetrics(c)

	m.ObserveHTTP("POST", "/api/v1/parcels/mint", "202", 30*time.Millisecond)
	m.ObserveMintOutcome("success", 12*time.Second)
	m.MintAdmissionsTotal.WithLabelValues("admitted").Inc()
	m.MintInFlight.WithLabelValues("memory").Inc()
	m.GridCells.WithLabelValues("partial").Observe(42)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	assert.Contains(t, body, "landwho_http_requests_total")
	assert.Contains(t, body, "landwho_mint_outcomes_total")
	assert.Contains(t, body, `outcome="success"`)
	assert.Contains(t, body, "landwho_mint_in_flight")
	assert.Contains(t, body, "landwho_grid_cells")
}

func TestGatherCounts(t *testing.T) {
	c := NewBareCollector()
	m := NewAppMetrics(c)

	m.MintOutcomesTotal.WithLabelValues("pin_failure").Inc()
	m.MintOutcomesTotal.WithLabelValues("pin_failure").Inc()

	families, err := c.Gather().Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() == "landwho_mint_outcomes_total" {
			found = true
			require.Len(t, mf.GetMetric(), 1)
			assert.Equal(t, 2.0, mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found)
}
