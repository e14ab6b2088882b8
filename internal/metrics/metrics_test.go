package metrics_test

import (
	"testing"
	"time"

	"github.com/LukeA4591/GameTroveAPI/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountLedger(t *testing.T) {
	m := metrics.New()

	m.CountLedger("add_owned", "GAME_ADDED")
	m.CountLedger("add_owned", "GAME_ADDED")
	m.CountLedger("add_owned", "GAME_ALREADY_OWNED")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LedgerTransitions.WithLabelValues("add_owned", "GAME_ADDED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LedgerTransitions.WithLabelValues("add_owned", "GAME_ALREADY_OWNED")))
}

func TestObserveRequest(t *testing.T) {
	m := metrics.New()

	m.ObserveRequest("GET", "/api/v1/games", "200", 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/games", "200")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.CountLedger("add_wishlist", "GAME_ADDED")
		m.ObserveSearch(time.Millisecond, 3)
		m.CountGameMutation("create", "SUCCESS")
		m.CountAuth("success")
		m.ObserveRequest("GET", "/", "200", time.Millisecond)
	})
}
