package telemetry_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonesrussell/yophone-bot/internal/bot"
	"github.com/jonesrussell/yophone-bot/internal/telemetry"
	"github.com/jonesrussell/yophone-bot/internal/yophone"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ yophone.Recorder = (*telemetry.Metrics)(nil)
	_ bot.Recorder     = (*telemetry.Metrics)(nil)
)

func TestObserveRequest(t *testing.T) {
	t.Parallel()

	m := telemetry.New(prometheus.NewRegistry())

	m.ObserveRequest("sendMessage", 120*time.Millisecond, nil)
	m.ObserveRequest("sendMessage", 80*time.Millisecond, nil)
	m.ObserveRequest("getUpdates", time.Second, errors.New("timeout"))

	assert.InDelta(t, 2, testutil.ToFloat64(m.APIRequests.WithLabelValues("sendMessage", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.APIRequests.WithLabelValues("getUpdates", "error")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(m.APIDuration))
}

func TestUpdateCounters(t *testing.T) {
	t.Parallel()

	m := telemetry.New(prometheus.NewRegistry())

	m.UpdatesReceived(bot.SourcePoll, 3)
	m.UpdatesReceived(bot.SourceWebhook, 1)
	m.UpdateDispatched(bot.RouteCommand)
	m.UpdateDispatched(bot.RouteCommand)
	m.HandlerFailed()
	m.UpdateRejected()

	assert.InDelta(t, 3, testutil.ToFloat64(m.Received.WithLabelValues(bot.SourcePoll)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Received.WithLabelValues(bot.SourceWebhook)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.Dispatched.WithLabelValues(bot.RouteCommand)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.HandlerErrors), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Rejected), 0)
}

func TestHandler(t *testing.T) {
	t.Parallel()

	m := telemetry.New(nil)
	m.ObserveRequest("getMe", 10*time.Millisecond, nil)

	server := httptest.NewServer(m.Handler())
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `yophone_api_requests_total{endpoint="getMe",outcome="success"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
