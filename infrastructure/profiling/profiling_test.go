package profiling_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonesrussell/yophone-bot/infrastructure/logger"
	"github.com/jonesrussell/yophone-bot/infrastructure/profiling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledProfilersAreNoOps(t *testing.T) {
	t.Parallel()

	cfg := profiling.Config{}
	cfg.SetDefaults()

	require.NoError(t, profiling.RunPprof(context.Background(), cfg, logger.NewNop()))

	p, err := profiling.StartPyroscope(cfg, "yophone-bot", "test", logger.NewNop())
	require.NoError(t, err)
	assert.Nil(t, p)
	require.NoError(t, p.Stop())
}

func TestSetDefaults(t *testing.T) {
	t.Parallel()

	cfg := profiling.Config{}
	cfg.SetDefaults()

	assert.Equal(t, 6060, cfg.PprofPort)
	assert.Equal(t, "http://pyroscope:4040", cfg.PyroscopeURL)
	assert.Equal(t, "development", cfg.Environment)
}

func TestPprofHandler(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	profiling.PprofHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/pprof/", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "goroutine")
}
