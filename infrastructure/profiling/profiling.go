// Package profiling exposes pprof on a localhost port and pushes continuous
// profiles to Pyroscope. Both are off unless enabled in Config.
package profiling

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"runtime"
	"time"

	"github.com/grafana/pyroscope-go"
	"github.com/jonesrussell/yophone-bot/infrastructure/logger"
)

const (
	defaultPprofPort    = 6060
	defaultPyroscopeURL = "http://pyroscope:4040"
	defaultEnvironment  = "development"
	pprofShutdownWait   = 5 * time.Second
	pprofHeaderTimeout  = 10 * time.Second
)

// Config controls both profilers.
type Config struct {
	PprofEnabled     bool   `env:"ENABLE_PROFILING"            yaml:"pprof_enabled"`
	PprofPort        int    `env:"PPROF_PORT"                  yaml:"pprof_port"`
	PyroscopeEnabled bool   `env:"ENABLE_CONTINUOUS_PROFILING" yaml:"pyroscope_enabled"`
	PyroscopeURL     string `env:"PYROSCOPE_SERVER_URL"        yaml:"pyroscope_url"`
	Environment      string `env:"PYROSCOPE_ENVIRONMENT"       yaml:"environment"`
}

// SetDefaults fills unset values.
func (c *Config) SetDefaults() {
	if c.PprofPort == 0 {
		c.PprofPort = defaultPprofPort
	}
	if c.PyroscopeURL == "" {
		c.PyroscopeURL = defaultPyroscopeURL
	}
	if c.Environment == "" {
		c.Environment = defaultEnvironment
	}
}

// PprofHandler serves the standard /debug/pprof/ endpoints.
func PprofHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

// RunPprof serves pprof on localhost until ctx is cancelled. It returns
// immediately when pprof is disabled.
func RunPprof(ctx context.Context, cfg Config, log logger.Logger) error {
	if !cfg.PprofEnabled {
		return nil
	}

	// localhost only: profiles expose process internals.
	addr := fmt.Sprintf("localhost:%d", cfg.PprofPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           PprofHandler(),
		ReadHeaderTimeout: pprofHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting pprof server", logger.String("address", "http://"+addr+"/debug/pprof/"))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("pprof server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	//nolint:contextcheck // ctx is done; shutdown gets its own deadline
	shutdownCtx, cancel := context.WithTimeout(context.Background(), pprofShutdownWait)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// PyroscopeProfiler holds the Pyroscope profiler instance.
type PyroscopeProfiler struct {
	profiler *pyroscope.Profiler
}

// StartPyroscope starts continuous profiling. It returns nil, nil when
// Pyroscope is disabled.
func StartPyroscope(cfg Config, serviceName, version string, log logger.Logger) (*PyroscopeProfiler, error) {
	if !cfg.PyroscopeEnabled {
		return nil, nil
	}

	config := pyroscope.Config{
		ApplicationName: serviceName,
		ServerAddress:   cfg.PyroscopeURL,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
		Tags: map[string]string{
			"environment": cfg.Environment,
			"version":     version,
			"hostname":    hostname(),
			"go_version":  runtime.Version(),
		},
	}

	profiler, err := pyroscope.Start(config)
	if err != nil {
		return nil, fmt.Errorf("start pyroscope profiler: %w", err)
	}

	log.Info("Pyroscope continuous profiling started",
		logger.String("application", config.ApplicationName),
		logger.String("server", cfg.PyroscopeURL),
		logger.String("environment", cfg.Environment),
	)

	return &PyroscopeProfiler{profiler: profiler}, nil
}

// Stop stops the profiler. It is safe on a nil receiver.
func (p *PyroscopeProfiler) Stop() error {
	if p == nil || p.profiler == nil {
		return nil
	}
	return p.profiler.Stop()
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}
