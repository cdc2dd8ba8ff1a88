package telemetry

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

const (
	defaultMutexProfileFraction = 5
	defaultBlockProfileRate     = 5
)

// ProfilerConfig holds Pyroscope continuous profiling configuration.
type ProfilerConfig struct {
	Enabled           bool
	ServerAddress     string // e.g. "http://pyroscope:4040"
	ApplicationName   string
	BasicAuthUser     string // for Grafana Cloud
	BasicAuthPassword string

	ProfileCPU           bool
	ProfileAllocObjects  bool
	ProfileAllocSpace    bool
	ProfileInuseObjects  bool
	ProfileInuseSpace    bool
	ProfileGoroutines    bool
	ProfileMutexCount    bool
	ProfileMutexDuration bool
	ProfileBlockCount    bool
	ProfileBlockDuration bool

	MutexProfileFraction int
	BlockProfileRate     int
	DisableGCRuns        bool
}

// Profiler manages the Pyroscope session. With profiling disabled every
// method is a no-op.
type Profiler struct {
	profiler *pyroscope.Profiler
	log      *zap.Logger
	config   ProfilerConfig

	mu      sync.Mutex
	stopped bool
}

// NewProfiler starts a Pyroscope session with the configured profile types.
func NewProfiler(cfg ProfilerConfig, log *zap.Logger) (*Profiler, error) {
	p := &Profiler{log: log, config: cfg}

	if !cfg.Enabled {
		log.Info("Continuous profiling disabled")
		return p, nil
	}

	if cfg.ServerAddress == "" {
		return nil, fmt.Errorf("profiler server address is required when profiling is enabled")
	}
	if cfg.ApplicationName == "" {
		return nil, fmt.Errorf("profiler application name is required when profiling is enabled")
	}

	// Mutex and block profiles need the runtime collectors switched on.
	if cfg.ProfileMutexCount || cfg.ProfileMutexDuration {
		fraction := cfg.MutexProfileFraction
		if fraction <= 0 {
			fraction = defaultMutexProfileFraction
		}
		runtime.SetMutexProfileFraction(fraction)
	}
	if cfg.ProfileBlockCount || cfg.ProfileBlockDuration {
		rate := cfg.BlockProfileRate
		if rate <= 0 {
			rate = defaultBlockProfileRate
		}
		runtime.SetBlockProfileRate(rate)
	}

	profileTypes := cfg.profileTypes()
	if len(profileTypes) == 0 {
		log.Warn("No profile types enabled, profiler will not collect any data")
	}

	session, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.ApplicationName,
		ServerAddress:     cfg.ServerAddress,
		BasicAuthUser:     cfg.BasicAuthUser,
		BasicAuthPassword: cfg.BasicAuthPassword,
		Logger:            newPyroscopeLogger(log),
		Tags:              hostTags(),
		ProfileTypes:      profileTypes,
		DisableGCRuns:     cfg.DisableGCRuns,
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope profiler: %w", err)
	}
	p.profiler = session

	log.Info("Pyroscope profiler started",
		zap.String("server_address", cfg.ServerAddress),
		zap.String("application_name", cfg.ApplicationName),
		zap.Int("profile_types", len(profileTypes)),
	)

	return p, nil
}

func (c ProfilerConfig) profileTypes() []pyroscope.ProfileType {
	selected := []struct {
		enabled bool
		t       pyroscope.ProfileType
	}{
		{c.ProfileCPU, pyroscope.ProfileCPU},
		{c.ProfileAllocObjects, pyroscope.ProfileAllocObjects},
		{c.ProfileAllocSpace, pyroscope.ProfileAllocSpace},
		{c.ProfileInuseObjects, pyroscope.ProfileInuseObjects},
		{c.ProfileInuseSpace, pyroscope.ProfileInuseSpace},
		{c.ProfileGoroutines, pyroscope.ProfileGoroutines},
		{c.ProfileMutexCount, pyroscope.ProfileMutexCount},
		{c.ProfileMutexDuration, pyroscope.ProfileMutexDuration},
		{c.ProfileBlockCount, pyroscope.ProfileBlockCount},
		{c.ProfileBlockDuration, pyroscope.ProfileBlockDuration},
	}

	var types []pyroscope.ProfileType
	for _, s := range selected {
		if s.enabled {
			types = append(types, s.t)
		}
	}
	return types
}

func hostTags() map[string]string {
	tags := map[string]string{}
	if hostname := os.Getenv("HOSTNAME"); hostname != "" {
		tags["hostname"] = hostname
	}
	if podName := os.Getenv("POD_NAME"); podName != "" {
		tags["pod"] = podName
	}
	return tags
}

// Stop flushes pending profiles and ends the session. Safe to call more than
// once. The Pyroscope SDK has no context-aware stop; it relies on internal
// timeouts if the server is unresponsive.
func (p *Profiler) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil
	}
	p.stopped = true

	if p.profiler == nil {
		return nil
	}

	p.log.Info("Stopping Pyroscope profiler")

	if err := p.profiler.Stop(); err != nil {
		p.log.Error("Profiler stop failed", zap.Error(err))
		return fmt.Errorf("stop profiler: %w", err)
	}
	return nil
}

// IsEnabled reports whether a profiling session is running.
func (p *Profiler) IsEnabled() bool {
	return p.config.Enabled && p.profiler != nil
}

// GetConfig returns a copy of the profiler configuration.
func (p *Profiler) GetConfig() ProfilerConfig {
	return p.config
}

// pyroscopeLogger adapts zap to the pyroscope.Logger interface.
type pyroscopeLogger struct {
	log *zap.SugaredLogger
}

func newPyroscopeLogger(log *zap.Logger) pyroscope.Logger {
	return &pyroscopeLogger{log: log.Named("pyroscope").Sugar()}
}

func (l *pyroscopeLogger) Infof(format string, args ...any) {
	l.log.Infof(format, args...)
}

func (l *pyroscopeLogger) Debugf(format string, args ...any) {
	l.log.Debugf(format, args...)
}

func (l *pyroscopeLogger) Errorf(format string, args ...any) {
	l.log.Errorf(format, args...)
}
