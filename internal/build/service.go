package build

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/incremental"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// Output layout below Request.OutputDir.
const (
	StaticDir = "static"
	ServerDir = "server"
)

// Request contains all inputs of one build.
type Request struct {
	// SiteFile and SummaryFile are the site configuration and navigation manifest.
	SiteFile    string
	SummaryFile string

	// SourceDir holds the Markdown documents and the optional styles/ directory.
	SourceDir string

	// OutputDir receives static/, server/ and the build manifest.
	OutputDir string

	// Port is baked into the generated server.
	Port int

	// Mirror is the resolved template mirror.
	Mirror config.MirrorLocation

	// StyleCompiler names the preprocessor binary run over src/styles.
	// Empty copies plain .css files instead.
	StyleCompiler string
}

// Result contains the outcome of a build.
type Result struct {
	Status    Status
	BuildID   string
	Pages     int
	Writes    incremental.Stats
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Status is the final state of a build.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// MirrorEnsurer installs the template mirror when it is missing.
type MirrorEnsurer interface {
	Ensure(ctx context.Context) error
}

// Service executes builds. A Service holds no per-build state and may be
// reused, but builds must not run concurrently against the same output.
type Service struct {
	recorder metrics.Recorder
	logger   *slog.Logger
	mirror   MirrorEnsurer
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLogger sets the base logger. Each build derives a child logger tagged
// with its build id.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMirror makes every build ensure the template mirror first.
func WithMirror(m MirrorEnsurer) Option {
	return func(s *Service) { s.mirror = m }
}

// NewService returns a Service with a no-op recorder and the default logger.
func NewService(opts ...Option) *Service {
	s := &Service{
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}
