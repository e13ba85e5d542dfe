package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/darwinyusef/termsim/internal/ai"
	"github.com/darwinyusef/termsim/internal/commands"
	"github.com/darwinyusef/termsim/internal/config"
	"github.com/darwinyusef/termsim/internal/events"
	"github.com/darwinyusef/termsim/internal/exercises"
	"github.com/darwinyusef/termsim/internal/logging"
	"github.com/darwinyusef/termsim/internal/metrics"
	"github.com/darwinyusef/termsim/internal/progress"
	"github.com/darwinyusef/termsim/internal/services"
	"github.com/darwinyusef/termsim/internal/shell"
	"github.com/darwinyusef/termsim/internal/validator"
	"github.com/darwinyusef/termsim/internal/vfs"
	"github.com/darwinyusef/termsim/pkg/termsim"
)

const sourceRequestTimeout = 30 * time.Second

// app is the wired object graph behind a command invocation.
type app struct {
	cfg      *config.Config
	logger   termsim.Logger
	recorder *metrics.Recorder
	source   termsim.ExerciseSource
	store    termsim.ProgressStore
	bus      *events.Bus
	manager  *services.ExerciseManager

	closers []func()
}

// newApp loads configuration and wires logging, metrics, the exercise
// source, the progress store, the AI client and the exercise manager.
// Log output goes to logOut.
func newApp(ctx context.Context, cmd *cobra.Command, logOut io.Writer) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log.Format, cfg.Log.Level, rootFlags.verbose, logOut)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		recorder: metrics.NewRecorder(),
		bus:      events.NewBus(logger),
	}
	a.closers = append(a.closers, a.recorder.Subscribe(a.bus))

	if a.source, err = newSource(cfg); err != nil {
		a.Close()
		return nil, err
	}
	logger.Verbose("Exercise source: %s", sourceName(cfg))

	dbCfg, err := cfg.Database()
	if err != nil {
		a.Close()
		return nil, err
	}
	store, closeStore, err := progress.Open(ctx, progress.Options{
		Kind:     cfg.Progress.Store,
		Path:     cfg.ProgressPath(),
		Database: dbCfg,
	}, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, closeStore)

	v, err := a.newValidator()
	if err != nil {
		a.Close()
		return nil, err
	}

	env, err := cfg.BaseEnvironment()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%w: %w", termsim.ErrInvalidConfig, err)
	}
	sh := shell.New(
		commands.NewSet(vfs.New()),
		shell.WithEnvironment(env),
		shell.WithLogger(logger),
		shell.WithObserver(a.recorder),
	)
	a.manager = services.NewExerciseManager(a.source, a.store, sh, v, a.bus, logger,
		services.WithBaseEnvironment(env))
	return a, nil
}

func (a *app) newValidator() (*validator.Validator, error) {
	timeout, err := a.cfg.AITimeout()
	if err != nil {
		return nil, err
	}
	opts := []validator.Option{
		validator.WithTimeout(timeout),
		validator.WithLogger(a.logger),
		validator.WithObserver(a.recorder),
	}

	if a.cfg.AI.Endpoint == "" {
		a.logger.Verbose("No AI endpoint configured; AI-backed steps will fail with feedback")
		return validator.New(nil, opts...), nil
	}

	breakerTimeout, err := a.cfg.BreakerTimeout()
	if err != nil {
		return nil, err
	}
	client, err := ai.NewClient(a.cfg.AI.Endpoint,
		ai.WithMaxAttempts(a.cfg.MaxAttempts()),
		ai.WithBreaker(ai.BreakerConfig{
			MaxFailures: a.cfg.BreakerFailures(),
			Timeout:     breakerTimeout,
		}),
		ai.WithLogger(a.logger),
		ai.WithObserver(a.recorder),
	)
	if err != nil {
		return nil, err
	}
	a.logger.Verbose("AI validation endpoint: %s", a.cfg.AI.Endpoint)
	return validator.New(client, opts...), nil
}

// Close releases the store and unsubscribes observers, in reverse order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// newSource builds the exercise source selected by exercises.source.
func newSource(cfg *config.Config) (termsim.ExerciseSource, error) {
	switch sourceKind(cfg) {
	case config.SourceDir:
		return exercises.Dir(cfg.ExercisesDir())
	case config.SourceHTTP:
		return exercises.NewHTTPSource(cfg.Exercises.URL,
			exercises.WithHTTPClient(&http.Client{Timeout: sourceRequestTimeout}))
	default:
		return exercises.Builtin(), nil
	}
}

func sourceKind(cfg *config.Config) string {
	if cfg.Exercises.Source == "" {
		return config.SourceBuiltin
	}
	return cfg.Exercises.Source
}

func sourceName(cfg *config.Config) string {
	switch sourceKind(cfg) {
	case config.SourceDir:
		return "directory " + cfg.ExercisesDir()
	case config.SourceHTTP:
		return cfg.Exercises.URL
	default:
		return "built-in catalog"
	}
}

// commandContext returns the command's context, or Background when the
// command is invoked directly.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
