package xaiepy

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// Orchestrator drives one build: configure, build, generate bindings,
// generate shim. Each step starts only after the previous one succeeded.
//
// The build directory is used exclusively for the duration of Run. There is
// no locking; callers must not run two orchestrations against the same
// build directory at the same time.
type Orchestrator struct {
	Invoker     *Invoker
	Coordinator *Coordinator
	Log         zerolog.Logger

	// SkipToolCheck disables the RequiredTools lookup done before
	// configuring.
	SkipToolCheck bool
}

// NewOrchestrator returns an Orchestrator that runs cmake and the
// configured generators as real processes. Process output is copied to
// stream when it is non-nil.
func NewOrchestrator(cfg *BuildConfiguration, log zerolog.Logger, stream io.Writer) *Orchestrator {
	return &Orchestrator{
		Invoker: &Invoker{
			Runner: ExecRunner{Stream: stream},
			Log:    log,
		},
		Coordinator: NewCoordinator(cfg, log, stream),
		Log:         log,
	}
}

// Run executes the whole pipeline for cfg.
//
// On failure the returned error is marked with ErrConfiguration,
// ErrToolchain or ErrBindingGeneration and, for process failures, wraps a
// *StepError naming the step. The BuildResult is returned in both cases.
func (o *Orchestrator) Run(ctx context.Context, cfg *BuildConfiguration) (*BuildResult, error) {
	if !o.SkipToolCheck {
		if err := CheckRequiredTools(RequiredTools()); err != nil {
			err = errors.Mark(err, ErrConfiguration)
			return &BuildResult{Error: err}, err
		}
	}

	o.Log.Debug().
		Str("source", cfg.SourceDir).
		Str("build", cfg.BuildDir).
		Str("output", cfg.PackageDir()).
		Str("os", cfg.Platform.OS.String()).
		Str("compiler", cfg.Platform.Compiler).
		Str("generator", cfg.Generator).
		Str("config", string(cfg.ConfigType)).
		Str("jobs", cfg.Parallelism).
		Strs("cmake_args", cfg.ExtraArgs).
		Bool("run_tests", cfg.TestMode).
		Msg("resolved build configuration")
	if cfg.Platform.NinjaPath == "" && cfg.Generator == DefaultGenerator && cfg.Platform.Compiler != CompilerMSVC {
		o.Log.Debug().Msg("ninja not found, leaving generator selection to cmake")
	}

	result, err := runPipeline(ctx, cfg, []pipelineStage{
		{Name: StepConfigure, Run: o.Invoker.Configure},
		{Name: StepBuild, Run: o.Invoker.Build},
		{Name: StepGenerateBindings, Run: o.Coordinator.GenerateBindings},
		{Name: StepGenerateShim, Run: o.Coordinator.GenerateShim},
	})
	if err != nil {
		o.Log.Error().Err(err).Strs("completed", result.Steps).Msg("build failed")
		return result, err
	}

	o.Log.Info().Strs("artifacts", result.Artifacts).Msg("build complete")
	return result, nil
}
