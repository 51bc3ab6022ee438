package xaiepy

import (
	"context"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// Coordinator runs the two downstream generators after a successful
// build: first the header bindings, then the shim artifact. The second
// generator does not start until the first has returned.
type Coordinator struct {
	Bindings Generator
	Shim     Generator
	Log      zerolog.Logger
}

// NewCoordinator returns a Coordinator using command generators built from
// cfg. Nil command templates select DefaultBindingsCommand and
// DefaultShimCommand. Generator output is copied to stream when it is
// non-nil.
func NewCoordinator(cfg *BuildConfiguration, log zerolog.Logger, stream io.Writer) *Coordinator {
	env := map[string]string{EnvRunTests: "0"}
	if cfg.TestMode {
		env[EnvRunTests] = "1"
	}

	bindings := cfg.BindingsCommand
	if len(bindings) == 0 {
		bindings = DefaultBindingsCommand
	}
	shim := cfg.ShimCommand
	if len(shim) == 0 {
		shim = DefaultShimCommand
	}

	return &Coordinator{
		Bindings: NewCommandGenerator(&CommandGeneratorConfig{
			Name:        "bindings",
			Command:     bindings,
			Root:        cfg.SourceDir,
			Interpreter: cfg.Interpreter,
			Env:         env,
			Stream:      stream,
		}),
		Shim: NewCommandGenerator(&CommandGeneratorConfig{
			Name:        "shim",
			Command:     shim,
			Root:        cfg.SourceDir,
			Interpreter: cfg.Interpreter,
			Env:         env,
			Stream:      stream,
		}),
		Log: log,
	}
}

// BindingsInvocation is the input of the header-binding generator.
func BindingsInvocation(cfg *BuildConfiguration) GeneratorInvocation {
	return GeneratorInvocation{
		Input:   cfg.HeadersDir(),
		Output:  cfg.BindingModulePath(),
		Include: cfg.Platform.EscapePath(cfg.BootgenInclude, PathRoleInclude),
	}
}

// ShimInvocation is the input of the shim-artifact generator.
func ShimInvocation(cfg *BuildConfiguration) GeneratorInvocation {
	return GeneratorInvocation{
		Input:  cfg.BuildDir,
		Output: cfg.ShimPath(),
	}
}

// GenerateBindings runs the header-binding generator.
func (c *Coordinator) GenerateBindings(ctx context.Context, cfg *BuildConfiguration, result *BuildResult) error {
	return c.generate(ctx, StepGenerateBindings, c.Bindings, BindingsInvocation(cfg), result)
}

// GenerateShim runs the shim-artifact generator.
func (c *Coordinator) GenerateShim(ctx context.Context, cfg *BuildConfiguration, result *BuildResult) error {
	return c.generate(ctx, StepGenerateShim, c.Shim, ShimInvocation(cfg), result)
}

func (c *Coordinator) generate(ctx context.Context, step string, g Generator, inv GeneratorInvocation, result *BuildResult) error {
	if err := ensureParentDir(inv.Output); err != nil {
		return stepError(ErrBindingGeneration, step, nil, err)
	}

	c.Log.Info().
		Str("step", step).
		Str("generator", g.Name()).
		Str("input", inv.Input).
		Str("output", inv.Output).
		Msg("running generator")

	err := g.Generate(ctx, inv)

	var output []string
	if o, ok := g.(interface{ Output() []string }); ok {
		output = o.Output()
		result.Output = append(result.Output, output...)
	}
	if err != nil {
		return stepError(ErrBindingGeneration, step, output, err)
	}
	if _, err := os.Stat(inv.Output); err != nil {
		return stepError(ErrBindingGeneration, step, output,
			errors.Newf("%s generator did not produce %s", g.Name(), inv.Output))
	}

	result.Artifacts = append(result.Artifacts, inv.Output)
	return nil
}
