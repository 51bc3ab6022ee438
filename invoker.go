package xaiepy

import (
	"bytes"
	"context"
	"io"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// Runner executes an external process in dir and returns its combined
// output split into lines. A non-nil error means the process could not be
// started or exited with a non-zero status.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]string, error)
}

// ExecRunner runs processes with os/exec. Output is captured and, when
// Stream is set, copied to it as the process runs. Arguments are passed
// to the process as given; nothing is expanded.
type ExecRunner struct {
	Stream io.Writer

	// Env is added to the inherited process environment.
	Env map[string]string
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	for _, k := range slices.Sorted(maps.Keys(r.Env)) {
		cmd.Env = append(cmd.Env, k+"="+r.Env[k])
	}

	var buf bytes.Buffer
	var w io.Writer = &buf
	if r.Stream != nil {
		w = io.MultiWriter(&buf, r.Stream)
	}
	cmd.Stdout = w
	cmd.Stderr = w

	err := cmd.Run()
	return splitLines(buf.String()), err
}

// Invoker runs the configure and build steps of the native project.
//
// Both steps run with the build directory as working directory. There is
// no retry; the first failure is returned as a *StepError marked
// ErrToolchain.
type Invoker struct {
	Runner Runner
	CMake  string // CMake executable; defaults to "cmake"
	Log    zerolog.Logger
}

func (inv *Invoker) cmake() string {
	if inv.CMake != "" {
		return inv.CMake
	}
	return "cmake"
}

// Configure runs "cmake <SourceDir> <ConfigureArgs...>".
func (inv *Invoker) Configure(ctx context.Context, cfg *BuildConfiguration, result *BuildResult) error {
	args, err := ConfigureArgs(cfg)
	if err != nil {
		return err
	}
	args = append([]string{cfg.SourceDir}, args...)
	return inv.run(ctx, StepConfigure, cfg, result, args)
}

// Build runs "cmake --build . --target xaie <BuildArgs...>" and checks
// that the build left its headers behind.
func (inv *Invoker) Build(ctx context.Context, cfg *BuildConfiguration, result *BuildResult) error {
	args := append([]string{"--build", "."}, BuildArgs(cfg)...)
	if err := inv.run(ctx, StepBuild, cfg, result, args); err != nil {
		return err
	}

	headers := cfg.HeadersDir()
	if info, err := os.Stat(headers); err != nil || !info.IsDir() {
		return stepError(ErrToolchain, StepBuild, nil,
			errors.Newf("build did not produce a headers directory at %s", headers))
	}

	libs, err := collectNativeLibraries(cfg.PackageDir())
	if err != nil {
		return stepError(ErrToolchain, StepBuild, nil, err)
	}
	result.Artifacts = append(result.Artifacts, libs...)

	if inv.Log.GetLevel() <= zerolog.DebugLevel {
		logListing(inv.Log, cfg.BuildDir)
		logListing(inv.Log, cfg.PackageDir())
	}
	return nil
}

func (inv *Invoker) run(ctx context.Context, step string, cfg *BuildConfiguration, result *BuildResult, args []string) error {
	inv.Log.Info().Str("step", step).Str("dir", cfg.BuildDir).Msg("running cmake")
	inv.Log.Debug().Str("step", step).Strs("args", args).Msg("cmake arguments")

	output, err := inv.Runner.Run(ctx, cfg.BuildDir, inv.cmake(), args...)
	result.Output = append(result.Output, output...)

	if cfg.Verbose {
		result.Output = append(result.Output,
			"Running: "+inv.cmake()+" "+strings.Join(args, " "),
			"Working directory: "+cfg.BuildDir)
	}

	if err != nil {
		return stepError(ErrToolchain, step, output, err)
	}
	return nil
}
