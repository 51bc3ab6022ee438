package xaiepy

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/magefile/mage/sh"
)

// Error classes. Every error returned by Resolve or Orchestrator.Run is
// marked with exactly one of them; test with errors.Is.
var (
	// ErrConfiguration is returned before any process runs, e.g. for an
	// unmapped Windows platform name or an unwritable build directory.
	ErrConfiguration = errors.New("configuration error")

	// ErrToolchain is returned when the configure or build step fails.
	ErrToolchain = errors.New("toolchain invocation failed")

	// ErrBindingGeneration is returned when either downstream generator
	// fails.
	ErrBindingGeneration = errors.New("binding generation failed")
)

// Step names, as they appear in BuildResult.Steps and StepError.Step.
const (
	StepConfigure        = "configure"
	StepBuild            = "build"
	StepGenerateBindings = "generate-bindings"
	StepGenerateShim     = "generate-shim"
)

// StepError reports a failed external step.
//
// It carries the step name, the exit status of the process (1 when the
// process could not be started or did not report one) and the output
// captured while it ran. StepError implements ExitStatus so that mage's
// mg.ExitStatus and sh.ExitStatus report the failing step's code.
type StepError struct {
	Step   string
	Code   int
	Output []string
	Err    error
}

func (e *StepError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s step failed", e.Step)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if out := strings.TrimSpace(strings.Join(e.Output, "\n")); out != "" {
		fmt.Fprintf(&b, "\n\nStep output:\n%s", out)
	}
	return b.String()
}

func (e *StepError) Unwrap() error { return e.Err }

// ExitStatus returns the exit code of the failed process.
func (e *StepError) ExitStatus() int { return e.Code }

// stepError creates a standardized step error, marked with class.
//
// # Format
//
// With error and output:
//
//	build step failed: exit status 2
//
//	Step output:
//	ninja: error: unknown target 'xaie'
//
// With error but no output:
//
//	build step failed: exit status 2
//
// The returned error satisfies errors.Is(err, class) and
// errors.As(err, **StepError).
func stepError(class error, step string, output []string, err error) error {
	code := sh.ExitStatus(err)
	if code == 0 {
		code = 1
	}
	se := &StepError{
		Step:   step,
		Code:   code,
		Output: append([]string(nil), output...),
		Err:    err,
	}
	return errors.Mark(se, class)
}

// ExitCode returns the exit status a command-line front end should use for
// err: the failing process's code for step errors, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var se *StepError
	if errors.As(err, &se) {
		return se.Code
	}
	return 1
}

// generatorContains reports whether the CMake generator name contains any
// of the given substrings.
//
// # Example
//
//	if generatorContains("Visual Studio 17 2022 Win64", "ARM", "Win64") {
//	    // Architecture already encoded in the generator name
//	}
func generatorContains(generator string, substrings ...string) bool {
	for _, s := range substrings {
		if strings.Contains(generator, s) {
			return true
		}
	}
	return false
}

// splitLines splits captured process output into lines, dropping the
// trailing empty line left by a final newline.
func splitLines(output string) []string {
	if output == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(output, "\n"), "\n")
}
