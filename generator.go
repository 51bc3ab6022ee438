package xaiepy

import (
	"context"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// Generator produces one downstream artifact from the build output.
//
// # Generator Lifecycle
//
// The Coordinator creates the parent directory of inv.Output, then calls
// Generate once. Generate must either produce inv.Output or return an
// error; the Coordinator does not clean up partial output.
//
// # Example Implementation
//
//	type stampGenerator struct{}
//
//	func (stampGenerator) Name() string { return "stamp" }
//
//	func (stampGenerator) Generate(ctx context.Context, inv GeneratorInvocation) error {
//	    return os.WriteFile(inv.Output, []byte(inv.Input), 0o644)
//	}
type Generator interface {
	// Name returns the human-readable name of this generator.
	Name() string

	// Generate produces inv.Output.
	Generate(ctx context.Context, inv GeneratorInvocation) error
}

// Command template placeholders.
//
//	{{input}}       - GeneratorInvocation.Input
//	{{output}}      - GeneratorInvocation.Output
//	{{include}}     - GeneratorInvocation.Include
//	{{root}}        - the project source directory
//	{{interpreter}} - the Python interpreter
const (
	placeholderInput       = "{{input}}"
	placeholderOutput      = "{{output}}"
	placeholderInclude     = "{{include}}"
	placeholderRoot        = "{{root}}"
	placeholderInterpreter = "{{interpreter}}"
)

// Default command templates. They import the project's generator scripts
// from <root>/scripts and call them with the invocation paths.
var (
	DefaultBindingsCommand = []string{
		placeholderInterpreter, "-c",
		"import sys; from pathlib import Path; sys.path.append(sys.argv[1]); " +
			"from scripts import gen_xaie_ctypes; " +
			"gen_xaie_ctypes.generate(Path(sys.argv[2]), Path(sys.argv[3]), sys.argv[4])",
		placeholderRoot, placeholderInput, placeholderOutput, placeholderInclude,
	}

	DefaultShimCommand = []string{
		placeholderInterpreter, "-c",
		"import sys; sys.path.append(sys.argv[1]); " +
			"from scripts import gen_cdo; " +
			"gen_cdo.build_ffi(sys.argv[2], sys.argv[3])",
		placeholderRoot, placeholderInput, placeholderOutput,
	}
)

// CommandGenerator runs an external command built from a template.
type CommandGenerator struct {
	name        string
	command     []string
	root        string
	interpreter string
	runner      Runner

	// output holds the lines printed by the last run.
	output []string
}

// CommandGeneratorConfig defines a CommandGenerator.
type CommandGeneratorConfig struct {
	// Name is the generator name used in logs and errors.
	Name string

	// Command is the command template. See the placeholder constants.
	Command []string

	// Root and Interpreter fill {{root}} and {{interpreter}}.
	Root        string
	Interpreter string

	// Env is added to the process environment.
	Env map[string]string

	// Stream, when set, receives the process output as it is produced.
	Stream io.Writer

	// Runner runs the command. Defaults to an ExecRunner carrying Env and
	// Stream.
	Runner Runner
}

// NewCommandGenerator creates a CommandGenerator from configuration.
func NewCommandGenerator(config *CommandGeneratorConfig) *CommandGenerator {
	runner := config.Runner
	if runner == nil {
		runner = ExecRunner{Stream: config.Stream, Env: config.Env}
	}
	return &CommandGenerator{
		name:        config.Name,
		command:     config.Command,
		root:        config.Root,
		interpreter: config.Interpreter,
		runner:      runner,
	}
}

// Name returns the generator name
func (g *CommandGenerator) Name() string {
	return g.name
}

// Output returns the lines printed by the last Generate call.
func (g *CommandGenerator) Output() []string {
	return g.output
}

// Command returns the command line for inv with every placeholder
// substituted.
func (g *CommandGenerator) Command(inv GeneratorInvocation) []string {
	r := strings.NewReplacer(
		placeholderInput, inv.Input,
		placeholderOutput, inv.Output,
		placeholderInclude, inv.Include,
		placeholderRoot, g.root,
		placeholderInterpreter, g.interpreter,
	)
	args := make([]string, len(g.command))
	for i, arg := range g.command {
		args[i] = r.Replace(arg)
	}
	return args
}

// Generate runs the command for inv in the current directory. Substituted
// paths reach the process verbatim, including any '$'.
func (g *CommandGenerator) Generate(ctx context.Context, inv GeneratorInvocation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(g.command) == 0 {
		return errors.Newf("no command configured for %s generator", g.name)
	}

	args := g.Command(inv)

	output, err := g.runner.Run(ctx, "", args[0], args[1:]...)
	g.output = output
	return err
}
