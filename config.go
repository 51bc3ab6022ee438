package xaiepy

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ProjectConfigFile is the name of the optional project configuration file
// looked up in the source directory.
const ProjectConfigFile = "xaiepy-build.toml"

// ProjectConfig is the content of xaiepy-build.toml. Every key is optional.
//
//	package_name    = "xaiepy"
//	build_dir       = "build/temp"
//	output_dir      = "build/lib"
//	module_path     = "third_party/aie-rt/fal/cmake"
//	bootgen_include = "third_party/bootgen"
//	generator       = "Ninja"
//
//	[generators.bindings]
//	command = ["{{interpreter}}", "scripts/gen_bindings.py", "{{input}}", "{{output}}", "{{include}}"]
//
// Relative paths are resolved against the source directory.
type ProjectConfig struct {
	PackageName         string `koanf:"package_name"`
	BuildDir            string `koanf:"build_dir"`
	OutputDir           string `koanf:"output_dir"`
	ModulePath          string `koanf:"module_path"`
	BootgenInclude      string `koanf:"bootgen_include"`
	Interpreter         string `koanf:"interpreter"`
	BindingModule       string `koanf:"binding_module"`
	Generator           string `koanf:"generator"`
	Compiler            string `koanf:"compiler"`
	PlatName            string `koanf:"plat_name"`
	ShellSplitCMakeArgs bool   `koanf:"shell_split_cmake_args"`

	Generators struct {
		Bindings GeneratorConfig `koanf:"bindings"`
		Shim     GeneratorConfig `koanf:"shim"`
	} `koanf:"generators"`
}

// GeneratorConfig overrides the command a downstream generator runs.
type GeneratorConfig struct {
	Command []string `koanf:"command"`
}

var tomlParser = toml.Parser()

// LoadProjectConfig reads a project configuration file. A missing file
// yields an empty configuration.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), tomlParser); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Mark(errors.Wrapf(err, "unable to parse %s", path), ErrConfiguration)
	}

	cfg := &ProjectConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "unable to unmarshal %s", path), ErrConfiguration)
	}
	return cfg, nil
}

// Options are the explicit inputs to Resolve. Empty fields fall back to the
// project configuration file and then to built-in defaults.
type Options struct {
	SourceDir  string // Defaults to WorkDir
	WorkDir    string // Base for the default build and output directories; defaults to the process working directory
	ConfigFile string // Defaults to <SourceDir>/xaiepy-build.toml

	BuildDir       string
	OutputDir      string
	PackageName    string
	ModulePath     string
	BootgenInclude string
	Interpreter    string
	BindingModule  string

	Generator string
	Compiler  string
	PlatName  string

	ShellSplit bool // Tokenize CMAKE_ARGS with shell quoting rules
	Verbose    bool

	// Host description; zero values select the running host.
	GOOS   string
	GOARCH string
	Cores  int
}

// Resolve assembles the BuildConfiguration for one run.
//
// It reads the project configuration file, resolves the platform profile,
// applies the environment (DEBUG, RUN_TESTS, CMAKE_GENERATOR, CMAKE_ARGS,
// PARALLEL_LEVEL) and creates the build directory. Every failure is marked
// ErrConfiguration; independent validation problems are reported together.
func Resolve(opts Options, env Environment) (*BuildConfiguration, error) {
	if opts.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "cannot determine working directory"), ErrConfiguration)
		}
		opts.WorkDir = wd
	}
	if opts.SourceDir == "" {
		opts.SourceDir = opts.WorkDir
	}
	sourceDir, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "invalid source directory %q", opts.SourceDir), ErrConfiguration)
	}
	if opts.ConfigFile == "" {
		opts.ConfigFile = filepath.Join(sourceDir, ProjectConfigFile)
	}
	project, err := LoadProjectConfig(opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	if opts.GOARCH == "" {
		opts.GOARCH = runtime.GOARCH
	}
	if opts.Cores <= 0 {
		opts.Cores = runtime.NumCPU()
	}

	platform, err := ResolvePlatform(opts.GOOS, opts.GOARCH, env, PlatformOptions{
		Compiler:  firstNonEmpty(opts.Compiler, project.Compiler),
		PlatName:  firstNonEmpty(opts.PlatName, project.PlatName),
		Generator: firstNonEmpty(opts.Generator, project.Generator),
	})
	if err != nil {
		return nil, err
	}

	inSource := func(p string) string { return absUnder(sourceDir, p) }
	inWork := func(p string) string { return absUnder(opts.WorkDir, p) }

	cfg := &BuildConfiguration{
		SourceDir:      sourceDir,
		ModulePath:     inSource(firstNonEmpty(opts.ModulePath, project.ModulePath, filepath.Join("third_party", "aie-rt", "fal", "cmake"))),
		BootgenInclude: inSource(firstNonEmpty(opts.BootgenInclude, project.BootgenInclude, filepath.Join("third_party", "bootgen"))),
		BuildDir:       inWork(firstNonEmpty(opts.BuildDir, project.BuildDir, filepath.Join("build", "temp"))),
		OutputDir:      inWork(firstNonEmpty(opts.OutputDir, project.OutputDir, filepath.Join("build", "lib"))),
		PackageName:    firstNonEmpty(opts.PackageName, project.PackageName, DefaultPackageName),
		BindingModule:  firstNonEmpty(opts.BindingModule, project.BindingModule, DefaultBindingModule),
		ConfigType:     ConfigTypeFrom(env),
		Generator:      resolveGenerator(env, firstNonEmpty(opts.Generator, project.Generator)),
		Parallelism:    parallelismFrom(env, opts.Cores),
		Interpreter:    firstNonEmpty(opts.Interpreter, project.Interpreter),
		TestMode:       env.Truthy(EnvRunTests),
		Verbose:        opts.Verbose,
		Platform:       platform,

		BindingsCommand: project.Generators.Bindings.Command,
		ShimCommand:     project.Generators.Shim.Command,
	}

	var result *multierror.Error

	if raw, ok := env.Lookup(EnvCMakeArgs); ok {
		if opts.ShellSplit || project.ShellSplitCMakeArgs {
			args, err := ShellSplitCMakeArgs(raw, env)
			result = multierror.Append(result, err)
			cfg.ExtraArgs = args
		} else {
			cfg.ExtraArgs = SplitCMakeArgs(raw)
		}
	}

	if cfg.Interpreter == "" {
		cfg.Interpreter = findTool(pythonRequirement)
		if cfg.Interpreter == "" {
			result = multierror.Append(result, errors.New("no Python interpreter found in PATH"))
		}
	}

	if _, err := os.Stat(filepath.Join(sourceDir, "CMakeLists.txt")); err != nil {
		result = multierror.Append(result, errors.Newf("%s does not contain a CMakeLists.txt", sourceDir))
	}

	if platform.Compiler == CompilerMSVC && !SingleConfig(cfg.Generator) && !EncodesArchitecture(cfg.Generator) {
		if _, err := WindowsArchitecture(platform.PlatName); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if err := prepareBuildDir(cfg.BuildDir); err != nil {
		result = multierror.Append(result, err)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, errors.Mark(err, ErrConfiguration)
	}
	return cfg, nil
}

var pythonRequirement = ToolRequirement{
	Name:         "python3",
	Alternatives: []string{"python"},
	Purpose:      "Python interpreter for the binding generators",
}

// prepareBuildDir creates dir if needed and checks that it is writable.
func prepareBuildDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "cannot create build directory %s", dir)
	}
	if err := dirWritable(dir); err != nil {
		return errors.Wrapf(err, "build directory %s is not writable", dir)
	}
	return nil
}

func absUnder(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
