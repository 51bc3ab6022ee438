package xaiepy

import (
	"context"
	"path/filepath"
)

// OS identifies the operating system a build targets.
type OS int

const (
	OSOther OS = iota
	OSLinux
	OSDarwin
	OSWindows
)

func (o OS) String() string {
	switch o {
	case OSLinux:
		return "Linux"
	case OSDarwin:
		return "macOS"
	case OSWindows:
		return "Windows"
	default:
		return "Other"
	}
}

// ConfigType is the CMake build type.
type ConfigType string

const (
	Debug   ConfigType = "Debug"
	Release ConfigType = "Release"
)

// Compiler families that change how the configure step is assembled.
const (
	CompilerMSVC = "msvc"
	CompilerUnix = "unix"
)

// Fixed contracts with the native project.
const (
	// NativeTarget is the CMake target the aie-rt project must expose.
	NativeTarget = "xaie"

	// DefaultPackageName is the name of the produced Python package.
	DefaultPackageName = "xaiepy"

	// DefaultGenerator is used when CMAKE_GENERATOR is not set.
	DefaultGenerator = "Ninja"

	// DefaultDeploymentTarget is the macOS deployment target used when
	// OSX_VERSION is not set.
	DefaultDeploymentTarget = "11.6"

	// DefaultBindingModule is the file name of the generated ctypes module.
	DefaultBindingModule = "__init__.py"

	// ShimBaseName is the base name of the shim artifact.
	ShimBaseName = "_cdo"
)

// PlatformProfile describes the host toolchain as far as the configure and
// build steps care about it. It is produced by ResolvePlatform and never
// modified afterwards.
type PlatformProfile struct {
	OS                OS
	EscapePaths       bool              // Windows: paths handed to CMake need escaping
	DefaultGenerator  string            // Generator used when none is configured
	CompilerOverrides map[string]string // CMake cache entries forced for this toolchain
	Archs             []string          // macOS cross-compilation architectures, in ARCHFLAGS order

	Compiler         string // CompilerMSVC or CompilerUnix
	PlatName         string // win32, win-amd64, win-arm32, win-arm64 (Windows only)
	DeploymentTarget string // macOS only
	NinjaPath        string // Empty when no ninja executable was found
}

// SharedLibraryExtension returns the extension, without the dot, of
// dynamically loadable libraries on this platform.
func (p *PlatformProfile) SharedLibraryExtension() string {
	if p.OS == OSWindows {
		return "dll"
	}
	return "so"
}

// BuildConfiguration is everything a single orchestration run needs.
//
// A BuildConfiguration is created once by Resolve and shared read-only by
// the argument builder, the invoker and the binding coordinator. Paths are
// absolute.
//
// Source layout:
//   - SourceDir: root of the native project (contains CMakeLists.txt)
//   - ModulePath: aie-rt CMake module directory
//   - BootgenInclude: include root of the bootgen component
//
// Output layout:
//   - BuildDir: CMake binary directory; created before configure runs
//   - OutputDir: directory that receives <PackageName>/
//
// Toolchain selection:
//   - ConfigType: Debug or Release
//   - Generator: CMake generator name
//   - ExtraArgs: arguments appended to the configure step (CMAKE_ARGS)
//   - Parallelism: job count passed verbatim as -j<Parallelism>
type BuildConfiguration struct {
	// Source paths
	SourceDir      string
	ModulePath     string
	BootgenInclude string

	// Output paths
	BuildDir      string
	OutputDir     string
	PackageName   string
	BindingModule string

	// Toolchain
	ConfigType  ConfigType
	Generator   string
	ExtraArgs   []string
	Parallelism string
	Interpreter string

	// Downstream generator command templates; nil selects the defaults.
	BindingsCommand []string
	ShimCommand     []string

	// Behaviour
	TestMode bool // RUN_TESTS was truthy
	Verbose  bool

	Platform *PlatformProfile
}

// PackageDir is <OutputDir>/<PackageName>, the directory CMake writes its
// library, archive and runtime outputs to.
func (c *BuildConfiguration) PackageDir() string {
	return filepath.Join(c.OutputDir, c.PackageName)
}

// HeadersDir is the directory the native build installs its public
// headers into.
func (c *BuildConfiguration) HeadersDir() string {
	return filepath.Join(c.BuildDir, "include")
}

// BindingModulePath is the path the header-binding generator writes to.
func (c *BuildConfiguration) BindingModulePath() string {
	return filepath.Join(c.PackageDir(), c.BindingModule)
}

// ShimPath is the path the shim-artifact generator writes to.
func (c *BuildConfiguration) ShimPath() string {
	return filepath.Join(c.PackageDir(), ShimBaseName+"."+c.Platform.SharedLibraryExtension())
}

// GeneratorInvocation is the input handed to one downstream generator.
type GeneratorInvocation struct {
	Input   string // Header directory or build directory
	Output  string // File the generator must produce
	Include string // Auxiliary include root, empty for the shim generator
}

// BuildResult contains the output and status of an orchestration run.
//
// After a run completes, this structure provides:
//   - Success status indicating if every step completed
//   - Steps that completed, in order
//   - Output lines captured from the external processes
//   - Artifacts produced under the package directory
//   - Error information if the run failed
type BuildResult struct {
	Success   bool     // True if all four steps completed
	Steps     []string // Names of the steps that completed
	Output    []string // Lines of output from the external processes
	Artifacts []string // Paths to produced files
	Error     error    // Error if the run failed, nil otherwise
}

// pipelineStage is one step of the orchestration. It reads the shared
// configuration and appends to the shared result.
type pipelineStage struct {
	Name string
	Run  func(ctx context.Context, cfg *BuildConfiguration, result *BuildResult) error
}
