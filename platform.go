package xaiepy

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// PathRole names the purpose of a path handed to CMake. On Windows, CMake
// reads paths in different roles at different parsing stages, so each role
// has its own escaping rule.
type PathRole int

const (
	// PathRoleInterpreter is the Python3_EXECUTABLE value.
	PathRoleInterpreter PathRole = iota
	// PathRoleModule is the CMAKE_MODULE_PATH value.
	PathRoleModule
	// PathRoleInclude is the bootgen include root.
	PathRoleInclude
)

// windowsArchitectures maps Windows platform names to Visual Studio
// generator platforms (-A).
var windowsArchitectures = map[string]string{
	"win32":     "Win32",
	"win-amd64": "x64",
	"win-arm32": "ARM",
	"win-arm64": "ARM64",
}

// windowsPlatNames maps GOARCH to the platform name used for -A lookup.
var windowsPlatNames = map[string]string{
	"386":   "win32",
	"amd64": "win-amd64",
	"arm":   "win-arm32",
	"arm64": "win-arm64",
}

var archFlagPattern = regexp.MustCompile(`-arch (\S+)`)

// PlatformOptions carries the explicit choices that can override what
// ResolvePlatform would detect.
type PlatformOptions struct {
	Compiler  string // CompilerMSVC or CompilerUnix; empty selects the OS default
	PlatName  string // Windows platform name; empty derives it from GOARCH
	Generator string // Generator from the project config, used when CMAKE_GENERATOR is unset
}

// ResolvePlatform builds a PlatformProfile from an operating system
// identifier (a GOOS value), an architecture (a GOARCH value) and the
// environment.
//
// Resolution is deterministic apart from the ninja lookup, which goes
// through the package's lookPath hook. A missing ninja is not an error.
func ResolvePlatform(goos, goarch string, env Environment, opts PlatformOptions) (*PlatformProfile, error) {
	p := &PlatformProfile{
		OS:               osFromGOOS(goos),
		DefaultGenerator: DefaultGenerator,
		Compiler:         opts.Compiler,
	}

	if p.Compiler == "" {
		p.Compiler = CompilerUnix
		if p.OS == OSWindows {
			p.Compiler = CompilerMSVC
		}
	}
	if p.Compiler != CompilerMSVC && p.Compiler != CompilerUnix {
		return nil, errors.Mark(errors.Newf("unknown compiler type %q", p.Compiler), ErrConfiguration)
	}

	switch p.OS {
	case OSWindows:
		p.EscapePaths = true
		p.CompilerOverrides = map[string]string{
			"CMAKE_C_COMPILER":           "cl",
			"CMAKE_CXX_COMPILER":         "cl",
			"CMAKE_MSVC_RUNTIME_LIBRARY": "MultiThreaded",
			"CMAKE_C_FLAGS":              "/MT",
			"CMAKE_CXX_FLAGS":            "/MT",
		}
		p.PlatName = opts.PlatName
		if p.PlatName == "" {
			p.PlatName = windowsPlatNames[goarch]
		}
	case OSDarwin:
		p.DeploymentTarget = env.Get(EnvOSXVersion, DefaultDeploymentTarget)
		p.Archs = ExtractArchs(env[EnvArchFlags])
	}

	generator := resolveGenerator(env, opts.Generator)
	if generator == DefaultGenerator && p.Compiler != CompilerMSVC {
		p.NinjaPath = findTool(ninjaRequirement)
	}

	return p, nil
}

// resolveGenerator returns CMAKE_GENERATOR, the configured generator or
// the default, in that order of precedence.
func resolveGenerator(env Environment, configured string) string {
	if g, ok := env.Lookup(EnvCMakeGenerator); ok && g != "" {
		return g
	}
	if configured != "" {
		return configured
	}
	return DefaultGenerator
}

// ExtractArchs returns the tokens of every "-arch X" occurrence in flags,
// in order and with duplicates kept.
func ExtractArchs(flags string) []string {
	var archs []string
	for _, m := range archFlagPattern.FindAllStringSubmatch(flags, -1) {
		archs = append(archs, m[1])
	}
	return archs
}

// WindowsArchitecture returns the -A value for a Windows platform name.
func WindowsArchitecture(platName string) (string, error) {
	arch, ok := windowsArchitectures[platName]
	if !ok {
		return "", errors.Mark(
			errors.WithDetail(
				errors.Newf("unknown Windows platform name %q", platName),
				"expected one of win32, win-amd64, win-arm32, win-arm64"),
			ErrConfiguration)
	}
	return arch, nil
}

// EscapePath prepares path for the CMake argument parser. Only Windows
// profiles escape: the interpreter path has its backslashes doubled, the
// module and include paths have them replaced with "//".
func (p *PlatformProfile) EscapePath(path string, role PathRole) string {
	if !p.EscapePaths {
		return path
	}
	switch role {
	case PathRoleInterpreter:
		return strings.ReplaceAll(path, `\`, `\\`)
	case PathRoleModule, PathRoleInclude:
		return strings.ReplaceAll(path, `\`, "//")
	default:
		return path
	}
}

// SingleConfig reports whether an MSVC generator produces a single build
// configuration.
func SingleConfig(generator string) bool {
	return generatorContains(generator, "NMake", "Ninja")
}

// EncodesArchitecture reports whether a generator name already selects the
// target architecture.
func EncodesArchitecture(generator string) bool {
	return generatorContains(generator, "ARM", "Win64")
}

func osFromGOOS(goos string) OS {
	switch goos {
	case "windows":
		return OSWindows
	case "darwin":
		return OSDarwin
	case "linux":
		return OSLinux
	default:
		return OSOther
	}
}
