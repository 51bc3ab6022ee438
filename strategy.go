package xaiepy

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// platformStrategy contributes the platform-specific part of the configure
// and build argument lists.
//
// Strategies are stateless. A registry holds them in a fixed order and
// every strategy whose Applies returns true contributes, so a Windows host
// using MSVC gets both the windows and the msvc contributions.
type platformStrategy interface {
	// Name identifies the strategy in logs.
	Name() string

	// Applies reports whether the strategy contributes for p.
	Applies(p *PlatformProfile) bool

	// ConfigureArgs returns arguments for the configure step. An error is
	// always a configuration error.
	ConfigureArgs(cfg *BuildConfiguration) ([]string, error)

	// BuildArgs returns arguments for the build step.
	BuildArgs(cfg *BuildConfiguration) []string
}

// strategyRegistry manages the ordered set of platform strategies.
//
// Not thread-safe for registration. Register all strategies before use;
// after that, lookups are safe for concurrent use.
type strategyRegistry struct {
	strategies []platformStrategy
}

// newStrategyRegistry creates a registry with the standard strategies.
//
// The standard strategies are registered in this order:
//  1. windowsStrategy - compiler identity, static runtime, symbol export
//  2. msvcStrategy - Visual Studio platform and configuration selection
//  3. unixStrategy - ninja as make program for non-MSVC toolchains
//  4. darwinStrategy - deployment target and architectures
func newStrategyRegistry() *strategyRegistry {
	r := &strategyRegistry{}
	r.Register(windowsStrategy{})
	r.Register(msvcStrategy{})
	r.Register(unixStrategy{})
	r.Register(darwinStrategy{})
	return r
}

// Register adds a strategy. Strategies contribute in registration order.
func (r *strategyRegistry) Register(s platformStrategy) {
	r.strategies = append(r.strategies, s)
}

// For returns the strategies that apply to p, in registration order.
func (r *strategyRegistry) For(p *PlatformProfile) []platformStrategy {
	var out []platformStrategy
	for _, s := range r.strategies {
		if s.Applies(p) {
			out = append(out, s)
		}
	}
	return out
}

var defaultStrategies = newStrategyRegistry()

// windowsStrategy forces the MSVC compiler with a static runtime and
// exports every symbol from the shared library.
type windowsStrategy struct{}

func (windowsStrategy) Name() string { return "windows" }

func (windowsStrategy) Applies(p *PlatformProfile) bool { return p.OS == OSWindows }

func (windowsStrategy) ConfigureArgs(cfg *BuildConfiguration) ([]string, error) {
	overrides := cfg.Platform.CompilerOverrides
	args := make([]string, 0, len(overrides)+2)
	for _, name := range slices.Sorted(maps.Keys(overrides)) {
		args = append(args, fmt.Sprintf("-D%s=%s", name, overrides[name]))
	}
	args = append(args,
		"-DCMAKE_WINDOWS_EXPORT_ALL_SYMBOLS=ON",
		"-DCMAKE_SUPPORT_WINDOWS_EXPORT_ALL_SYMBOLS=ON",
	)
	return args, nil
}

func (windowsStrategy) BuildArgs(*BuildConfiguration) []string { return nil }

// msvcStrategy selects the Visual Studio platform for multi-configuration
// generators and the configuration to build.
type msvcStrategy struct{}

func (msvcStrategy) Name() string { return "msvc" }

func (msvcStrategy) Applies(p *PlatformProfile) bool { return p.Compiler == CompilerMSVC }

func (msvcStrategy) ConfigureArgs(cfg *BuildConfiguration) ([]string, error) {
	if SingleConfig(cfg.Generator) || EncodesArchitecture(cfg.Generator) {
		return nil, nil
	}
	arch, err := WindowsArchitecture(cfg.Platform.PlatName)
	if err != nil {
		return nil, err
	}
	return []string{"-A", arch}, nil
}

func (msvcStrategy) BuildArgs(cfg *BuildConfiguration) []string {
	if SingleConfig(cfg.Generator) {
		return nil
	}
	return []string{"--config", string(cfg.ConfigType)}
}

// unixStrategy points CMake at the located ninja executable when the
// generator is Ninja. Without ninja it contributes nothing and CMake keeps
// its own default.
type unixStrategy struct{}

func (unixStrategy) Name() string { return "unix" }

func (unixStrategy) Applies(p *PlatformProfile) bool { return p.Compiler != CompilerMSVC }

func (unixStrategy) ConfigureArgs(cfg *BuildConfiguration) ([]string, error) {
	ninja := cfg.Platform.NinjaPath
	if ninja == "" || cfg.Generator != DefaultGenerator {
		return nil, nil
	}
	return []string{
		"-GNinja",
		"-DCMAKE_MAKE_PROGRAM:FILEPATH=" + ninja,
	}, nil
}

func (unixStrategy) BuildArgs(*BuildConfiguration) []string { return nil }

// darwinStrategy sets the deployment target and, when ARCHFLAGS asked for
// it, the architectures to cross-compile for.
type darwinStrategy struct{}

func (darwinStrategy) Name() string { return "darwin" }

func (darwinStrategy) Applies(p *PlatformProfile) bool { return p.OS == OSDarwin }

func (darwinStrategy) ConfigureArgs(cfg *BuildConfiguration) ([]string, error) {
	p := cfg.Platform
	args := []string{"-DCMAKE_OSX_DEPLOYMENT_TARGET=" + p.DeploymentTarget}
	if len(p.Archs) > 0 {
		args = append(args, "-DCMAKE_OSX_ARCHITECTURES="+strings.Join(p.Archs, ";"))
	}
	return args, nil
}

func (darwinStrategy) BuildArgs(*BuildConfiguration) []string { return nil }
