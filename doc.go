// Package xaiepy builds the aie-rt native runtime and generates the xaiepy
// Python bindings for it.
//
// The package resolves a platform-specific CMake configuration, runs the
// configure and build steps for the xaie target, and then drives two
// generators: one that turns the installed headers into a ctypes module
// (xaiepy/__init__.py) and one that turns the build directory into the
// _cdo shim library.
//
// # Basic Usage
//
//	cfg, err := xaiepy.Resolve(xaiepy.Options{SourceDir: "."}, xaiepy.EnvironmentFromOS())
//	if err != nil {
//	    return err
//	}
//
//	orch := xaiepy.NewOrchestrator(cfg, log, os.Stderr)
//	result, err := orch.Run(ctx, cfg)
//
// # Architecture
//
// A run is a fixed, fail-fast sequence:
//
//	Resolve ─→ BuildConfiguration (PlatformProfile, arguments, paths)
//	Orchestrator.Run
//	├── Invoker.Configure     cmake <source> <configure args>
//	├── Invoker.Build         cmake --build . --target xaie -j<N>
//	├── Coordinator.GenerateBindings
//	└── Coordinator.GenerateShim
//
// Platform differences are contributed by a small, ordered set of
// strategies (windows, msvc, unix, darwin). See ConfigureArgs.
//
// # Environment
//
//   - DEBUG: truthy selects a Debug build
//   - RUN_TESTS: truthy enables test mode for the generators
//   - CMAKE_GENERATOR: overrides the Ninja default
//   - CMAKE_ARGS: space-separated extra configure arguments
//   - PARALLEL_LEVEL: overrides the 2×cores job count
//   - ARCHFLAGS, OSX_VERSION: macOS architectures and deployment target
//
// Truthy means exactly one of "1", "true", "True", "ON", "YES".
//
// # Errors
//
// Errors are marked with ErrConfiguration, ErrToolchain or
// ErrBindingGeneration. Process failures carry a *StepError with the step
// name, exit status and captured output.
package xaiepy
