package xaiepy

import (
	"fmt"
)

// ConfigureArgs returns the arguments for the configure step, excluding the
// leading source directory.
//
// The fixed part comes first, then the contributions of every platform
// strategy that applies, then ExtraArgs. ExtraArgs are last so that CMake's
// last-definition-wins handling lets them override anything before them.
func ConfigureArgs(cfg *BuildConfiguration) ([]string, error) {
	return configureArgs(defaultStrategies, cfg)
}

func configureArgs(registry *strategyRegistry, cfg *BuildConfiguration) ([]string, error) {
	p := cfg.Platform
	packageDir := cfg.PackageDir()

	args := []string{
		"-B" + cfg.BuildDir,
		"-G " + cfg.Generator,
		"-DCMAKE_MODULE_PATH=" + p.EscapePath(cfg.ModulePath, PathRoleModule),
		"-DCMAKE_PLATFORM_NO_VERSIONED_SONAME=ON",
		"-DCMAKE_LIBRARY_OUTPUT_DIRECTORY=" + packageDir,
		"-DCMAKE_ARCHIVE_OUTPUT_DIRECTORY=" + packageDir,
		"-DCMAKE_RUNTIME_OUTPUT_DIRECTORY=" + packageDir,
		"-DPython3_EXECUTABLE=" + p.EscapePath(cfg.Interpreter, PathRoleInterpreter),
		fmt.Sprintf("-DCMAKE_BUILD_TYPE=%s", cfg.ConfigType),
		"-DCMAKE_C_VISIBILITY_PRESET=default",
	}

	for _, s := range registry.For(p) {
		extra, err := s.ConfigureArgs(cfg)
		if err != nil {
			return nil, err
		}
		args = append(args, extra...)
	}

	args = append(args, cfg.ExtraArgs...)
	return args, nil
}

// BuildArgs returns the arguments for the build step, after "--build .".
func BuildArgs(cfg *BuildConfiguration) []string {
	return buildArgs(defaultStrategies, cfg)
}

func buildArgs(registry *strategyRegistry, cfg *BuildConfiguration) []string {
	args := []string{"--target", NativeTarget}
	for _, s := range registry.For(cfg.Platform) {
		args = append(args, s.BuildArgs(cfg)...)
	}
	return append(args, "-j"+cfg.Parallelism)
}

// DefaultParallelism is the job count used when PARALLEL_LEVEL is unset:
// twice the number of CPU cores.
func DefaultParallelism(cores int) string {
	return fmt.Sprintf("%d", 2*cores)
}

// parallelismFrom returns PARALLEL_LEVEL verbatim when it is set, and
// DefaultParallelism(cores) otherwise.
func parallelismFrom(env Environment, cores int) string {
	if level, ok := env.Lookup(EnvParallelLevel); ok {
		return level
	}
	return DefaultParallelism(cores)
}
