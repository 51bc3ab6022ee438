package xaiepy

import (
	"path/filepath"
	"slices"
	"testing"

	crdb "github.com/cockroachdb/errors"
	qt "github.com/frankban/quicktest"
	"github.com/google/go-cmp/cmp"
)

func testConfiguration(p *PlatformProfile) *BuildConfiguration {
	return &BuildConfiguration{
		SourceDir:      "/src",
		ModulePath:     "/src/third_party/aie-rt/fal/cmake",
		BootgenInclude: "/src/third_party/bootgen",
		BuildDir:       "/work/build/temp",
		OutputDir:      "/work/build/lib",
		PackageName:    "xaiepy",
		BindingModule:  DefaultBindingModule,
		ConfigType:     Release,
		Generator:      "Ninja",
		Parallelism:    "8",
		Interpreter:    "/usr/bin/python3",
		Platform:       p,
	}
}

func TestConfigureArgsLinux(t *testing.T) {
	cfg := testConfiguration(&PlatformProfile{OS: OSLinux, Compiler: CompilerUnix, DefaultGenerator: "Ninja"})
	packageDir := filepath.Join("/work/build/lib", "xaiepy")

	args, err := ConfigureArgs(cfg)
	if err != nil {
		t.Fatalf("ConfigureArgs returned error: %v", err)
	}

	expected := []string{
		"-B/work/build/temp",
		"-G Ninja",
		"-DCMAKE_MODULE_PATH=/src/third_party/aie-rt/fal/cmake",
		"-DCMAKE_PLATFORM_NO_VERSIONED_SONAME=ON",
		"-DCMAKE_LIBRARY_OUTPUT_DIRECTORY=" + packageDir,
		"-DCMAKE_ARCHIVE_OUTPUT_DIRECTORY=" + packageDir,
		"-DCMAKE_RUNTIME_OUTPUT_DIRECTORY=" + packageDir,
		"-DPython3_EXECUTABLE=/usr/bin/python3",
		"-DCMAKE_BUILD_TYPE=Release",
		"-DCMAKE_C_VISIBILITY_PRESET=default",
	}
	if diff := cmp.Diff(expected, args); diff != "" {
		t.Errorf("configure args mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigureArgsNinja(t *testing.T) {
	cfg := testConfiguration(&PlatformProfile{OS: OSLinux, Compiler: CompilerUnix, NinjaPath: "/opt/ninja"})
	cfg.ExtraArgs = []string{"-DLAST=1"}

	args, err := ConfigureArgs(cfg)
	if err != nil {
		t.Fatalf("ConfigureArgs returned error: %v", err)
	}

	tail := args[len(args)-3:]
	expected := []string{"-GNinja", "-DCMAKE_MAKE_PROGRAM:FILEPATH=/opt/ninja", "-DLAST=1"}
	if diff := cmp.Diff(expected, tail); diff != "" {
		t.Errorf("configure args tail mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigureArgsExtraArgsLast(t *testing.T) {
	c := qt.New(t)

	p := &PlatformProfile{OS: OSDarwin, Compiler: CompilerUnix, DeploymentTarget: "11.6", Archs: []string{"arm64"}}
	cfg := testConfiguration(p)
	cfg.ExtraArgs = SplitCMakeArgs(" -DCMAKE_BUILD_TYPE=RelWithDebInfo  -DFOO=bar ")

	args, err := ConfigureArgs(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(args[len(args)-2:], qt.DeepEquals, []string{"-DCMAKE_BUILD_TYPE=RelWithDebInfo", "-DFOO=bar"})
	c.Assert(slices.Contains(args, "-DCMAKE_BUILD_TYPE=Release"), qt.IsTrue)
}

func TestConfigureArgsDarwin(t *testing.T) {
	c := qt.New(t)

	p := &PlatformProfile{OS: OSDarwin, Compiler: CompilerUnix, DeploymentTarget: "11.6"}
	args, err := ConfigureArgs(testConfiguration(p))
	c.Assert(err, qt.IsNil)
	c.Assert(args[len(args)-1], qt.Equals, "-DCMAKE_OSX_DEPLOYMENT_TARGET=11.6")

	p.Archs = []string{"x86_64", "arm64"}
	args, err = ConfigureArgs(testConfiguration(p))
	c.Assert(err, qt.IsNil)
	c.Assert(args[len(args)-2:], qt.DeepEquals, []string{
		"-DCMAKE_OSX_DEPLOYMENT_TARGET=11.6",
		"-DCMAKE_OSX_ARCHITECTURES=x86_64;arm64",
	})
}

func windowsProfile(t *testing.T, platName string) *PlatformProfile {
	t.Helper()
	stubLookPath(t, nil)
	p, err := ResolvePlatform("windows", "amd64", Environment{}, PlatformOptions{PlatName: platName})
	if err != nil {
		t.Fatalf("ResolvePlatform returned error: %v", err)
	}
	return p
}

func TestConfigureArgsWindows(t *testing.T) {
	c := qt.New(t)

	cfg := testConfiguration(windowsProfile(t, "win-amd64"))
	cfg.ModulePath = `C:\src\third_party\aie-rt\fal\cmake`
	cfg.Interpreter = `C:\Python312\python.exe`

	args, err := ConfigureArgs(cfg)
	c.Assert(err, qt.IsNil)

	c.Assert(args[1], qt.Equals, "-G Ninja")
	c.Assert(args[2], qt.Equals, "-DCMAKE_MODULE_PATH=C://src//third_party//aie-rt//fal//cmake")
	c.Assert(args[7], qt.Equals, `-DPython3_EXECUTABLE=C:\\Python312\\python.exe`)

	for _, flag := range []string{
		"-DCMAKE_C_COMPILER=cl",
		"-DCMAKE_CXX_COMPILER=cl",
		"-DCMAKE_MSVC_RUNTIME_LIBRARY=MultiThreaded",
		"-DCMAKE_C_FLAGS=/MT",
		"-DCMAKE_CXX_FLAGS=/MT",
		"-DCMAKE_WINDOWS_EXPORT_ALL_SYMBOLS=ON",
		"-DCMAKE_SUPPORT_WINDOWS_EXPORT_ALL_SYMBOLS=ON",
	} {
		c.Assert(slices.Contains(args, flag), qt.IsTrue, qt.Commentf("missing %s", flag))
	}

	// Ninja is single-configuration: no -A, no --config.
	c.Assert(slices.Contains(args, "-A"), qt.IsFalse)
	c.Assert(BuildArgs(cfg), qt.DeepEquals, []string{"--target", "xaie", "-j8"})
}

func TestConfigureArgsVisualStudio(t *testing.T) {
	c := qt.New(t)

	for plat, arch := range windowsArchitectures {
		cfg := testConfiguration(windowsProfile(t, plat))
		cfg.Generator = "Visual Studio 17 2022"
		cfg.ConfigType = Debug

		args, err := ConfigureArgs(cfg)
		c.Assert(err, qt.IsNil)
		i := slices.Index(args, "-A")
		c.Assert(i >= 0, qt.IsTrue)
		c.Assert(args[i+1], qt.Equals, arch)

		c.Assert(BuildArgs(cfg), qt.DeepEquals, []string{"--target", "xaie", "--config", "Debug", "-j8"})
	}

	cfg := testConfiguration(windowsProfile(t, "win-ia64"))
	cfg.Generator = "Visual Studio 17 2022"
	_, err := ConfigureArgs(cfg)
	c.Assert(crdb.Is(err, ErrConfiguration), qt.IsTrue)

	// Architecture already in the generator name: the platform name is not consulted.
	cfg.Generator = "Visual Studio 15 2017 Win64"
	args, err := ConfigureArgs(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(slices.Contains(args, "-A"), qt.IsFalse)
	c.Assert(BuildArgs(cfg), qt.DeepEquals, []string{"--target", "xaie", "--config", "Release", "-j8"})
}

func TestBuildArgsParallelism(t *testing.T) {
	c := qt.New(t)

	for _, cores := range []int{1, 4, 12, 64} {
		cfg := testConfiguration(&PlatformProfile{OS: OSLinux, Compiler: CompilerUnix})
		cfg.Parallelism = parallelismFrom(Environment{}, cores)
		args := BuildArgs(cfg)
		c.Assert(args[len(args)-1], qt.Equals, "-j"+DefaultParallelism(cores))
	}
	c.Assert(DefaultParallelism(6), qt.Equals, "12")

	for _, level := range []string{"1", "3", "0", "-5", "lots"} {
		for _, cores := range []int{1, 16} {
			c.Assert(parallelismFrom(Environment{EnvParallelLevel: level}, cores), qt.Equals, level)
		}
	}
}

func TestStrategyRegistryOrder(t *testing.T) {
	c := qt.New(t)
	r := newStrategyRegistry()

	names := func(p *PlatformProfile) []string {
		var out []string
		for _, s := range r.For(p) {
			out = append(out, s.Name())
		}
		return out
	}

	c.Assert(names(&PlatformProfile{OS: OSLinux, Compiler: CompilerUnix}), qt.DeepEquals, []string{"unix"})
	c.Assert(names(&PlatformProfile{OS: OSOther, Compiler: CompilerUnix}), qt.DeepEquals, []string{"unix"})
	c.Assert(names(&PlatformProfile{OS: OSDarwin, Compiler: CompilerUnix}), qt.DeepEquals, []string{"unix", "darwin"})
	c.Assert(names(&PlatformProfile{OS: OSWindows, Compiler: CompilerMSVC}), qt.DeepEquals, []string{"windows", "msvc"})
	c.Assert(names(&PlatformProfile{OS: OSWindows, Compiler: CompilerUnix}), qt.DeepEquals, []string{"windows", "unix"})
}
