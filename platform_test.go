package xaiepy

import (
	"errors"
	"testing"

	crdb "github.com/cockroachdb/errors"
	qt "github.com/frankban/quicktest"
)

// stubLookPath replaces lookPath for the duration of the test. Only the
// names in found resolve.
func stubLookPath(t testing.TB, found map[string]string) {
	t.Helper()
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })
	lookPath = func(name string) (string, error) {
		if p, ok := found[name]; ok {
			return p, nil
		}
		return "", errors.New("not found")
	}
}

func TestExtractArchs(t *testing.T) {
	testCases := []struct {
		flags    string
		expected []string
	}{
		{"", nil},
		{"-O2", nil},
		{"-arch arm64", []string{"arm64"}},
		{"-arch x86_64 -arch arm64", []string{"x86_64", "arm64"}},
		{"-arch arm64 -arch arm64", []string{"arm64", "arm64"}},
		{"-isysroot /sdk -arch arm64 -O2 -arch x86_64", []string{"arm64", "x86_64"}},
	}

	c := qt.New(t)
	for _, tc := range testCases {
		c.Assert(ExtractArchs(tc.flags), qt.DeepEquals, tc.expected, qt.Commentf("flags %q", tc.flags))
	}
}

func TestWindowsArchitecture(t *testing.T) {
	c := qt.New(t)

	expected := map[string]string{
		"win32":     "Win32",
		"win-amd64": "x64",
		"win-arm32": "ARM",
		"win-arm64": "ARM64",
	}
	for plat, want := range expected {
		got, err := WindowsArchitecture(plat)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, want)
	}

	for _, plat := range []string{"", "win-ia64", "linux-x86_64", "Win32"} {
		_, err := WindowsArchitecture(plat)
		c.Assert(crdb.Is(err, ErrConfiguration), qt.IsTrue, qt.Commentf("plat %q", plat))
	}
}

func TestResolvePlatformLinux(t *testing.T) {
	stubLookPath(t, map[string]string{"ninja": "/usr/bin/ninja"})
	c := qt.New(t)

	p, err := ResolvePlatform("linux", "amd64", Environment{
		EnvArchFlags:  "-arch arm64",
		EnvOSXVersion: "13.0",
	}, PlatformOptions{})
	c.Assert(err, qt.IsNil)
	c.Assert(p.OS, qt.Equals, OSLinux)
	c.Assert(p.Compiler, qt.Equals, CompilerUnix)
	c.Assert(p.EscapePaths, qt.IsFalse)
	c.Assert(p.DefaultGenerator, qt.Equals, "Ninja")
	c.Assert(p.NinjaPath, qt.Equals, "/usr/bin/ninja")
	// ARCHFLAGS and OSX_VERSION only matter on macOS.
	c.Assert(p.Archs, qt.HasLen, 0)
	c.Assert(p.DeploymentTarget, qt.Equals, "")
	c.Assert(p.SharedLibraryExtension(), qt.Equals, "so")
}

func TestResolvePlatformNinjaFallback(t *testing.T) {
	c := qt.New(t)

	c.Run("alternative name", func(c *qt.C) {
		stubLookPath(t, map[string]string{"ninja-build": "/usr/bin/ninja-build"})
		p, err := ResolvePlatform("linux", "amd64", Environment{}, PlatformOptions{})
		c.Assert(err, qt.IsNil)
		c.Assert(p.NinjaPath, qt.Equals, "/usr/bin/ninja-build")
	})

	c.Run("missing", func(c *qt.C) {
		stubLookPath(t, nil)
		p, err := ResolvePlatform("linux", "amd64", Environment{}, PlatformOptions{})
		c.Assert(err, qt.IsNil)
		c.Assert(p.NinjaPath, qt.Equals, "")
	})

	c.Run("other generator", func(c *qt.C) {
		stubLookPath(t, map[string]string{"ninja": "/usr/bin/ninja"})
		p, err := ResolvePlatform("linux", "amd64", Environment{EnvCMakeGenerator: "Unix Makefiles"}, PlatformOptions{})
		c.Assert(err, qt.IsNil)
		c.Assert(p.NinjaPath, qt.Equals, "")
	})

	c.Run("msvc", func(c *qt.C) {
		stubLookPath(t, map[string]string{"ninja": `C:\ninja.exe`})
		p, err := ResolvePlatform("windows", "amd64", Environment{}, PlatformOptions{})
		c.Assert(err, qt.IsNil)
		c.Assert(p.NinjaPath, qt.Equals, "")
	})
}

func TestResolvePlatformDarwin(t *testing.T) {
	stubLookPath(t, nil)
	c := qt.New(t)

	p, err := ResolvePlatform("darwin", "arm64", Environment{}, PlatformOptions{})
	c.Assert(err, qt.IsNil)
	c.Assert(p.OS, qt.Equals, OSDarwin)
	c.Assert(p.DeploymentTarget, qt.Equals, "11.6")
	c.Assert(p.Archs, qt.HasLen, 0)

	p, err = ResolvePlatform("darwin", "arm64", Environment{
		EnvArchFlags:  "-arch x86_64 -arch arm64",
		EnvOSXVersion: "12.0",
	}, PlatformOptions{})
	c.Assert(err, qt.IsNil)
	c.Assert(p.DeploymentTarget, qt.Equals, "12.0")
	c.Assert(p.Archs, qt.DeepEquals, []string{"x86_64", "arm64"})
}

func TestResolvePlatformWindows(t *testing.T) {
	stubLookPath(t, nil)
	c := qt.New(t)

	p, err := ResolvePlatform("windows", "arm64", Environment{}, PlatformOptions{})
	c.Assert(err, qt.IsNil)
	c.Assert(p.OS, qt.Equals, OSWindows)
	c.Assert(p.Compiler, qt.Equals, CompilerMSVC)
	c.Assert(p.EscapePaths, qt.IsTrue)
	c.Assert(p.PlatName, qt.Equals, "win-arm64")
	c.Assert(p.CompilerOverrides["CMAKE_C_COMPILER"], qt.Equals, "cl")
	c.Assert(p.CompilerOverrides["CMAKE_MSVC_RUNTIME_LIBRARY"], qt.Equals, "MultiThreaded")
	c.Assert(p.SharedLibraryExtension(), qt.Equals, "dll")

	p, err = ResolvePlatform("windows", "amd64", Environment{}, PlatformOptions{PlatName: "win32", Compiler: CompilerUnix})
	c.Assert(err, qt.IsNil)
	c.Assert(p.PlatName, qt.Equals, "win32")
	c.Assert(p.Compiler, qt.Equals, CompilerUnix)

	_, err = ResolvePlatform("windows", "amd64", Environment{}, PlatformOptions{Compiler: "borland"})
	c.Assert(crdb.Is(err, ErrConfiguration), qt.IsTrue)
}

func TestEscapePath(t *testing.T) {
	c := qt.New(t)

	win := &PlatformProfile{OS: OSWindows, EscapePaths: true}
	c.Assert(win.EscapePath(`C:\Python\python.exe`, PathRoleInterpreter), qt.Equals, `C:\\Python\\python.exe`)
	c.Assert(win.EscapePath(`C:\src\third_party\aie-rt\fal\cmake`, PathRoleModule), qt.Equals, `C://src//third_party//aie-rt//fal//cmake`)
	c.Assert(win.EscapePath(`C:\src\third_party\bootgen`, PathRoleInclude), qt.Equals, `C://src//third_party//bootgen`)

	linux := &PlatformProfile{OS: OSLinux}
	for _, role := range []PathRole{PathRoleInterpreter, PathRoleModule, PathRoleInclude} {
		c.Assert(linux.EscapePath(`/a\b`, role), qt.Equals, `/a\b`)
	}
}

func TestGeneratorClassification(t *testing.T) {
	testCases := []struct {
		generator    string
		singleConfig bool
		encodesArch  bool
	}{
		{"Ninja", true, false},
		{"Ninja Multi-Config", true, false},
		{"NMake Makefiles", true, false},
		{"Visual Studio 17 2022", false, false},
		{"Visual Studio 15 2017 Win64", false, true},
		{"Visual Studio 15 2017 ARM", false, true},
	}

	c := qt.New(t)
	for _, tc := range testCases {
		c.Assert(SingleConfig(tc.generator), qt.Equals, tc.singleConfig, qt.Commentf("%s", tc.generator))
		c.Assert(EncodesArchitecture(tc.generator), qt.Equals, tc.encodesArch, qt.Commentf("%s", tc.generator))
	}
}
