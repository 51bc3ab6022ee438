package xaiepy

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"mvdan.cc/sh/v3/shell"
)

// Environment variables recognised by the resolver. All are optional.
const (
	EnvDebug          = "DEBUG"
	EnvRunTests       = "RUN_TESTS"
	EnvCMakeGenerator = "CMAKE_GENERATOR"
	EnvCMakeArgs      = "CMAKE_ARGS"
	EnvParallelLevel  = "PARALLEL_LEVEL"
	EnvArchFlags      = "ARCHFLAGS"
	EnvOSXVersion     = "OSX_VERSION"
)

// Environment is a snapshot of environment variables. Resolution reads
// from an Environment rather than the process so results are
// deterministic.
type Environment map[string]string

// EnvironmentFromOS snapshots the current process environment.
func EnvironmentFromOS() Environment {
	env := make(Environment)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}
	return env
}

// Lookup reports the value of key and whether it was set.
func (e Environment) Lookup(key string) (string, bool) {
	v, ok := e[key]
	return v, ok
}

// Get returns the value of key, or def when key is unset.
func (e Environment) Get(key, def string) string {
	if v, ok := e[key]; ok {
		return v
	}
	return def
}

var truthyValues = map[string]struct{}{
	"1":    {},
	"true": {},
	"True": {},
	"ON":   {},
	"YES":  {},
}

// IsTruthy reports whether value is one of the strings treated as true
// when read from the environment. The test is exact: "on" and "yes" are
// false.
func IsTruthy(value string) bool {
	_, ok := truthyValues[value]
	return ok
}

// Truthy reports whether key is set to a truthy value.
func (e Environment) Truthy(key string) bool {
	v, ok := e[key]
	return ok && IsTruthy(v)
}

// ConfigTypeFrom resolves the build type from DEBUG.
func ConfigTypeFrom(env Environment) ConfigType {
	if env.Truthy(EnvDebug) {
		return Debug
	}
	return Release
}

// SplitCMakeArgs splits a CMAKE_ARGS value on literal spaces, dropping
// empty tokens. Quoted arguments that contain spaces are not kept
// together.
func SplitCMakeArgs(value string) []string {
	var args []string
	for _, item := range strings.Split(value, " ") {
		if item != "" {
			args = append(args, item)
		}
	}
	return args
}

// ShellSplitCMakeArgs tokenizes a CMAKE_ARGS value with POSIX shell
// quoting rules. Parameter expansions are resolved against env.
func ShellSplitCMakeArgs(value string, env Environment) ([]string, error) {
	fields, err := shell.Fields(value, func(name string) string {
		return env[name]
	})
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "cannot tokenize %s", EnvCMakeArgs), ErrConfiguration)
	}
	return fields, nil
}
