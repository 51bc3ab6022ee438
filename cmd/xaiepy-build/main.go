// Command xaiepy-build compiles the aie-rt runtime and generates the xaiepy
// bindings.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/makslevental/xaiepy"
)

var (
	colError   = color.Error
	colSuccess = color.HEX("#1976D2")
	colArrow   = color.HEX("#FFEB3B")
)

var opts xaiepy.Options

var rootCmd = &cobra.Command{
	Use:           "xaiepy-build [source-dir]",
	Short:         "Build the aie-rt runtime and generate the xaiepy bindings",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		cfg, err := resolve(args)
		if err != nil {
			return err
		}

		orch := xaiepy.NewOrchestrator(cfg, log, os.Stderr)
		result, err := orch.Run(context.Background(), cfg)
		if err != nil {
			return err
		}

		colArrow.Print("-> ")
		colSuccess.Printf("Built %s (%s)\n", cfg.PackageName, cfg.ConfigType)
		for _, a := range result.Artifacts {
			fmt.Printf("   %s\n", a)
		}
		return nil
	},
}

var argsCmd = &cobra.Command{
	Use:   "args [source-dir]",
	Short: "Print the resolved configure and build arguments without running anything",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolve(args)
		if err != nil {
			return err
		}
		configure, err := xaiepy.ConfigureArgs(cfg)
		if err != nil {
			return err
		}

		colArrow.Print("configure: ")
		fmt.Println("cmake " + strings.Join(append([]string{cfg.SourceDir}, configure...), " "))
		colArrow.Print("build:     ")
		fmt.Println("cmake --build . " + strings.Join(xaiepy.BuildArgs(cfg), " "))
		colArrow.Print("bindings:  ")
		fmt.Println(xaiepy.BindingsInvocation(cfg).Output)
		colArrow.Print("shim:      ")
		fmt.Println(xaiepy.ShimInvocation(cfg).Output)
		return nil
	},
}

func resolve(args []string) (*xaiepy.BuildConfiguration, error) {
	o := opts
	if len(args) == 1 {
		o.SourceDir = args[0]
	}
	return xaiepy.Resolve(o, xaiepy.EnvironmentFromOS())
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).Level(level).With().Timestamp().Logger()
}

func init() {
	registerFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(argsCmd)
}

func registerFlags(fs *pflag.FlagSet) {
	fs.StringVar(&opts.ConfigFile, "config", "", "project config file (default <source-dir>/"+xaiepy.ProjectConfigFile+")")
	fs.StringVar(&opts.BuildDir, "build-dir", "", "CMake build directory (default build/temp)")
	fs.StringVar(&opts.OutputDir, "output-dir", "", "directory receiving the package (default build/lib)")
	fs.StringVar(&opts.PackageName, "package", "", "package name (default "+xaiepy.DefaultPackageName+")")
	fs.StringVar(&opts.Interpreter, "python", "", "Python interpreter (default python3 from PATH)")
	fs.StringVar(&opts.Generator, "generator", "", "CMake generator when CMAKE_GENERATOR is unset")
	fs.StringVar(&opts.Compiler, "compiler", "", "compiler type: msvc or unix (default by OS)")
	fs.StringVar(&opts.PlatName, "plat-name", "", "Windows platform name: win32, win-amd64, win-arm32, win-arm64")
	fs.BoolVar(&opts.ShellSplit, "shell-split-cmake-args", false, "split CMAKE_ARGS with shell quoting rules")
	fs.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		colError.Println(err)
		os.Exit(xaiepy.ExitCode(err))
	}
}
