package xaiepy

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

var nativeLibraryExtensions = map[string]struct{}{
	".so":    {},
	".dll":   {},
	".dylib": {},
	".lib":   {},
	".a":     {},
}

func isNativeLibrary(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := nativeLibraryExtensions[ext]
	return ok
}

// collectNativeLibraries returns the compiled libraries directly inside
// dir, sorted. A missing dir yields no libraries: CMake decides where the
// xaie target lands.
func collectNativeLibraries(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "cannot list %s", dir)
	}

	var libs []string
	for _, e := range entries {
		if e.Type().IsRegular() && isNativeLibrary(e.Name()) {
			libs = append(libs, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(libs)
	return libs, nil
}

// ensureParentDir creates the directory that will hold path.
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "cannot create %s", dir)
	}
	return nil
}

// logListing logs the entries of dir at debug level.
func logListing(log zerolog.Logger, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Debug().Err(err).Str("dir", dir).Msg("cannot list directory")
		return
	}
	for _, e := range entries {
		ev := log.Debug().Str("dir", dir).Str("name", e.Name()).Bool("dir_entry", e.IsDir())
		if info, err := e.Info(); err == nil {
			ev = ev.Int64("size", info.Size()).Str("mode", info.Mode().String())
		}
		ev.Msg("listing")
	}
}
