// Package imports resolves `import "path"` statements against BUZZ_PATH. It
// only locates and reads source files -- the actual recursive parse is
// orchestrated by the parser package (which imports this package, not the
// other way around, to keep the dependency acyclic).
package imports

import (
	"os"
	"path/filepath"
)

// SourceSuffix is the file extension of a compilation unit.
const SourceSuffix = ".buzz"

// EnvVar is the environment variable naming the search path.
const EnvVar = "BUZZ_PATH"

// SearchPath returns the configured BUZZ_PATH, defaulting to "." if unset.
func SearchPath() string {
	if p := os.Getenv(EnvVar); p != "" {
		return p
	}
	return "."
}

// Resolve finds the on-disk path for an imported script: it first tries
// "<BUZZ_PATH>/<path>.buzz", then falls back to "./<path>.buzz".
func Resolve(path string) (string, error) {
	candidate := filepath.Join(SearchPath(), path+SourceSuffix)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}

	local := filepath.Join(".", path+SourceSuffix)
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}

	return "", &NotFoundError{Path: path}
}

// Load resolves path and reads its contents.
func Load(path string) (data []byte, resolvedPath string, err error) {
	resolvedPath, err = Resolve(path)
	if err != nil {
		return nil, "", err
	}

	data, err = os.ReadFile(resolvedPath)
	if err != nil {
		return nil, "", err
	}

	return data, resolvedPath, nil
}

// NotFoundError reports that no file matched an import path under either
// search location.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return "could not find import \"" + e.Path + "\" under " + EnvVar + " or the current directory"
}
