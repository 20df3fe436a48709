package blink

import (
	"os"
	"path/filepath"

	"github.com/juju/errors"
)

// FileLoader resolves and reads the source files pulled in by $include
// directives: against its base directory when one is set, otherwise
// relative to the directory of the file doing the including.
type FileLoader struct {
	baseDir string
}

// NewFileLoader builds a loader rooted at baseDir. An empty baseDir means
// relative includes resolve against the including file's own directory.
func NewFileLoader(baseDir string) (*FileLoader, error) {
	fl := &FileLoader{}
	if baseDir != "" {
		if err := fl.SetBaseDir(baseDir); err != nil {
			return nil, err
		}
	}
	return fl, nil
}

func (fl *FileLoader) SetBaseDir(path string) error {
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return errors.Annotate(err, "resolving base directory")
		}
		path = abs
	}
	fi, err := os.Stat(path)
	if err != nil {
		return errors.Annotate(err, "statting base directory")
	}
	if !fi.IsDir() {
		return errors.Errorf("the given path '%s' is not a directory", path)
	}
	fl.baseDir = path
	return nil
}

// Abs resolves name relative to the file at base (own baseDir has priority
// when set, matching the teacher's loader precedence).
func (fl *FileLoader) Abs(base, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if fl.baseDir == "" {
		if base == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return name
			}
			return filepath.Join(cwd, name)
		}
		return filepath.Join(filepath.Dir(base), name)
	}
	return filepath.Join(fl.baseDir, name)
}

// Get reads the contents of the file at the already-resolved absolute path.
func (fl *FileLoader) Get(path string) (string, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Annotatef(err, "reading included file '%s'", path)
	}
	return string(buf), nil
}
