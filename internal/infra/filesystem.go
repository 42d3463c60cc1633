package infra

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// EnsureWorkDir expands base (which may start with ~), joins path and makes sure the directory exists.
func EnsureWorkDir(base string, path ...string) (string, error) {
	workDir, err := homedir.Expand(filepath.Join(append([]string{base}, path...)...))
	if err != nil {
		return "", errors.Wrap(err, "expand work dir")
	}
	if err := os.MkdirAll(workDir, 0o750); err != nil {
		return "", errors.Wrap(err, "create work dir")
	}
	return workDir, nil
}
