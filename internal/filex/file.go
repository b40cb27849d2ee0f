// Package filex holds file helpers for the command-line client.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// CreateInSubDir creates (or truncates) fileName inside dirName under the
// working directory, creating the directory when needed. It returns the
// open file and its absolute path.
func CreateInSubDir(dirName, fileName string) (*os.File, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return nil, "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	path := filepath.Join(dir, filepath.Base(fileName))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, "", fmt.Errorf("create %s: %w", path, err)
	}

	return f, path, nil
}
