// Package writers opens output destinations named by a short string: `stdout`,
// `stderr`, `file://<path>`, or a bare path.
package writers

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Kind is the type of destination a string names.
type Kind string

const (
	KindStdout Kind = "stdout"
	KindStderr Kind = "stderr"
	KindFile   Kind = "file"
)

var ErrUnsupportedOutput = errors.New("unsupported output")

// Parse classifies dest and returns the file path for KindFile. The empty string is stdout.
func Parse(dest string) (Kind, string, error) {
	switch {
	case dest == "" || dest == string(KindStdout):
		return KindStdout, "", nil
	case dest == string(KindStderr):
		return KindStderr, "", nil
	case strings.HasPrefix(dest, "file://"):
		path := strings.TrimPrefix(dest, "file://")
		if path == "" {
			return "", "", fmt.Errorf("%w: empty file path", ErrUnsupportedOutput)
		}
		return KindFile, path, nil
	case strings.Contains(dest, "://"):
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedOutput, dest)
	case strings.ContainsAny(dest, `/\`) || filepath.Ext(dest) != "":
		return KindFile, dest, nil
	}
	return "", "", fmt.Errorf("%w: %s", ErrUnsupportedOutput, dest)
}

// Open returns a writer for dest. Closing a standard stream writer is a no-op; files are
// opened for append and their directories created.
func Open(dest string) (io.WriteCloser, error) {
	kind, path, err := Parse(dest)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindStdout:
		return nopCloser{os.Stdout}, nil
	case KindStderr:
		return nopCloser{os.Stderr}, nil
	default:
		return openFile(path)
	}
}

func openFile(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	return file, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
