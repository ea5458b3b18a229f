package document

import (
	"fmt"
	"os"
	"path/filepath"
)

// File is a Buffer loaded from, and saved back to, a path on disk.
type File struct {
	*Buffer
	perm os.FileMode
}

// Open reads path into a File. The path is made absolute.
func Open(path string, opts ...BufferOption) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve document path '%s': %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat document '%s': %w", abs, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read document '%s': %w", abs, err)
	}

	opts = append([]BufferOption{WithFileName(abs)}, opts...)
	return &File{
		Buffer: NewBuffer(string(data), opts...),
		perm:   info.Mode().Perm(),
	}, nil
}

// Save writes the current text back to the file.
func (f *File) Save() error {
	if err := os.WriteFile(f.FileName(), []byte(f.Text()), f.perm); err != nil {
		return fmt.Errorf("failed to save document '%s': %w", f.FileName(), err)
	}
	return nil
}
