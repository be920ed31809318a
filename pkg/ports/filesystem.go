package ports

import (
	"io"
)

// WritableFile is a file opened for streaming writes.
type WritableFile interface {
	io.Writer

	// Sync commits written data to stable storage.
	Sync() error

	// Close closes the file.
	Close() error
}

// FileSystem abstracts file system operations.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte) error

	// Create creates or truncates a file for streaming writes.
	Create(path string) (WritableFile, error)

	// Open opens a file for streaming reads.
	Open(path string) (io.ReadCloser, error)

	// Size returns the size of a file in bytes.
	Size(path string) (int64, error)

	// Rename atomically replaces newPath with oldPath.
	Rename(oldPath, newPath string) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory.
	Remove(path string) error
}
