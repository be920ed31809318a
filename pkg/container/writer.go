package container

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/user/framepack/pkg/ports"
)

const writeBufferSize = 256 * 1024

// tmpFile is a temporary output that is renamed into place on success.
type tmpFile struct {
	file   ports.WritableFile
	path   string
	final  string
	closed bool
}

func (t *tmpFile) close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	return t.file.Close()
}

// Writer streams encoded frames into an artifact.
//
// Frames are appended to a temporary payload file as they arrive and their
// lengths are kept in a SizeLog. Finish flushes and syncs the payload, writes
// the metadata, and renames both files into place. Any failure removes the
// temporary files so a metadata file never describes frames that were not
// written, and a previous artifact in the same directory is left intact.
type Writer struct {
	fs       ports.FileSystem
	paths    Paths
	payload  *tmpFile
	metadata *tmpFile
	buf      *bufio.Writer
	log      *SizeLog
	err      error
	done     bool
}

// Create opens the temporary payload and metadata outputs in dir.
// The directory must already exist.
func Create(fs ports.FileSystem, dir string) (*Writer, error) {
	return create(fs, dir, NewSizeLog())
}

func create(fs ports.FileSystem, dir string, log *SizeLog) (*Writer, error) {
	paths := PathsFor(dir)

	payload, err := fs.Create(paths.Frames + tmpSuffix)
	if err != nil {
		return nil, fmt.Errorf("%w: create payload: %w", ErrWriteFailure, err)
	}

	metadata, err := fs.Create(paths.Metadata + tmpSuffix)
	if err != nil {
		payload.Close()
		fs.Remove(paths.Frames + tmpSuffix)
		return nil, fmt.Errorf("%w: create metadata: %w", ErrWriteFailure, err)
	}

	return &Writer{
		fs:       fs,
		paths:    paths,
		payload:  &tmpFile{file: payload, path: paths.Frames + tmpSuffix, final: paths.Frames},
		metadata: &tmpFile{file: metadata, path: paths.Metadata + tmpSuffix, final: paths.Metadata},
		buf:      bufio.NewWriterSize(payload, writeBufferSize),
		log:      log,
	}, nil
}

// Paths returns the final artifact paths.
func (w *Writer) Paths() Paths {
	return w.paths
}

// FrameCount returns the number of frames written so far.
func (w *Writer) FrameCount() int {
	return w.log.Len()
}

// PayloadBytes returns the number of payload bytes written so far.
func (w *Writer) PayloadBytes() uint64 {
	return w.log.Total()
}

// WriteFrame appends one encoded frame to the payload.
// Errors are sticky: once a write fails every later call fails too.
func (w *Writer) WriteFrame(data []byte) error {
	if w.done {
		return ErrWriterClosed
	}
	if w.err != nil {
		return w.err
	}

	if err := w.log.Check(len(data)); err != nil {
		w.err = fmt.Errorf("%w: frame %d: %w", ErrWriteFailure, w.log.Len(), err)
		return w.err
	}
	if _, err := w.buf.Write(data); err != nil {
		w.err = fmt.Errorf("%w: frame %d: %w", ErrWriteFailure, w.log.Len(), err)
		return w.err
	}
	return w.log.Append(len(data))
}

// Finish completes the artifact. The payload is flushed and synced before
// the metadata is written; on failure the writer is aborted.
func (w *Writer) Finish() (Artifact, error) {
	if w.done {
		return Artifact{}, ErrWriterClosed
	}
	if w.err != nil {
		err := w.err
		w.Abort()
		return Artifact{}, err
	}

	if err := w.commit(); err != nil {
		w.Abort()
		return Artifact{}, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	w.done = true

	return Artifact{
		Paths:         w.paths,
		FrameCount:    w.log.Len(),
		PayloadBytes:  w.log.Total(),
		MetadataBytes: fieldSize * (w.log.Len() + 1),
		MaxFrameBytes: w.log.Max(),
	}, nil
}

func (w *Writer) commit() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush payload: %w", err)
	}
	if err := w.payload.file.Sync(); err != nil {
		return fmt.Errorf("sync payload: %w", err)
	}
	if err := w.payload.close(); err != nil {
		return fmt.Errorf("close payload: %w", err)
	}

	meta, err := w.log.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if _, err := w.metadata.file.Write(meta); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := w.metadata.file.Sync(); err != nil {
		return fmt.Errorf("sync metadata: %w", err)
	}
	if err := w.metadata.close(); err != nil {
		return fmt.Errorf("close metadata: %w", err)
	}

	return w.replace()
}

// replace moves both temporary files into place. A previous artifact is
// set aside first and restored if either rename fails, so the directory
// holds either the old pair or the new pair.
func (w *Writer) replace() error {
	var backups []*tmpFile
	restore := func() {
		for i := len(backups) - 1; i >= 0; i-- {
			w.fs.Rename(backups[i].path, backups[i].final)
		}
	}

	for _, f := range []*tmpFile{w.metadata, w.payload} {
		exists, err := w.fs.Exists(f.final)
		if err != nil {
			restore()
			return fmt.Errorf("stat %s: %w", f.final, err)
		}
		if !exists {
			continue
		}
		bak := &tmpFile{path: f.final + bakSuffix, final: f.final, closed: true}
		if err := w.fs.Rename(f.final, bak.path); err != nil {
			restore()
			return fmt.Errorf("back up %s: %w", f.final, err)
		}
		backups = append(backups, bak)
	}

	if err := w.fs.Rename(w.payload.path, w.payload.final); err != nil {
		restore()
		return fmt.Errorf("rename payload: %w", err)
	}
	if err := w.fs.Rename(w.metadata.path, w.metadata.final); err != nil {
		// The new payload must not sit next to the old metadata.
		w.fs.Remove(w.payload.final)
		restore()
		return fmt.Errorf("rename metadata: %w", err)
	}

	for _, b := range backups {
		w.fs.Remove(b.path)
	}
	return nil
}

// Abort closes and removes the temporary outputs. It is a no-op after a
// successful Finish and safe to call more than once.
func (w *Writer) Abort() error {
	if w.done {
		return nil
	}
	w.done = true

	var errs []error
	for _, f := range []*tmpFile{w.payload, w.metadata} {
		if err := f.close(); err != nil {
			errs = append(errs, err)
		}
		if exists, _ := w.fs.Exists(f.path); exists {
			if err := w.fs.Remove(f.path); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
