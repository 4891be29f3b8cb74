package artifacts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FilesystemWriter is an ArtifactWriter that targets a particular directory on
// the underlying filesystem.
type FilesystemWriter struct {
	dir string
	fs  afero.Fs
}

var _ ArtifactWriter = &FilesystemWriter{}

// NewFilesystemWriter creates an artifact writer which writes to the filesystem.
// Without options it writes into a fresh temporary directory on the OS
// filesystem, distinct for every writer.
func NewFilesystemWriter(opts ...FilesystemWriterOption) (*FilesystemWriter, error) {
	w := FilesystemWriter{
		fs: afero.NewOsFs(),
	}

	for _, opt := range opts {
		opt(&w)
	}

	if w.dir != "" {
		if exists, _ := afero.DirExists(w.fs, w.dir); exists {
			return &w, nil
		}
		if err := w.fs.MkdirAll(w.dir, 0o755); err != nil {
			return nil, fmt.Errorf("could not create artifacts directory %s: %w", w.dir, err)
		}
		return &w, nil
	}

	dir, err := afero.TempDir(w.fs, "", TempDirPrefix)
	if err != nil {
		return nil, fmt.Errorf("could not create temporary artifacts directory: %w", err)
	}
	w.dir = dir

	return &w, nil
}

// FilesystemWriterOption configures a FilesystemWriter.
type FilesystemWriterOption = func(*FilesystemWriter)

// WithDirectory sets the artifacts directory to dir unless it's empty, in which case
// this option is ignored and a temporary directory is used.
func WithDirectory(dir string) FilesystemWriterOption {
	return func(w *FilesystemWriter) {
		if dir == "" {
			return
		}
		w.dir = resolveFullPath(dir)
	}
}

// WithFs swaps the filesystem the writer targets.
func WithFs(fs afero.Fs) FilesystemWriterOption {
	return func(w *FilesystemWriter) {
		if fs == nil {
			return
		}
		w.fs = fs
	}
}

// WriteFile places contents into dir at filename.
func (w *FilesystemWriter) WriteFile(filename string, contents io.Reader) (string, error) {
	fullFilePath := filepath.Join(w.Path(), filename)

	if err := afero.WriteReader(w.fs, fullFilePath, contents); err != nil {
		return fullFilePath, fmt.Errorf("could not write file to artifacts directory: %v", err)
	}
	return fullFilePath, nil
}

// AppendFile appends contents to filename in dir.
func (w *FilesystemWriter) AppendFile(filename string, contents io.Reader) (string, error) {
	fullFilePath := filepath.Join(w.Path(), filename)

	f, err := w.fs.OpenFile(fullFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fullFilePath, fmt.Errorf("could not open file in artifacts directory: %v", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, contents); err != nil {
		return fullFilePath, fmt.Errorf("could not append to file in artifacts directory: %v", err)
	}
	return fullFilePath, nil
}

// Exists checks if a file exists with a filename
func (w *FilesystemWriter) Exists(filename string) (bool, error) {
	fullFilePath := filepath.Join(w.Path(), filename)

	return afero.Exists(w.fs, fullFilePath)
}

// Path is the full artifacts path.
func (w *FilesystemWriter) Path() string {
	return w.dir
}

func resolveFullPath(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}
