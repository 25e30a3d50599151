package files

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/config"
	apperrors "github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/errors"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/infrastructure"
)

const tempPattern = ".boq-*.tmp"

// Manager provides file operations relative to the pipeline layout.
// Writes go to a temporary file in the target directory and are renamed
// into place, so readers never see a partial file.
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new file manager instance. A nil paths resolves
// relative paths against the working directory.
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if paths == nil {
		paths = config.NewPaths("")
	}
	return &Manager{
		paths:  paths,
		logger: infrastructure.WithComponent(logger, "files"),
	}
}

// Resolve returns the absolute location of path
func (m *Manager) Resolve(path string) string {
	return m.paths.Resolve(path)
}

// WriteFile writes data to path atomically
func (m *Manager) WriteFile(path string, data []byte) error {
	return m.WriteAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WriteAtomic streams the output of write into path. The previous content
// of path is replaced only if write and the final flush succeed; on any
// failure the temporary file is removed and path is left untouched.
func (m *Manager) WriteAtomic(path string, write func(io.Writer) error) (err error) {
	fullPath := m.Resolve(path)
	if fullPath == "" {
		return apperrors.NewStorageError("output path is empty", nil)
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err).
			WithContext("path", dir)
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return apperrors.NewStorageError("failed to create temporary file", err).
			WithContext("path", fullPath)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	buffered := bufio.NewWriter(tmp)
	if err = write(buffered); err != nil {
		return wrapStorage(err, fullPath)
	}
	if err = buffered.Flush(); err != nil {
		return wrapStorage(err, fullPath)
	}
	if err = tmp.Sync(); err != nil {
		return wrapStorage(err, fullPath)
	}
	if err = tmp.Close(); err != nil {
		return wrapStorage(err, fullPath)
	}
	if err = os.Chmod(tmpPath, 0644); err != nil {
		return wrapStorage(err, fullPath)
	}
	if err = os.Rename(tmpPath, fullPath); err != nil {
		return wrapStorage(err, fullPath)
	}

	m.logger.Debug("File written",
		slog.String("path", path),
		slog.String("full_path", fullPath))
	return nil
}

// wrapStorage keeps typed errors from the writer and tags the rest as
// storage failures
func wrapStorage(err error, path string) error {
	if apperrors.TypeOf(err) != "" {
		return err
	}
	return apperrors.NewStorageError(fmt.Sprintf("failed to write %s", filepath.Base(path)), err).
		WithContext("path", path)
}
