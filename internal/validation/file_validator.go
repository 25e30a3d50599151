package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/errors"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/infrastructure"
)

// FileValidator checks the pipeline's input and output locations before a
// step starts, so path problems surface as typed errors ahead of any work.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	return &FileValidator{
		logger: infrastructure.WithComponent(logger, "validation"),
	}
}

// ValidateRawStore checks that the raw store at path is a readable file.
// Any problem is an InputMissing error. The file name is not checked; the
// reader decides whether the content is a raw store by its header row.
func (v *FileValidator) ValidateRawStore(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return apperrors.NewInputMissingError(path, err)
	}
	return nil
}

// ValidateOutputPath ensures the directory of an output file exists or can
// be created and is writable. Empty paths are disabled outputs.
func (v *FileValidator) ValidateOutputPath(path string) error {
	if path == "" {
		return nil
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		v.logger.Error("Output path is a directory",
			slog.String("path", path))
		return apperrors.NewStorageError(fmt.Sprintf("%s is a directory, not a file", path), nil)
	}
	if err := v.ValidateOutputDirectory(filepath.Dir(path)); err != nil {
		return apperrors.NewStorageError("output directory unusable", err).
			WithContext("path", path)
	}
	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Verify it's writable by creating a scratch file
	scratch, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	scratch.Close()
	os.Remove(scratch.Name())

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateDistinct rejects output paths that resolve to the same file as
// each other or as the raw store
func (v *FileValidator) ValidateDistinct(paths ...string) error {
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		key := filepath.Clean(p)
		if abs, err := filepath.Abs(p); err == nil {
			key = abs
		}
		if prev, dup := seen[key]; dup {
			v.logger.Error("Paths collide",
				slog.String("first", prev),
				slog.String("second", p))
			return apperrors.NewConfigError(fmt.Sprintf("%s and %s name the same file", prev, p), nil)
		}
		seen[key] = p
	}
	return nil
}
