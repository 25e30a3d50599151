package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the pipeline's directory layout. Relative store paths in
// the configuration are resolved against BaseDir.
type Paths struct {
	BaseDir  string
	DataDir  string
	RawDir   string
	CleanDir string
	LogsDir  string
}

// NewPaths returns the layout rooted at baseDir
func NewPaths(baseDir string) *Paths {
	return &Paths{
		BaseDir:  baseDir,
		DataDir:  filepath.Join(baseDir, DefaultDataDir),
		RawDir:   filepath.Join(baseDir, DefaultRawDir),
		CleanDir: filepath.Join(baseDir, DefaultCleanDir),
		LogsDir:  filepath.Join(baseDir, DefaultLogsDir),
	}
}

// GetPaths returns the layout rooted at the current working directory
func GetPaths() (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %v", err)
	}
	return NewPaths(wd), nil
}

// Resolve returns path joined to BaseDir when it is relative. Empty paths
// stay empty so optional outputs remain disabled.
func (p *Paths) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.BaseDir, path)
}

// EnsureParent creates the parent directory of a file path
func EnsureParent(path string) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %v", dir, err)
	}
	return nil
}

// LogPathResolution logs the resolved layout for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("raw", p.RawDir),
			slog.String("clean", p.CleanDir),
			slog.String("logs", p.LogsDir),
		))
}
