package exporter

import (
	"log/slog"

	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/files"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/infrastructure"
)

// Writer writes the pipeline's stores and reports through a files.Manager,
// so every output is replaced atomically
type Writer struct {
	files  *files.Manager
	logger *slog.Logger
}

// NewWriter creates a writer on top of fm. A nil fm resolves paths
// against the working directory.
func NewWriter(fm *files.Manager, logger *slog.Logger) *Writer {
	if fm == nil {
		fm = files.NewManager(nil, logger)
	}
	return &Writer{
		files:  fm,
		logger: infrastructure.WithComponent(logger, "exporter"),
	}
}
