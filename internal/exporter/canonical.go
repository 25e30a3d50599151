package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"

	apperrors "github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/errors"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/pkg/contracts/domain"
)

const jsonIndent = "  "

// MarshalCanonical renders the canonical store document: {"items": [...]}
// with two-space indentation and a trailing newline. Identical items give
// identical bytes; nil items render as an empty array.
func MarshalCanonical(items []domain.CleanRecord) ([]byte, error) {
	if items == nil {
		items = []domain.CleanRecord{}
	}
	var buf bytes.Buffer
	if err := encodeJSON(&buf, domain.CanonicalDocument{Items: items}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCanonical writes items to the canonical store at path
func (w *Writer) WriteCanonical(ctx context.Context, path string, items []domain.CleanRecord) error {
	data, err := MarshalCanonical(items)
	if err != nil {
		return apperrors.NewStorageError("failed to encode canonical store", err)
	}

	w.logger.InfoContext(ctx, "Writing canonical store",
		slog.String("file_path", path),
		slog.String("full_path", w.files.Resolve(path)),
		slog.Int("item_count", len(items)),
		slog.Int("size_bytes", len(data)))

	return w.files.WriteFile(path, data)
}

// ReadCanonical loads a canonical store document
func ReadCanonical(path string) (*domain.CanonicalDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read canonical store", err).
			WithContext("path", path)
	}
	var doc domain.CanonicalDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.NewAppValidationError("canonical store is not valid JSON", err).
			WithContext("path", path)
	}
	return &doc, nil
}

// encodeJSON writes v indented, without HTML escaping, newline terminated
func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", jsonIndent)
	return enc.Encode(v)
}
