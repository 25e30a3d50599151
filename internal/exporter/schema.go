package exporter

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	apperrors "github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/errors"
)

//go:embed schema/canonical.schema.json
var canonicalSchemaJSON []byte

var (
	canonicalSchema     *gojsonschema.Schema
	canonicalSchemaErr  error
	canonicalSchemaOnce sync.Once
)

func loadCanonicalSchema() (*gojsonschema.Schema, error) {
	canonicalSchemaOnce.Do(func() {
		canonicalSchema, canonicalSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(canonicalSchemaJSON))
	})
	return canonicalSchema, canonicalSchemaErr
}

// VerifyCanonical reads the canonical store at path back and validates it
// against the embedded schema. Any mismatch is a VALIDATION error listing
// every violation.
func VerifyCanonical(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.NewStorageError("failed to read canonical store", err).
			WithContext("path", path)
	}
	return VerifyCanonicalBytes(data)
}

// VerifyCanonicalBytes validates an encoded canonical store document
func VerifyCanonicalBytes(data []byte) error {
	schema, err := loadCanonicalSchema()
	if err != nil {
		return apperrors.NewConfigError("canonical schema does not compile", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return apperrors.NewAppValidationError("canonical store is not valid JSON", err)
	}
	if result.Valid() {
		return nil
	}

	var violations []string
	for _, desc := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return apperrors.NewAppValidationError("canonical store does not match schema",
		errors.New(strings.Join(violations, "; "))).
		WithContext("violations", len(violations))
}
