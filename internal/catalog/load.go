package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Format identifies a catalog file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCUE  Format = "cue"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported catalog extension %q (want .yaml, .yml, .json or .cue)", filepath.Ext(path))
	}
}

// LoadFile reads, decodes and validates a catalog file.
// A rejected catalog yields a ValidationErrors value.
func LoadFile(path string) (*Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data, format, filepath.Base(path))
}

// Parse decodes and validates catalog bytes in the given format.
// The filename is only used for error positions.
func Parse(data []byte, format Format, filename string) (*Catalog, error) {
	var (
		cat  *Catalog
		errs []ValidationError
	)

	switch format {
	case FormatYAML:
		cat = &Catalog{}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cat); err != nil {
			return nil, ValidationErrors{{Field: filename, Message: err.Error(), Code: ErrCodeParse}}
		}
		errs = CheckSchema(cat)
	case FormatJSON:
		cat = &Catalog{}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cat); err != nil {
			return nil, ValidationErrors{{Field: filename, Message: err.Error(), Code: ErrCodeParse}}
		}
		errs = CheckSchema(cat)
	case FormatCUE:
		cat, errs = parseCUE(data, filename)
		if cat == nil {
			return nil, ValidationErrors(errs)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}

	errs = append(errs, Validate(cat)...)
	if len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return cat, nil
}

// CheckSchema unifies an in-memory catalog with the embedded CUE schema.
func CheckSchema(cat *Catalog) []ValidationError {
	ctx := cuecontext.New()
	schema, err := compileSchema(ctx)
	if err != nil {
		return []ValidationError{{Field: "schema", Message: err.Error(), Code: ErrCodeSchema}}
	}
	v := ctx.Encode(cat)
	if err := v.Err(); err != nil {
		return fromCUEError(err)
	}
	if err := schema.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return fromCUEError(err)
	}
	return nil
}

// parseCUE compiles a CUE catalog, applies the schema (including defaults)
// and decodes the result.
func parseCUE(data []byte, filename string) (*Catalog, []ValidationError) {
	ctx := cuecontext.New()
	schema, err := compileSchema(ctx)
	if err != nil {
		return nil, []ValidationError{{Field: "schema", Message: err.Error(), Code: ErrCodeSchema}}
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fromCUEError(err)
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fromCUEError(err)
	}

	var cat Catalog
	if err := unified.Decode(&cat); err != nil {
		return nil, fromCUEError(err)
	}
	return &cat, nil
}

func compileSchema(ctx *cue.Context) (cue.Value, error) {
	v := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile catalog schema: %w", err)
	}
	return v.LookupPath(cue.ParsePath("#Catalog")), nil
}

// fromCUEError flattens a CUE error list into validation errors.
func fromCUEError(err error) []ValidationError {
	var out []ValidationError
	for _, e := range cueerrors.Errors(err) {
		ve := ValidationError{
			Field:   strings.Join(e.Path(), "."),
			Message: e.Error(),
			Code:    ErrCodeSchema,
		}
		if ve.Field == "" {
			ve.Field = "catalog"
		}
		if positions := cueerrors.Positions(e); len(positions) > 0 && positions[0].IsValid() {
			ve.Line = positions[0].Line()
		}
		out = append(out, ve)
	}
	if len(out) == 0 {
		out = append(out, ValidationError{Field: "catalog", Message: err.Error(), Code: ErrCodeSchema})
	}
	return out
}
