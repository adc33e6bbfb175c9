// Package planfile reads and writes plans as YAML documents or XLSX workbooks.
package planfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/staffplan/internal/domain"
)

// Format identifies an on-disk plan encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for file extensions with no codec.
var ErrUnsupportedFormat = errors.New("unsupported plan file format")

// FormatFromPath picks the codec from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads a plan file. Entries the file omits keep their default values
// and the result is normalized.
func Load(path string) (domain.Plan, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return domain.Plan{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("opening plan file: %w", err)
	}
	defer f.Close()

	plan, err := Decode(f, format)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return plan, nil
}

// Save writes plan to path, replacing any existing file.
func Save(path string, plan domain.Plan) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating plan file: %w", err)
	}
	if err := Encode(f, format, plan); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing plan file: %w", err)
	}
	return os.Rename(tmp, path)
}

// Decode reads a plan in the given format.
func Decode(r io.Reader, format Format) (domain.Plan, error) {
	switch format {
	case FormatYAML:
		return decodeYAML(r)
	case FormatXLSX:
		return decodeXLSX(r)
	default:
		return domain.Plan{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Encode writes plan in the given format.
func Encode(w io.Writer, format Format, plan domain.Plan) error {
	plan = plan.Normalize()
	switch format {
	case FormatYAML:
		return encodeYAML(w, plan)
	case FormatXLSX:
		return encodeXLSX(w, plan)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// base is the plan a file overlays.
func base() domain.Plan {
	return domain.DefaultPlan().Normalize()
}
