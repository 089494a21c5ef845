// Package codec reads uploaded CSV and Excel files into tables and writes
// tables back out as downloadable artifacts.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/DataSweeper/internal/table"
)

var (
	// ErrUnsupportedFormat is returned for a file whose extension is neither
	// .csv nor .xlsx.
	ErrUnsupportedFormat = errors.New("unsupported file type")

	// ErrParse wraps every decoding failure of well-typed but malformed input.
	ErrParse = errors.New("parse failure")

	// ErrUnknownFormat is returned by ParseFormat for an unknown export target.
	ErrUnknownFormat = errors.New("unknown export format")
)

// Format is a file format the pipeline can read and write.
type Format string

const (
	CSV   Format = "csv"
	Excel Format = "excel"
)

// MIME types for the download sink.
const (
	MIMECSV   = "text/csv"
	MIMEExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	if f == Excel {
		return ".xlsx"
	}
	return ".csv"
}

// MIMEType returns the content type for f.
func (f Format) MIMEType() string {
	if f == Excel {
		return MIMEExcel
	}
	return MIMECSV
}

// Label returns the human-readable name shown in the UI.
func (f Format) Label() string {
	if f == Excel {
		return "Excel"
	}
	return "CSV"
}

// Formats lists the export targets in display order.
var Formats = []Format{CSV, Excel}

// ParseFormat accepts "csv" or "excel" (also "xlsx"), case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "excel", "xlsx":
		return Excel, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// DetectFormat picks the reader for a file name from its extension.
func DetectFormat(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".csv":
		return CSV, nil
	case ".xlsx":
		return Excel, nil
	default:
		if ext == "" {
			ext = "(none)"
		}
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// OutputName replaces the extension of name with the extension of f.
func OutputName(name string, f Format) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return base + f.Extension()
}

// Decode reads a named file into a table, choosing the parser by extension.
func Decode(name string, r io.Reader) (*table.Table, Format, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, "", err
	}

	var t *table.Table
	switch format {
	case Excel:
		t, err = DecodeExcel(r)
	default:
		t, err = DecodeCSV(r)
	}
	if err != nil {
		return nil, format, err
	}
	return t, format, nil
}

// Artifact is an encoded table ready for download.
type Artifact struct {
	FileName string
	MIMEType string
	Format   Format
	Data     *bytes.Reader
}

// Size returns the artifact length in bytes.
func (a *Artifact) Size() int64 { return a.Data.Size() }

// Encode serializes t in format f. sourceName is the uploaded file name the
// artifact name is derived from.
func Encode(t *table.Table, f Format, sourceName string) (*Artifact, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case CSV:
		err = EncodeCSV(&buf, t)
	case Excel:
		err = EncodeExcel(&buf, t)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", f, err)
	}

	return &Artifact{
		FileName: OutputName(sourceName, f),
		MIMEType: f.MIMEType(),
		Format:   f,
		Data:     bytes.NewReader(buf.Bytes()),
	}, nil
}
