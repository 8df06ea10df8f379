// Package dataset discovers recordings on disk and loads a signal column from
// delimited text files.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/RyanBlaney/fsprobe/logging"
)

var (
	// ErrNoFilesFound is returned when a discovery pattern matches nothing
	ErrNoFilesFound = errors.New("no input files found")
	// ErrParse marks malformed tabular input
	ErrParse = errors.New("parse error")
)

// ParseError describes where tabular input could not be read
type ParseError struct {
	Path   string
	Line   int // 1-based line in the file, 0 when unknown
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse ")
	if e.Path != "" {
		b.WriteString(e.Path)
	} else {
		b.WriteString("input")
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %s", e.Column)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " value %q", e.Value)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both ErrParse and the underlying cause to errors.Is
func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrParse}
	}
	return []error{ErrParse, e.Err}
}

// LoaderConfig configures discovery and parsing of signal files
type LoaderConfig struct {
	Pattern    string `json:"pattern"`               // glob, e.g. data/*.csv
	Column     int    `json:"column"`                // 0-based column index
	ColumnName string `json:"column_name,omitempty"` // header name; overrides Column
	Delimiter  string `json:"delimiter"`             // single character, "\t" for TSV
	HasHeader  bool   `json:"has_header"`
	Comment    string `json:"comment,omitempty"` // lines starting with this character are skipped
}

// DefaultLoaderConfig reads the second column of comma-separated files with a
// header row from data/*.csv.
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		Pattern:   filepath.Join("data", "*.csv"),
		Column:    1,
		Delimiter: ",",
		HasHeader: true,
	}
}

// Discover returns the regular files matching pattern in lexicographic order
func Discover(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("discover %q: %w", pattern, err)
	}

	files := matches[:0]
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, m)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: pattern %q", ErrNoFilesFound, pattern)
	}

	slices.Sort(files)
	return files, nil
}

// First returns the lexicographically first file matching pattern
func First(pattern string) (string, error) {
	files, err := Discover(pattern)
	if err != nil {
		return "", err
	}
	return files[0], nil
}

// Loader reads one numeric column out of delimited text
type Loader struct {
	config *LoaderConfig
	logger logging.Logger
}

// NewLoader creates a loader; a nil config uses DefaultLoaderConfig
func NewLoader(config *LoaderConfig) (*Loader, error) {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	if _, err := singleRune(config.Delimiter, ','); err != nil {
		return nil, fmt.Errorf("delimiter: %w", err)
	}
	if _, err := singleRune(config.Comment, 0); err != nil {
		return nil, fmt.Errorf("comment: %w", err)
	}
	if config.Column < 0 {
		return nil, fmt.Errorf("column index must not be negative, got %d", config.Column)
	}
	if config.ColumnName != "" && !config.HasHeader {
		return nil, fmt.Errorf("column name %q requires a header row", config.ColumnName)
	}

	return &Loader{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "dataset_loader",
		}),
	}, nil
}

func singleRune(s string, def rune) (rune, error) {
	if s == "" {
		return def, nil
	}
	if s == `\t` {
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// LoadFile opens path, reads the signal column and closes the file before
// returning.
func (l *Loader) LoadFile(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	signal, err := l.read(f, path)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("Loaded signal", logging.Fields{
		"file":    path,
		"samples": len(signal),
	})
	return signal, nil
}

// Read parses the signal column from r
func (l *Loader) Read(r io.Reader) ([]float64, error) {
	return l.read(r, "")
}

func (l *Loader) read(r io.Reader, path string) ([]float64, error) {
	delim, _ := singleRune(l.config.Delimiter, ',')
	comment, _ := singleRune(l.config.Comment, 0)

	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.Comment = comment
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	column := l.config.Column
	columnLabel := strconv.Itoa(column)
	var signal []float64
	header := l.config.HasHeader

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var line int
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				line = csvErr.Line
			}
			return nil, &ParseError{Path: path, Line: line, Err: err}
		}
		line, _ := reader.FieldPos(0)

		if header {
			header = false
			if l.config.ColumnName != "" {
				idx := slices.IndexFunc(record, func(name string) bool {
					return strings.TrimSpace(name) == l.config.ColumnName
				})
				if idx < 0 {
					return nil, &ParseError{Path: path, Line: line, Column: l.config.ColumnName,
						Err: errors.New("column not found in header")}
				}
				column = idx
				columnLabel = l.config.ColumnName
			}
			continue
		}

		if column >= len(record) {
			return nil, &ParseError{Path: path, Line: line, Column: columnLabel,
				Err: fmt.Errorf("row has %d fields", len(record))}
		}

		raw := strings.TrimSpace(record[column])
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &ParseError{Path: path, Line: line, Column: columnLabel, Value: raw,
				Err: errors.New("not a number")}
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, &ParseError{Path: path, Line: line, Column: columnLabel, Value: raw,
				Err: errors.New("non-finite value")}
		}
		signal = append(signal, value)
	}

	return signal, nil
}

// LoadSignal loads the signal column of path with the given config
func LoadSignal(path string, config *LoaderConfig) ([]float64, error) {
	loader, err := NewLoader(config)
	if err != nil {
		return nil, err
	}
	return loader.LoadFile(path)
}

// ReadSignal parses the signal column from r with the given config
func ReadSignal(r io.Reader, config *LoaderConfig) ([]float64, error) {
	loader, err := NewLoader(config)
	if err != nil {
		return nil, err
	}
	return loader.Read(r)
}
