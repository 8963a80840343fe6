package testdata

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/caserun/internal/config"
)

// DefaultEncoding is used when Read is given an empty encoding
const DefaultEncoding = "utf-8"

// readFunc loads every record of one test-data file
type readFunc func(path, encoding string) ([]TestCase, error)

// readers maps a lower-cased file extension to its reader.
var readers = map[string]readFunc{
	".xlsx": readExcel,
	".yaml": readYAML,
	".yml":  readYAML,
	".csv":  readDelimited(','),
	".tsv":  readDelimited('\t'),
	".json": readJSON,
}

// encodingAliases covers names htmlindex does not know
var encodingAliases = map[string]string{
	"utf-8-sig": "utf-8",
	"utf8":      "utf-8",
}

// Read loads the test cases stored at path. The reader is chosen by file
// extension, case-insensitively. Every failure, including an unsupported
// extension, is returned as a *config.DataReadError wrapping the cause.
func Read(path, encoding string) ([]TestCase, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	cases, err := read(path, encoding)
	if err != nil {
		return nil, &config.DataReadError{Path: path, Encoding: encoding, Err: err}
	}
	return cases, nil
}

func read(path, encoding string) ([]TestCase, error) {
	ext := strings.ToLower(filepath.Ext(path))
	reader, ok := readers[ext]
	if !ok {
		return nil, &config.UnsupportedFormatError{Ext: ext}
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, &config.NotFoundError{Kind: "file", Name: path}
	}

	return reader(path, encoding)
}

// openDecoded opens path and decodes it from encoding to UTF-8, dropping a
// leading byte order mark.
func openDecoded(path, encoding string) (io.ReadCloser, error) {
	name := strings.ToLower(strings.TrimSpace(encoding))
	if alias, ok := encodingAliases[name]; ok {
		name = alias
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", encoding, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	decoder := unicode.BOMOverride(enc.NewDecoder())
	return struct {
		io.Reader
		io.Closer
	}{transform.NewReader(f, decoder), f}, nil
}

func readDelimited(comma rune) readFunc {
	return func(path, encoding string) ([]TestCase, error) {
		f, err := openDecoded(path, encoding)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		r := csv.NewReader(f)
		r.Comma = comma
		r.FieldsPerRecord = -1
		if comma == '\t' {
			r.LazyQuotes = true
		}

		format := "csv"
		if comma == '\t' {
			format = "tsv"
		}

		rows, err := r.ReadAll()
		if err != nil {
			return nil, &config.ParseError{Path: path, Format: format, Err: err}
		}
		if len(rows) == 0 {
			return nil, &config.ParseError{Path: path, Format: format, Err: errors.New("missing header row")}
		}

		return recordsFromRows(rows[0], rows[1:]), nil
	}
}

func readExcel(path, _ string) ([]TestCase, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &config.ParseError{Path: path, Format: "xlsx", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &config.ParseError{Path: path, Format: "xlsx", Err: errors.New("workbook has no sheets")}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &config.ParseError{Path: path, Format: "xlsx", Err: err}
	}
	if len(rows) == 0 {
		return nil, &config.ParseError{Path: path, Format: "xlsx", Err: fmt.Errorf("sheet %s has no header row", sheets[0])}
	}

	return recordsFromRows(rows[0], rows[1:]), nil
}

// recordsFromRows maps each row onto header names. Short rows are padded
// with empty strings, cells past the header are dropped and blank rows are
// skipped.
func recordsFromRows(header []string, rows [][]string) []TestCase {
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	cases := make([]TestCase, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}

		tc := make(TestCase, len(header))
		for i, name := range header {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			tc[name] = value
		}
		cases = append(cases, tc)
	}
	return cases
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

var (
	errTrailingData     = errors.New("unexpected data after the top-level value")
	errTrailingDocument = errors.New("file holds more than one document")
)

func readYAML(path, encoding string) ([]TestCase, error) {
	f, err := openDecoded(path, encoding)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	var doc any
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, &config.ParseError{Path: path, Format: "yaml", Err: err}
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, &config.ParseError{Path: path, Format: "yaml", Err: errTrailingDocument}
	}

	cases, err := recordsFromDocument(config.NormalizeYAML(doc))
	if err != nil {
		return nil, &config.ParseError{Path: path, Format: "yaml", Err: err}
	}
	return cases, nil
}

func readJSON(path, encoding string) ([]TestCase, error) {
	f, err := openDecoded(path, encoding)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &config.ParseError{Path: path, Format: "json", Err: err}
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, &config.ParseError{Path: path, Format: "json", Err: errTrailingData}
	}

	cases, err := recordsFromDocument(doc)
	if err != nil {
		return nil, &config.ParseError{Path: path, Format: "json", Err: err}
	}
	return cases, nil
}

// recordsFromDocument requires a sequence of mappings
func recordsFromDocument(doc any) ([]TestCase, error) {
	if doc == nil {
		return []TestCase{}, nil
	}

	items, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("top-level value is %T, expected a sequence of mappings", doc)
	}

	cases := make([]TestCase, 0, len(items))
	for i, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("item %d is %T, expected a mapping", i, item)
		}
		cases = append(cases, TestCase(record))
	}
	return cases, nil
}
