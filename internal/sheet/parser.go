package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/example/lingualisten/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ErrMalformed is returned when the payload cannot be read as a content sheet
var ErrMalformed = errors.New("malformed content sheet")

// Format of the tabular payload
type Format int

const (
	FormatAuto Format = iota
	FormatCSV
	FormatXLSX
)

// Columns maps item fields onto header names of the sheet
type Columns struct {
	ID          string
	Code        string
	TextTarget  string
	TextNative  string
	AudioTarget string
	AudioNative string
	Category    string
	Status      string
}

// DefaultColumns returns the header names used by the published content sheet
func DefaultColumns() Columns {
	return Columns{
		ID:          "id",
		Code:        "code",
		TextTarget:  "text_target",
		TextNative:  "text_native",
		AudioTarget: "audio_target_url",
		AudioNative: "audio_native_url",
		Category:    "category",
		Status:      "status",
	}
}

// Older sheets name the language columns after the language itself.
var headerAliases = map[string][]string{
	"text_target":      {"phrase_yoruba", "phrase"},
	"text_native":      {"phrase_english", "translation"},
	"audio_target_url": {"audio_yoruba_url"},
	"audio_native_url": {"audio_english_url"},
}

// Config defines how a payload is parsed
type Config struct {
	Columns   Columns
	SheetName string // XLSX only; the first sheet is used when empty
	Format    Format
}

// DefaultConfig returns the default parse configuration
func DefaultConfig() Config {
	return Config{
		Columns: DefaultColumns(),
		Format:  FormatAuto,
	}
}

// Result holds the outcome of a parse
type Result struct {
	Items         []models.Item
	TotalRows     int
	Unpublished   int
	Skipped       int
	Recategorized int
	Errors        []string
}

var zipMagic = []byte("PK\x03\x04")

// DetectFormat guesses the payload format. XLSX files are zip archives.
func DetectFormat(data []byte) Format {
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX
	}
	return FormatCSV
}

// Parse reads a CSV or XLSX payload into validated items
func Parse(data []byte, config Config) (*Result, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformed)
	}

	format := config.Format
	if format == FormatAuto {
		format = DetectFormat(data)
	}

	var rows [][]string
	var err error
	switch format {
	case FormatXLSX:
		rows, err = readXLSX(data, config.SheetName)
	default:
		rows, err = readCSV(data)
	}
	if err != nil {
		return nil, err
	}

	return parseRows(rows, config.Columns)
}

func readCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read csv: %v", ErrMalformed, err)
	}
	return rows, nil
}

func readXLSX(data []byte, sheetName string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: open xlsx: %v", ErrMalformed, err)
	}
	defer f.Close()

	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformed)
		}
		sheetName = sheets[0]
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrMalformed, sheetName, err)
	}
	return rows, nil
}

// columnIndex resolves each configured header to its position in the header row
type columnIndex map[string]int

func indexHeader(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, dup := idx[name]; name != "" && !dup {
			idx[name] = i
		}
	}
	return idx
}

func (c columnIndex) lookup(name string) (int, bool) {
	name = strings.ToLower(name)
	if i, ok := c[name]; ok {
		return i, true
	}
	for _, alias := range headerAliases[name] {
		if i, ok := c[alias]; ok {
			return i, true
		}
	}
	return 0, false
}

func (c columnIndex) cell(row []string, name string) string {
	i, ok := c.lookup(name)
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseRows(rows [][]string, cols Columns) (*Result, error) {
	// The first non-blank row is the header
	start := 0
	for start < len(rows) && isBlank(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, fmt.Errorf("%w: no header row", ErrMalformed)
	}

	header := indexHeader(rows[start])
	for _, required := range []string{cols.ID, cols.Code} {
		if _, ok := header.lookup(required); !ok {
			return nil, fmt.Errorf("%w: missing %q column", ErrMalformed, required)
		}
	}

	result := &Result{Errors: make([]string, 0)}
	for i := start + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		result.TotalRows++

		if err := processRow(row, header, cols, result); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}

	return result, nil
}

// IsPublished reports whether a status cell marks the row as visible
func IsPublished(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	return s == "" || s == string(models.Published)
}

func processRow(row []string, header columnIndex, cols Columns, result *Result) error {
	status := header.cell(row, cols.Status)
	if !IsPublished(status) {
		result.Unpublished++
		return nil
	}

	item := models.Item{
		ID:         header.cell(row, cols.ID),
		Code:       header.cell(row, cols.Code),
		TextTarget: header.cell(row, cols.TextTarget),
		TextNative: header.cell(row, cols.TextNative),
		Audio: models.AudioRefs{
			Target: header.cell(row, cols.AudioTarget),
			Native: header.cell(row, cols.AudioNative),
		},
		PublishState: models.Published,
	}

	if item.ID == "" {
		return fmt.Errorf("id cannot be empty")
	}
	if item.Code == "" {
		return fmt.Errorf("code cannot be empty")
	}

	rawCategory := header.cell(row, cols.Category)
	item.Category = models.NormalizeCategory(rawCategory)
	if rawCategory != "" && string(item.Category) != strings.ToLower(rawCategory) {
		result.Recategorized++
	}

	result.Items = append(result.Items, item)
	return nil
}
