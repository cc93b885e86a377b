package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// Source produces the raw flight table. Every column is returned as
// strings; typing happens in Normalize.
type Source interface {
	Frame(ctx context.Context) (dataframe.DataFrame, error)
	Name() string
}

// FileSource reads a CSV or XLSX file from disk, chosen by extension.
type FileSource struct {
	Path  string
	Sheet string // XLSX only
}

// NewFileSource creates a FileSource. sheet is ignored for CSV files.
func NewFileSource(path, sheet string) *FileSource {
	return &FileSource{Path: path, Sheet: sheet}
}

func (s *FileSource) Name() string { return s.Path }

// Frame reads the whole file into a string-typed DataFrame.
func (s *FileSource) Frame(ctx context.Context) (dataframe.DataFrame, error) {
	if err := ctx.Err(); err != nil {
		return dataframe.DataFrame{}, err
	}

	switch ext := strings.ToLower(filepath.Ext(s.Path)); ext {
	case ".csv":
		return readCSV(s.Path)
	case ".xlsx":
		return readXLSX(s.Path, s.Sheet)
	default:
		return dataframe.DataFrame{}, fmt.Errorf("unsupported file type %q", ext)
	}
}

func loadOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	}
}

func readCSV(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f, loadOptions()...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read csv: %w", df.Err)
	}
	return df, nil
}

func readXLSX(path, sheet string) (dataframe.DataFrame, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	records := padRows(rows)
	if len(records) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("sheet %q is empty", sheet)
	}

	df := recordsToFrame(records)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("load sheet %q: %w", sheet, df.Err)
	}
	return df, nil
}

// recordsToFrame builds one string series per header column.
func recordsToFrame(records [][]string) dataframe.DataFrame {
	headers := records[0]
	columns := make([][]string, len(headers))
	for i := range columns {
		columns[i] = make([]string, 0, len(records)-1)
	}
	for _, row := range records[1:] {
		for i := range headers {
			columns[i] = append(columns[i], row[i])
		}
	}

	cols := make([]series.Series, len(headers))
	for i, name := range headers {
		cols[i] = series.New(columns[i], series.String, strings.TrimSpace(name))
	}
	return dataframe.New(cols...)
}

// padRows drops blank rows and pads the rest to the header width, since
// GetRows trims trailing empty cells.
func padRows(rows [][]string) [][]string {
	if len(rows) == 0 {
		return nil
	}
	width := len(rows[0])
	out := make([][]string, 0, len(rows))
	for i, row := range rows {
		if i > 0 && isBlank(row) {
			continue
		}
		if len(row) > width {
			row = row[:width]
		}
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		}
		out = append(out, row)
	}
	return out
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
