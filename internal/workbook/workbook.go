package workbook

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row maps a header label to the cell value at the same position. Values
// beyond the header count are dropped; cells missing from short rows are
// empty strings.
type Row map[string]string

// Sheet is the active sheet of an uploaded workbook. Data rows are read
// lazily in a single pass via EachRow.
type Sheet struct {
	file    *excelize.File
	name    string
	headers []string
}

// Open loads the bytes as a workbook and selects its active sheet, reading
// row 1 as header labels. Any failure here means the file as a whole cannot
// be processed, as opposed to a single bad row.
func Open(data []byte) (*Sheet, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, ErrorWorkbookOpen(err)
	}

	name := file.GetSheetName(file.GetActiveSheetIndex())
	if name == "" {
		sheets := file.GetSheetList()
		if len(sheets) == 0 {
			_ = file.Close()
			return nil, ErrNoSheet
		}
		name = sheets[0]
	}

	headers, err := readHeaders(file, name)
	if err != nil {
		_ = file.Close()
		return nil, ErrorSheetNotReadable(name, err)
	}

	return &Sheet{file: file, name: name, headers: headers}, nil
}

// Name returns the selected sheet name.
func (s *Sheet) Name() string {
	return s.name
}

// Headers returns the trimmed header labels from row 1.
func (s *Sheet) Headers() []string {
	return s.headers
}

// EachRow streams the data rows (row 2 onward) through fn. The index is
// 1-based over data rows. A non-nil error from fn stops the iteration and is
// returned as-is; an iterator failure is wrapped.
func (s *Sheet) EachRow(fn func(index int, row Row) error) error {
	rows, err := s.file.Rows(s.name)
	if err != nil {
		return ErrorSheetNotReadable(s.name, err)
	}
	defer func() { _ = rows.Close() }()

	index := 0
	for rows.Next() {
		index++
		if index == 1 {
			continue // header row
		}

		cells, err := rows.Columns()
		if err != nil {
			return ErrorSheetNotReadable(s.name, err)
		}

		row := make(Row, len(s.headers))
		for i, header := range s.headers {
			if i < len(cells) {
				row[header] = cells[i]
			} else {
				row[header] = ""
			}
		}

		if err := fn(index-1, row); err != nil {
			return err
		}
	}

	return rows.Error()
}

// Close releases the underlying workbook resources.
func (s *Sheet) Close() error {
	return s.file.Close()
}

func readHeaders(file *excelize.File, sheet string) ([]string, error) {
	rows, err := file.Rows(sheet)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return nil, rows.Error() // empty sheet yields no headers, not an error
	}

	cells, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	headers := make([]string, len(cells))
	for i, cell := range cells {
		headers[i] = strings.TrimSpace(cell)
	}

	return headers, nil
}
