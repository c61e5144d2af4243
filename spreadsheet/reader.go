package spreadsheet

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/extrame/xls"
	"github.com/rpupo63/company-rating-backend/errs"
	"github.com/xuri/excelize/v2"
)

// AllowedExtensions are the workbook formats Read understands.
var AllowedExtensions = []string{".xlsx", ".xls"}

// Allowed reports whether filename has an Excel extension.
func Allowed(filename string) bool {
	return slices.Contains(AllowedExtensions, strings.ToLower(filepath.Ext(filename)))
}

// Read parses the first worksheet of an Excel workbook. source names the upload in error messages.
func Read(source, filename string, r io.ReadSeeker) (*Sheet, error) {
	var (
		name    string
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		name, records, err = readXLSX(r)
	case ".xls":
		name, records, err = readXLS(r)
	default:
		return nil, errs.NewInvalidFileTypeError(source, filename, AllowedExtensions)
	}
	if err != nil {
		return nil, errs.NewParseError(source, err)
	}
	return NewSheet(name, records), nil
}

func readXLSX(r io.Reader) (string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, fmt.Errorf("workbook has no worksheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return "", nil, err
	}
	return sheets[0], rows, nil
}

func readXLS(r io.ReadSeeker) (name string, records [][]string, err error) {
	// the xls decoder panics on some malformed BIFF streams
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("decoding xls: %v", p)
		}
	}()

	wb, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return "", nil, err
	}
	if wb == nil {
		return "", nil, fmt.Errorf("no Workbook stream in xls file")
	}
	if wb.NumSheets() == 0 {
		return "", nil, fmt.Errorf("workbook has no worksheets")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return "", nil, fmt.Errorf("workbook has no worksheets")
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheetRow(sheet, i)
		if row == nil {
			records = append(records, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells[c] = row.Col(c)
		}
		records = append(records, cells)
	}
	return sheet.Name, records, nil
}

// sheetRow returns nil for rows the sheet has no record of; xls.WorkSheet.Row panics on them.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}
