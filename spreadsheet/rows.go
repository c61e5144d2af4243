package spreadsheet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rpupo63/company-rating-backend/errs"
)

// Column headers of the two exports.
const (
	ColumnCompany        = "COMPANY"
	ColumnProject        = "PROJECT"
	ColumnLocation       = "LOCATION"
	ColumnBusinessDomain = "Business Domain"
	ColumnTags           = "Tags"
	ColumnStipend        = "STIPEND"
)

var (
	MetadataColumns = []string{ColumnCompany, ColumnProject, ColumnLocation, ColumnBusinessDomain, ColumnTags}
	StipendColumns  = []string{ColumnCompany, ColumnStipend}
)

// MetadataRow is one line of the company/project export. Empty strings stand for null cells.
type MetadataRow struct {
	Line           int    `validate:"gt=1"`
	Company        string `validate:"max=256"`
	Project        string `validate:"max=256"`
	Location       string
	BusinessDomain string
	Tags           string
}

// StipendRow is one line of the stipend export. A nil Stipend is a blank cell.
type StipendRow struct {
	Line    int      `validate:"gt=1"`
	Company string   `validate:"max=256"`
	Stipend *float64 `validate:"omitnil,gte=0"`
}

var validate = validator.New()

// DecodeMetadata checks the metadata header and converts every row.
func DecodeMetadata(source string, sheet *Sheet) ([]MetadataRow, error) {
	if missing := sheet.MissingColumns(MetadataColumns...); len(missing) > 0 {
		return nil, errs.NewSchemaError(source, MetadataColumns)
	}

	rows := make([]MetadataRow, 0, len(sheet.Rows))
	for _, r := range sheet.Rows {
		row := MetadataRow{
			Line:           r.Line,
			Company:        r.Get(ColumnCompany).String(),
			Project:        r.Get(ColumnProject).String(),
			Location:       r.Get(ColumnLocation).String(),
			BusinessDomain: r.Get(ColumnBusinessDomain).String(),
			Tags:           r.Get(ColumnTags).String(),
		}
		if err := validateRow(source, row.Line, row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DecodeStipends checks the stipend header and converts every row. Non-numeric or negative stipends
// reject the whole sheet.
func DecodeStipends(source string, sheet *Sheet) ([]StipendRow, error) {
	if missing := sheet.MissingColumns(StipendColumns...); len(missing) > 0 {
		return nil, errs.NewSchemaError(source, StipendColumns)
	}

	rows := make([]StipendRow, 0, len(sheet.Rows))
	for _, r := range sheet.Rows {
		row := StipendRow{
			Line:    r.Line,
			Company: r.Get(ColumnCompany).String(),
		}
		cell := r.Get(ColumnStipend)
		if !cell.IsNull() {
			v, ok := cell.Float()
			if !ok {
				return nil, errs.NewInvalidRowError(source, r.Line, fmt.Sprintf("%s %q is not a number", ColumnStipend, cell.String()))
			}
			row.Stipend = &v
		}
		if err := validateRow(source, row.Line, row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func validateRow(source string, line int, row any) error {
	err := validate.Struct(row)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		reason := strings.TrimSpace(fmt.Sprintf("%s failed %s %s", fe.Field(), fe.Tag(), fe.Param()))
		return errs.NewInvalidRowError(source, line, reason)
	}
	return errs.NewInvalidRowError(source, line, err.Error())
}
