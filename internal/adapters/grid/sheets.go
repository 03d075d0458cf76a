package grid

import (
	"context"
	"strings"
	"time"

	"github.com/okian/evalsheet/internal/domain/cell"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// gridFields limits the Sheets response to what the reader needs.
const gridFields = "sheets(properties(title),data(startRow,startColumn,rowData(values(effectiveValue,formattedValue,effectiveFormat/numberFormat))))"

// SheetsReader reads one sheet through the Google Sheets API, keeping the
// type of every cell: numbers, text and date-formatted serials.
type SheetsReader struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	loc           *time.Location
}

// NewSheetsReader creates a Sheets API client for src. Extra client options
// are appended after the ones derived from src.
func NewSheetsReader(ctx context.Context, src Source, opts ...option.ClientOption) (*SheetsReader, error) {
	if src.SpreadsheetID == nil || *src.SpreadsheetID == "" {
		return nil, unavailable("spreadsheet id is required", nil)
	}

	clientOpts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}
	if src.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(src.CredentialsFile))
	}
	if src.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(src.Endpoint))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, unavailable("create sheets client", err)
	}
	return &SheetsReader{
		svc:           svc,
		spreadsheetID: *src.SpreadsheetID,
		sheetName:     src.sheetName(),
		loc:           src.location(),
	}, nil
}

// Describe implements Reader.
func (r *SheetsReader) Describe() string {
	if r.sheetName == "" {
		return "sheets:" + r.spreadsheetID
	}
	return "sheets:" + r.spreadsheetID + "/" + r.sheetName
}

// Read implements Reader.
func (r *SheetsReader) Read(ctx context.Context) (Sheet, error) {
	call := r.svc.Spreadsheets.Get(r.spreadsheetID).
		IncludeGridData(true).
		Fields(googleapi.Field(gridFields)).
		Context(ctx)
	if r.sheetName != "" {
		call = call.Ranges(quoteSheetName(r.sheetName))
	}

	ss, err := call.Do()
	if err != nil {
		return Sheet{}, unavailable("open spreadsheet "+r.spreadsheetID, err)
	}
	sheet := r.pick(ss)
	if sheet == nil {
		if r.sheetName != "" {
			return Sheet{}, unavailable("sheet "+r.sheetName+" not found", nil)
		}
		return Sheet{}, unavailable("spreadsheet has no sheets", nil)
	}
	title := r.sheetName
	if sheet.Properties != nil {
		title = sheet.Properties.Title
	}

	var rows [][]cell.Value
	for _, data := range sheet.Data {
		if data == nil {
			continue
		}
		for i, rd := range data.RowData {
			rowIdx := int(data.StartRow) + i
			for len(rows) <= rowIdx {
				rows = append(rows, nil)
			}
			if rd == nil {
				continue
			}
			for j, cd := range rd.Values {
				colIdx := int(data.StartColumn) + j
				for len(rows[rowIdx]) <= colIdx {
					rows[rowIdx] = append(rows[rowIdx], cell.Empty())
				}
				rows[rowIdx][colIdx] = r.convert(cd)
			}
		}
	}
	return Sheet{Title: title, Cells: cell.Rectangular(rows)}, nil
}

// pick returns the requested sheet, or the first one when no name is set.
func (r *SheetsReader) pick(ss *sheets.Spreadsheet) *sheets.Sheet {
	for _, sh := range ss.Sheets {
		if sh == nil {
			continue
		}
		if r.sheetName == "" {
			return sh
		}
		if sh.Properties != nil && sh.Properties.Title == r.sheetName {
			return sh
		}
	}
	return nil
}

// convert maps one API cell onto the cell union.
func (r *SheetsReader) convert(cd *sheets.CellData) cell.Value {
	if cd == nil || cd.EffectiveValue == nil {
		return cell.Empty()
	}
	ev := cd.EffectiveValue
	switch {
	case ev.NumberValue != nil:
		if isDateFormat(cd.EffectiveFormat) {
			return cell.Date(serialToTime(*ev.NumberValue, r.loc))
		}
		return cell.Number(*ev.NumberValue)
	case ev.StringValue != nil:
		return cell.Text(*ev.StringValue)
	case ev.BoolValue != nil:
		if *ev.BoolValue {
			return cell.Text("TRUE")
		}
		return cell.Text("FALSE")
	case ev.ErrorValue != nil:
		// Show what the sheet shows, e.g. "#DIV/0!" rather than DIVIDE_BY_ZERO.
		if cd.FormattedValue != "" {
			return cell.Text(cd.FormattedValue)
		}
		return cell.Text("#" + ev.ErrorValue.Type)
	}
	return cell.Empty()
}

func isDateFormat(f *sheets.CellFormat) bool {
	if f == nil || f.NumberFormat == nil {
		return false
	}
	switch f.NumberFormat.Type {
	case "DATE", "DATE_TIME":
		return true
	}
	return false
}

// quoteSheetName renders a sheet title as an A1 range covering the sheet.
func quoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
