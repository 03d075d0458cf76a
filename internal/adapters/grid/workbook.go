package grid

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/okian/evalsheet/internal/domain/cell"

	"github.com/xuri/excelize/v2"
)

// WorkbookReader reads one sheet of a local .xlsx workbook.
type WorkbookReader struct {
	path      string
	sheetName string
	loc       *time.Location
}

// NewWorkbookReader creates a reader for src.WorkbookPath.
func NewWorkbookReader(src Source) *WorkbookReader {
	return &WorkbookReader{
		path:      src.WorkbookPath,
		sheetName: src.sheetName(),
		loc:       src.location(),
	}
}

// Describe implements Reader.
func (r *WorkbookReader) Describe() string {
	if r.sheetName == "" {
		return "workbook:" + r.path
	}
	return "workbook:" + r.path + "/" + r.sheetName
}

// Read implements Reader. The workbook is opened and closed on every call.
func (r *WorkbookReader) Read(ctx context.Context) (Sheet, error) {
	if err := ctx.Err(); err != nil {
		return Sheet{}, err
	}

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return Sheet{}, unavailable("open workbook "+r.path, err)
	}
	defer func() { _ = f.Close() }()

	sheet, err := r.resolveSheet(f)
	if err != nil {
		return Sheet{}, err
	}

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return Sheet{}, unavailable("read sheet "+sheet, err)
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	rows := make([][]cell.Value, len(raw))
	for i, row := range raw {
		rows[i] = make([]cell.Value, len(row))
		for j, v := range row {
			rows[i][j] = r.convert(f, sheet, i, j, v, date1904)
		}
	}
	return Sheet{Title: sheet, Cells: cell.Rectangular(rows)}, nil
}

func (r *WorkbookReader) resolveSheet(f *excelize.File) (string, error) {
	if r.sheetName == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return "", unavailable("workbook has no sheets", nil)
		}
		return list[0], nil
	}
	idx, err := f.GetSheetIndex(r.sheetName)
	if err != nil || idx < 0 {
		return "", unavailable("sheet "+r.sheetName+" not found", err)
	}
	return r.sheetName, nil
}

// convert types one raw cell value using the cell type and number format.
func (r *WorkbookReader) convert(f *excelize.File, sheet string, row, col int, raw string, date1904 bool) cell.Value {
	if raw == "" {
		return cell.Empty()
	}
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return cell.Text(raw)
	}

	typ, _ := f.GetCellType(sheet, axis)
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula, excelize.CellTypeError:
		return cell.Text(raw)
	case excelize.CellTypeBool:
		if raw == "1" || strings.EqualFold(raw, "true") {
			return cell.Text("TRUE")
		}
		return cell.Text("FALSE")
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return cell.Date(time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, r.loc))
		}
		return cell.Text(raw)
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return cell.Text(raw)
	}
	if r.hasDateStyle(f, sheet, axis) {
		if t, err := excelize.ExcelDateToTime(n, date1904); err == nil {
			return cell.Date(time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, r.loc))
		}
	}
	return cell.Number(n)
}

func (r *WorkbookReader) hasDateStyle(f *excelize.File, sheet, axis string) bool {
	idx, err := f.GetCellStyle(sheet, axis)
	if err != nil || idx == 0 {
		return false
	}
	st, err := f.GetStyle(idx)
	if err != nil || st == nil {
		return false
	}
	if st.CustomNumFmt != nil {
		return isDatePattern(*st.CustomNumFmt)
	}
	return isBuiltinDateFormat(st.NumFmt)
}

// isBuiltinDateFormat reports whether a built-in number format id renders a
// date, including the CJK era and kanji date formats.
func isBuiltinDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 17, id == 22:
		return true
	case id >= 27 && id <= 36, id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDatePattern reports whether a custom format pattern contains a year or
// day token outside quoted literals and bracketed sections.
func isDatePattern(pattern string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, c := range pattern {
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '[':
			inBracket = true
		case c == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(c)
		}
	}
	p := strings.ToLower(b.String())
	return strings.ContainsAny(p, "yd") || strings.Contains(p, "ggg")
}
