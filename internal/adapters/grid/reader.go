// Package grid reads the raw cell grid of an evaluation sheet from Google
// Sheets or a local workbook.
package grid

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/evalsheet/internal/domain/cell"
)

// ErrSourceUnavailable is returned when the spreadsheet or sheet cannot be
// opened or located. Reads are never retried.
var ErrSourceUnavailable = errors.New("source unavailable")

// Sheet is one read of a sheet: the title that was resolved and its cells
// as a rectangular grid.
type Sheet struct {
	Title string
	Cells cell.Grid
}

// Reader returns the full contents of one sheet.
type Reader interface {
	Read(ctx context.Context) (Sheet, error)
	// Describe names the source for logs, e.g. "sheets:<id>/<sheet>".
	Describe() string
}

// Source selects where the grid comes from. A nil SpreadsheetID means the
// ambient default, the local workbook at WorkbookPath; a nil SheetName means
// the first sheet.
type Source struct {
	SpreadsheetID   *string
	SheetName       *string
	WorkbookPath    string
	CredentialsFile string
	// Endpoint overrides the Sheets API base URL.
	Endpoint string
	// Location is the zone date serials are interpreted in.
	Location *time.Location
}

// Kind returns "sheets" or "workbook" depending on which reader Open picks.
func (s Source) Kind() string {
	if s.SpreadsheetID != nil && *s.SpreadsheetID != "" {
		return "sheets"
	}
	return "workbook"
}

// Label names the source the way the matching reader's Describe does,
// without opening it.
func (s Source) Label() string {
	var base string
	if s.Kind() == "sheets" {
		base = "sheets:" + *s.SpreadsheetID
	} else {
		base = "workbook:" + s.WorkbookPath
	}
	if name := s.sheetName(); name != "" {
		return base + "/" + name
	}
	return base
}

func (s Source) sheetName() string {
	if s.SheetName == nil {
		return ""
	}
	return *s.SheetName
}

func (s Source) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// Open builds the Reader selected by src.
func Open(ctx context.Context, src Source) (Reader, error) {
	if src.Kind() == "sheets" {
		return NewSheetsReader(ctx, src)
	}
	if src.WorkbookPath == "" {
		return nil, unavailable("no spreadsheet id or workbook path configured", nil)
	}
	return NewWorkbookReader(src), nil
}

// unavailable wraps cause with ErrSourceUnavailable and a readable message.
func unavailable(msg string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrSourceUnavailable, msg)
	}
	return fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, msg, cause)
}

// Static serves a fixed grid. It backs tests and the CLI's offline mode.
type Static struct {
	Grid cell.Grid
	Name string
	Err  error
}

// Read implements Reader. Name doubles as the sheet title.
func (s *Static) Read(_ context.Context) (Sheet, error) {
	if s.Err != nil {
		return Sheet{}, s.Err
	}
	return Sheet{Title: s.Name, Cells: cell.Rectangular(s.Grid)}, nil
}

// Describe implements Reader.
func (s *Static) Describe() string {
	if s.Name == "" {
		return "static"
	}
	return "static:" + s.Name
}

// serialEpoch is day zero of spreadsheet date serials (1900 date system).
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// serialToTime converts a date serial to a wall-clock time in loc.
func serialToTime(serial float64, loc *time.Location) time.Time {
	days := int(serial)
	secs := int((serial - float64(days)) * 86400)
	base := serialEpoch.AddDate(0, 0, days).Add(time.Duration(secs) * time.Second)
	return time.Date(base.Year(), base.Month(), base.Day(), base.Hour(), base.Minute(), base.Second(), 0, loc)
}
