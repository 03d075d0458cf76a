// Package inspect renders a human-readable dump of a sheet's layout, used to
// check that the fixed row and column positions still match the sheet.
package inspect

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/okian/evalsheet/internal/domain/cell"
)

// Dump window defaults: the header block and the rows around the total row.
const (
	HeadRows    = 10
	HeadColumns = 6
	TailFirst   = 19
	TailLast    = 25
	TailColumns = 4
)

// Row is one dumped row. Number is 1-based as shown in spreadsheet UIs.
type Row struct {
	Number int      `json:"number"`
	Cells  []string `json:"cells"`
}

// Structure summarises a grid for layout debugging.
type Structure struct {
	Sheet   string `json:"sheet"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Head    []Row  `json:"head"`
	Tail    []Row  `json:"tail"`
}

// Describe dumps the first HeadRows rows (columns A-F) and rows 20-25
// (columns A-D) of g. Rows past the end of the grid are omitted.
func Describe(sheet string, g cell.Grid, loc *time.Location) Structure {
	s := Structure{
		Sheet:   sheet,
		Rows:    len(g),
		Columns: g.Width(),
		Head:    []Row{},
		Tail:    []Row{},
	}
	for i := 0; i < HeadRows && g.HasRow(i); i++ {
		s.Head = append(s.Head, dumpRow(g, i, HeadColumns, loc))
	}
	for i := TailFirst; i < TailLast && g.HasRow(i); i++ {
		s.Tail = append(s.Tail, dumpRow(g, i, TailColumns, loc))
	}
	return s
}

func dumpRow(g cell.Grid, row, cols int, loc *time.Location) Row {
	r := Row{Number: row + 1, Cells: make([]string, cols)}
	for c := 0; c < cols; c++ {
		r.Cells[c] = cell.TextOr(g.At(row, c), loc, "")
	}
	return r
}

// WriteText prints s in the sheet debugging layout.
func (s Structure) WriteText(w io.Writer) error {
	var b strings.Builder
	b.WriteString("=== シート情報 ===\n")
	fmt.Fprintf(&b, "シート名: %s\n", s.Sheet)
	fmt.Fprintf(&b, "行数: %d\n", s.Rows)
	fmt.Fprintf(&b, "列数: %d\n", s.Columns)

	b.WriteString("\n=== 最初の10行の内容（A-F列） ===\n")
	for _, r := range s.Head {
		writeRow(&b, r)
	}

	b.WriteString("\n=== 行20-25の内容（合計行を探す） ===\n")
	for _, r := range s.Tail {
		writeRow(&b, r)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeRow(b *strings.Builder, r Row) {
	fmt.Fprintf(b, "行%d:", r.Number)
	for i, v := range r.Cells {
		fmt.Fprintf(b, " [%s]%s", columnName(i), v)
	}
	b.WriteByte('\n')
}

// columnName converts a 0-based index to a spreadsheet column letter.
func columnName(i int) string {
	name := ""
	for i++; i > 0; i = (i - 1) / 26 {
		name = string(rune('A'+(i-1)%26)) + name
	}
	return name
}
