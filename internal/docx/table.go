package docx

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
)

var (
	ErrTableOutOfRange = errors.New("table index out of range")
	ErrRowOutOfRange   = errors.New("row index out of range")
	ErrCellOutOfRange  = errors.New("cell index out of range")
	ErrCellOmitted     = errors.New("cell position is omitted by gridBefore")
	ErrBrokenMerge     = errors.New("vertical merge has no origin cell")
)

// IndexError reports an index past the end of a table, row or cell list.
type IndexError struct {
	Err   error
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%v: index %d, length %d", e.Err, e.Index, e.Len)
}

func (e *IndexError) Unwrap() error { return e.Err }

// Table is a w:tbl element.
type Table struct {
	el *etree.Element
}

// Rows returns the w:tr children of the table.
func (t *Table) Rows() []*Row {
	trs := wordChildren(t.el, "tr")
	rows := make([]*Row, len(trs))
	for i, tr := range trs {
		rows[i] = &Row{el: tr, table: t, index: i}
	}
	return rows
}

// Row returns row i.
func (t *Table) Row(i int) (*Row, error) {
	rows := t.Rows()
	if i < 0 || i >= len(rows) {
		return nil, &IndexError{Err: ErrRowOutOfRange, Index: i, Len: len(rows)}
	}
	return rows[i], nil
}

// Row is a w:tr element.
type Row struct {
	el    *etree.Element
	table *Table
	index int
}

// Cells returns one entry per grid column covered by the row. A cell spanning
// several grid columns appears once per column. Positions skipped with
// w:gridBefore are nil. A vertically merged continuation cell resolves to the
// cell where the merge starts.
func (r *Row) Cells() ([]*Cell, error) {
	var cells []*Cell
	for i := 0; i < r.gridBefore(); i++ {
		cells = append(cells, nil)
	}
	for _, tc := range wordChildren(r.el, "tc") {
		if isVMergeContinue(tc) {
			origin, err := r.mergeOrigin(len(cells))
			if err != nil {
				return nil, err
			}
			for i := 0; i < gridSpan(tc); i++ {
				cells = append(cells, origin)
			}
			continue
		}
		cell := &Cell{el: tc}
		for i := 0; i < gridSpan(tc); i++ {
			cells = append(cells, cell)
		}
	}
	return cells, nil
}

// Cell returns the cell at grid column i.
func (r *Row) Cell(i int) (*Cell, error) {
	cells, err := r.Cells()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(cells) {
		return nil, &IndexError{Err: ErrCellOutOfRange, Index: i, Len: len(cells)}
	}
	if cells[i] == nil {
		return nil, fmt.Errorf("%w: column %d", ErrCellOmitted, i)
	}
	return cells[i], nil
}

// mergeOrigin finds the cell starting at grid offset in the row above and
// follows it upwards while it is itself a merge continuation.
func (r *Row) mergeOrigin(offset int) (*Cell, error) {
	if r.index == 0 {
		return nil, fmt.Errorf("%w: row %d column %d", ErrBrokenMerge, r.index, offset)
	}
	above, err := r.table.Row(r.index - 1)
	if err != nil {
		return nil, err
	}
	cells, err := above.Cells()
	if err != nil {
		return nil, err
	}
	if offset >= len(cells) || cells[offset] == nil {
		return nil, fmt.Errorf("%w: row %d column %d", ErrBrokenMerge, r.index, offset)
	}
	return cells[offset], nil
}

func (r *Row) gridBefore() int {
	trPr := firstWordChild(r.el, "trPr")
	if trPr == nil {
		return 0
	}
	return intVal(firstWordChild(trPr, "gridBefore"), 0)
}

func gridSpan(tc *etree.Element) int {
	tcPr := firstWordChild(tc, "tcPr")
	if tcPr == nil {
		return 1
	}
	if n := intVal(firstWordChild(tcPr, "gridSpan"), 1); n > 0 {
		return n
	}
	return 1
}

func isVMergeContinue(tc *etree.Element) bool {
	tcPr := firstWordChild(tc, "tcPr")
	if tcPr == nil {
		return false
	}
	vMerge := firstWordChild(tcPr, "vMerge")
	if vMerge == nil {
		return false
	}
	val := wordAttr(vMerge, "val")
	return val == "" || val == "continue"
}

func intVal(el *etree.Element, def int) int {
	if el == nil {
		return def
	}
	n, err := strconv.Atoi(wordAttr(el, "val"))
	if err != nil {
		return def
	}
	return n
}
