package table

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cespare/xxhash/v2"

	"github.com/trezcool/preskool/core"
)

const (
	DefaultPageSize = 10
	PrevLabel       = "Previous"
	NextLabel       = "Next"
	notAvailable    = "N/A"
)

// PageSizes are the page sizes a Table accepts.
var PageSizes = []int{10, 20, 30}

type (
	// Row is anything that exposes flat, stringified fields.
	Row interface {
		Field(name string) (string, bool)
		FieldNames() []string
	}

	// Less reports whether a sorts before b.
	Less func(a, b Row) bool

	Column struct {
		Title     string
		DataIndex string
		Render    func(Row) string // defaults to the DataIndex field
		Sorter    Less             // defaults to ByText(DataIndex)
	}

	Option func(*Table)
)

// MapRow is a Row backed by a plain map.
type MapRow map[string]string

func (r MapRow) Field(name string) (string, bool) {
	v, ok := r[name]
	return v, ok
}

func (r MapRow) FieldNames() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByText compares the field case-insensitively.
func ByText(field string) Less {
	return func(a, b Row) bool {
		va, _ := a.Field(field)
		vb, _ := b.Field(field)
		return strings.ToLower(va) < strings.ToLower(vb)
	}
}

// ByNumber compares the field numerically, ignoring currency glyphs; non-numeric values sort last.
func ByNumber(field string) Less {
	return func(a, b Row) bool {
		na, okA := number(a, field)
		nb, okB := number(b, field)
		switch {
		case okA && okB:
			return na < nb
		case okA != okB:
			return okA
		}
		return false
	}
}

func number(row Row, field string) (float64, bool) {
	v, _ := row.Field(field)
	v = strings.TrimLeft(strings.TrimSpace(v), "₹$€£ ")
	n, err := strconv.ParseFloat(v, 64)
	return n, err == nil
}

// WithSelection shows the selection column.
func WithSelection(enabled bool) Option {
	return func(t *Table) { t.selection = enabled }
}

// WithPageSize sets the initial page size; sizes outside PageSizes are ignored.
func WithPageSize(n int) Option {
	return func(t *Table) { _ = t.SetPageSize(n) }
}

// Table holds the local presentation state of one list: search text, ordering, page and selection.
// It never performs I/O.
type Table struct {
	columns   []Column
	selection bool

	data     []Row
	rows     []Row // filtered + sorted
	search   string
	ordering []core.Ordering
	page     int
	pageSize int
	selected map[string]bool
}

func New(columns []Column, opts ...Option) *Table {
	t := &Table{
		columns:  columns,
		page:     1,
		pageSize: DefaultPageSize,
		selected: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Table) Columns() []Column { return t.columns }

func (t *Table) Selection() bool { return t.selection }

// SetDataSource replaces the rows; the search text stays applied and the selection is cleared.
func (t *Table) SetDataSource(rows []Row) {
	t.data = rows
	t.selected = make(map[string]bool)
	t.apply()
	t.clampPage()
}

// SetSearch filters the rows whose fields contain text, case-insensitively.
// The filter always runs over the full data source, so clearing it restores the original order.
func (t *Table) SetSearch(text string) {
	t.search = text
	t.page = 1
	t.apply()
}

func (t *Table) Search() string { return t.search }

// SortBy orders the rows; an ordering whose field is a column uses the column's sorter.
// Without orderings the data source order is kept.
func (t *Table) SortBy(ords ...core.Ordering) {
	t.ordering = ords
	t.apply()
}

func (t *Table) apply() {
	needle := strings.ToLower(t.search)
	rows := make([]Row, 0, len(t.data))
	for _, row := range t.data {
		if needle == "" || matches(row, needle) {
			rows = append(rows, row)
		}
	}

	if len(t.ordering) > 0 {
		sorters := make([]Less, len(t.ordering))
		for i, ord := range t.ordering {
			sorters[i] = t.sorter(ord.Field)
		}
		sort.SliceStable(rows, func(i, j int) bool {
			for k, less := range sorters {
				a, b := rows[i], rows[j]
				if !t.ordering[k].Ascending {
					a, b = b, a
				}
				if less(a, b) {
					return true
				}
				if less(b, a) {
					return false
				}
			}
			return false
		})
	}
	t.rows = rows
}

func (t *Table) sorter(field string) Less {
	for _, col := range t.columns {
		if col.DataIndex == field && col.Sorter != nil {
			return col.Sorter
		}
	}
	return ByText(field)
}

func matches(row Row, needle string) bool {
	for _, name := range row.FieldNames() {
		if v, ok := row.Field(name); ok && strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// Rows returns every row that passes the search, in display order.
func (t *Table) Rows() []Row { return t.rows }

func (t *Table) PageSize() int { return t.pageSize }

// SetPageSize changes the page size and goes back to the first page.
func (t *Table) SetPageSize(n int) error {
	for _, size := range PageSizes {
		if size == n {
			t.pageSize = n
			t.page = 1
			return nil
		}
	}
	return fmt.Errorf("invalid page size %d: must be one of %v", n, PageSizes)
}

func (t *Table) PageCount() int {
	if len(t.rows) == 0 {
		return 1
	}
	return (len(t.rows) + t.pageSize - 1) / t.pageSize
}

func (t *Table) CurrentPage() int { return t.page }

// Page moves to page n (1-based), clamped to the available pages.
func (t *Table) Page(n int) {
	t.page = n
	t.clampPage()
}

func (t *Table) Next() bool {
	if !t.HasNext() {
		return false
	}
	t.page++
	return true
}

func (t *Table) Prev() bool {
	if !t.HasPrev() {
		return false
	}
	t.page--
	return true
}

func (t *Table) HasNext() bool { return t.page < t.PageCount() }

func (t *Table) HasPrev() bool { return t.page > 1 }

func (t *Table) clampPage() {
	if t.page > t.PageCount() {
		t.page = t.PageCount()
	}
	if t.page < 1 {
		t.page = 1
	}
}

func (t *Table) bounds() (int, int) {
	start := (t.page - 1) * t.pageSize
	if start > len(t.rows) {
		start = len(t.rows)
	}
	end := start + t.pageSize
	if end > len(t.rows) {
		end = len(t.rows)
	}
	return start, end
}

// PageRows returns the rows of the current page.
func (t *Table) PageRows() []Row {
	start, end := t.bounds()
	return t.rows[start:end]
}

// Summary reads "X-Y of Z items".
func (t *Table) Summary() string {
	start, end := t.bounds()
	if end == 0 {
		return "0-0 of 0 items"
	}
	return fmt.Sprintf("%d-%d of %d items", start+1, end, len(t.rows))
}

// RowKey resolves a row's identity: its "key" field, else its "id", else a hash of its fields.
func RowKey(row Row) string {
	for _, name := range []string{"key", "id"} {
		if v, ok := row.Field(name); ok && v != "" {
			return v
		}
	}

	h := xxhash.New()
	for _, name := range row.FieldNames() {
		v, _ := row.Field(name)
		_, _ = h.WriteString(name)
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(v)
		_, _ = h.WriteString("\x00")
	}
	return fmt.Sprintf("row-%016x", h.Sum64())
}

// Toggle flips the selection of a row on the current page and reports whether it is now selected.
// It is a no-op when selection is disabled or the row is not rendered.
func (t *Table) Toggle(key string) bool {
	if !t.selection || !t.rendered(key) {
		return false
	}
	if t.selected[key] {
		delete(t.selected, key)
		return false
	}
	t.selected[key] = true
	return true
}

// SelectPage selects every row of the current page.
func (t *Table) SelectPage() {
	if !t.selection {
		return
	}
	for _, row := range t.PageRows() {
		t.selected[RowKey(row)] = true
	}
}

func (t *Table) ClearSelection() {
	t.selected = make(map[string]bool)
}

func (t *Table) IsSelected(key string) bool { return t.selected[key] }

// SelectedKeys returns the selected keys in display order.
func (t *Table) SelectedKeys() []string {
	keys := make([]string, 0, len(t.selected))
	for _, row := range t.rows {
		if key := RowKey(row); t.selected[key] {
			keys = append(keys, key)
		}
	}
	return keys
}

func (t *Table) rendered(key string) bool {
	for _, row := range t.PageRows() {
		if RowKey(row) == key {
			return true
		}
	}
	return false
}

// Cell renders one cell of row.
func (col Column) Cell(row Row) string {
	if col.Render != nil {
		return col.Render(row)
	}
	if v, ok := row.Field(col.DataIndex); ok && v != "" {
		return v
	}
	return notAvailable
}

// Render writes the current page as aligned text, followed by the summary and the pager.
func (t *Table) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	header := make([]string, 0, len(t.columns)+1)
	if t.selection {
		header = append(header, "[ ]")
	}
	for _, col := range t.columns {
		header = append(header, strings.ToUpper(col.Title))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return err
	}

	for _, row := range t.PageRows() {
		cells := make([]string, 0, len(t.columns)+1)
		if t.selection {
			box := "[ ]"
			if t.selected[RowKey(row)] {
				box = "[x]"
			}
			cells = append(cells, box)
		}
		for _, col := range t.columns {
			cells = append(cells, oneLine(col.Cell(row)))
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	prev, next := PrevLabel, NextLabel
	if !t.HasPrev() {
		prev = "(" + prev + ")"
	}
	if !t.HasNext() {
		next = "(" + next + ")"
	}
	_, err := fmt.Fprintf(w, "\n%s  %s  page %d/%d  %s  [%d / page]\n",
		t.Summary(), prev, t.page, t.PageCount(), next, t.pageSize)
	return err
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
