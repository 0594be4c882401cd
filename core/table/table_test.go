package table

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/preskool/core"
)

var columns = []Column{
	{Title: "ID", DataIndex: "id"},
	{Title: "Name", DataIndex: "name"},
	{Title: "Fee", DataIndex: "fee", Sorter: ByNumber("fee")},
}

func ids(rows []Row) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i], _ = row.Field("id")
	}
	return out
}

func numbered(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = MapRow{"id": fmt.Sprint(i + 1), "name": fmt.Sprintf("Row %d", i+1)}
	}
	return rows
}

func TestSearch(t *testing.T) {
	tbl := New(columns)
	tbl.SetDataSource([]Row{
		MapRow{"id": "1", "name": "Alpha"},
		MapRow{"id": "2", "name": "Beta"},
	})

	tbl.SetSearch("alp")
	assert.Equal(t, []string{"1"}, ids(tbl.Rows()))

	tbl.SetSearch("")
	assert.Equal(t, []string{"1", "2"}, ids(tbl.Rows()))

	tests := []struct {
		search string
		want   []string
	}{
		{search: "ALPHA", want: []string{"1"}},
		{search: "a", want: []string{"1", "2"}},
		{search: "2", want: []string{"2"}},
		{search: "gamma", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			tbl.SetSearch(tt.search)
			assert.Equal(t, tt.want, ids(tbl.Rows()))
		})
	}
}

func TestSearch_SurvivesNewDataSource(t *testing.T) {
	tbl := New(columns)
	tbl.SetDataSource([]Row{MapRow{"id": "1", "name": "Alpha"}})
	tbl.SetSearch("beta")
	assert.Empty(t, tbl.Rows())

	tbl.SetDataSource([]Row{
		MapRow{"id": "3", "name": "Beta"},
		MapRow{"id": "4", "name": "Gamma"},
		MapRow{"id": "5", "name": "beta blocker"},
	})
	assert.Equal(t, "beta", tbl.Search())
	assert.Equal(t, []string{"3", "5"}, ids(tbl.Rows()))
}

func TestSortBy(t *testing.T) {
	tbl := New(columns)
	tbl.SetDataSource([]Row{
		MapRow{"id": "1", "name": "beta", "fee": "₹1200"},
		MapRow{"id": "2", "name": "Alpha", "fee": "₹300"},
		MapRow{"id": "3", "name": "alpha", "fee": "N/A"},
	})

	tbl.SortBy(core.ParseOrderings("name")...)
	assert.Equal(t, []string{"2", "3", "1"}, ids(tbl.Rows()), "stable, case-insensitive")

	tbl.SortBy(core.ParseOrderings("-name")...)
	assert.Equal(t, []string{"1", "2", "3"}, ids(tbl.Rows()))

	tbl.SortBy(core.ParseOrderings("fee")...)
	assert.Equal(t, []string{"2", "1", "3"}, ids(tbl.Rows()), "numeric, N/A last")

	tbl.SortBy(core.ParseOrderings("name,-id")...)
	assert.Equal(t, []string{"3", "2", "1"}, ids(tbl.Rows()))

	tbl.SortBy()
	assert.Equal(t, []string{"1", "2", "3"}, ids(tbl.Rows()))
}

func TestPagination(t *testing.T) {
	tbl := New(columns)
	assert.Equal(t, "0-0 of 0 items", tbl.Summary())
	assert.Empty(t, tbl.PageRows())
	assert.Equal(t, 1, tbl.PageCount())

	tbl.SetDataSource(numbered(25))
	assert.Equal(t, DefaultPageSize, tbl.PageSize())
	assert.Equal(t, "1-10 of 25 items", tbl.Summary())
	assert.False(t, tbl.HasPrev())

	require.True(t, tbl.Next())
	require.True(t, tbl.Next())
	assert.False(t, tbl.Next())
	assert.Equal(t, "21-25 of 25 items", tbl.Summary())
	assert.Len(t, tbl.PageRows(), 5)

	tbl.Page(99)
	assert.Equal(t, 3, tbl.CurrentPage())
	tbl.Page(-1)
	assert.Equal(t, 1, tbl.CurrentPage())

	require.NoError(t, tbl.SetPageSize(20))
	assert.Equal(t, "1-20 of 25 items", tbl.Summary())
	assert.Error(t, tbl.SetPageSize(15))
	assert.Equal(t, 20, tbl.PageSize())

	tbl.Page(2)
	tbl.SetDataSource(numbered(5))
	assert.Equal(t, 1, tbl.CurrentPage())
	assert.Equal(t, "1-5 of 5 items", tbl.Summary())

	tbl = New(columns, WithPageSize(30))
	assert.Equal(t, 30, tbl.PageSize())
}

func TestRowKey(t *testing.T) {
	assert.Equal(t, "k", RowKey(MapRow{"key": "k", "id": "1"}))
	assert.Equal(t, "1", RowKey(MapRow{"key": "", "id": "1"}))

	a := RowKey(MapRow{"name": "Alpha", "fee": "1"})
	assert.True(t, strings.HasPrefix(a, "row-"))
	assert.Equal(t, a, RowKey(MapRow{"fee": "1", "name": "Alpha"}), "deterministic")
	assert.NotEqual(t, a, RowKey(MapRow{"name": "Alpha", "fee": "2"}))
}

func TestSelection(t *testing.T) {
	tbl := New(columns)
	tbl.SetDataSource(numbered(3))
	assert.False(t, tbl.Toggle("1"), "disabled")
	tbl.SelectPage()
	assert.Empty(t, tbl.SelectedKeys())

	tbl = New(columns, WithSelection(true))
	tbl.SetDataSource(numbered(15))

	assert.True(t, tbl.Toggle("2"))
	assert.True(t, tbl.Toggle("1"))
	assert.False(t, tbl.Toggle("12"), "not on the current page")
	assert.Equal(t, []string{"1", "2"}, tbl.SelectedKeys())

	assert.False(t, tbl.Toggle("2"))
	assert.Equal(t, []string{"1"}, tbl.SelectedKeys())

	tbl.SetSearch("Row 1")
	assert.True(t, tbl.IsSelected("1"), "search keeps the selection")

	tbl.SetSearch("")
	tbl.SelectPage()
	assert.Len(t, tbl.SelectedKeys(), 10)

	tbl.SetDataSource(numbered(15))
	assert.Empty(t, tbl.SelectedKeys(), "new data clears the selection")

	tbl.SelectPage()
	tbl.ClearSelection()
	assert.Empty(t, tbl.SelectedKeys())
}

func TestRender(t *testing.T) {
	cols := append([]Column{}, columns...)
	cols = append(cols, Column{Title: "Upper", Render: func(r Row) string {
		v, _ := r.Field("name")
		return strings.ToUpper(v)
	}})
	tbl := New(cols, WithSelection(true))
	tbl.SetDataSource([]Row{
		MapRow{"id": "1", "name": "Alpha", "fee": "₹450"},
		MapRow{"id": "2", "name": "Beta\nsecond line"},
	})
	tbl.Toggle("1")

	var buf bytes.Buffer
	require.NoError(t, tbl.Render(&buf))
	out := buf.String()

	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "UPPER")
	assert.Contains(t, out, "[x]  1")
	assert.Contains(t, out, "Beta second line")
	assert.Contains(t, out, "N/A")
	assert.Contains(t, out, "ALPHA")
	assert.Contains(t, out, "1-2 of 2 items")
	assert.Contains(t, out, "(Previous)")
	assert.Contains(t, out, "(Next)")

	buf.Reset()
	empty := New(columns)
	require.NoError(t, empty.Render(&buf))
	assert.Contains(t, buf.String(), "0-0 of 0 items")
}
