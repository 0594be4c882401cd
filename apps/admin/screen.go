package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/preskool/core/entity"
	"github.com/trezcool/preskool/core/listing"
	"github.com/trezcool/preskool/core/selector"
	"github.com/trezcool/preskool/core/table"
	"github.com/trezcool/preskool/services/api"
)

const classRoomsEntity = "classrooms"

// screen is one entity list: the store fetching it and the table presenting it.
type screen struct {
	schema *entity.Schema
	store  *listing.Store
	table  *table.Table
	filter string // human description of the params
}

func (cli *commandLine) newScreen(client *api.Client, schema *entity.Schema, params listing.Params, selection bool) (*screen, error) {
	if cli.conf.Table.Currency != "" {
		schema = schema.WithCurrency(cli.conf.Table.Currency)
	}
	sc := &screen{
		schema: schema,
		table:  table.New(columns(schema), table.WithSelection(selection), table.WithPageSize(cli.conf.Table.PageSize)),
	}

	res := client.Resource(schema.Name)
	store, err := listing.NewStore(
		schema.Name,
		res,
		entity.NewNormalizer(schema, cli.logger, cli.conf.Debug),
		listing.WithMutator(res),
		listing.WithParams(params),
		listing.WithLogger(cli.logger),
		listing.WithTimeout(cli.conf.API.Timeout),
		listing.OnChange(sc.onChange),
	)
	if err != nil {
		return nil, err
	}
	sc.store = store
	return sc, nil
}

func columns(schema *entity.Schema) []table.Column {
	cols := make([]table.Column, 0, len(schema.Fields)+1)
	cols = append(cols, table.Column{Title: "ID", DataIndex: "id"})
	for _, f := range schema.Fields {
		col := table.Column{Title: f.Title, DataIndex: f.Name}
		if f.Kind == entity.Money || f.Kind == entity.Count {
			col.Sorter = table.ByNumber(f.Name)
		}
		cols = append(cols, col)
	}
	return cols
}

func (sc *screen) onChange(st listing.State) {
	if st.Loading {
		return
	}
	rows := make([]table.Row, len(st.Items))
	for i, item := range st.Items {
		rows[i] = item
	}
	sc.table.SetDataSource(rows)
}

func (sc *screen) close() {
	sc.store.Close()
}

func (sc *screen) render(w io.Writer) error {
	title := sc.schema.Title
	if sc.filter != "" {
		title += " (" + sc.filter + ")"
	}
	if _, err := fmt.Fprintf(w, "%s\n%s\n", title, strings.Repeat("=", len([]rune(title)))); err != nil {
		return err
	}
	if st := sc.store.State(); st.Error.Valid {
		if _, err := fmt.Fprintf(w, "error: %s\n", st.Error.String); err != nil {
			return err
		}
	}
	return sc.table.Render(w)
}

// pageRows returns the rows of the current page in their normalized form.
func (sc *screen) pageRows() []entity.ViewRow {
	rows := sc.table.PageRows()
	out := make([]entity.ViewRow, 0, len(rows))
	for _, row := range rows {
		if vr, ok := row.(entity.ViewRow); ok {
			out = append(out, vr)
		}
	}
	return out
}

// chooseClassRoom resolves a class room by id or room number through a Select fed with the class room list.
func (cli *commandLine) chooseClassRoom(ctx context.Context, client *api.Client, value string) (selector.Option, error) {
	schema := entity.MustLookup(classRoomsEntity)
	store, err := listing.NewStore(schema.Name, client.Resource(schema.Name), schema, listing.WithLogger(cli.logger))
	if err != nil {
		return selector.Option{}, err
	}
	defer store.Close()
	if err = store.Refetch(ctx); err != nil {
		return selector.Option{}, errors.Wrap(err, "loading class rooms")
	}

	items := store.State().Items
	opts := make([]selector.Option, 0, len(items))
	for _, item := range items {
		label, _ := item.Field("roomNo")
		opts = append(opts, selector.Option{Value: item.Key, Label: label})
	}

	sel := selector.New(selector.Props{Options: opts})
	if err = sel.Choose(null.StringFrom(value)); err != nil {
		if err = sel.ChooseLabel(value); err != nil {
			labels := make([]string, len(opts))
			for i, opt := range opts {
				labels[i] = opt.Label
			}
			return selector.Option{}, errors.Errorf("unknown class room %q; choose one of %s", value, strings.Join(labels, ", "))
		}
	}
	opt, _ := sel.Selected()
	return opt, nil
}
