package main

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/preskool/core"
	"github.com/trezcool/preskool/core/dialog"
	"github.com/trezcool/preskool/core/entity"
	"github.com/trezcool/preskool/core/listing"
)

func (cli *commandLine) runList(args []string) error {
	name, args, ok := entityArgs(args)
	listCmd := cli.flagSet("list")
	search := listCmd.String("search", "", "Only the rows containing this text.")
	sortBy := listCmd.String("sort", "", "Comma separated fields to sort by; a '-' prefix sorts descending.")
	desc := listCmd.Bool("desc", false, "Reverse every sort field.")
	page := listCmd.Int("page", 1, "The page to show.")
	size := listCmd.Int("size", cli.conf.Table.PageSize, "The page size: 10, 20 or 30.")
	selectPage := listCmd.Bool("select", false, "Select every row of the page.")
	classRoom := listCmd.String("class", "", "Only the records of this class room (id or room no).")
	asJSON := listCmd.Bool("json", false, "Print the rows of the page as JSON.")
	if err := cli.parse(listCmd, args); err != nil {
		return err
	}
	if !ok {
		listCmd.Usage()
		return errHelp
	}

	schema, err := entity.Lookup(name)
	if err != nil {
		return err
	}
	client, err := cli.client()
	if err != nil {
		return err
	}
	ctx, cancel := cli.context()
	defer cancel()

	params := make(listing.Params)
	var filter string
	if *classRoom != "" {
		opt, err := cli.chooseClassRoom(ctx, client, *classRoom)
		if err != nil {
			return err
		}
		params["class_id"] = opt.Value
		filter = "class room " + opt.Label
	}

	sc, err := cli.newScreen(client, schema, params, *selectPage)
	if err != nil {
		return err
	}
	defer sc.close()
	sc.filter = filter

	if err = sc.store.Refetch(ctx); err != nil {
		return err
	}

	sc.table.SetSearch(*search)
	ords := core.ParseOrderings(*sortBy)
	if *desc {
		for i := range ords {
			ords[i].Ascending = !ords[i].Ascending
		}
	}
	if err = checkOrderings(sc, ords); err != nil {
		return err
	}
	sc.table.SortBy(ords...)
	if err = sc.table.SetPageSize(*size); err != nil {
		return err
	}
	sc.table.Page(*page)
	sc.table.SelectPage()

	if *asJSON {
		data, err := json.MarshalIndent(sc.pageRows(), "", "  ")
		if err != nil {
			return errors.Wrap(err, "encoding rows")
		}
		cli.println(string(data))
		return nil
	}
	if err = sc.render(cli.out); err != nil {
		return err
	}
	if *selectPage {
		cli.printf("selected: %s\n", strings.Join(sc.table.SelectedKeys(), ", "))
	}
	return nil
}

// checkOrderings rejects sort fields the entity does not display.
func checkOrderings(sc *screen, ords []core.Ordering) error {
	known := make([]string, 0, len(sc.table.Columns()))
	for _, col := range sc.table.Columns() {
		known = append(known, col.DataIndex)
	}
	for _, ord := range ords {
		found := false
		for _, name := range known {
			if name == ord.Field {
				found = true
				break
			}
		}
		if !found {
			return errors.Errorf("cannot sort %s by %q; fields are %s", sc.schema.Name, ord.Field, strings.Join(known, ", "))
		}
	}
	return nil
}

// runMutation runs create, update and delete: a dialog collects the input, the store writes and refreshes.
func (cli *commandLine) runMutation(action string, args []string) error {
	name, args, ok := entityArgs(args)
	cmd := cli.flagSet(action)
	var id, data *string
	var yes *bool
	if action != "create" {
		id = cmd.String("id", "", "The record id.")
	}
	if action != "delete" {
		data = cmd.String("data", "", "The record as a JSON object; prompted when omitted.")
	} else {
		yes = cmd.Bool("yes", false, "Do not ask for confirmation.")
	}
	if err := cli.parse(cmd, args); err != nil {
		return err
	}
	if !ok || (id != nil && *id == "") {
		cmd.Usage()
		return errHelp
	}

	schema, err := entity.Lookup(name)
	if err != nil {
		return err
	}
	client, err := cli.client()
	if err != nil {
		return err
	}
	ctx, cancel := cli.context()
	defer cancel()

	sc, err := cli.newScreen(client, schema, nil, false)
	if err != nil {
		return err
	}
	defer sc.close()

	var (
		dialogID string
		write    func() error
	)
	switch action {
	case "create":
		form := &formDialog{cli: cli, title: "New " + schema.Title, preset: *data}
		dialogID = createFormDialog
		cli.dialogs.Register(dialogID, form)
		write = func() error { return sc.store.Create(ctx, form.payload) }
	case "update":
		form := &formDialog{cli: cli, title: "Edit " + schema.Title + " " + *id, preset: *data}
		dialogID = editFormDialog
		cli.dialogs.Register(dialogID, form)
		write = func() error { return sc.store.Update(ctx, *id, form.payload) }
	default:
		dialogID = confirmDeleteDialog
		cli.dialogs.Register(dialogID, &confirmDialog{cli: cli, question: "Delete " + schema.Title + " " + *id + "?", assume: *yes})
		write = func() error { return sc.store.Delete(ctx, *id) }
	}

	if err = cli.submit(cli.dialogs, dialogID, write); err != nil {
		return err
	}
	cli.printf("%s: %s done.\n\n", schema.Title, action)
	return sc.render(cli.out)
}

// submit opens a dialog and performs write once it was filled in; the dialog is hidden either way.
func (cli *commandLine) submit(dialogs dialog.Controller, id string, write func() error) error {
	defer func() { _ = dialogs.Hide(id) }()
	if err := dialogs.Show(id); err != nil {
		return err
	}
	return write()
}
