package main

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

const (
	createFormDialog    = "createForm"
	editFormDialog      = "editForm"
	confirmDeleteDialog = "confirmDelete"

	jsonTag  = "json"
	jsonText = "{0} must be valid JSON"
)

var errCancelled = errors.New("cancelled")

// payloadForm is the raw input of a record form.
type payloadForm struct {
	Data string `json:"data" validate:"required,json"`
}

// formDialog collects the JSON object payload of a record, from its preset or from a prompt.
type formDialog struct {
	cli     *commandLine
	title   string
	preset  string
	payload map[string]interface{}
}

func (d *formDialog) Open() error {
	raw := d.preset
	if raw == "" {
		var err error
		if raw, err = d.cli.readLine(d.title + " (JSON object)"); err != nil {
			return err
		}
	}

	form := payloadForm{Data: strings.TrimSpace(raw)}
	if err := d.cli.validate.Struct(form); err != nil {
		return d.cli.validationMessage(err)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(form.Data), &payload); err != nil || len(payload) == 0 {
		return errors.New("data must be a non-empty JSON object")
	}
	d.payload = payload
	return nil
}

func (d *formDialog) Close() { d.payload = nil }

// confirmDialog asks a yes/no question; anything but yes cancels.
type confirmDialog struct {
	cli      *commandLine
	question string
	assume   bool
}

func (d *confirmDialog) Open() error {
	if d.assume {
		return nil
	}
	answer, err := d.cli.readLine(d.question + " [y/N]")
	if err != nil {
		return err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return nil
	default:
		return errCancelled
	}
}

func (d *confirmDialog) Close() {}
