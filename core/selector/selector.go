package selector

import (
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

// ErrUnknownOption is returned when choosing a value no option carries.
var ErrUnknownOption = errors.New("unknown option")

type (
	Option struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}

	// Props configure a Select.
	// A nil Value leaves the Select uncontrolled, seeded from DefaultValue;
	// a non-nil Value (even null) makes it controlled.
	Props struct {
		Options      []Option
		DefaultValue null.String
		Value        *null.String
		OnChange     func(null.String)
	}
)

// Select is a single-selection control over a fixed option list.
type Select struct {
	props    Props
	selected null.String
}

func New(props Props) *Select {
	sel := &Select{props: props}
	if props.Value != nil {
		sel.selected = sel.resolve(*props.Value)
	} else {
		sel.selected = sel.resolve(props.DefaultValue)
	}
	return sel
}

// Controlled reports whether the selection is driven by Props.Value.
func (sel *Select) Controlled() bool {
	return sel.props.Value != nil
}

// Update re-renders the Select with new props.
// A controlled Select follows every Value; an uncontrolled one resets when DefaultValue changes.
func (sel *Select) Update(props Props) {
	prev := sel.props
	sel.props = props

	switch {
	case props.Value != nil:
		sel.selected = sel.resolve(*props.Value)
	case prev.Value != nil || prev.DefaultValue != props.DefaultValue:
		sel.selected = sel.resolve(props.DefaultValue)
	default:
		// keep the selection if it is still an option
		sel.selected = sel.resolve(sel.selected)
	}
}

// Choose selects value as the user would, then reports it through OnChange.
// A null value clears the selection.
func (sel *Select) Choose(value null.String) error {
	if value.Valid && !sel.has(value.String) {
		return errors.Wrapf(ErrUnknownOption, "choosing %q", value.String)
	}
	sel.selected = value
	if sel.props.OnChange != nil {
		sel.props.OnChange(value)
	}
	return nil
}

// ChooseLabel is Choose by option label.
func (sel *Select) ChooseLabel(label string) error {
	for _, opt := range sel.props.Options {
		if opt.Label == label {
			return sel.Choose(null.StringFrom(opt.Value))
		}
	}
	return errors.Wrapf(ErrUnknownOption, "choosing label %q", label)
}

// Selected returns the selected option, if any.
func (sel *Select) Selected() (Option, bool) {
	if !sel.selected.Valid {
		return Option{}, false
	}
	for _, opt := range sel.props.Options {
		if opt.Value == sel.selected.String {
			return opt, true
		}
	}
	return Option{}, false
}

// Value returns the selected value, null when nothing is selected.
func (sel *Select) Value() null.String {
	return sel.selected
}

func (sel *Select) Options() []Option {
	return sel.props.Options
}

func (sel *Select) resolve(v null.String) null.String {
	if v.Valid && sel.has(v.String) {
		return v
	}
	return null.String{}
}

func (sel *Select) has(value string) bool {
	for _, opt := range sel.props.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}
