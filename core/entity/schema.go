package entity

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FieldKind tells how a raw value is turned into display text.
type FieldKind int

const (
	Text FieldKind = iota
	Count
	Money
	Time
	Date
	Status
	Joined
)

// FieldSpec declares one display field and the ordered raw keys it may be read from.
type FieldSpec struct {
	Name  string
	Title string
	Keys  []string
	Kind  FieldKind
	Sep   string   // Joined only; defaults to " "
	Alt   []string // Joined only; read as text when none of Keys is set
}

// Schema is the mapping table of one entity.
type Schema struct {
	Name     string // REST collection name, eg. "hostelrooms"
	Title    string
	Prefix   string   // letter code used to synthesize display ids
	CodeKeys []string // server-provided human codes, preferred as display id
	Currency string
	Fields   []FieldSpec
}

// ViewRow is the normalized, display-ready shape of one record.
type ViewRow struct {
	Key      string            `json:"key"`
	ID       string            `json:"id"`
	Status   string            `json:"status,omitempty"`
	Fields   map[string]string `json:"fields"`
	Original RawRecord         `json:"originalData"`
}

// Field implements table.Row.
func (row ViewRow) Field(name string) (string, bool) {
	switch name {
	case "key":
		return row.Key, true
	case "id":
		return row.ID, true
	}
	v, ok := row.Fields[name]
	return v, ok
}

// FieldNames implements table.Row; the original record is not part of it.
func (row ViewRow) FieldNames() []string {
	names := make([]string, 0, len(row.Fields)+2)
	for name := range row.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return append([]string{"key", "id"}, names...)
}

// WithCurrency returns a copy of the schema rendering money with glyph.
func (s *Schema) WithCurrency(glyph string) *Schema {
	cp := *s
	cp.Currency = glyph
	return &cp
}

// Field returns the FieldSpec named name.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Normalize maps one raw record to a ViewRow. It never fails and never mutates rec.
// index is the record's position in the response.
func (s *Schema) Normalize(rec RawRecord, index int) ViewRow {
	row := ViewRow{
		Key:      s.key(rec, index),
		ID:       s.displayID(rec, index),
		Fields:   make(map[string]string, len(s.Fields)),
		Original: rec,
	}
	for _, f := range s.Fields {
		v := s.value(f, rec)
		row.Fields[f.Name] = v
		if f.Kind == Status && row.Status == "" {
			row.Status = v
		}
	}
	return row
}

// Unclassified lists the status fields of rec whose raw value has a type the coercion rule does not cover.
func (s *Schema) Unclassified(rec RawRecord) []string {
	var names []string
	for _, f := range s.Fields {
		if f.Kind != Status {
			continue
		}
		v, _ := rec.First(f.Keys...)
		if _, known := ClassifyStatus(v); !known {
			names = append(names, f.Name)
		}
	}
	return names
}

// key is the record id, else the 1-based position prefixed with "#".
func (s *Schema) key(rec RawRecord, index int) string {
	if id, ok := rec.FirstString("id"); ok {
		return id
	}
	return positionKey(index)
}

func positionKey(index int) string {
	return "#" + strconv.Itoa(index+1)
}

func (s *Schema) displayID(rec RawRecord, index int) string {
	if code, ok := rec.FirstString(s.CodeKeys...); ok {
		return code
	}
	if id, ok := rec.FirstString("id"); ok {
		return s.Prefix + id
	}
	return fmt.Sprintf("%s%03d", s.Prefix, index+1)
}

func (s *Schema) value(f FieldSpec, rec RawRecord) string {
	switch f.Kind {
	case Status:
		v, _ := rec.First(f.Keys...)
		return StatusLabel(v)
	case Money:
		v, ok := rec.First(f.Keys...)
		if !ok {
			return NotAvailable
		}
		return FormatMoney(v, s.Currency)
	case Time:
		v, ok := rec.First(f.Keys...)
		if !ok {
			return NotAvailable
		}
		return FormatTime(v)
	case Date:
		v, ok := rec.First(f.Keys...)
		if !ok {
			return NotAvailable
		}
		return FormatDate(v)
	case Joined:
		sep := f.Sep
		if sep == "" {
			sep = " "
		}
		parts := make([]string, 0, len(f.Keys))
		for _, key := range f.Keys {
			if v, ok := rec.FirstString(key); ok && strings.TrimSpace(v) != "" {
				parts = append(parts, strings.TrimSpace(v))
			}
		}
		if len(parts) == 0 {
			if v, ok := rec.FirstString(f.Alt...); ok {
				return v
			}
			return NotAvailable
		}
		return strings.Join(parts, sep)
	default: // Text, Count
		if v, ok := rec.FirstString(f.Keys...); ok {
			return v
		}
		return NotAvailable
	}
}
