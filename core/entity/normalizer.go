package entity

import (
	"github.com/trezcool/preskool/core"
)

// RowNormalizer turns one raw record into a ViewRow; index is the record's position in the response.
type RowNormalizer interface {
	Normalize(rec RawRecord, index int) ViewRow
}

var (
	_ RowNormalizer = (*Schema)(nil)
	_ RowNormalizer = (*Normalizer)(nil)
)

// Normalizer is a Schema that reports status values it could not classify (debug only).
type Normalizer struct {
	Schema *Schema
	Logger core.Logger
	Debug  bool
}

func NewNormalizer(schema *Schema, logger core.Logger, debug bool) *Normalizer {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Normalizer{Schema: schema, Logger: logger, Debug: debug}
}

func (n *Normalizer) Normalize(rec RawRecord, index int) ViewRow {
	if n.Debug {
		for _, name := range n.Schema.Unclassified(rec) {
			n.Logger.Warn("unclassified status value; rendering as "+StatusInactive, map[string]interface{}{
				"entity": n.Schema.Name,
				"field":  name,
				"index":  index,
			})
		}
	}
	return n.Schema.Normalize(rec, index)
}

// NormalizeAll maps records in order. Keys are unique across the result:
// a key already taken gets the record's position appended.
func NormalizeAll(n RowNormalizer, recs []RawRecord) []ViewRow {
	rows := make([]ViewRow, len(recs))
	seen := make(map[string]bool, len(recs))
	for i, rec := range recs {
		row := n.Normalize(rec, i)
		for seen[row.Key] {
			row.Key += positionKey(i)
		}
		seen[row.Key] = true
		rows[i] = row
	}
	return rows
}
