package record

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/preskool/core/entity"
)

var ErrNotFound = errors.New("record not found")

type (
	// Filter holds equality conditions on stringified record fields; dotted keys reach nested objects.
	Filter map[string]string

	// Repository stores loosely shaped records, one collection per entity.
	// Records keep their insertion order and get a numeric "id" on creation.
	Repository interface {
		List(ctx context.Context, entity string, filter Filter) ([]entity.RawRecord, error)
		Get(ctx context.Context, entity, id string) (entity.RawRecord, error)
		Create(ctx context.Context, entity string, rec entity.RawRecord) (entity.RawRecord, error)
		// Update merges patch into the stored record; the id cannot change.
		Update(ctx context.Context, entity, id string, patch entity.RawRecord) (entity.RawRecord, error)
		Delete(ctx context.Context, entity, id string) error
	}
)

// Match reports whether rec satisfies every condition of f.
func (f Filter) Match(rec entity.RawRecord) bool {
	for key, want := range f {
		v, ok := rec.Lookup(key)
		if !ok {
			return false
		}
		got, _ := entity.Stringify(v)
		if !strings.EqualFold(got, want) {
			return false
		}
	}
	return true
}

// Keys returns the filter keys, sorted.
func (f Filter) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IDOf returns the stringified "id" of rec.
func IDOf(rec entity.RawRecord) string {
	id, _ := entity.Stringify(rec["id"])
	return id
}

// Merge returns a copy of rec with patch applied; "id" is never overwritten.
func Merge(rec, patch entity.RawRecord) entity.RawRecord {
	out := make(entity.RawRecord, len(rec)+len(patch))
	for k, v := range rec {
		out[k] = v
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		out[k] = v
	}
	return out
}

// Clone copies rec one level deep.
func Clone(rec entity.RawRecord) entity.RawRecord {
	if rec == nil {
		return nil
	}
	out := make(entity.RawRecord, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
