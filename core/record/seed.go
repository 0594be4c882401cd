package record

import (
	"context"
	_ "embed" // seed data
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/trezcool/preskool/core/entity"
)

//go:embed seed.json
var seedJSON []byte

// SeedData returns sample records for every entity.
// Key names and flag encodings vary on purpose, the way they do on the production backend.
func SeedData() (map[string][]entity.RawRecord, error) {
	var data map[string][]entity.RawRecord
	if err := json.Unmarshal(seedJSON, &data); err != nil {
		return nil, errors.Wrap(err, "decoding seed data")
	}
	return data, nil
}

// Seed loads SeedData into repo, in entity name order.
func Seed(ctx context.Context, repo Repository) error {
	data, err := SeedData()
	if err != nil {
		return err
	}
	for _, name := range entity.Names() {
		for _, rec := range data[name] {
			if _, err := repo.Create(ctx, name, rec); err != nil {
				return errors.Wrapf(err, "seeding %s", name)
			}
		}
	}
	return nil
}
