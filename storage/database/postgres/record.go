package postgresdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"

	"github.com/trezcool/preskool/core/entity"
	"github.com/trezcool/preskool/core/record"
)

type recordRepository struct {
	db *sqlx.DB
}

func NewRecordRepository(db *sqlx.DB) record.Repository {
	return &recordRepository{db: db}
}

func decode(data types.JSONText) (entity.RawRecord, error) {
	var rec entity.RawRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(err, "decoding record")
	}
	return rec, nil
}

func (repo *recordRepository) List(ctx context.Context, name string, filter record.Filter) ([]entity.RawRecord, error) {
	var rows []types.JSONText
	q := `SELECT data FROM records WHERE entity = $1 ORDER BY created_at, id`
	if err := repo.db.SelectContext(ctx, &rows, q, name); err != nil {
		return nil, errors.Wrapf(err, "listing %s", name)
	}

	recs := make([]entity.RawRecord, 0, len(rows))
	for _, data := range rows {
		rec, err := decode(data)
		if err != nil {
			return nil, err
		}
		if filter.Match(rec) {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (repo *recordRepository) get(ctx context.Context, q sqlx.QueryerContext, name, id string, lock bool) (entity.RawRecord, error) {
	pk, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, record.ErrNotFound
	}
	stmt := `SELECT data FROM records WHERE entity = $1 AND id = $2`
	if lock {
		stmt += ` FOR UPDATE`
	}

	var data types.JSONText
	if err = sqlx.GetContext(ctx, q, &data, stmt, name, pk); err != nil {
		if err == sql.ErrNoRows {
			return nil, record.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting %s %s", name, id)
	}
	return decode(data)
}

func (repo *recordRepository) Get(ctx context.Context, name, id string) (entity.RawRecord, error) {
	return repo.get(ctx, repo.db, name, id, false)
}

func (repo *recordRepository) Create(ctx context.Context, name string, rec entity.RawRecord) (entity.RawRecord, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	// serialize id allocation per entity
	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, name); err != nil {
		return nil, errors.Wrap(err, "locking collection")
	}

	rec = record.Clone(rec)
	if rec == nil {
		rec = entity.RawRecord{}
	}

	id, err := strconv.ParseInt(record.IDOf(rec), 10, 64)
	taken := true
	if err == nil && id > 0 {
		if err = tx.GetContext(ctx, &taken, `SELECT EXISTS (SELECT 1 FROM records WHERE entity = $1 AND id = $2)`, name, id); err != nil {
			return nil, errors.Wrap(err, "checking id")
		}
	}
	if taken {
		if err = tx.GetContext(ctx, &id, `SELECT COALESCE(MAX(id), 0) + 1 FROM records WHERE entity = $1`, name); err != nil {
			return nil, errors.Wrap(err, "allocating id")
		}
	}
	rec["id"] = id

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrap(err, "encoding record")
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO records (entity, id, data) VALUES ($1, $2, $3)`, name, id, types.JSONText(data)); err != nil {
		return nil, errors.Wrapf(err, "inserting %s", name)
	}
	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing")
	}
	return decode(data)
}

func (repo *recordRepository) Update(ctx context.Context, name, id string, patch entity.RawRecord) (entity.RawRecord, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	rec, err := repo.get(ctx, tx, name, id, true)
	if err != nil {
		return nil, err
	}
	rec = record.Merge(rec, patch)

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrap(err, "encoding record")
	}
	if _, err = tx.ExecContext(ctx, `UPDATE records SET data = $3 WHERE entity = $1 AND id = $2`, name, id, types.JSONText(data)); err != nil {
		return nil, errors.Wrapf(err, "updating %s %s", name, id)
	}
	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing")
	}
	return rec, nil
}

func (repo *recordRepository) Delete(ctx context.Context, name, id string) error {
	pk, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return record.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM records WHERE entity = $1 AND id = $2`, name, pk)
	if err != nil {
		return errors.Wrapf(err, "deleting %s %s", name, id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return record.ErrNotFound
	}
	return nil
}
