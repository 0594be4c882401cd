package inmemdb

import (
	"context"
	"strconv"

	"github.com/trezcool/preskool/core/entity"
	"github.com/trezcool/preskool/core/record"
)

type recordRepository struct {
	db *recordTable
}

func NewRecordRepository(db *DB) record.Repository {
	return &recordRepository{db: db.records}
}

func (repo *recordRepository) coll(name string) *collection {
	c, ok := repo.db.table[name]
	if !ok {
		c = &collection{}
		repo.db.table[name] = c
	}
	return c
}

func (c *collection) index(id string) int {
	for i, rec := range c.rows {
		if record.IDOf(rec) == id {
			return i
		}
	}
	return -1
}

func (repo *recordRepository) List(_ context.Context, name string, filter record.Filter) ([]entity.RawRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	c, ok := repo.db.table[name]
	if !ok {
		return []entity.RawRecord{}, nil
	}
	recs := make([]entity.RawRecord, 0, len(c.rows))
	for _, rec := range c.rows {
		if filter.Match(rec) {
			recs = append(recs, record.Clone(rec))
		}
	}
	return recs, nil
}

func (repo *recordRepository) Get(_ context.Context, name, id string) (entity.RawRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.table[name]; ok {
		if i := c.index(id); i >= 0 {
			return record.Clone(c.rows[i]), nil
		}
	}
	return nil, record.ErrNotFound
}

// Create keeps a numeric id the record already carries when it is free.
func (repo *recordRepository) Create(_ context.Context, name string, rec entity.RawRecord) (entity.RawRecord, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c := repo.coll(name)
	rec = record.Clone(rec)
	if rec == nil {
		rec = entity.RawRecord{}
	}

	id, err := strconv.Atoi(record.IDOf(rec))
	if err != nil || id <= 0 || c.index(strconv.Itoa(id)) >= 0 {
		id = c.pk + 1
	}
	if id > c.pk {
		c.pk = id
	}
	rec["id"] = id
	c.rows = append(c.rows, rec)
	return record.Clone(rec), nil
}

func (repo *recordRepository) Update(_ context.Context, name, id string, patch entity.RawRecord) (entity.RawRecord, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c, ok := repo.db.table[name]
	if !ok {
		return nil, record.ErrNotFound
	}
	i := c.index(id)
	if i < 0 {
		return nil, record.ErrNotFound
	}
	c.rows[i] = record.Merge(c.rows[i], patch)
	return record.Clone(c.rows[i]), nil
}

func (repo *recordRepository) Delete(_ context.Context, name, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c, ok := repo.db.table[name]
	if !ok {
		return record.ErrNotFound
	}
	i := c.index(id)
	if i < 0 {
		return record.ErrNotFound
	}
	c.rows = append(c.rows[:i], c.rows[i+1:]...)
	return nil
}
