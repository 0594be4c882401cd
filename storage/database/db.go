package database

import (
	"io"

	"github.com/pkg/errors"

	"github.com/trezcool/preskool/core"
	"github.com/trezcool/preskool/core/record"
	"github.com/trezcool/preskool/core/user"
	"github.com/trezcool/preskool/storage/database/inmem"
	"github.com/trezcool/preskool/storage/database/postgres"
)

const (
	EngineInMem    = "inmem"
	EnginePostgres = "postgres"
)

// Repositories are the stores the dev API runs on.
type Repositories struct {
	Records record.Repository
	Users   user.Repository
	io.Closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open connects the repositories of the configured engine.
func Open(conf core.DatabaseConfig) (*Repositories, error) {
	switch conf.Engine {
	case "", EngineInMem:
		db := inmemdb.Open()
		return &Repositories{
			Records: inmemdb.NewRecordRepository(db),
			Users:   inmemdb.NewUserRepository(db),
			Closer:  nopCloser{},
		}, nil
	case EnginePostgres:
		db, err := postgresdb.Open(conf)
		if err != nil {
			return nil, errors.Wrap(err, "opening postgres")
		}
		return &Repositories{
			Records: postgresdb.NewRecordRepository(db),
			Users:   postgresdb.NewUserRepository(db),
			Closer:  db,
		}, nil
	default:
		return nil, errors.Errorf("unknown database engine %q", conf.Engine)
	}
}
