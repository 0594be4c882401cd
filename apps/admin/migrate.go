package main

import (
	"database/sql"

	"github.com/trezcool/goose"

	"github.com/trezcool/preskool/core"
	"github.com/trezcool/preskool/storage/database/postgres"
)

var (
	gooseRunFunc = goose.RunFS // mockable

	connectDBFunc = func(conf core.DatabaseConfig) (*sql.DB, error) { // mockable
		db, err := postgresdb.Connect(conf)
		if err != nil {
			return nil, err
		}
		return db.DB, nil
	}
)

// migrate runs a goose command on the postgres database with the embedded migrations.
func (cli *commandLine) migrate(args []string) error {
	db, err := connectDBFunc(cli.conf.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], db, postgresdb.Migrations, postgresdb.MigrationsDir, arguments...)
}
