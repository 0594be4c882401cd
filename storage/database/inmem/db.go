package inmemdb

import (
	"sync"

	"github.com/trezcool/preskool/core/entity"
	"github.com/trezcool/preskool/core/user"
)

type (
	DB struct {
		user    *userTable
		records *recordTable
	}

	userTable struct {
		table map[int]*user.User
		pk    int
		mutex sync.RWMutex
	}

	collection struct {
		rows []entity.RawRecord // insertion order
		pk   int
	}

	recordTable struct {
		table map[string]*collection
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		user:    &userTable{table: make(map[int]*user.User)},
		records: &recordTable{table: make(map[string]*collection)},
	}
}
