// Package inmemdb is a process local store used with storage=memory and in tests.
package inmemdb

import (
	"sync"

	"github.com/trezcool/darasa/core/activity"
	"github.com/trezcool/darasa/core/resource"
	"github.com/trezcool/darasa/core/user"
)

type (
	DB struct {
		user     *userTable
		activity *activityTable
		resource *resourceTable
	}

	userTable struct {
		mutex   sync.RWMutex
		table   map[string]*user.User
		byEmail map[string]string
	}

	activityTable struct {
		mutex     sync.RWMutex
		order     []string
		table     map[string]*activity.Activity
		questions map[string][]activity.Question
	}

	resourceTable struct {
		mutex sync.RWMutex
		rows  []resource.Resource
	}
)

func Open() *DB {
	return &DB{
		user: &userTable{
			table:   make(map[string]*user.User),
			byEmail: make(map[string]string),
		},
		activity: &activityTable{
			table:     make(map[string]*activity.Activity),
			questions: make(map[string][]activity.Question),
		},
		resource: &resourceTable{},
	}
}

// Close implements io.Closer.
func (db *DB) Close() error { return nil }
