package inmemdb

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/course"
	"github.com/trezcool/campus/core/user"
)

var errTxDone = errors.New("transaction has already been committed or rolled back")

type (
	// DB is an in-memory database.
	// A transaction holds the database lock until it ends and works on a copy of the data,
	// which replaces the data on commit.
	DB struct {
		mutex sync.Mutex
		data  *dataset
	}

	dataset struct {
		users         map[string]user.User
		courses       map[string]course.Course
		registrations map[registrationKey]struct{}
		classes       map[string]course.Class
		submissions   map[submissionKey]course.Submission
	}

	registrationKey struct{ courseID, userID string }
	submissionKey   struct{ userID, classID string }
)

func Open() *DB {
	return &DB{data: newDataset()}
}

func newDataset() *dataset {
	return &dataset{
		users:         make(map[string]user.User),
		courses:       make(map[string]course.Course),
		registrations: make(map[registrationKey]struct{}),
		classes:       make(map[string]course.Class),
		submissions:   make(map[submissionKey]course.Submission),
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.users {
		v.HashedPassword = append([]byte(nil), v.HashedPassword...)
		c.users[k] = v
	}
	for k, v := range d.courses {
		c.courses[k] = v
	}
	for k := range d.registrations {
		c.registrations[k] = struct{}{}
	}
	for k, v := range d.classes {
		c.classes[k] = v
	}
	for k, v := range d.submissions {
		if v.Score != nil {
			score := *v.Score
			v.Score = &score
		}
		c.submissions[k] = v
	}
	return c
}

// Flush deletes all the data.
func (db *DB) Flush() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.data = newDataset()
}

// store runs queries either directly against the database, or inside a transaction when tx is set.
type store struct {
	db *DB
	tx *transaction
}

func (s store) view() (*dataset, func()) {
	if s.tx != nil {
		return s.tx.data, func() {}
	}
	s.db.mutex.Lock()
	return s.db.data, s.db.mutex.Unlock
}

type transaction struct {
	db   *DB
	data *dataset
	done bool
}

var _ core.Transactor = (*transaction)(nil) // interface compliance check

func (db *DB) begin() *transaction {
	db.mutex.Lock()
	return &transaction{db: db, data: db.data.clone()}
}

func (tx *transaction) Commit() error {
	if tx.done {
		return errTxDone
	}
	tx.done = true
	tx.db.data = tx.data
	tx.db.mutex.Unlock()
	return nil
}

func (tx *transaction) Rollback() error {
	if tx.done {
		return nil
	}
	tx.done = true
	tx.db.mutex.Unlock()
	return nil
}
