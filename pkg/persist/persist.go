package persist

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

type Persistable interface {
	Persist(tx Transaction) error
}

type Transaction interface {
	Insert(list ...interface{}) error
}

type InsertFunc func(...interface{}) error

func (f InsertFunc) Insert(list ...interface{}) error {
	return f(list...)
}

// InsertIgnoringDupes inserts rows one at a time so a row that violates a
// unique constraint does not take the rest of the batch down with it.
func InsertIgnoringDupes(t Transaction) Transaction {
	return InsertFunc(func(list ...interface{}) error {
		for _, row := range list {
			if err := t.Insert(row); err != nil && !IsDuplicate(err) {
				return err
			}
		}
		return nil
	})
}

func IsDuplicate(err error) bool {
	var sqliteError sqlite3.Error
	if errors.As(err, &sqliteError) {
		return sqliteError.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
