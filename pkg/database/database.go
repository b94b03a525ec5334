package database

import (
	"io"

	"github.com/themanforfree/jwglxt/pkg/timetable"
)

// Database archives the class entries fetched for a year and term.
type Database interface {
	io.Closer
	SaveEntries(year, term int, entries []timetable.ClassEntry) error
	Entries(year, term int) ([]timetable.ClassEntry, error)
}
