package database

import (
	"database/sql"
	"fmt"

	"github.com/go-gorp/gorp/v3"
	_ "github.com/mattn/go-sqlite3"
	"github.com/themanforfree/jwglxt/pkg/persist"
	"github.com/themanforfree/jwglxt/pkg/timetable"
)

type EntryEntity struct {
	ID   int64 `db:"id, primarykey, autoincrement"`
	Year int   `db:"year"`
	Term int   `db:"term"`
	timetable.ClassEntry
}

type entryBatch []EntryEntity

func (b entryBatch) Persist(tx persist.Transaction) error {
	for i := range b {
		if err := tx.Insert(&b[i]); err != nil {
			return err
		}
	}
	return nil
}

type Sqlite struct {
	db    *sql.DB
	dbmap *gorp.DbMap
}

var _ Database = Sqlite{}

func NewSqlite(file string) (Sqlite, error) {
	sqlite := Sqlite{}

	db, err := sql.Open("sqlite3", file)
	if err != nil {
		return sqlite, fmt.Errorf("unable to connect to database: %v", err)
	}
	sqlite.db = db

	// Create the table on first run
	dbmap := &gorp.DbMap{Db: db, Dialect: gorp.SqliteDialect{}}
	dbmap.AddTableWithName(EntryEntity{}, "class_entries").
		SetUniqueTogether("year", "term", "course", "weekday", "periods", "weeks", "room")
	if err := dbmap.CreateTablesIfNotExists(); err != nil {
		_ = db.Close()
		return sqlite, fmt.Errorf("unable to create tables: %v", err)
	}
	sqlite.dbmap = dbmap

	return sqlite, nil
}

// SaveEntries archives entries under year and term. Placeholders and entries
// already archived are skipped.
func (s Sqlite) SaveEntries(year, term int, entries []timetable.ClassEntry) error {
	var batch entryBatch
	for _, e := range entries {
		if e.IsEmpty() {
			continue
		}
		batch = append(batch, EntryEntity{Year: year, Term: term, ClassEntry: e})
	}
	return s.save(batch)
}

func (s Sqlite) Entries(year, term int) ([]timetable.ClassEntry, error) {
	var rows []EntryEntity
	_, err := s.dbmap.Select(&rows,
		"select * from class_entries where year = ? and term = ? order by id", year, term)
	if err != nil {
		return nil, err
	}
	entries := make([]timetable.ClassEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.ClassEntry)
	}
	return entries, nil
}

func (s Sqlite) save(v persist.Persistable) error {
	tx, err := s.dbmap.Begin()
	if err != nil {
		return err
	}
	if err := v.Persist(persist.InsertIgnoringDupes(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s Sqlite) Close() error {
	return s.db.Close()
}
