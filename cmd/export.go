package cmd

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"github.com/themanforfree/jwglxt/pkg/config"
	"github.com/themanforfree/jwglxt/pkg/database"
	"github.com/themanforfree/jwglxt/pkg/report"
	"github.com/themanforfree/jwglxt/pkg/scrape"
	"github.com/themanforfree/jwglxt/pkg/timetable"
)

// calendarRows runs the pipeline up to the calendar rows of the selected
// year and term.
func calendarRows(cmd *cobra.Command) ([]timetable.CalendarRow, error) {
	var entries []timetable.ClassEntry
	var err error
	if opts.offline {
		entries, err = archivedEntries()
	} else {
		entries, err = fetchEntries(cmd)
	}
	if err != nil {
		return nil, err
	}

	if opts.debug {
		spew.Dump(entries)
	}

	rows, err := opts.semester.Rows(entries)
	if err != nil {
		return nil, fmt.Errorf("Parse Error: %w", err)
	}
	log.Println("Found", len(entries), "classes,", len(rows), "calendar rows")
	return rows, nil
}

func fetchEntries(cmd *cobra.Command) ([]timetable.ClassEntry, error) {
	session := scrape.NewSession(config.Resolve(cmd.Flags()), scrape.Options{
		BaseURL: opts.baseURL,
		Timeout: opts.timeout,
	})
	if err := session.Login(); err != nil {
		return nil, fmt.Errorf("Login Error: %w", err)
	}
	raw, err := session.GetSchedules(opts.year, opts.term)
	if err != nil {
		return nil, fmt.Errorf("Get Schedule Error: %w", err)
	}
	entries, err := timetable.ParseEntries(raw)
	if err != nil {
		return nil, fmt.Errorf("Parse Error: %w", err)
	}

	if opts.dbFile != "" {
		if err := archive(entries); err != nil {
			log.Println("Warning: archive not updated -", err)
		} else {
			log.Println("Saved to database", opts.dbFile)
		}
	}
	return entries, nil
}

func archive(entries []timetable.ClassEntry) error {
	sqlite, err := database.NewSqlite(opts.dbFile)
	if err != nil {
		return err
	}
	defer sqlite.Close()
	return sqlite.SaveEntries(opts.year, opts.term, entries)
}

func archivedEntries() ([]timetable.ClassEntry, error) {
	sqlite, err := database.NewSqlite(opts.dbFile)
	if err != nil {
		return nil, fmt.Errorf("Archive Error: %w", err)
	}
	defer sqlite.Close()
	entries, err := sqlite.Entries(opts.year, opts.term)
	if err != nil {
		return nil, fmt.Errorf("Archive Error: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("Archive Error: no classes archived for %d term %d", opts.year, opts.term)
	}
	return entries, nil
}

func writeRows(rows []timetable.CalendarRow, fileName, format string) error {
	switch format {
	case "ics":
		name := fmt.Sprintf("%d-%d 课表", opts.year, opts.year+1)
		if err := report.WriteIcs(rows, fileName, name); err != nil {
			return fmt.Errorf("ICS Error: %w", err)
		}
	default:
		if err := report.WriteCsv(rows, fileName); err != nil {
			return fmt.Errorf("CSV Error: %w", err)
		}
	}
	log.Println("Wrote to file", fileName)
	return nil
}

// outputName swaps the default file's extension for the chosen format unless
// an output file was given.
func outputName(cmd *cobra.Command) string {
	if f := cmd.Flags().Lookup("output"); f != nil && f.Changed {
		return opts.output
	}
	return strings.TrimSuffix(opts.output, filepath.Ext(opts.output)) + "." + opts.format
}
