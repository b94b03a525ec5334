package report

import (
	"errors"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/themanforfree/jwglxt/pkg/timetable"
)

var ErrWrite = errors.New("write failed")

// WriteCsv writes the rows, header first, in the column layout calendar
// importers such as Google Calendar accept.
func WriteCsv(rows []timetable.CalendarRow, fileName string) error {
	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := gocsv.Marshal(rows, file); err != nil {
		_ = file.Close()
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}
