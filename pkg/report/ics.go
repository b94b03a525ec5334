package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/themanforfree/jwglxt/pkg/timetable"
)

// Class times are wall-clock times in China Standard Time.
var portalZone = time.FixedZone("CST", 8*60*60)

// uidSpace keeps event UIDs stable across exports so re-importing the file
// updates events instead of duplicating them.
var uidSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://jwglxt.haut.edu.cn/jwglxt"))

// WriteIcs writes the rows as an iCalendar file named after the calendar.
func WriteIcs(rows []timetable.CalendarRow, fileName, calendarName string) error {
	cal, err := Calendar(rows, calendarName)
	if err != nil {
		return err
	}
	if err := os.WriteFile(fileName, []byte(cal.Serialize()), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

func Calendar(rows []timetable.CalendarRow, calendarName string) (*ics.Calendar, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//jwglxt//timetable export//ZH")
	if calendarName != "" {
		cal.SetXWRCalName(calendarName)
	}
	cal.SetXWRTimezone("Asia/Shanghai")

	for _, row := range rows {
		start, err := parseRowTime(row.StartDate, row.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := parseRowTime(row.EndDate, row.EndTime)
		if err != nil {
			return nil, err
		}

		event := cal.AddEvent(eventID(row))
		event.SetSummary(row.Subject)
		if row.Description != "" {
			event.SetDescription(row.Description)
		}
		if row.Location != "" {
			event.SetLocation(row.Location)
		}
		if row.AllDay {
			event.SetAllDayStartAt(start)
			event.SetAllDayEndAt(end)
		} else {
			event.SetStartAt(start)
			event.SetEndAt(end)
		}
		if row.Private {
			event.SetClass(ics.ClassificationPrivate)
		}
	}
	return cal, nil
}

func parseRowTime(date, clock string) (time.Time, error) {
	if clock == "" {
		t, err := time.ParseInLocation(timetable.DateLayout, date, portalZone)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: date %q: %v", ErrWrite, date, err)
		}
		return t, nil
	}
	t, err := time.ParseInLocation(timetable.DateLayout+" 15:04", date+" "+clock, portalZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q %q: %v", ErrWrite, date, clock, err)
	}
	return t, nil
}

func eventID(row timetable.CalendarRow) string {
	key := strings.Join([]string{row.Subject, row.StartDate, row.StartTime, row.EndTime, row.Location}, "|")
	return uuid.NewSHA1(uidSpace, []byte(key)).String()
}
