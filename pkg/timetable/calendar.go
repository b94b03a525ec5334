package timetable

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout  = "01/02/2006"
	MarkerWeeks = 18
)

// DefaultStart is the first Monday of the 2022 spring semester. It has to be
// moved forward every semester; pass --start instead of editing it.
var DefaultStart = time.Date(2022, time.February, 21, 0, 0, 0, 0, time.UTC)

type Period struct {
	Start string
	End   string
}

// Periods holds the daily class slots, indexed from period 1.
var Periods = [8]Period{
	{"8:30", "9:15"},
	{"9:25", "10:05"},
	{"10:25", "11:10"},
	{"11:20", "12:00"},
	{"14:30", "15:15"},
	{"15:25", "16:05"},
	{"16:25", "17:10"},
	{"17:20", "18:00"},
}

var buildings = []struct{ name, code string }{
	{"莲4号教学楼", "4"},
	{"文科组团楼", "3"},
}

var numerals = [11]string{"零", "一", "二", "三", "四", "五", "六", "七", "八", "九", "十"}

// CalendarRow is one line of a calendar import file.
type CalendarRow struct {
	Subject     string `csv:"Subject"`
	StartDate   string `csv:"Start Date"`
	EndDate     string `csv:"End Date"`
	StartTime   string `csv:"Start Time"`
	EndTime     string `csv:"End Time"`
	AllDay      bool   `csv:"All Day Event"`
	Description string `csv:"Description"`
	Location    string `csv:"Location"`
	Private     bool   `csv:"Private"`
}

type Semester struct {
	Start time.Time
}

func NewSemester(start time.Time) Semester {
	y, m, d := start.Date()
	return Semester{Start: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Date returns the day of the given 1-based week and weekday (1 is Monday).
func (s Semester) Date(week, weekday int) time.Time {
	return s.Start.AddDate(0, 0, (week-1)*7+weekday-1)
}

// Transform turns a raw schedule response into calendar rows: every class
// occurrence in list order, followed by the week markers.
func (s Semester) Transform(raw string) ([]CalendarRow, error) {
	entries, err := ParseEntries(raw)
	if err != nil {
		return nil, err
	}
	return s.Rows(entries)
}

func (s Semester) Rows(entries []ClassEntry) ([]CalendarRow, error) {
	var rows []CalendarRow
	for _, entry := range entries {
		expanded, err := s.Expand(entry)
		if err != nil {
			return nil, err
		}
		rows = append(rows, expanded...)
	}
	return append(rows, s.WeekMarkers()...), nil
}

// Expand emits one row per week the entry meets. The empty placeholder
// yields no rows; any other entry with an unreadable period, week or weekday
// field is an error.
func (s Semester) Expand(e ClassEntry) ([]CalendarRow, error) {
	if e.IsEmpty() {
		return nil, nil
	}

	first, last, err := parseRange(e.Periods, "")
	if err != nil {
		return nil, fmt.Errorf("%w: periods of %q: %v", ErrFieldParse, e.Course, err)
	}
	if first < 1 || first > len(Periods) || last < 1 || last > len(Periods) {
		return nil, fmt.Errorf("%w: periods of %q: %q out of range", ErrFieldParse, e.Course, e.Periods)
	}
	startWeek, endWeek, err := parseRange(e.Weeks, "周")
	if err != nil {
		return nil, fmt.Errorf("%w: weeks of %q: %v", ErrFieldParse, e.Course, err)
	}
	if startWeek < 1 || endWeek < 1 {
		return nil, fmt.Errorf("%w: weeks of %q: %q starts before week 1", ErrFieldParse, e.Course, e.Weeks)
	}
	weekday, err := strconv.Atoi(strings.TrimSpace(e.Weekday))
	if err != nil {
		return nil, fmt.Errorf("%w: weekday of %q: %v", ErrFieldParse, e.Course, err)
	}
	if weekday < 1 || weekday > 7 {
		return nil, fmt.Errorf("%w: weekday of %q: %d out of range", ErrFieldParse, e.Course, weekday)
	}

	location := Location(e.Room)
	var rows []CalendarRow
	for week := startWeek; week <= endWeek; week++ {
		date := s.Date(week, weekday).Format(DateLayout)
		rows = append(rows, CalendarRow{
			Subject:     e.Course,
			StartDate:   date,
			EndDate:     date,
			StartTime:   Periods[first-1].Start,
			EndTime:     Periods[last-1].End,
			Description: e.Instructor,
			Location:    location,
		})
	}
	return rows, nil
}

// WeekMarkers returns one all-day row per teaching week, each spanning from
// its Monday to the next.
func (s Semester) WeekMarkers() []CalendarRow {
	rows := make([]CalendarRow, 0, MarkerWeeks)
	for week := 1; week <= MarkerWeeks; week++ {
		rows = append(rows, CalendarRow{
			Subject:   weekLabel(week),
			StartDate: s.Date(week, 1).Format(DateLayout),
			EndDate:   s.Date(week+1, 1).Format(DateLayout),
			AllDay:    true,
		})
	}
	return rows
}

// WeekLabel renders week n (1..99) as "第N周" with Chinese numerals.
func WeekLabel(n int) (string, error) {
	if n < 1 || n > 99 {
		return "", fmt.Errorf("week %d out of range", n)
	}
	return weekLabel(n), nil
}

func weekLabel(n int) string {
	tens, ones := n/10, n%10
	var label string
	switch {
	case tens == 0:
		label = numerals[ones]
	case tens == 1:
		label = numerals[10]
	default:
		label = numerals[tens] + numerals[10]
	}
	if tens > 0 && ones > 0 {
		label += numerals[ones]
	}
	return "第" + label + "周"
}

// Location shortens the building names the calendar has no room for.
func Location(room string) string {
	for _, b := range buildings {
		room = strings.ReplaceAll(room, b.name, b.code)
	}
	return room
}

func parseRange(s, unit string) (int, int, error) {
	if unit != "" {
		s = strings.ReplaceAll(s, unit, "")
	}
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%q is not a range", s)
	}
	from, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	to, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return from, to, nil
}
