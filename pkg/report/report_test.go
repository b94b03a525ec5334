package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/themanforfree/jwglxt/pkg/timetable"
)

var sampleRows = []timetable.CalendarRow{
	{Subject: "高等数学", StartDate: "03/01/2022", EndDate: "03/01/2022", StartTime: "8:30", EndTime: "10:05", Description: "张三", Location: "4201"},
	{Subject: "第一周", StartDate: "02/21/2022", EndDate: "02/28/2022", AllDay: true},
}

func TestWriteCsv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedules.csv")
	if err := WriteCsv(sampleRows, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"Subject,Start Date,End Date,Start Time,End Time,All Day Event,Description,Location,Private",
		"高等数学,03/01/2022,03/01/2022,8:30,10:05,false,张三,4201,false",
		"第一周,02/21/2022,02/28/2022,,,true,,,false",
	}
	got := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCsvOnlyMarkers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markers.csv")
	rows := timetable.NewSemester(timetable.DefaultStart).WeekMarkers()
	if err := WriteCsv(rows, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != timetable.MarkerWeeks+1 {
		t.Fatalf("got %d lines, want %d", len(lines), timetable.MarkerWeeks+1)
	}
	if lines[len(lines)-1] != "第十八周,06/20/2022,06/27/2022,,,true,,,false" {
		t.Errorf("last marker = %q", lines[len(lines)-1])
	}
}

func TestWriteCsvBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "schedules.csv")
	err := WriteCsv(sampleRows, path)
	if !errors.Is(err, ErrWrite) {
		t.Fatalf("got %v, want ErrWrite", err)
	}
}

func TestWriteIcs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedules.ics")
	if err := WriteIcs(sampleRows, path, "课表"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{
		"X-WR-CALNAME:课表",
		"SUMMARY:高等数学",
		"DTSTART:20220301T003000Z",
		"DTEND:20220301T020500Z",
		"DTSTART;VALUE=DATE:20220221",
		"DTEND;VALUE=DATE:20220228",
		"LOCATION:4201",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("ics output lacks %q", want)
		}
	}
}

func TestCalendarEvents(t *testing.T) {
	cal, err := Calendar(sampleRows, "")
	if err != nil {
		t.Fatal(err)
	}
	events := cal.Events()
	if len(events) != len(sampleRows) {
		t.Fatalf("got %d events, want %d", len(events), len(sampleRows))
	}
	start, err := events[0].GetStartAt()
	if err != nil {
		t.Fatal(err)
	}
	if got := start.In(portalZone).Format("01/02/2006 15:04"); got != "03/01/2022 08:30" {
		t.Errorf("start = %s", got)
	}
}

func TestEventIDStable(t *testing.T) {
	first, err := Calendar(sampleRows, "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := Calendar(sampleRows, "")
	if err != nil {
		t.Fatal(err)
	}
	a, b := first.Events(), second.Events()
	for i := range a {
		if a[i].Id() != b[i].Id() {
			t.Errorf("event %d: id %s != %s", i, a[i].Id(), b[i].Id())
		}
	}
	if a[0].Id() == a[1].Id() {
		t.Error("distinct rows share an id")
	}
}

func TestCalendarBadDate(t *testing.T) {
	rows := []timetable.CalendarRow{{Subject: "x", StartDate: "2022-03-01", EndDate: "2022-03-01", StartTime: "8:30", EndTime: "9:15"}}
	if _, err := Calendar(rows, ""); !errors.Is(err, ErrWrite) {
		t.Fatalf("got %v, want ErrWrite", err)
	}
}
