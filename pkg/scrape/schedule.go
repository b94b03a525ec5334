package scrape

import (
	"net/http"
	"strconv"
)

// GetSchedules returns the raw timetable JSON of an academic year (the year
// it starts in) and term. The body is not checked; an expired session or an
// error page only shows up when it is parsed.
func (s *Session) GetSchedules(year, term int) (string, error) {
	xqm, err := TermCode(term)
	if err != nil {
		return "", err
	}
	body, err := s.fetch(http.MethodPost, schedulePath, encodeForm(
		field{"xnm", strconv.Itoa(year)},
		field{"xqm", xqm},
	))
	if err != nil {
		return "", err
	}
	return string(body), nil
}
