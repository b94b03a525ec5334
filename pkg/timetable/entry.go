package timetable

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
)

var (
	ErrMalformedResponse = errors.New("malformed schedule response")
	ErrFieldParse        = errors.New("parse error")
)

// ClassEntry is one meeting pattern of a course as listed in "kbList".
type ClassEntry struct {
	Course     string `db:"course" json:"kcmc"`
	Instructor string `db:"instructor" json:"xm"`
	Room       string `db:"room" json:"cdmc"`
	Periods    string `db:"periods" json:"jcs"`
	Weeks      string `db:"weeks" json:"zcd"`
	Weekday    string `db:"weekday" json:"xqj"`
}

// UnmarshalJSON requires every field to be present as a JSON string.
func (e *ClassEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fields := []struct {
		key string
		dst *string
	}{
		{"kcmc", &e.Course},
		{"xm", &e.Instructor},
		{"cdmc", &e.Room},
		{"jcs", &e.Periods},
		{"zcd", &e.Weeks},
		{"xqj", &e.Weekday},
	}
	for _, f := range fields {
		value, ok := raw[f.key]
		if !ok {
			return fmt.Errorf("missing field `%s`", f.key)
		}
		if string(value) == "null" {
			return fmt.Errorf("field `%s` is null", f.key)
		}
		if err := json.Unmarshal(value, f.dst); err != nil {
			return fmt.Errorf("field `%s`: %v", f.key, err)
		}
	}
	return nil
}

// IsEmpty reports whether e is the placeholder left by a failed decode.
func (e ClassEntry) IsEmpty() bool {
	return e == ClassEntry{}
}

// ParseEntries decodes the "kbList" array of a schedule response. An element
// that cannot be decoded is logged and replaced by an empty entry so the rest
// of the list still gets exported.
func ParseEntries(raw string) ([]ClassEntry, error) {
	var body struct {
		KbList *[]json.RawMessage `json:"kbList"`
	}
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if body.KbList == nil {
		return nil, fmt.Errorf("%w: kbList is not an array", ErrMalformedResponse)
	}

	entries := make([]ClassEntry, 0, len(*body.KbList))
	for i, item := range *body.KbList {
		var entry ClassEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			log.Println("Warning: skipping kbList entry", i, "-", err)
			entry = ClassEntry{}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
