package models

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the ISO-8601 calendar date layout used on the wire and in
// catalog storage.
const DateLayout = "2006-01-02"

// Date is a calendar date that marshals to an ISO-8601 string.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current UTC calendar date.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate parses an ISO-8601 calendar date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

// String implements [fmt.Stringer] using the ISO-8601 layout.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON implements [json.Marshaler].
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

// UnmarshalJSON implements [json.Unmarshaler], accepting an ISO-8601 date
// string or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("invalid date value %s: %w", data, err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NumericID is a 64-bit external identifier that always serializes to a JSON
// string. Clients running on float64-backed JSON numbers cannot represent the
// full int64 range, so the numeric form never crosses the wire; decoding
// tolerates it for older producers.
type NumericID int64

// MarshalJSON implements [json.Marshaler], emitting a quoted decimal string.
func (n NumericID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatInt(int64(n), 10))), nil
}

// UnmarshalJSON implements [json.Unmarshaler], accepting both string and
// numeric forms.
func (n *NumericID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid numeric id %s: %w", data, err)
	}
	*n = NumericID(v)
	return nil
}
