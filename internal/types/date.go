// Package types implements special types for BudgetBuddy.
package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Date is a civil date without a time component, stored as its ISO
// "YYYY-MM-DD" representation. Lexicographic order of the string
// representation equals chronological order, which the filter engine
// relies on for its date bounds.
type Date string

// NewDate returns the Date for a specific day.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the Date on which a time occurs in that time's location.
func DateOf(t time.Time) Date {
	return Date(t.Format("2006-01-02"))
}

// Today returns the current Date in UTC.
func Today() Date {
	return DateOf(time.Now().In(time.UTC))
}

// ParseDate parses a string in RFC 3339 full-date format and returns the
// Date value it represents.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", err
	}

	return DateOf(t), nil
}

// String returns the date formatted as YYYY-MM-DD.
func (d Date) String() string {
	return string(d)
}

// Time returns the first instant of the date in UTC.
func (d Date) Time() (time.Time, error) {
	return time.Parse("2006-01-02", string(d))
}

// IsZero reports if the date is the zero value.
func (d Date) IsZero() bool {
	return d == ""
}

// Before reports whether the date d is before o.
func (d Date) Before(o Date) bool {
	return d < o
}

// After reports whether the date d is after o.
func (d Date) After(o Date) bool {
	return d > o
}

// MarshalJSON implements the json.Marshaler interface.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", string(d))), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// The date is expected as a string in either full RFC 3339 or "2006-01-02"
// format. From a full timestamp, everything except the date is ignored.
func (d *Date) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		*d = ""
		return nil
	}

	parsed, err := ParseDate(value)
	if err == nil {
		*d = parsed
		return nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return err
	}

	*d = DateOf(t)
	return nil
}

// Scan reads the value from the database.
func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = ""
	case string:
		*d = Date(v)
	case []byte:
		*d = Date(v)
	case time.Time:
		*d = DateOf(v)
	default:
		return fmt.Errorf("cannot scan %T into a date", value)
	}

	return nil
}

// Value returns the value for the SQL driver to write to the database.
func (d Date) Value() (driver.Value, error) {
	return string(d), nil
}

// GormDataType defines the data type used by gorm for the type.
func (Date) GormDataType() string {
	return "date"
}
