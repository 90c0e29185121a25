// internal/model/date.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the only textual form a Date is ever stored or compared in.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time of day. Its zero value is invalid;
// construct one with ParseDate, DateOf or Today so the canonical YYYY-MM-DD
// form holds and string comparison orders dates correctly.
type Date struct {
	s string
}

// ParseDate accepts strictly YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{s: t.Format(DateLayout)}, nil
}

// MustDate is ParseDate for literals.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf takes the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	return Date{s: t.Format(DateLayout)}
}

// Today returns the current calendar date in loc.
func Today(loc *time.Location) Date {
	return DateOf(time.Now().In(loc))
}

func (d Date) String() string { return d.s }

func (d Date) IsZero() bool { return d.s == "" }

func (d Date) Before(o Date) bool { return d.s < o.s }

func (d Date) After(o Date) bool { return d.s > o.s }

func (d Date) Equal(o Date) bool { return d.s == o.s }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.s)
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the canonical string; Postgres casts it to DATE.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.s, nil
}

// Scan accepts what lib/pq returns for a DATE column (time.Time) as well as
// text forms.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		// pq hands DATE back as midnight UTC; keep the wall-clock date.
		*d = Date{s: v.UTC().Format(DateLayout)}
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
