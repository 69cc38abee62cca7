package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Kind identifies what a Value holds.
type Kind uint8

const (
	KindMissing Kind = iota
	KindString
	KindNumber
	KindDate
)

// String returns the lower-case kind name
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "missing"
	}
}

// DateLayout is the canonical rendering of date cells
const DateLayout = "2006-01-02"

// DateTimeLayout renders date cells that carry a time of day
const DateTimeLayout = "2006-01-02 15:04:05"

// Value is a single table cell. The zero Value is Missing, which is
// distinct from an empty string and from the number zero.
type Value struct {
	kind Kind
	str  string
	num  float64
	date time.Time
}

// Missing returns the explicit missing marker
func Missing() Value { return Value{} }

// String wraps raw text
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps a numeric value. NaN is stored as Missing.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// Date wraps a timestamp. The wall clock is kept and the zone dropped, so
// the time of day survives into duplicate detection.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	h, mi, sec := t.Clock()
	return Value{kind: KindDate, date: time.Date(y, m, d, h, mi, sec, t.Nanosecond(), time.UTC)}
}

// Kind reports the cell kind
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the cell holds no value
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Text returns the raw text of a string cell
func (v Value) Text() (string, bool) {
	return v.str, v.kind == KindString
}

// Float returns the numeric payload of a number cell
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Time returns the payload of a date cell
func (v Value) Time() (time.Time, bool) {
	return v.date, v.kind == KindDate
}

// Day returns the calendar day of a date cell at midnight UTC
func (v Value) Day() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return TruncateDay(v.date), true
}

// TruncateDay drops the time of day and the zone
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (v Value) dateText() string {
	if v.date.Equal(TruncateDay(v.date)) {
		return v.date.Format(DateLayout)
	}
	return v.date.Format(DateTimeLayout)
}

// String renders the cell for display and grouping. Missing renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		return v.dateText()
	default:
		return ""
	}
}

// Equal reports whether two cells hold the same kind and payload
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindDate:
		return v.date.Equal(o.date)
	default:
		return true
	}
}

// key is an unambiguous encoding used for duplicate detection
func (v Value) key() string {
	switch v.kind {
	case KindString:
		return "s" + strconv.Quote(v.str)
	case KindNumber:
		f := v.num
		if f == 0 {
			f = 0 // -0 and 0 are the same value
		}
		return "n" + strconv.FormatFloat(f, 'g', -1, 64)
	case KindDate:
		return "d" + v.date.Format(time.RFC3339Nano)
	default:
		return "m"
	}
}

// MarshalJSON renders missing as null, dates as YYYY-MM-DD with the time
// appended when it is not midnight
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		if math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatFloat(v.num, 'f', -1, 64)), nil
	case KindDate:
		return []byte(`"` + v.dateText() + `"`), nil
	default:
		return []byte("null"), nil
	}
}
