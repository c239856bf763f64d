package models

import (
	"encoding/json"
	"time"
)

// DateLayout is the only date layout accepted from upstream records.
const DateLayout = "2006-01-02"

// Presence records whether an optional field was supplied upstream.
type Presence uint8

// Presence states. The zero value is Absent, so a zero optional is missing.
const (
	Absent Presence = iota
	Empty
	Present
	Unknown
)

func (p Presence) String() string {
	switch p {
	case Empty:
		return "empty"
	case Present:
		return "present"
	case Unknown:
		return "unknown"
	default:
		return "absent"
	}
}

// OptString is a tri-state string: absent, present but empty, or a value.
type OptString struct {
	value string
	state Presence
}

// MissingString returns an absent OptString.
func MissingString() OptString {
	return OptString{}
}

// StringOf wraps v, marking it Empty when v is "".
func StringOf(v string) OptString {
	if v == "" {
		return OptString{state: Empty}
	}

	return OptString{value: v, state: Present}
}

// State returns the presence state.
func (o OptString) State() Presence { return o.state }

// IsMissing reports whether the field was absent upstream.
func (o OptString) IsMissing() bool { return o.state == Absent }

// Get returns the value and whether the field was supplied (empty counts).
func (o OptString) Get() (string, bool) {
	return o.value, o.state != Absent
}

// MarshalJSON renders absent as null and empty as "".
func (o OptString) MarshalJSON() ([]byte, error) {
	if o.state == Absent {
		return []byte("null"), nil
	}

	return json.Marshal(o.value)
}

// OptFloat is an optional float64.
type OptFloat struct {
	value float64
	state Presence
}

// MissingFloat returns an absent OptFloat.
func MissingFloat() OptFloat {
	return OptFloat{}
}

// FloatOf wraps v as present.
func FloatOf(v float64) OptFloat {
	return OptFloat{value: v, state: Present}
}

// IsMissing reports whether no usable value was supplied.
func (o OptFloat) IsMissing() bool { return o.state != Present }

// Get returns the value and whether it is present.
func (o OptFloat) Get() (float64, bool) {
	return o.value, o.state == Present
}

// MarshalJSON renders a missing value as null.
func (o OptFloat) MarshalJSON() ([]byte, error) {
	if o.state != Present {
		return []byte("null"), nil
	}

	return json.Marshal(o.value)
}

// OptDate is an optional calendar date. Unknown marks a date that was
// supplied upstream but could not be parsed.
type OptDate struct {
	value time.Time
	state Presence
}

// MissingDate returns an absent OptDate.
func MissingDate() OptDate {
	return OptDate{}
}

// UnknownDate returns a date that was supplied but is not usable.
func UnknownDate() OptDate {
	return OptDate{state: Unknown}
}

// DateOf wraps t, truncated to the calendar day in UTC.
func DateOf(t time.Time) OptDate {
	y, m, d := t.Date()
	return OptDate{value: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), state: Present}
}

// State returns the presence state.
func (o OptDate) State() Presence { return o.state }

// IsMissing reports whether no usable date is available (absent or unknown).
func (o OptDate) IsMissing() bool { return o.state != Present }

// Get returns the date and whether it is present.
func (o OptDate) Get() (time.Time, bool) {
	return o.value, o.state == Present
}

// String formats a present date with DateLayout, "unknown" for an
// unparseable date and "" when absent.
func (o OptDate) String() string {
	switch o.state {
	case Present:
		return o.value.Format(DateLayout)
	case Unknown:
		return "unknown"
	default:
		return ""
	}
}

// MarshalJSON renders a present date as a string, an unknown date as
// "unknown" and an absent date as null.
func (o OptDate) MarshalJSON() ([]byte, error) {
	if o.state == Absent {
		return []byte("null"), nil
	}

	return json.Marshal(o.String())
}
