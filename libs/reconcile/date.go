package reconcile

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

type DateKind uint8

const (
	DateAbsent DateKind = iota
	DateParsed
	DateText
)

// DateMode selects how ResolveDate returns the winning candidate.
type DateMode uint8

const (
	// AsText returns the textual token as received; parsed inputs are formatted as RFC 3339.
	AsText DateMode = iota
	// AsTime returns a parsed value; text that does not parse becomes Absent,
	// unless GPS is the only candidate.
	AsTime
)

// DateValue is a date candidate as received from upstream: missing,
// already parsed, or still textual.
type DateValue struct {
	kind DateKind
	t    time.Time
	s    string
}

func Absent() DateValue {
	return DateValue{}
}

func Parsed(t time.Time) DateValue {
	return DateValue{kind: DateParsed, t: t}
}

func Text(s string) DateValue {
	return DateValue{kind: DateText, s: s}
}

// TextPtr maps a nullable upstream column to a candidate.
func TextPtr(s *string) DateValue {
	if s == nil {
		return Absent()
	}
	return Text(*s)
}

func (d DateValue) Kind() DateKind {
	return d.kind
}

func (d DateValue) IsAbsent() bool {
	return d.kind == DateAbsent
}

// Time reports the instant the candidate denotes, if any.
func (d DateValue) Time() (time.Time, bool) {
	switch d.kind {
	case DateParsed:
		return d.t, true
	case DateText:
		return parseText(d.s)
	default:
		return time.Time{}, false
	}
}

func (d DateValue) String() string {
	switch d.kind {
	case DateParsed:
		return d.t.Format(time.RFC3339)
	case DateText:
		return d.s
	default:
		return ""
	}
}

// Ptr returns nil for Absent and the textual form otherwise.
func (d DateValue) Ptr() *string {
	if d.IsAbsent() {
		return nil
	}
	s := d.String()
	return &s
}

// ResolveDate picks the most current of the GPS and SMR update candidates.
// A strictly newer GPS value wins, otherwise SMR does; an unparsable side loses
// to the other one. When only GPS is present it is returned untouched.
// Faults while parsing never escape: the result is then Absent.
func ResolveDate(gps, smr DateValue, mode DateMode) (result DateValue) {
	defer func() {
		if r := recover(); r != nil {
			result = Absent()
		}
	}()

	if smr.IsAbsent() {
		return gps
	}
	return present(latest(gps, smr), mode)
}

func latest(gps, smr DateValue) DateValue {
	if gps.IsAbsent() {
		return smr
	}

	gpsTime, gpsOk := gps.Time()
	smrTime, smrOk := smr.Time()

	switch {
	case gpsOk && smrOk && gpsTime.After(smrTime):
		return gps
	case !gpsOk:
		return smr
	case !smrOk:
		return gps
	default:
		return smr
	}
}

func present(d DateValue, mode DateMode) DateValue {
	switch mode {
	case AsTime:
		t, ok := d.Time()
		if !ok {
			return Absent()
		}
		if d.kind == DateParsed {
			return d
		}
		return Parsed(t)
	default:
		if d.kind == DateParsed {
			return Text(d.String())
		}
		return d
	}
}

// ValidDate returns s unchanged when it parses as a date and nil otherwise.
func ValidDate(s string) *string {
	if _, ok := parseText(s); !ok {
		return nil
	}
	return &s
}

// ValidDatePtr is ValidDate for nullable columns.
func ValidDatePtr(s *string) *string {
	if s == nil {
		return nil
	}
	return ValidDate(*s)
}

func parseText(s string) (t time.Time, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			t, ok = time.Time{}, false
		}
	}()

	s = strings.TrimSpace(s)
	if s == "" || isNumber(s) {
		return time.Time{}, false
	}
	parsed, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// isNumber reports bare numeric tokens such as "1200" or "1.5", which
// dateparse would otherwise read as timestamps or clock values.
func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
