package cbor

import (
	"math"
	"time"
)

// Date is a calendar date with no time-of-day component, the decoded form
// of tags 100 (epoch-day) and 1004 (ISO date string).
type Date time.Time

// String renders the date as an ISO-8601 calendar date.
func (d Date) String() string {
	return time.Time(d).Format("2006-01-02")
}

const isoDateLayout = "2006-01-02"

// decodeDateTimeString handles tag 0: an RFC 3339 datetime string.
func decodeDateTimeString(child interface{}) (interface{}, error) {
	s, ok := child.(string)
	if !ok {
		return nil, ErrTagPayloadMismatch
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, NewCborError(err, 0, "invalid tag-0 datetime string")
	}
	return t, nil
}

// decodeUnixTime handles tag 1: an epoch-second timestamp, integer or
// floating point.
func decodeUnixTime(child interface{}) (interface{}, error) {
	switch v := child.(type) {
	case uint64:
		return time.Unix(int64(v), 0).UTC(), nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case float64:
		secs := math.Floor(v)
		nsecs := int64((v - secs) * 1e9)
		return time.Unix(int64(secs), nsecs).UTC(), nil
	default:
		return nil, ErrTagPayloadMismatch
	}
}

// decodeEpochDate handles tag 100: a date expressed as signed days since
// 1970-01-01.
func decodeEpochDate(child interface{}) (interface{}, error) {
	var days int64
	switch v := child.(type) {
	case uint64:
		days = int64(v)
	case int64:
		days = v
	default:
		return nil, ErrTagPayloadMismatch
	}
	t := time.Unix(days*86400, 0).UTC()
	return Date(t), nil
}

// decodeISODate handles tag 1004: a date expressed as an ISO-8601 calendar
// date string.
func decodeISODate(child interface{}) (interface{}, error) {
	s, ok := child.(string)
	if !ok {
		return nil, ErrTagPayloadMismatch
	}
	t, err := time.Parse(isoDateLayout, s)
	if err != nil {
		return nil, NewCborError(err, 0, "invalid tag-1004 date string")
	}
	return Date(t), nil
}

// formatOffsetDatetime renders t as the ISO-8601 text used for tag 0,
// preserving microsecond precision and using "Z" for UTC (spec.md §4.3
// "Date/time").
func formatOffsetDatetime(t time.Time) string {
	if t.Location() == time.UTC {
		if t.Nanosecond() == 0 {
			return t.Format("2006-01-02T15:04:05Z")
		}
		return t.Format("2006-01-02T15:04:05.999999999Z")
	}
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02T15:04:05Z07:00")
	}
	return t.Format("2006-01-02T15:04:05.999999999Z07:00")
}

// unixTimeValue returns the numeric payload for tag 1: an integer when t
// has no sub-second component, else a float.
func unixTimeValue(t time.Time) interface{} {
	if t.Nanosecond() == 0 {
		return t.Unix()
	}
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}
