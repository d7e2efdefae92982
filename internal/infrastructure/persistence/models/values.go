package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// The storefront writes documents from several clients, so a field may hold a
// number where a string is expected, a timestamp may be an RFC 3339 string or a
// {seconds, nanoseconds} object, and so on. The value types below accept every
// shape seen in the collections and decode anything else to the zero value.

// Text is a string field that also accepts numbers and booleans
type Text string

// UnmarshalJSON implements json.Unmarshaler
func (t *Text) UnmarshalJSON(b []byte) error {
	var v any
	if err := decodeLenient(b, &v); err != nil {
		*t = ""
		return nil
	}
	switch x := v.(type) {
	case string:
		*t = Text(x)
	case json.Number:
		*t = Text(x.String())
	case bool:
		*t = Text(strconv.FormatBool(x))
	default:
		*t = ""
	}
	return nil
}

// String returns the trimmed value
func (t Text) String() string {
	return strings.TrimSpace(string(t))
}

// Amount is a decimal field stored either as a JSON number or a numeric string
type Amount struct {
	decimal.Decimal
	// Valid is false when the field was absent or not a number
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Amount) UnmarshalJSON(b []byte) error {
	var v any
	if err := decodeLenient(b, &v); err != nil {
		a.Decimal = decimal.Zero
		return nil
	}
	a.Decimal, a.Valid = decimal.Zero, false
	switch x := v.(type) {
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(x)); err == nil {
			a.Decimal, a.Valid = d, true
		}
	case json.Number:
		if d, err := decimal.NewFromString(x.String()); err == nil {
			a.Decimal, a.Valid = d, true
		}
	}
	return nil
}

// MarshalJSON writes the amount as a bare JSON number, the way the storefront stores prices
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// NewAmount wraps d
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d, Valid: true}
}

// Count is an integer field stored either as a JSON number or a numeric string
type Count int

// UnmarshalJSON implements json.Unmarshaler
func (c *Count) UnmarshalJSON(b []byte) error {
	var v any
	*c = 0
	if err := decodeLenient(b, &v); err != nil {
		return nil
	}
	var s string
	switch x := v.(type) {
	case string:
		s = strings.TrimSpace(x)
	case json.Number:
		s = x.String()
	default:
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*c = Count(n)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*c = Count(int(f))
	}
	return nil
}

// Flag is a boolean field that also accepts "true"/"false" strings and 0/1
type Flag bool

// UnmarshalJSON implements json.Unmarshaler
func (f *Flag) UnmarshalJSON(b []byte) error {
	var v any
	*f = false
	if err := decodeLenient(b, &v); err != nil {
		return nil
	}
	switch x := v.(type) {
	case bool:
		*f = Flag(x)
	case string:
		parsed, _ := strconv.ParseBool(strings.TrimSpace(x))
		*f = Flag(parsed)
	case json.Number:
		*f = x.String() != "0"
	}
	return nil
}

// Timestamp is a point in time stored as an RFC 3339 string, a
// {seconds, nanoseconds} object (with or without leading underscores) or a
// number of Unix milliseconds. A missing or unreadable value is nil.
type Timestamp struct {
	Time *time.Time
}

// NewTimestamp wraps t
func NewTimestamp(t *time.Time) Timestamp {
	return Timestamp{Time: t}
}

// UnmarshalJSON implements json.Unmarshaler
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	ts.Time = nil
	var v any
	if err := decodeLenient(b, &v); err != nil {
		return nil
	}
	ts.Time = parseTime(v)
	return nil
}

// MarshalJSON writes the time as RFC 3339 or null
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.Time == nil {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Time.UTC().Format(time.RFC3339Nano))
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(v any) *time.Time {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
	case json.Number:
		if ms, err := x.Int64(); err == nil {
			t := time.UnixMilli(ms).UTC()
			return &t
		}
	case map[string]any:
		secs, ok := numberField(x, "seconds", "_seconds")
		if !ok {
			return nil
		}
		nanos, _ := numberField(x, "nanoseconds", "_nanoseconds")
		t := time.Unix(secs, nanos).UTC()
		return &t
	}
	return nil
}

func numberField(m map[string]any, keys ...string) (int64, bool) {
	for _, k := range keys {
		if n, ok := m[k].(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				return i, true
			}
		}
	}
	return 0, false
}

func decodeLenient(b []byte, v *any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}

// decodeData fills out from normalized document data
func decodeData(data map[string]any, out any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// encodeData converts a model into document data
func encodeData(in any) (map[string]any, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
