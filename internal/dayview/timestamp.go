package dayview

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// TimestampKind tags the representation held by a Timestamp.
type TimestampKind uint8

const (
	TimestampNone TimestampKind = iota
	TimestampNative
	TimestampEpoch
)

// Timestamp is either a store-native time value or epoch milliseconds, as
// produced by different clients. Time is the only conversion.
type Timestamp struct {
	kind   TimestampKind
	native time.Time
	millis int64
}

// Native wraps a store-native time value.
func Native(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{kind: TimestampNative, native: t}
}

// Epoch wraps milliseconds since the Unix epoch.
func Epoch(millis int64) Timestamp {
	return Timestamp{kind: TimestampEpoch, millis: millis}
}

// FromPtr wraps an optional store-native time.
func FromPtr(t *time.Time) Timestamp {
	if t == nil {
		return Timestamp{}
	}
	return Native(*t)
}

// Kind returns the representation tag.
func (t Timestamp) Kind() TimestampKind {
	return t.kind
}

// IsZero reports whether no timestamp is present.
func (t Timestamp) IsZero() bool {
	return t.kind == TimestampNone
}

// Time converts the timestamp to a time.Time. ok is false when absent.
func (t Timestamp) Time() (time.Time, bool) {
	switch t.kind {
	case TimestampNative:
		return t.native, true
	case TimestampEpoch:
		return time.UnixMilli(t.millis), true
	default:
		return time.Time{}, false
	}
}

// Ptr returns the converted time or nil when absent.
func (t Timestamp) Ptr() *time.Time {
	v, ok := t.Time()
	if !ok {
		return nil
	}
	return &v
}

// Millis returns epoch milliseconds, or 0 when absent.
func (t Timestamp) Millis() int64 {
	v, ok := t.Time()
	if !ok {
		return 0
	}
	return v.UnixMilli()
}

// MarshalJSON renders the timestamp as RFC 3339 or null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	v, ok := t.Time()
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts null, a JSON number of epoch milliseconds, or an
// RFC 3339 / YYYY-MM-DD string.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	if data[0] != '"' {
		millis, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("timestamp: invalid epoch millis %s: %w", data, err)
		}
		*t = Epoch(millis)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if raw == "" {
		*t = Timestamp{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, DateIDLayout} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			*t = Native(parsed)
			return nil
		}
	}
	return fmt.Errorf("timestamp: unsupported format %q", raw)
}
