package record

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ValidationError describes a field that could not be coerced into its
// declared type. Parsers treat it as "no record", never as a batch failure.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// requireString returns doc[key] if it is a string.
func requireString(doc map[string]any, key string) (string, error) {
	v, ok := doc[key]
	if !ok {
		return "", &ValidationError{Field: key, Reason: "missing"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &ValidationError{Field: key, Reason: fmt.Sprintf("expected string, got %T", v)}
	}
	return s, nil
}

// optionalString returns doc[key], or def when the key is absent. A
// present value of the wrong type is still an error.
func optionalString(doc map[string]any, key, def string) (string, error) {
	if _, ok := doc[key]; !ok {
		return def, nil
	}
	return requireString(doc, key)
}

// requireTime coerces doc[key] into a timestamp.
func requireTime(doc map[string]any, key string) (time.Time, error) {
	v, ok := doc[key]
	if !ok {
		return time.Time{}, &ValidationError{Field: key, Reason: "missing"}
	}
	t, err := ParseTimestamp(v)
	if err != nil {
		return time.Time{}, &ValidationError{Field: key, Reason: err.Error()}
	}
	return t, nil
}

// requireObject returns doc[key] if it is a JSON object.
func requireObject(doc map[string]any, key string) (map[string]any, error) {
	v, ok := doc[key]
	if !ok {
		return nil, &ValidationError{Field: key, Reason: "missing"}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &ValidationError{Field: key, Reason: fmt.Sprintf("expected object, got %T", v)}
	}
	return obj, nil
}

// ParseTimestamp coerces a decoded JSON value into a time. Strings are
// parsed with the layouts dateparse knows, rejecting ambiguous day/month
// order and zone names that cannot be resolved to an offset; timestamps
// without a zone are taken as UTC. Numbers are Unix seconds, or
// milliseconds when too large to be seconds.
func ParseTimestamp(v any) (time.Time, error) {
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, fmt.Errorf("empty timestamp")
		}
		t, err := dateparse.ParseStrict(s)
		if err != nil {
			return time.Time{}, fmt.Errorf("unparsable timestamp %q", s)
		}
		// An unknown abbreviation parses as a zero-offset zone of that name
		if name, offset := t.Zone(); offset == 0 && !isUTCName(name) && t.Location() != time.Local {
			return time.Time{}, fmt.Errorf("unknown time zone %q in timestamp %q", name, s)
		}
		return t, nil
	case float64:
		return unixTime(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return time.Time{}, fmt.Errorf("unparsable timestamp %q", val.String())
		}
		return unixTime(f)
	default:
		return time.Time{}, fmt.Errorf("expected timestamp, got %T", v)
	}
}

func isUTCName(name string) bool {
	switch name {
	case "", "UTC", "GMT", "Z":
		return true
	}
	return false
}

func unixTime(f float64) (time.Time, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, fmt.Errorf("timestamp out of range")
	}
	if math.Abs(f) > 2e10 {
		return time.UnixMilli(int64(f)).UTC(), nil
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
