package walkmode

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Descriptor keys, always lower camel-case.
const (
	keyMaxDistance = "maxDistance"
	keySpeed       = "speed"
	keyProfile     = "profile"
	keyTimeNeeded  = "timeNeeded"
	keyDefault     = "default"
	keyFirstMile   = "firstMile"
	keyLastMile    = "lastMile"
)

// splitDescriptor returns the kind token and the raw field list.
func splitDescriptor(descriptor string) (kind, fields string) {
	kind, fields, _ = strings.Cut(descriptor, "&")
	return kind, fields
}

// Params are the decoded fields of a descriptor.
type Params struct {
	values url.Values
}

func parseParams(fields string) (Params, error) {
	values, err := url.ParseQuery(fields)
	if err != nil {
		return Params{}, fmt.Errorf("%w: %v", ErrMalformedDescriptor, err)
	}
	return Params{values: values}, nil
}

// Has reports whether key was supplied.
func (p Params) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// Keys returns every supplied key.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	return keys
}

// String returns the value of key, or def when absent.
func (p Params) String(key, def string) (string, error) {
	vals, ok := p.values[key]
	if !ok || len(vals) == 0 {
		return def, nil
	}
	if len(vals) > 1 {
		return "", fmt.Errorf("%w: %s given %d times", ErrMalformedDescriptor, key, len(vals))
	}
	return vals[0], nil
}

// Float returns the non-negative number stored under key, or def when absent.
func (p Params) Float(key string, def float64) (float64, error) {
	raw, err := p.String(key, "")
	if err != nil {
		return 0, err
	}
	if !p.Has(key) {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrMalformedDescriptor, key, raw)
	}
	return f, nil
}

// Seconds returns the duration in seconds stored under key, or def when
// absent. Values beyond what a time.Duration holds are rejected.
func (p Params) Seconds(key string, def float64) (float64, error) {
	f, err := p.Float(key, def)
	if err != nil {
		return 0, err
	}
	if f > maxSeconds {
		return 0, fmt.Errorf("%w: %s exceeds %d seconds", ErrMalformedDescriptor, key, int64(maxSeconds))
	}
	return f, nil
}

// onlyKeys rejects fields outside allowed. A nested descriptor supplied
// without escaping spills its own fields into the outer list, which is how
// the ambiguity is detected.
func (p Params) onlyKeys(allowed ...string) error {
	for key, vals := range p.values {
		known := false
		for _, a := range allowed {
			if key == a {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%w: unexpected field %q (nested descriptors must be escaped)", ErrMalformedDescriptor, key)
		}
		if len(vals) > 1 {
			return fmt.Errorf("%w: %s given %d times", ErrMalformedDescriptor, key, len(vals))
		}
	}
	return nil
}

type field struct {
	key   string
	value string
}

func numberField(key string, v float64) field {
	return field{key: key, value: strconv.FormatFloat(v, 'f', -1, 64)}
}

func stringField(key, v string) field {
	return field{key: key, value: v}
}

// encodeDescriptor writes kind followed by fields in the given order.
func encodeDescriptor(kind string, fields ...field) string {
	var b strings.Builder
	b.WriteString(kind)
	for _, f := range fields {
		b.WriteByte('&')
		b.WriteString(f.key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.value))
	}
	return b.String()
}
