// Package config holds the validation thresholds and the CLI settings
// layered on top of them.
package config

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"ebacheck/internal/errors"
)

// Recognised parameter keys.
const (
	KeyMaxStringLength = "max-string-length"
	KeyMaxIDLength     = "max-id-length"
)

const (
	DefaultMaxStringLength = 100
	DefaultMaxIDLength     = 50
)

// Options is the immutable configuration of one validation run.
type Options struct {
	// MaxStringLength bounds the code-point length of fact content.
	MaxStringLength int
	// MaxIDLength bounds the code-point length of id attributes.
	MaxIDLength int
}

// Defaults returns the documented defaults.
func Defaults() Options {
	return Options{
		MaxStringLength: DefaultMaxStringLength,
		MaxIDLength:     DefaultMaxIDLength,
	}
}

// Keys lists the recognised keys in sorted order.
func Keys() []string {
	return []string{KeyMaxIDLength, KeyMaxStringLength}
}

// Parse builds Options from caller key/value pairs. Keys it does not
// recognise are returned sorted so the caller can warn about them. Any
// malformed recognised value fails the whole parse.
func Parse(params map[string]string) (Options, []string, error) {
	opts := Defaults()
	var unknown []string
	for _, key := range slices.Sorted(maps.Keys(params)) {
		raw := params[key]
		switch strings.ToLower(strings.TrimSpace(key)) {
		case KeyMaxStringLength:
			n, err := positiveInt(KeyMaxStringLength, raw)
			if err != nil {
				return Options{}, nil, err
			}
			opts.MaxStringLength = n
		case KeyMaxIDLength:
			n, err := positiveInt(KeyMaxIDLength, raw)
			if err != nil {
				return Options{}, nil, err
			}
			opts.MaxIDLength = n
		default:
			unknown = append(unknown, key)
		}
	}
	return opts, unknown, nil
}

func positiveInt(key, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, errors.WithHint(
			errors.NewConfigError("%s must be a positive integer, got %q", key, raw),
			"pass a whole number greater than zero, e.g. --param "+key+":100")
	}
	return n, nil
}

// Validate re-checks Options built by hand.
func (o Options) Validate() error {
	if o.MaxStringLength <= 0 {
		return errors.NewConfigError("%s must be a positive integer, got %d", KeyMaxStringLength, o.MaxStringLength)
	}
	if o.MaxIDLength <= 0 {
		return errors.NewConfigError("%s must be a positive integer, got %d", KeyMaxIDLength, o.MaxIDLength)
	}
	return nil
}

// Params renders the options back to their key/value form.
func (o Options) Params() map[string]string {
	return map[string]string{
		KeyMaxStringLength: strconv.Itoa(o.MaxStringLength),
		KeyMaxIDLength:     strconv.Itoa(o.MaxIDLength),
	}
}

// String is a stable one-line rendering, used in cache keys and headers.
func (o Options) String() string {
	params := o.Params()
	parts := make([]string, 0, len(params))
	for _, k := range Keys() {
		parts = append(parts, k+"="+params[k])
	}
	return strings.Join(parts, ",")
}

// ParsePairs turns "key:value" (or "key=value") flag values into a map.
// Later pairs override earlier ones.
func ParsePairs(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		i := strings.IndexAny(p, ":=")
		if i <= 0 {
			return nil, errors.WithHint(
				errors.NewConfigError("malformed parameter %q", p),
				"use key:value, e.g. max-id-length:10")
		}
		out[strings.TrimSpace(p[:i])] = strings.TrimSpace(p[i+1:])
	}
	return out, nil
}
