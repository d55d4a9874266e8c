package typegraph

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// Built-in validators for use with ValidatedOf. Each reports a stable error
// id (range_error/*, value_error/*, invalid_choice, invalid_string) so
// callers can react programmatically.

// InRange requires values between Low and High inclusive. A nil bound is
// unbounded on that side; a nil value always passes (pair with Optional or a
// typed leaf to control that). Bounds and values may be any ordered mix of
// integers, floats, or strings.
type InRange struct {
	Low  any
	High any
}

func (InRange) Kinds() []Kind { return ancestry(KindValidator) }

func (r InRange) Validate(value any, opts *Options) error {
	if value == nil {
		return nil
	}
	if r.Low != nil {
		if c, ok := compareValues(value, r.Low); ok && c < 0 {
			return NewInvalid("range_error/too_low", fmt.Sprintf("%v is below minimum %v", value, r.Low))
		}
	}
	if r.High != nil {
		if c, ok := compareValues(value, r.High); ok && c > 0 {
			return NewInvalid("range_error/too_high", fmt.Sprintf("%v is above maximum %v", value, r.High))
		}
	}
	return nil
}

// HasLength requires values with exactly Length elements.
type HasLength struct {
	Length int
}

func (HasLength) Kinds() []Kind { return ancestry(KindValidator) }

func (h HasLength) Validate(value any, opts *Options) error {
	l, ok := lengthOf(value)
	if !ok {
		return NewInvalid("type_error", fmt.Sprintf("%T has no length", value))
	}
	if l != h.Length {
		return NewInvalid("value_error/wrong_length",
			fmt.Sprintf("expected length %d, not length %d", h.Length, l))
	}
	return nil
}

// HasLengthInRange requires a length between Low and High inclusive. A
// negative bound is unbounded on that side.
type HasLengthInRange struct {
	Low  int
	High int
}

func (HasLengthInRange) Kinds() []Kind { return ancestry(KindValidator) }

func (h HasLengthInRange) Validate(value any, opts *Options) error {
	l, ok := lengthOf(value)
	if !ok {
		return NewInvalid("type_error", fmt.Sprintf("%T has no length", value))
	}
	if h.Low >= 0 && l < h.Low {
		return NewInvalid("value_error/too_short",
			fmt.Sprintf("length %d is lower than minimum %d", l, h.Low))
	}
	if h.High >= 0 && l > h.High {
		return NewInvalid("value_error/too_long",
			fmt.Sprintf("length %d is higher than maximum %d", l, h.High))
	}
	return nil
}

// OneOf requires values from a fixed set of choices.
type OneOf struct {
	Choices []any
}

func (OneOf) Kinds() []Kind { return ancestry(KindValidator) }

func (o OneOf) Validate(value any, opts *Options) error {
	for _, c := range o.Choices {
		if reflect.DeepEqual(value, c) {
			return nil
		}
	}
	return NewInvalid("invalid_choice", "")
}

// MatchesRegex requires strings matching a compiled pattern.
type MatchesRegex struct {
	Pattern *regexp.Regexp
}

// NewRegexMatch compiles pattern into a MatchesRegex validator. The pattern
// is anchored at the start, matching the usual "matches" convention.
func NewRegexMatch(pattern string) MatchesRegex {
	if !strings.HasPrefix(pattern, "^") {
		pattern = "^(?:" + pattern + ")"
	}
	return MatchesRegex{Pattern: regexp.MustCompile(pattern)}
}

func (MatchesRegex) Kinds() []Kind { return ancestry(KindValidator) }

func (m MatchesRegex) Validate(value any, opts *Options) error {
	s, ok := value.(string)
	if !ok {
		return NewInvalid("type_error", fmt.Sprintf("expected string, got %T", value))
	}
	if !m.Pattern.MatchString(s) {
		return NewInvalid("invalid_string", "")
	}
	return nil
}

// NonEmptyString requires a string with at least one non-space character.
type NonEmptyString struct{}

func (NonEmptyString) Kinds() []Kind { return ancestry(KindValidator) }

func (NonEmptyString) Validate(value any, opts *Options) error {
	s, ok := value.(string)
	if !ok {
		return NewInvalid("type_error", fmt.Sprintf("expected string, got %T", value))
	}
	if strings.TrimSpace(s) == "" {
		return NewInvalid("empty", "")
	}
	return nil
}

// compareValues orders two values when both are numeric or both are strings.
func compareValues(a, b any) (int, bool) {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	sa, ok := a.(string)
	if !ok {
		return 0, false
	}
	sb, ok := b.(string)
	if !ok {
		return 0, false
	}
	return strings.Compare(sa, sb), true
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func lengthOf(v any) (int, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	}
	return 0, false
}
