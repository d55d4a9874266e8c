package typegraph

import (
	"fmt"
	"time"
)

// Temporal leaf markers over time.Time. Dictify renders ISO 8601 without a
// zone; Undictify parses the same form and is idempotent on already-parsed
// values. Unparseable strings yield bad_format, non-strings type_error.

const (
	dateTimeLayout = "2006-01-02T15:04:05.999999"
	dateLayout     = time.DateOnly
)

// DateTime is the leaf marker for a calendar date with a time of day.
type DateTime struct{}

func (DateTime) Kinds() []Kind { return ancestry(KindDateTime, KindTemporal, KindLeaf) }

// Date is the leaf marker for a calendar date; the time of day is dropped on
// serialization.
type Date struct{}

func (Date) Kinds() []Kind { return ancestry(KindDate, KindTemporal, KindLeaf) }

func init() {
	Validate.When(KindTemporal, validateTemporal)
	Dictify.When(KindTemporal, dictifyTemporal)
	Undictify.When(KindTemporal, undictifyTemporal)
}

func temporalLayout(m Marker) string {
	if _, ok := m.(Date); ok {
		return dateLayout
	}
	return dateTimeLayout
}

func validateTemporal(n *Node, value any, opts *Options) (any, error) {
	if _, ok := value.(time.Time); !ok {
		return nil, NewInvalid("type_error", fmt.Sprintf("expected time.Time, got %T", value))
	}
	return nil, nil
}

func dictifyTemporal(n *Node, value any, opts *Options) (any, error) {
	t, ok := value.(time.Time)
	if !ok {
		if opts.ErrorMode() == Ignore {
			return value, nil
		}
		return nil, NewInvalid("type_error", fmt.Sprintf("expected time.Time, got %T", value))
	}
	return t.Format(temporalLayout(n.Marker())), nil
}

func undictifyTemporal(n *Node, value any, opts *Options) (any, error) {
	if t, ok := value.(time.Time); ok {
		return t, nil
	}
	s, ok := value.(string)
	if !ok {
		if opts.ErrorMode() == Ignore {
			return value, nil
		}
		return nil, NewInvalid("type_error", fmt.Sprintf("expected ISO 8601 string, got %T", value))
	}
	t, err := time.Parse(temporalLayout(n.Marker()), s)
	if err != nil {
		return nil, NewInvalid("bad_format", err.Error())
	}
	return t, nil
}
