package typegraph_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/zoobzio/typegraph"
)

func leafID(t *testing.T, err error) string {
	t.Helper()
	inv, ok := typegraph.AsInvalid(err)
	if !ok {
		t.Fatalf("error = %v, want an *Invalid", err)
	}
	return inv.Own()[0].ID
}

func TestValidateTypedLeaves(t *testing.T) {
	tests := []struct {
		name   string
		marker typegraph.Marker
		good   any
		bad    any
	}{
		{"string", typegraph.String{}, "hi", 42},
		{"boolean", typegraph.Boolean{}, true, "yes"},
		{"int", typegraph.Int{}, -12, 1.5},
		{"int accepts unsigned", typegraph.Int{}, uint8(7), "7"},
		{"number", typegraph.Number{}, 1.5, "1.5"},
		{"number accepts integral", typegraph.Number{}, 3, false},
		{"bytes", typegraph.Bytes{}, []byte("hi"), "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := typegraph.Validate.Do(tt.marker, tt.good); err != nil {
				t.Errorf("Validate(%v) error: %v", tt.good, err)
			}
			_, err := typegraph.Validate.Do(tt.marker, tt.bad)
			if err == nil {
				t.Fatalf("Validate(%v) should fail", tt.bad)
			}
			if got := leafID(t, err); got != "type_error" {
				t.Errorf("error id = %q, want type_error", got)
			}
		})
	}
}

func TestUndictifyTypeChecks(t *testing.T) {
	_, err := typegraph.Undictify.Do(typegraph.String{}, 42)
	if err == nil {
		t.Fatal("Undictify should reject mistyped leaves by default")
	}
	if got := leafID(t, err); got != "type_error" {
		t.Errorf("error id = %q, want type_error", got)
	}

	// Ignore mode passes anything through.
	got, err := typegraph.Undictify.Do(typegraph.String{}, 42, typegraph.WithErrorMode(typegraph.Ignore))
	if err != nil {
		t.Fatalf("Undictify(Ignore) error: %v", err)
	}
	if got != 42 {
		t.Errorf("Undictify(Ignore) = %v, want 42", got)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	enc, err := typegraph.Dictify.Do(typegraph.Bytes{}, []byte("hi"))
	if err != nil {
		t.Fatalf("Dictify() error: %v", err)
	}
	if enc != "aGk=" {
		t.Errorf("Dictify() = %v, want aGk=", enc)
	}

	dec, err := typegraph.Undictify.Do(typegraph.Bytes{}, "aGk=")
	if err != nil {
		t.Fatalf("Undictify() error: %v", err)
	}
	if !bytes.Equal(dec.([]byte), []byte("hi")) {
		t.Errorf("Undictify() = %v, want hi", dec)
	}

	_, err = typegraph.Undictify.Do(typegraph.Bytes{}, "not base64!")
	if err == nil {
		t.Fatal("Undictify should reject malformed base64")
	}
	if got := leafID(t, err); got != "bad_format" {
		t.Errorf("error id = %q, want bad_format", got)
	}
}

func TestDateTimeRoundTrip(t *testing.T) {
	moment := time.Date(2020, 3, 14, 15, 9, 26, 535897000, time.UTC)

	enc, err := typegraph.Dictify.Do(typegraph.DateTime{}, moment)
	if err != nil {
		t.Fatalf("Dictify() error: %v", err)
	}
	if enc != "2020-03-14T15:09:26.535897" {
		t.Errorf("Dictify() = %v", enc)
	}

	dec, err := typegraph.Undictify.Do(typegraph.DateTime{}, enc)
	if err != nil {
		t.Fatalf("Undictify() error: %v", err)
	}
	if !dec.(time.Time).Equal(moment) {
		t.Errorf("Undictify() = %v, want %v", dec, moment)
	}

	// The fractional part is optional when parsing.
	if _, err := typegraph.Undictify.Do(typegraph.DateTime{}, "2020-03-14T15:09:26"); err != nil {
		t.Errorf("Undictify without fraction error: %v", err)
	}

	// Already-parsed values pass through.
	same, err := typegraph.Undictify.Do(typegraph.DateTime{}, moment)
	if err != nil {
		t.Fatalf("Undictify(time.Time) error: %v", err)
	}
	if !same.(time.Time).Equal(moment) {
		t.Error("Undictify should be idempotent on time.Time")
	}
}

func TestDateRoundTrip(t *testing.T) {
	day := time.Date(2020, 3, 14, 0, 0, 0, 0, time.UTC)

	enc, err := typegraph.Dictify.Do(typegraph.Date{}, day)
	if err != nil {
		t.Fatalf("Dictify() error: %v", err)
	}
	if enc != "2020-03-14" {
		t.Errorf("Dictify() = %v, want 2020-03-14", enc)
	}

	dec, err := typegraph.Undictify.Do(typegraph.Date{}, "2020-03-14")
	if err != nil {
		t.Fatalf("Undictify() error: %v", err)
	}
	if !dec.(time.Time).Equal(day) {
		t.Errorf("Undictify() = %v, want %v", dec, day)
	}
}

func TestTemporalErrors(t *testing.T) {
	_, err := typegraph.Undictify.Do(typegraph.DateTime{}, "not a date")
	if got := leafID(t, err); got != "bad_format" {
		t.Errorf("error id = %q, want bad_format", got)
	}

	_, err = typegraph.Undictify.Do(typegraph.DateTime{}, 12)
	if got := leafID(t, err); got != "type_error" {
		t.Errorf("error id = %q, want type_error", got)
	}

	_, err = typegraph.Validate.Do(typegraph.Date{}, "2020-03-14")
	if got := leafID(t, err); got != "type_error" {
		t.Errorf("Validate(string) id = %q, want type_error", got)
	}
}

func TestPassthrough(t *testing.T) {
	odd := struct{ A int }{A: 1}

	if _, err := typegraph.Validate.Do(typegraph.Passthrough{}, odd); err != nil {
		t.Errorf("Validate(Passthrough) error: %v", err)
	}
	got, err := typegraph.Clone.Do(typegraph.Passthrough{}, odd)
	if err != nil {
		t.Fatalf("Clone() error: %v", err)
	}
	if got != odd {
		t.Errorf("Clone(Passthrough) = %v, want the value unchanged", got)
	}
}
