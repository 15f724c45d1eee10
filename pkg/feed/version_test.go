package feed

import (
	"errors"
	"testing"

	goversion "github.com/hashicorp/go-version"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		in       string
		min, max string // "" means unbounded
		minInc   bool
		maxInc   bool
	}{
		{"[1.0.0, 2.0.0]", "1.0.0", "2.0.0", true, true},
		{"(1.0.0, 2.0.0)", "1.0.0", "2.0.0", false, false},
		{"[1.0.0, 2.0.0)", "1.0.0", "2.0.0", true, false},
		{"[1.0.0,)", "1.0.0", "", true, false},
		{"(, 2.0.0]", "", "2.0.0", false, true},
		{"[2.2.5]", "2.2.5", "2.2.5", true, true},
		{"1.0.0", "1.0.0", "", true, false},
		{"[1.0.0.4, 2.0)", "1.0.0.4", "2.0", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, err := ParseRange(tt.in)
			if err != nil {
				t.Fatalf("ParseRange(%q) error: %v", tt.in, err)
			}
			if got := bound(r.Min); got != tt.min {
				t.Errorf("Min = %q, want %q", got, tt.min)
			}
			if got := bound(r.Max); got != tt.max {
				t.Errorf("Max = %q, want %q", got, tt.max)
			}
			if r.MinInclusive != tt.minInc {
				t.Errorf("MinInclusive = %v, want %v", r.MinInclusive, tt.minInc)
			}
			if r.MaxInclusive != tt.maxInc {
				t.Errorf("MaxInclusive = %v, want %v", r.MaxInclusive, tt.maxInc)
			}
		})
	}
}

func TestParseRangeAll(t *testing.T) {
	r, err := ParseRange("*")
	if err != nil {
		t.Fatalf("ParseRange(*) error: %v", err)
	}
	if r.Min != nil || r.Max != nil {
		t.Errorf("ParseRange(*) should have no bounds, got %v", r)
	}
}

func TestParseRangeInvalid(t *testing.T) {
	tests := []string{
		"",
		"[1.0.0, 2.0.0",
		"1.0.0, 2.0.0]",
		"(1.0.0)",
		"[,]",
		"[one, two]",
		"[1.0.0, 2.0.0, 3.0.0]",
		"[abc,)",
	}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseRange(in); !errors.Is(err, ErrArgument) {
				t.Errorf("ParseRange(%q) error = %v, want ErrArgument", in, err)
			}
		})
	}
}

func TestVersionRangeString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"[1.0.0, 2.0.0]", "[1.0.0, 2.0.0]"},
		{"(1.0.0,2.0.0)", "(1.0.0, 2.0.0)"},
		{"[1.0.0,)", "[1.0.0, )"},
		{"1.0.0", "[1.0.0, )"},
		{"[2.2.5]", "[2.2.5, 2.2.5]"},
		{"*", "*"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, err := ParseRange(tt.in)
			if err != nil {
				t.Fatalf("ParseRange(%q) error: %v", tt.in, err)
			}
			if got := r.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func bound(v *goversion.Version) string {
	if v == nil {
		return ""
	}
	return v.Original()
}
