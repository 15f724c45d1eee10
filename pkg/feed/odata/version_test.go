package odata

import (
	"reflect"
	"testing"

	"github.com/pshelf/pshelf/pkg/feed"
)

func TestNormalized(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2.2.5", "2.2.5"},
		{"1.0", "1.0.0"},
		{"3", "3.0.0"},
		{"1.0.0.0", "1.0.0"},
		{"1.0.0.4", "1.0.0.4"},
		{"3.0.0-beta16", "3.0.0-beta16"},
		{"2.5-preview", "2.5.0-preview"},
		{"1.2.3+build5", "1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := parseVersion(tt.in)
			if err != nil {
				t.Fatalf("parseVersion(%q) error: %v", tt.in, err)
			}
			if got := normalized(v); got != tt.want {
				t.Errorf("normalized(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseVersionInvalid(t *testing.T) {
	if _, err := parseVersion("not-a-version"); err == nil {
		t.Fatal("parseVersion should reject garbage")
	}
}

func TestRangeFragments(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"[1.0.0, 2.0.0)", []string{"NormalizedVersion ge '1.0.0'", "NormalizedVersion lt '2.0.0'"}},
		{"(1.0, 2.0]", []string{"NormalizedVersion gt '1.0.0'", "NormalizedVersion le '2.0.0'"}},
		{"[1.0.0,)", []string{"NormalizedVersion ge '1.0.0'"}},
		{"(, 3.0.0)", []string{"NormalizedVersion lt '3.0.0'"}},
		{"[2.2.5]", []string{"NormalizedVersion ge '2.2.5'", "NormalizedVersion le '2.2.5'"}},
		{"*", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, err := feed.ParseRange(tt.in)
			if err != nil {
				t.Fatalf("ParseRange(%q) error: %v", tt.in, err)
			}
			if got := rangeFragments(r); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("rangeFragments(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRangeFragmentsNil(t *testing.T) {
	if got := rangeFragments(nil); got != nil {
		t.Errorf("rangeFragments(nil) = %v, want nil", got)
	}
}
