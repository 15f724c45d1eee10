package odata

import (
	"errors"
	"reflect"
	"testing"

	"github.com/pshelf/pshelf/pkg/feed"
)

func TestGlobFragments(t *testing.T) {
	tests := []struct {
		pattern string
		want    []string
	}{
		{"PowerShell*", []string{"startswith(Id, 'PowerShell')"}},
		{"*Get", []string{"endswith(Id, 'Get')"}},
		{"*sql*", []string{"substringof('sql', Id) eq true"}},
		{"Power*Get", []string{"startswith(Id, 'Power')", "endswith(Id, 'Get')"}},
		{"Az**Tools", []string{"startswith(Id, 'Az')", "endswith(Id, 'Tools')"}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := globFragments(tt.pattern)
			if err != nil {
				t.Fatalf("globFragments(%q) error: %v", tt.pattern, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("globFragments(%q) = %v, want %v", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestGlobFragmentsUnsupported(t *testing.T) {
	tests := []string{
		"*",
		"**",
		"*Power*Get",
		"Power*Get*",
		"*Power*Get*",
		"Az*Sql*Tools",
	}

	for _, pattern := range tests {
		t.Run(pattern, func(t *testing.T) {
			if _, err := globFragments(pattern); !errors.Is(err, feed.ErrArgument) {
				t.Errorf("globFragments(%q) error = %v, want ErrArgument", pattern, err)
			}
		})
	}
}
