package odata

import "testing"

func TestFilterJoinsWithAnd(t *testing.T) {
	var f filter
	f.add("IsLatestVersion")
	f.addf("Id eq %s", quote("Carbon"))
	f.add("IsPrerelease eq false")

	want := "IsLatestVersion and Id eq 'Carbon' and IsPrerelease eq false"
	if got := f.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestFilterSingleFragment(t *testing.T) {
	var f filter
	f.add("IsLatestVersion")
	if got := f.String(); got != "IsLatestVersion" {
		t.Errorf("String() = %q, want %q", got, "IsLatestVersion")
	}
}

func TestFilterEmpty(t *testing.T) {
	var f filter
	if got := f.String(); got != "" {
		t.Errorf("String() = %q, want empty", got)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Carbon", "'Carbon'"},
		{"O'Brien.Tools", "'O''Brien.Tools'"},
		{"", "''"},
	}
	for _, tt := range tests {
		if got := quote(tt.in); got != tt.want {
			t.Errorf("quote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
