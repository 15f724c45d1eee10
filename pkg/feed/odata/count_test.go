package odata

import (
	"errors"
	"testing"

	"github.com/pshelf/pshelf/pkg/feed"
)

const countPage = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:m="http://schemas.microsoft.com/ado/2007/08/dataservices/metadata">
  <title type="text">Packages</title>
  <m:count>2941</m:count>
  <entry><title>Carbon</title></entry>
</feed>`

func TestExtractCount(t *testing.T) {
	n, err := extractCount(countPage)
	if err != nil {
		t.Fatalf("extractCount error: %v", err)
	}
	if n != 2941 {
		t.Errorf("count = %d, want 2941", n)
	}
}

func TestExtractCountMissing(t *testing.T) {
	page := `<?xml version="1.0"?><feed xmlns="http://www.w3.org/2005/Atom"><entry/></feed>`
	n, err := extractCount(page)
	if err != nil {
		t.Fatalf("extractCount error: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0 for a page without m:count", n)
	}
}

func TestExtractCountUndeclaredPrefix(t *testing.T) {
	// Some fixtures omit the xmlns:m declaration; the prefix then passes
	// through as the namespace.
	page := `<feed><m:count>17</m:count></feed>`
	n, err := extractCount(page)
	if err != nil {
		t.Fatalf("extractCount error: %v", err)
	}
	if n != 17 {
		t.Errorf("count = %d, want 17", n)
	}
}

func TestExtractCountForeignNamespaceIgnored(t *testing.T) {
	page := `<feed xmlns:x="urn:other"><x:count>7</x:count></feed>`
	n, err := extractCount(page)
	if err != nil {
		t.Fatalf("extractCount error: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0 when count is in a foreign namespace", n)
	}
}

func TestExtractCountMalformed(t *testing.T) {
	tests := []struct {
		name string
		page string
	}{
		{"truncated document", `<feed xmlns:m="http://schemas.microsoft.com/ado/2007/08/dataservices/metadata"><m:count>12`},
		{"damage after count", `<feed><m:count>12400</m:count><entry></feed>`},
		{"not xml at all", `{"error": "service unavailable"}`},
		{"non-numeric count", `<feed><m:count>many</m:count></feed>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := extractCount(tt.page); !errors.Is(err, feed.ErrData) {
				t.Errorf("extractCount error = %v, want ErrData", err)
			}
		})
	}
}
