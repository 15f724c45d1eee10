package odata

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pshelf/pshelf/pkg/feed"
)

// metadataNS is the OData metadata namespace qualifying the inline count
// element (m:count) in Atom responses.
const metadataNS = "http://schemas.microsoft.com/ado/2007/08/dataservices/metadata"

// extractCount pulls the total result count from an Atom response page.
//
// The whole page is tokenized, so malformed XML anywhere in the document
// fails with ErrData even when a count element appears before the damage.
// A well-formed page without a count element reports zero. When several
// count elements are present the first one wins.
func extractCount(page string) (int, error) {
	dec := xml.NewDecoder(strings.NewReader(page))

	var (
		count      int
		found      bool
		sawElement bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("%w: parse response page: %v", feed.ErrData, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawElement = true
		if start.Name.Local != "count" {
			continue
		}
		// Undeclared prefixes survive tokenizing with the prefix as the
		// namespace, so accept "m" alongside the resolved URI.
		if start.Name.Space != metadataNS && start.Name.Space != "m" {
			continue
		}

		var text string
		if err := dec.DecodeElement(&text, &start); err != nil {
			return 0, fmt.Errorf("%w: parse response page: %v", feed.ErrData, err)
		}
		if found {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return 0, fmt.Errorf("%w: result count %q is not a number", feed.ErrData, text)
		}
		count, found = n, true
	}
	if !sawElement {
		return 0, fmt.Errorf("%w: response page is not XML", feed.ErrData)
	}
	return count, nil
}
