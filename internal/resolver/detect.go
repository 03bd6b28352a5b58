package resolver

import (
	"strings"

	"github.com/openscripture/bibleapi/core/xml"
)

// detect classifies a parsed document by structural signals, checked in a
// fixed order: USFX root tag, OSIS root tag (split on milestone verses),
// then a generic book/chapter/verse tree.
func detect(doc *xml.Document) Kind {
	root := doc.Root()
	if root == nil {
		return KindUnknown
	}

	tag := strings.ToLower(root.Name())
	switch {
	case strings.Contains(tag, "usfx"):
		return KindUsfx
	case strings.HasSuffix(tag, "osis"):
		if n, err := doc.XPathFirst("//verse[@osisID and @sID]"); err == nil && n != nil {
			return KindOsisSidEid
		}
		return KindOsisAttribute
	}

	if n, err := doc.XPathFirst("//book//chapter[@number]//verse[@number]"); err == nil && n != nil {
		return KindGeneric
	}
	return KindUnknown
}
