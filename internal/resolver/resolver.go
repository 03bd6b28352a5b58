// Package resolver locates book/chapter/verse spans in heterogeneous Bible
// XML dialects. It classifies a parsed document as one of the supported
// formats (OSIS with sID/eID milestones, OSIS with container verses, USFX
// inline markers, or a generic chapter/verse structure) and dispatches each
// query to the matching extraction strategy. Unknown documents fall through
// a fixed-order strategy chain and the first strategy yielding verses wins.
package resolver

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/openscripture/bibleapi/core/books"
	"github.com/openscripture/bibleapi/core/xml"
)

// Kind classifies the markup dialect of a parsed document.
type Kind int

const (
	// KindUnknown means no structural signal matched; extraction falls
	// through the strategy chain.
	KindUnknown Kind = iota
	// KindOsisSidEid is OSIS with milestone verse markers (sID/eID pairs).
	KindOsisSidEid
	// KindOsisAttribute is OSIS with container verse elements carrying
	// only an osisID.
	KindOsisAttribute
	// KindUsfx is USFX with inline <c id="N"/> and <v id="N"/> markers.
	KindUsfx
	// KindGeneric is a book/chapter/verse element tree with number
	// attributes.
	KindGeneric
)

func (k Kind) String() string {
	switch k {
	case KindOsisSidEid:
		return "osis-sid-eid"
	case KindOsisAttribute:
		return "osis-attribute"
	case KindUsfx:
		return "usfx"
	case KindGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// Verse is a single extracted verse.
type Verse struct {
	BookID  string `json:"book_id"`
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
	Text    string `json:"text"`
}

// ChapterRef identifies one chapter of a book.
type ChapterRef struct {
	BookID  string `json:"book_id"`
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
}

// Book is a book listed in a source document.
type Book struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Document is a classified, read-only parsed source document. It is safe
// for concurrent readers after construction.
type Document struct {
	doc  *xml.Document
	kind Kind
}

// Parse parses raw XML and classifies its format.
func Parse(data []byte) (*Document, error) {
	doc, err := xml.Parse(data)
	if err != nil {
		return nil, err
	}
	return &Document{doc: doc, kind: detect(doc)}, nil
}

// Kind returns the detected format of the document.
func (d *Document) Kind() Kind {
	return d.kind
}

// VersesForChapter returns the verses of one chapter of a book, sorted
// ascending by verse number. verseStart/verseEnd of 0 mean unbounded.
// Unknown books and absent chapters yield an empty slice, never an error.
func (d *Document) VersesForChapter(book string, chapter, verseStart, verseEnd int) []Verse {
	switch d.kind {
	case KindUsfx:
		return finishVerses(d.usfxVerses(book, chapter, verseStart, verseEnd))
	case KindOsisSidEid, KindOsisAttribute:
		return finishVerses(d.osisVerses(book, chapter, verseStart, verseEnd))
	case KindGeneric:
		return finishVerses(d.genericVerses(book, chapter, verseStart, verseEnd))
	default:
		// Strategy fallthrough: first strategy yielding verses wins.
		for _, try := range []func(string, int, int, int) []Verse{
			d.usfxVerses, d.osisVerses, d.genericVerses,
		} {
			if verses := try(book, chapter, verseStart, verseEnd); len(verses) > 0 {
				return finishVerses(verses)
			}
		}
		return nil
	}
}

// ChaptersForBook returns the distinct chapters of a book in ascending
// order. Unknown books yield an empty slice.
func (d *Document) ChaptersForBook(book string) []ChapterRef {
	switch d.kind {
	case KindUsfx:
		return finishChapters(d.usfxChapters(book))
	case KindOsisSidEid, KindOsisAttribute:
		return finishChapters(d.osisChapters(book))
	case KindGeneric:
		return finishChapters(d.genericChapters(book))
	default:
		for _, try := range []func(string) []ChapterRef{
			d.usfxChapters, d.osisChapters, d.genericChapters,
		} {
			if chapters := try(book); len(chapters) > 0 {
				return finishChapters(chapters)
			}
		}
		return nil
	}
}

// Books lists the books declared with id attributes in the document.
func (d *Document) Books() []Book {
	nodes, err := d.doc.XPath("//book")
	if err != nil {
		return nil
	}
	var out []Book
	for _, n := range nodes {
		id := n.Attr("id")
		name := n.Attr("name")
		if name == "" {
			name = id
		}
		if id != "" && name != "" {
			out = append(out, Book{ID: id, Name: name})
		}
	}
	return out
}

// RandomVerse picks a uniformly random verse from the document, optionally
// restricted to a set of book identifiers. Returns nil when no verse
// qualifies.
func (d *Document) RandomVerse(bookFilter []string) *Verse {
	var wanted map[string]bool
	if len(bookFilter) > 0 {
		wanted = make(map[string]bool, len(bookFilter))
		for _, b := range bookFilter {
			wanted[books.Normalize(b)] = true
		}
	}

	all := d.allVerses(wanted, func(string) bool { return true }, 0)
	if len(all) == 0 {
		return nil
	}
	v := all[rand.Intn(len(all))]
	return &v
}

// Search returns up to limit verses whose text contains the query,
// case-insensitively. A limit of 0 defaults to 50.
func (d *Document) Search(query string, limit int) []Verse {
	if limit <= 0 {
		limit = 50
	}
	needle := strings.ToLower(query)
	return d.allVerses(nil, func(text string) bool {
		return strings.Contains(strings.ToLower(text), needle)
	}, limit)
}

// finishVerses enforces the output contract: ascending by verse number,
// no duplicate verse numbers. Extraction order is not guaranteed by the
// underlying tree walk, so this is applied to every strategy's output.
func finishVerses(verses []Verse) []Verse {
	if len(verses) == 0 {
		return nil
	}
	sort.SliceStable(verses, func(i, j int) bool {
		return verses[i].Verse < verses[j].Verse
	})
	out := verses[:0]
	lastVerse := -1
	for _, v := range verses {
		if v.Verse == lastVerse {
			continue
		}
		out = append(out, v)
		lastVerse = v.Verse
	}
	return out
}

// finishChapters sorts ascending and de-duplicates by chapter number.
func finishChapters(chapters []ChapterRef) []ChapterRef {
	if len(chapters) == 0 {
		return nil
	}
	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].Chapter < chapters[j].Chapter
	})
	out := chapters[:0]
	lastChapter := -1
	for _, c := range chapters {
		if c.Chapter == lastChapter {
			continue
		}
		out = append(out, c)
		lastChapter = c.Chapter
	}
	return out
}
