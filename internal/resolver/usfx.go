package resolver

import (
	"strconv"
	"strings"

	"github.com/openscripture/bibleapi/core/xml"
)

// usfxVerses extracts one chapter from USFX-style markup, where <c id="N"/>
// and <v id="N"/> markers appear inline and verse text is whatever character
// data follows a verse marker until the next one. The walk keeps a current
// chapter and open verse and flushes the accumulated text at each boundary.
func (d *Document) usfxVerses(book string, chapter, verseStart, verseEnd int) []Verse {
	match, ok := d.findBook(book)
	if !ok {
		return nil
	}

	var (
		out            []Verse
		currentChapter int
		currentVerse   int
		text           strings.Builder
	)
	flush := func() {
		trimmed := strings.TrimSpace(text.String())
		if currentChapter == chapter && currentVerse > 0 && trimmed != "" &&
			inRange(currentVerse, verseStart, verseEnd) {
			out = append(out, Verse{
				BookID:  match.ID,
				Book:    match.Name,
				Chapter: chapter,
				Verse:   currentVerse,
				Text:    trimmed,
			})
		}
	}

	match.node.Walk(func(n *xml.Node) bool {
		switch {
		case n.IsElement() && n.Name() == "c" && n.HasAttr("id"):
			flush()
			currentVerse = 0
			text.Reset()
			if num, err := strconv.Atoi(n.Attr("id")); err == nil {
				currentChapter = num
			}
		case n.IsElement() && n.Name() == "v" && n.HasAttr("id"):
			flush()
			text.Reset()
			if num, err := strconv.Atoi(n.Attr("id")); err == nil {
				currentVerse = num
			} else {
				currentVerse = 0
			}
		case n.IsText() && currentChapter == chapter && currentVerse > 0:
			text.WriteString(n.TextData())
		}
		return true
	})
	flush()
	return out
}

// usfxChapters collects the distinct numeric <c id="N"/> markers of a book.
func (d *Document) usfxChapters(book string) []ChapterRef {
	match, ok := d.findBook(book)
	if !ok {
		return nil
	}

	var out []ChapterRef
	match.node.Walk(func(n *xml.Node) bool {
		if n.IsElement() && n.Name() == "c" && n.HasAttr("id") {
			if num, err := strconv.Atoi(n.Attr("id")); err == nil {
				out = append(out, ChapterRef{BookID: match.ID, Book: match.Name, Chapter: num})
			}
		}
		return true
	})
	return out
}

// inRange applies the optional verse window; 0 bounds are open.
func inRange(verse, start, end int) bool {
	if start > 0 && verse < start {
		return false
	}
	if end > 0 && verse > end {
		return false
	}
	return true
}
