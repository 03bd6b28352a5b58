package resolver

import (
	"strconv"
	"strings"

	"github.com/openscripture/bibleapi/core/xml"
)

// osisVerses extracts one chapter from OSIS markup. Container verses carry
// their text directly and are matched by osisID prefix; milestone documents
// instead accumulate the character data between a verse sID marker and its
// matching eID marker.
func (d *Document) osisVerses(book string, chapter, verseStart, verseEnd int) []Verse {
	match, ok := d.findBook(book)
	if !ok {
		return nil
	}
	prefix := match.ID + "." + strconv.Itoa(chapter) + "."

	if d.kind == KindOsisSidEid {
		return d.osisMilestoneVerses(match, prefix, chapter, verseStart, verseEnd)
	}
	return d.osisContainerVerses(match, prefix, chapter, verseStart, verseEnd)
}

func (d *Document) osisContainerVerses(match bookMatch, prefix string, chapter, verseStart, verseEnd int) []Verse {
	nodes, err := d.doc.XPath("//*[@osisID]")
	if err != nil {
		return nil
	}

	var out []Verse
	for _, n := range nodes {
		osisID := n.Attr("osisID")
		if !strings.HasPrefix(osisID, prefix) {
			continue
		}
		verse, ok := osisVerseNumber(osisID)
		if !ok || !inRange(verse, verseStart, verseEnd) {
			continue
		}
		text := strings.TrimSpace(n.Text())
		if text == "" {
			text = strings.TrimSpace(n.InnerText())
		}
		if text == "" {
			continue
		}
		out = append(out, Verse{
			BookID:  match.ID,
			Book:    match.Name,
			Chapter: chapter,
			Verse:   verse,
			Text:    text,
		})
	}
	return out
}

// osisMilestoneVerses walks the document in order, opening a verse at each
// matching sID marker and closing it at the marker whose eID echoes the
// opening sID. Text nodes seen while a verse is open belong to it.
func (d *Document) osisMilestoneVerses(match bookMatch, prefix string, chapter, verseStart, verseEnd int) []Verse {
	root := d.doc.Root()
	if root == nil {
		return nil
	}

	var (
		out          []Verse
		open         bool
		openSID      string
		currentVerse int
		text         strings.Builder
	)
	flush := func() {
		trimmed := strings.TrimSpace(text.String())
		if open && trimmed != "" && inRange(currentVerse, verseStart, verseEnd) {
			out = append(out, Verse{
				BookID:  match.ID,
				Book:    match.Name,
				Chapter: chapter,
				Verse:   currentVerse,
				Text:    trimmed,
			})
		}
		open = false
		text.Reset()
	}

	root.Walk(func(n *xml.Node) bool {
		switch {
		case n.IsElement() && n.Name() == "verse" && n.HasAttr("sID"):
			flush()
			osisID := n.Attr("osisID")
			if strings.HasPrefix(osisID, prefix) {
				if verse, ok := osisVerseNumber(osisID); ok {
					open = true
					openSID = n.Attr("sID")
					currentVerse = verse
				}
			}
		case n.IsElement() && n.Name() == "verse" && n.HasAttr("eID"):
			if open && n.Attr("eID") == openSID {
				flush()
			}
		case n.IsText() && open:
			text.WriteString(n.TextData())
		}
		return true
	})
	flush()
	return out
}

// osisChapters collects the distinct chapter segments of every osisID
// prefixed by the book identifier.
func (d *Document) osisChapters(book string) []ChapterRef {
	match, ok := d.findBook(book)
	if !ok {
		return nil
	}
	prefix := match.ID + "."

	nodes, err := d.doc.XPath("//*[@osisID]")
	if err != nil {
		return nil
	}
	var out []ChapterRef
	for _, n := range nodes {
		osisID := n.Attr("osisID")
		if !strings.HasPrefix(osisID, prefix) {
			continue
		}
		parts := strings.Split(osisID, ".")
		if len(parts) < 2 {
			continue
		}
		if num, err := strconv.Atoi(parts[1]); err == nil {
			out = append(out, ChapterRef{BookID: match.ID, Book: match.Name, Chapter: num})
		}
	}
	return out
}

// osisVerseNumber parses the verse segment of a BOOK.chapter.verse osisID.
func osisVerseNumber(osisID string) (int, bool) {
	parts := strings.Split(osisID, ".")
	if len(parts) < 3 {
		return 0, false
	}
	num, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, false
	}
	return num, true
}
