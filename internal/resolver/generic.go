package resolver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openscripture/bibleapi/core/books"
)

// genericVerses extracts one chapter from a plain book/chapter/verse tree.
func (d *Document) genericVerses(book string, chapter, verseStart, verseEnd int) []Verse {
	match, ok := d.findBook(book)
	if !ok {
		return nil
	}
	chapterElem, err := match.node.SelectFirst(fmt.Sprintf(".//chapter[@number='%d']", chapter))
	if err != nil || chapterElem == nil {
		return nil
	}

	var out []Verse
	verses, err := chapterElem.SelectAll("verse")
	if err != nil {
		return nil
	}
	for _, v := range verses {
		num, err := strconv.Atoi(v.Attr("number"))
		if err != nil || !inRange(num, verseStart, verseEnd) {
			continue
		}
		text := strings.TrimSpace(v.Text())
		if text == "" {
			text = strings.TrimSpace(v.InnerText())
		}
		if text == "" {
			continue
		}
		out = append(out, Verse{
			BookID:  match.ID,
			Book:    match.Name,
			Chapter: chapter,
			Verse:   num,
			Text:    text,
		})
	}
	return out
}

// genericChapters collects the number (or id) attribute of every chapter
// element under the book.
func (d *Document) genericChapters(book string) []ChapterRef {
	match, ok := d.findBook(book)
	if !ok {
		return nil
	}
	chapters, err := match.node.SelectAll(".//chapter")
	if err != nil {
		return nil
	}
	var out []ChapterRef
	for _, c := range chapters {
		attr := c.Attr("number")
		if attr == "" {
			attr = c.Attr("id")
		}
		if num, err := strconv.Atoi(attr); err == nil {
			out = append(out, ChapterRef{BookID: match.ID, Book: match.Name, Chapter: num})
		}
	}
	return out
}

// allVerses scans every book/chapter/verse element in the document,
// keeping verses whose book passes the optional normalized-identifier
// filter and whose text passes keep. A limit of 0 means unlimited.
func (d *Document) allVerses(wanted map[string]bool, keep func(string) bool, limit int) []Verse {
	bookNodes, err := d.doc.XPath("//book")
	if err != nil {
		return nil
	}

	var out []Verse
	for _, b := range bookNodes {
		id := b.Attr("id")
		name := b.Attr("name")
		if name == "" {
			name = id
		}
		if wanted != nil && !wanted[books.Normalize(id)] {
			continue
		}
		chapters, err := b.SelectAll(".//chapter")
		if err != nil {
			continue
		}
		for _, c := range chapters {
			chapterNum, err := strconv.Atoi(c.Attr("number"))
			if err != nil {
				continue
			}
			verses, err := c.SelectAll("verse")
			if err != nil {
				continue
			}
			for _, v := range verses {
				num, err := strconv.Atoi(v.Attr("number"))
				if err != nil {
					continue
				}
				text := strings.TrimSpace(v.Text())
				if text == "" {
					text = strings.TrimSpace(v.InnerText())
				}
				if text == "" || !keep(text) {
					continue
				}
				out = append(out, Verse{
					BookID:  id,
					Book:    name,
					Chapter: chapterNum,
					Verse:   num,
					Text:    text,
				})
				if limit > 0 && len(out) >= limit {
					return out
				}
			}
		}
	}
	return out
}
