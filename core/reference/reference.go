// Package reference parses human Bible reference strings such as
// "John 3:16" or "Matt 5:1-10" into book/chapter/verse ranges.
package reference

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/openscripture/bibleapi/core/errors"
)

// Range is a resolved reference span within a single chapter.
// VerseEnd equals VerseStart for single-verse references; cross-chapter
// ranges are not supported.
type Range struct {
	Book       string `json:"book"`
	Chapter    int    `json:"chapter"`
	VerseStart int    `json:"verse_start"`
	VerseEnd   int    `json:"verse_end"`
}

// refExpr is the reference grammar. Whitespace is not elided: the single
// space between book and chapter is mandatory, so "John3:16" fails.
type refExpr struct {
	Book     string      `parser:"@Book"`
	Chapter  int         `parser:"Space @Number"`
	Verse    int         `parser:"Colon @Number"`
	VerseEnd *int        `parser:"(Dash @Number)?"`
	Extras   []extraSpan `parser:"@@*"`
}

// extraSpan captures trailing comma groups ("...,18" or "...,18-20").
// They are accepted by the grammar but not expanded into output ranges.
type extraSpan struct {
	Start int  `parser:"Comma @Number"`
	End   *int `parser:"(Dash @Number)?"`
}

var refLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Book names: optional leading digit, letters, internal spaces
	// ("John", "1 John", "Song of Solomon").
	{Name: "Book", Pattern: `(?:\d\s*)?[A-Za-z]+(?:\s+[A-Za-z]+)*`},
	{Name: "Number", Pattern: `\d+`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Space", Pattern: `\s+`},
})

var refParser = participle.MustBuild[refExpr](
	participle.Lexer(refLexer),
)

// shortNames is a small curated map of common book spellings used only by
// the reference grammar; the full alias table lives in core/books.
var shortNames = map[string]string{
	"john": "JHN", "jn": "JHN", "joh": "JHN",
	"matt": "MAT", "matthew": "MAT", "mat": "MAT", "mt": "MAT",
	"mark": "MRK", "mk": "MRK", "mar": "MRK",
	"luke": "LUK", "lk": "LUK", "luk": "LUK",
	"genesis": "GEN", "gen": "GEN", "ge": "GEN",
	"exodus": "EXO", "exo": "EXO", "ex": "EXO",
	"psalm": "PSA", "psalms": "PSA", "ps": "PSA", "psa": "PSA",
}

// Parse parses a reference string into ranges. Leading "+" characters
// (from URL encoding) are treated as spaces. Only the first span is
// returned: comma-separated additional spans are accepted by the grammar
// but ignored.
func Parse(input string) ([]Range, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(input, "+", " "))
	if cleaned == "" {
		return nil, errors.NewReference(input, "empty reference")
	}

	expr, err := refParser.ParseString("", cleaned)
	if err != nil {
		return nil, errors.NewReference(input, "does not match book chapter:verse shape")
	}

	book := resolveBook(expr.Book)
	end := expr.Verse
	if expr.VerseEnd != nil {
		end = *expr.VerseEnd
	}

	return []Range{{
		Book:       book,
		Chapter:    expr.Chapter,
		VerseStart: expr.Verse,
		VerseEnd:   end,
	}}, nil
}

// resolveBook maps a book token to a 3-letter code via the curated map,
// falling back to the first 3 characters of the uppercased token.
func resolveBook(token string) string {
	key := strings.ToLower(strings.TrimSpace(token))
	if code, ok := shortNames[key]; ok {
		return code
	}
	upper := strings.ToUpper(key)
	if len(upper) > 3 {
		return upper[:3]
	}
	return upper
}
