// Package books normalizes Bible book identifiers to canonical 3-letter codes
// and carries canon metadata (display names, ordering, testament partition).
package books

import "strings"

// aliases maps uppercased, space-stripped book spellings to canonical codes.
// Covers English full names, common abbreviations, and OSIS short forms.
var aliases = map[string]string{
	// Full names
	"GENESIS": "GEN", "EXODUS": "EXO", "LEVITICUS": "LEV", "NUMBERS": "NUM", "DEUTERONOMY": "DEU",
	"JOSHUA": "JOS", "JUDGES": "JDG", "RUTH": "RUT", "1SAMUEL": "1SA", "2SAMUEL": "2SA",
	"1KINGS": "1KI", "2KINGS": "2KI", "1CHRONICLES": "1CH", "2CHRONICLES": "2CH", "EZRA": "EZR",
	"NEHEMIAH": "NEH", "ESTHER": "EST", "PSALMS": "PSA", "PROVERBS": "PRO",
	"ECCLESIASTES": "ECC", "SONGOFSOLOMON": "SNG", "SONGOFSONGS": "SNG", "ISAIAH": "ISA",
	"JEREMIAH": "JER", "LAMENTATIONS": "LAM", "EZEKIEL": "EZK", "DANIEL": "DAN", "HOSEA": "HOS",
	"JOEL": "JOL", "AMOS": "AMO", "OBADIAH": "OBA", "JONAH": "JON", "MICAH": "MIC",
	"NAHUM": "NAH", "HABAKKUK": "HAB", "ZEPHANIAH": "ZEP", "HAGGAI": "HAG", "ZECHARIAH": "ZEC",
	"MALACHI": "MAL", "MATTHEW": "MAT", "MARK": "MRK", "LUKE": "LUK", "JOHN": "JHN",
	"ACTS": "ACT", "ROMANS": "ROM", "1CORINTHIANS": "1CO", "2CORINTHIANS": "2CO",
	"GALATIANS": "GAL", "EPHESIANS": "EPH", "PHILIPPIANS": "PHP", "COLOSSIANS": "COL",
	"1THESSALONIANS": "1TH", "2THESSALONIANS": "2TH", "1TIMOTHY": "1TI", "2TIMOTHY": "2TI",
	"TITUS": "TIT", "PHILEMON": "PHM", "HEBREWS": "HEB", "JAMES": "JAS", "1PETER": "1PE",
	"2PETER": "2PE", "1JOHN": "1JN", "2JOHN": "2JN", "3JOHN": "3JN", "JUDE": "JUD",
	"REVELATION": "REV",

	// OSIS short forms and common abbreviations
	"EXOD": "EXO", "DEUT": "DEU", "JOSH": "JOS", "JUDG": "JDG", "1SAM": "1SA", "2SAM": "2SA",
	"1KGS": "1KI", "2KGS": "2KI", "1CHR": "1CH", "2CHR": "2CH", "ESTH": "EST",
	"PS": "PSA", "PSALM": "PSA", "PROV": "PRO", "ECCL": "ECC", "SONG": "SNG",
	"EZEK": "EZK", "OBAD": "OBA", "ZEPH": "ZEP", "ZECH": "ZEC",
	"MATT": "MAT", "PHIL": "PHP", "PHLM": "PHM", "1THESS": "1TH", "2THESS": "2TH",
	"1TIM": "1TI", "2TIM": "2TI", "1PET": "1PE", "2PET": "2PE",
}

// Normalize maps an arbitrary book name or abbreviation to a canonical
// 3-letter uppercase code. Inputs that are already 3 characters long are
// returned uppercased as-is, without validation against the known set.
// Unknown inputs fall back to the first 3 characters of the uppercased
// input; Normalize never fails.
func Normalize(input string) string {
	input = strings.ToUpper(strings.TrimSpace(input))

	if len(input) == 3 {
		return input
	}

	if code, ok := aliases[strings.ReplaceAll(input, " ", "")]; ok {
		return code
	}
	if len(input) > 3 {
		return input[:3]
	}
	return input
}

// Name returns the English display name for a canonical book code.
// Unknown codes are returned unchanged.
func Name(code string) string {
	if name, ok := bookNames[code]; ok {
		return name
	}
	return code
}

// IsProtestant reports whether code is one of the 66 Protestant-canon books.
func IsProtestant(code string) bool {
	_, ok := canonIndex[code]
	return ok
}

// CanonOrder returns the position of code in canon order, or -1 if unknown.
func CanonOrder(code string) int {
	if i, ok := canonIndex[code]; ok {
		return i
	}
	return -1
}
