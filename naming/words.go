package naming

import "unicode"

const (
	classNone = iota
	classLower
	classUpper
	classDigit
	classOther
)

// Words splits a Go identifier into its words.
//
// Case changes start a new word, an upper case run followed by a lower case
// letter gives its last letter to the next word ("PDFLoader" is "PDF",
// "Loader") and an upper case letter keeps the digits that follow it ("S3").
// Any rune that is neither a letter nor a digit separates words and is dropped,
// so "db_url", "dbUrl" and "DBUrl" all split into two words.
func Words(src string) []string {
	var runes [][]rune
	lastClass := classNone

	for _, r := range src {
		var class int
		switch {
		case unicode.IsLower(r):
			class = classLower
		case unicode.IsUpper(r):
			class = classUpper
		case unicode.IsDigit(r):
			class = classDigit
		default:
			lastClass = classOther
			continue
		}

		if lastClass != classNone && lastClass != classOther &&
			(class == lastClass || (lastClass == classUpper && class == classDigit)) {
			sz := len(runes) - 1
			runes[sz] = append(runes[sz], r)
		} else {
			runes = append(runes, []rune{r})
		}
		lastClass = class
	}

	// "PDFL", "oader" -> "PDF", "Loader"
	for i := range len(runes) - 1 {
		cur, next := runes[i], runes[i+1]
		if len(cur) > 0 && unicode.IsUpper(cur[len(cur)-1]) && unicode.IsLower(next[0]) {
			runes[i+1] = append([]rune{cur[len(cur)-1]}, next...)
			runes[i] = cur[:len(cur)-1]
		}
	}

	words := make([]string, 0, len(runes))
	for _, s := range runes {
		if len(s) > 0 {
			words = append(words, string(s))
		}
	}

	return words
}
