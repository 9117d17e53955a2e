package filter

import (
	"strings"
	"unicode/utf8"

	"github.com/peco/liveview/internal/util"
)

// NewFuzzy builds a fuzzy-finder type of filter. Each term matches with
// smart case, and a term like "ABC" matches the equivalent of
// "A(.*)B(.*)C".
func NewFuzzy() *Fuzzy {
	return &Fuzzy{}
}

func (ff *Fuzzy) String() string {
	return "Fuzzy"
}

func (ff *Fuzzy) Compile(query string) (Matcher, error) {
	positive, negative := SplitQueryTerms(query)
	hasUpper := util.ContainsUpper(query)

	return func(s string) bool {
		for _, term := range negative {
			if fuzzyMatch(s, term, hasUpper) {
				return false
			}
		}
		for _, term := range positive {
			if !fuzzyMatch(s, term, hasUpper) {
				return false
			}
		}
		return true
	}, nil
}

func fuzzyMatch(txt, query string, caseSensitive bool) bool {
	for len(query) > 0 {
		r, n := utf8.DecodeRuneInString(query)
		query = query[n:]
		if r == utf8.RuneError {
			return false
		}

		var i int
		if caseSensitive {
			i = strings.IndexRune(txt, r)
		} else {
			i = strings.IndexFunc(txt, util.CaseInsensitiveIndexFunc(r))
		}
		if i == -1 {
			return false
		}

		// the next rune must match after this one
		_, size := utf8.DecodeRuneInString(txt[i:])
		txt = txt[i+size:]
	}
	return true
}
