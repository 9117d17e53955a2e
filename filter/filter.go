package filter

import (
	"regexp"

	"github.com/peco/liveview/line"
)

// Lines adapts m into a predicate over lines, matching DisplayString.
// The result can be handed to liveview.WithFilter or SetFilter.
func Lines(m Matcher) func(line.Line) bool {
	return func(l line.Line) bool {
		return m(l.DisplayString())
	}
}

func isExcluded(negRegexps []*regexp.Regexp, text string) bool {
	for _, rx := range negRegexps {
		if rx.MatchString(text) {
			return true
		}
	}
	return false
}
