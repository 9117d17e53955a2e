package filter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/peco/liveview/internal/util"
	"github.com/pkg/errors"
)

const maxRegexpCacheSize = 100

func (r regexpFlagList) flags(_ string) []string {
	return []string(r)
}

func (r regexpFlagFunc) flags(s string) []string {
	return r(s)
}

func regexpFor(q string, flags []string, quotemeta bool) (*regexp.Regexp, error) {
	reTxt := q
	if quotemeta {
		reTxt = regexp.QuoteMeta(q)
	}

	if len(flags) > 0 {
		reTxt = fmt.Sprintf("(?%s)%s", strings.Join(flags, ""), reTxt)
	}

	re, err := regexp.Compile(reTxt)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compile regular expression '%s'", reTxt)
	}
	return re, nil
}

// SplitQueryTerms splits a query into positive and negative terms.
// A term starting with `-` followed by something other than a hyphen is
// negative, and the `-` is dropped. A term starting with `\-` is a
// positive literal without the backslash. Bare `-` and `--` are positive.
func SplitQueryTerms(query string) (positive, negative []string) {
	for _, tok := range strings.Fields(query) {
		switch {
		case strings.HasPrefix(tok, `\-`):
			positive = append(positive, tok[1:])
		case tok == "-" || tok == "--":
			positive = append(positive, tok)
		case strings.HasPrefix(tok, "-"):
			negative = append(negative, tok[1:])
		default:
			positive = append(positive, tok)
		}
	}
	return
}

// termsToRegexps compiles terms using flags computed from the whole
// query, which SmartCase needs.
func termsToRegexps(terms []string, fullQuery string, flags regexpFlags, quotemeta bool) ([]*regexp.Regexp, error) {
	regexps := make([]*regexp.Regexp, 0, len(terms))
	for _, t := range terms {
		re, err := regexpFor(t, flags.flags(fullQuery), quotemeta)
		if err != nil {
			return nil, err
		}
		regexps = append(regexps, re)
	}
	return regexps, nil
}

func newRegexpQueryFactory(threshold time.Duration) *regexpQueryFactory {
	return &regexpQueryFactory{
		compiled: ttlcache.New[string, regexpQuery](
			ttlcache.WithTTL[string, regexpQuery](threshold),
			ttlcache.WithCapacity[string, regexpQuery](maxRegexpCacheSize),
		),
	}
}

// Compile returns the regular expressions for query s, from the cache
// when it was used less than the threshold ago.
func (f *regexpQueryFactory) Compile(s string, flags regexpFlags, quotemeta bool) (positive, negative []*regexp.Regexp, err error) {
	if item := f.compiled.Get(s); item != nil {
		rq := item.Value()
		return rq.positive, rq.negative, nil
	}

	posTerms, negTerms := SplitQueryTerms(s)
	if positive, err = termsToRegexps(posTerms, s, flags, quotemeta); err != nil {
		return nil, nil, errors.Wrap(err, "failed to compile positive terms")
	}
	if negative, err = termsToRegexps(negTerms, s, flags, quotemeta); err != nil {
		return nil, nil, errors.Wrap(err, "failed to compile negative terms")
	}

	f.compiled.Set(s, regexpQuery{positive: positive, negative: negative}, ttlcache.DefaultTTL)
	return positive, negative, nil
}

func (f *regexpQueryFactory) size() int {
	return f.compiled.Len()
}

// NewRegexp creates a filter that treats each term as a regular
// expression.
func NewRegexp() *Regexp {
	return &Regexp{
		factory: newRegexpQueryFactory(time.Minute),
		flags:   defaultFlags,
		name:    "Regexp",
	}
}

// NewIRegexp creates a case-insensitive Regexp.
func NewIRegexp() *Regexp {
	rf := NewRegexp()
	rf.flags = ignoreCaseFlags
	rf.name = "IRegexp"
	return rf
}

func NewIgnoreCase() *Regexp {
	rf := NewRegexp()
	rf.flags = ignoreCaseFlags
	rf.quotemeta = true
	rf.name = "IgnoreCase"
	return rf
}

func NewCaseSensitive() *Regexp {
	rf := NewRegexp()
	rf.quotemeta = true
	rf.name = "CaseSensitive"
	return rf
}

// NewSmartCase creates a filter that ignores case unless the query
// contains an upper case character.
func NewSmartCase() *Regexp {
	rf := NewRegexp()
	rf.quotemeta = true
	rf.name = "SmartCase"
	rf.flags = regexpFlagFunc(func(q string) []string {
		if util.ContainsUpper(q) {
			return defaultFlags
		}
		return ignoreCaseFlags
	})
	return rf
}

func (rf *Regexp) Compile(query string) (Matcher, error) {
	if pdebug.Enabled {
		g := pdebug.Marker("Regexp.Compile (%s, %q)", rf.name, query)
		defer g.End()
	}

	positive, negative, err := rf.factory.Compile(query, rf.flags, rf.quotemeta)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compile query for %s", rf.name)
	}

	return func(s string) bool {
		if isExcluded(negative, s) {
			return false
		}
		for _, rx := range positive {
			if !rx.MatchString(s) {
				return false
			}
		}
		return true
	}, nil
}

func (rf *Regexp) String() string {
	return rf.name
}
