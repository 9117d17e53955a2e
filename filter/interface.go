package filter

import (
	"errors"
	"regexp"
	"sync"

	"github.com/jellydator/ttlcache/v3"
)

// ErrFilterNotFound is returned when a filter name does not match any
// filter in the Set.
var ErrFilterNotFound = errors.New("specified filter was not found")

var ignoreCaseFlags = regexpFlagList([]string{"i"})
var defaultFlags = regexpFlagList{}

// Matcher reports whether a line's display string matches a compiled
// query.
type Matcher func(string) bool

// Filter compiles queries into Matchers. An empty query compiles to a
// Matcher that accepts everything.
type Filter interface {
	Compile(query string) (Matcher, error)
	String() string
}

// Set holds the available filters and tracks which one is in effect.
type Set struct {
	current int
	filters []Filter
	mutex   sync.Mutex
}

type regexpFlags interface {
	flags(string) []string
}
type regexpFlagList []string

type regexpFlagFunc func(string) []string

// regexpQueryFactory caches compiled queries. An entry expires when it
// has not been used for the cache's TTL.
type regexpQueryFactory struct {
	compiled *ttlcache.Cache[string, regexpQuery]
}

type regexpQuery struct {
	positive []*regexp.Regexp
	negative []*regexp.Regexp
}

// Regexp matches lines against one regular expression per query term.
// All positive terms must match and no negative term may match.
type Regexp struct {
	factory   *regexpQueryFactory
	flags     regexpFlags
	quotemeta bool
	name      string
}

// Fuzzy matches lines that contain the runes of each query term in
// order, with anything in between.
type Fuzzy struct{}
