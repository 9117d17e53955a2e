// Package util holds small helpers shared by the filter, line and cli
// packages.
package util

import (
	"os"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/term"
)

// CaseInsensitiveIndexFunc returns a matcher for strings.IndexFunc that
// compares runes case-insensitively against r.
func CaseInsensitiveIndexFunc(r rune) func(rune) bool {
	lr := unicode.ToUpper(r)
	return func(v rune) bool {
		return lr == unicode.ToUpper(v)
	}
}

func ContainsUpper(query string) bool {
	for _, c := range query {
		if unicode.IsUpper(c) {
			return true
		}
	}
	return false
}

var reANSIEscapeChars = regexp.MustCompile("\x1B\\[(?:[0-9]{1,2}(?:;[0-9]{1,2})?)*[a-zA-Z]")

// StripANSISequence strips ANSI escape sequences from the given string
func StripANSISequence(s string) string {
	if strings.IndexByte(s, '\x1b') < 0 {
		return s
	}
	return reANSIEscapeChars.ReplaceAllString(s, "")
}

// IsTty reports whether f is attached to a terminal.
func IsTty(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

type causer interface {
	Cause() error
}

type ignorable interface {
	Ignorable() bool
}

type exitStatuser interface {
	ExitStatus() int
}

// IsIgnorableError reports whether err, or an error it wraps, asks to be
// exited on without printing it.
func IsIgnorableError(err error) bool {
	for e := err; e != nil; {
		switch v := e.(type) {
		case ignorable:
			return v.Ignorable()
		case causer:
			e = v.Cause()
		default:
			return false
		}
	}
	return false
}

// GetExitStatus returns the exit status carried by err or an error it
// wraps. The second value is false when there is none, in which case the
// status is 1.
func GetExitStatus(err error) (int, bool) {
	for e := err; e != nil; {
		if ese, ok := e.(exitStatuser); ok {
			return ese.ExitStatus(), true
		}
		if cerr, ok := e.(causer); ok {
			e = cerr.Cause()
			continue
		}
		break
	}
	return 1, false
}
