// Package script implements the small command language that drives a
// source list and its view from a file, one mutation per line.
//
//	# comment
//	add TEXT
//	insert N TEXT
//	remove N
//	delete TEXT
//	move FROM TO
//	clear
//	reset TEXT...
//	filter NAME
//	query TEXT
//	update
//	dispose
//
// TEXT may be written as a double quoted Go string to keep surrounding
// spaces or to contain escapes.
package script

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

var opNames = map[string]Op{
	"add":     OpAdd,
	"insert":  OpInsert,
	"remove":  OpRemove,
	"delete":  OpDelete,
	"move":    OpMove,
	"clear":   OpClear,
	"reset":   OpReset,
	"filter":  OpFilter,
	"query":   OpQuery,
	"update":  OpUpdate,
	"dispose": OpDispose,
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (op Op) String() string {
	for name, v := range opNames {
		if v == op {
			return name
		}
	}
	return "Op(" + strconv.Itoa(int(op)) + ")"
}

// Parse reads a script. Every line that fails to parse is reported, all
// of them combined into the returned error; the commands that did parse
// are returned regardless.
func Parse(r io.Reader) ([]Command, error) {
	var cmds []Command
	var errs error

	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		cmd, ok, err := ParseLine(n, scanner.Text())
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if ok {
			cmds = append(cmds, cmd)
		}
	}
	if err := scanner.Err(); err != nil {
		errs = multierr.Append(errs, errors.Wrap(err, "failed to read script"))
	}
	return cmds, errs
}

// ParseLine parses line number n. ok is false for blank lines and
// comments.
func ParseLine(n int, s string) (cmd Command, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "#") {
		return Command{}, false, nil
	}

	name, rest := cut(s)
	op, found := opNames[strings.ToLower(name)]
	if !found {
		return Command{}, false, &ParseError{Line: n, Msg: fmt.Sprintf("unknown command %q", name)}
	}

	cmd = Command{Op: op, Line: n, Index: -1, To: -1}
	fail := func(format string, args ...any) (Command, bool, error) {
		return Command{}, false, &ParseError{Line: n, Msg: name + ": " + fmt.Sprintf(format, args...)}
	}

	switch op {
	case OpAdd, OpDelete, OpFilter:
		if rest == "" {
			return fail("missing argument")
		}
		if cmd.Text, err = text(rest); err != nil {
			return fail("%s", err)
		}
	case OpQuery:
		if cmd.Text, err = text(rest); err != nil {
			return fail("%s", err)
		}
	case OpInsert:
		idx, tail := cut(rest)
		if cmd.Index, err = index(idx); err != nil {
			return fail("%s", err)
		}
		if tail == "" {
			return fail("missing text")
		}
		if cmd.Text, err = text(tail); err != nil {
			return fail("%s", err)
		}
	case OpRemove:
		if cmd.Index, err = index(rest); err != nil {
			return fail("%s", err)
		}
	case OpMove:
		from, to := cut(rest)
		if cmd.Index, err = index(from); err != nil {
			return fail("%s", err)
		}
		if cmd.To, err = index(to); err != nil {
			return fail("%s", err)
		}
	case OpReset:
		if cmd.Args, err = fields(rest); err != nil {
			return fail("%s", err)
		}
	case OpClear, OpUpdate, OpDispose:
		if rest != "" {
			return fail("unexpected argument %q", rest)
		}
	}
	return cmd, true, nil
}

// cut splits off the first whitespace separated word.
func cut(s string) (string, string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

func index(s string) (int, error) {
	if s == "" {
		return 0, errors.New("missing index")
	}
	if strings.ContainsFunc(s, unicode.IsSpace) {
		return 0, errors.Errorf("unexpected argument after index in %q", s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Errorf("invalid index %q", s)
	}
	return n, nil
}

// text returns s, unquoted when it is a quoted string as a whole.
func text(s string) (string, error) {
	if !strings.HasPrefix(s, `"`) {
		return s, nil
	}
	v, err := strconv.Unquote(s)
	if err != nil {
		return "", errors.Errorf("invalid quoted text %s", s)
	}
	return v, nil
}

// fields splits s on whitespace, keeping quoted strings together.
func fields(s string) ([]string, error) {
	var out []string
	for s = strings.TrimSpace(s); s != ""; s = strings.TrimSpace(s) {
		if s[0] == '"' {
			q, err := strconv.QuotedPrefix(s)
			if err != nil {
				return nil, errors.Errorf("unterminated quoted text in %s", s)
			}
			v, _ := strconv.Unquote(q)
			out = append(out, v)
			s = s[len(q):]
			continue
		}
		word, rest := cut(s)
		out = append(out, word)
		s = rest
	}
	return out, nil
}
