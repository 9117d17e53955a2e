package script

import (
	"github.com/peco/liveview"
	"github.com/peco/liveview/filter"
	"github.com/peco/liveview/line"
	"github.com/peco/liveview/observable"
)

// Op is the operation a Command performs.
type Op int

const (
	OpAdd     Op = iota + 1 // OpAdd appends Text
	OpInsert                // OpInsert inserts Text at Index
	OpRemove                // OpRemove removes the line at Index
	OpDelete                // OpDelete removes the first line whose buffer is Text
	OpMove                  // OpMove moves the line at Index to To
	OpClear                 // OpClear removes every line
	OpReset                 // OpReset replaces the contents with Args
	OpFilter                // OpFilter makes the filter named Text current
	OpQuery                 // OpQuery sets the query to Text
	OpUpdate                // OpUpdate re-evaluates the view
	OpDispose               // OpDispose disposes the view
)

// Command is one parsed line of a script.
type Command struct {
	Op    Op
	Line  int // 1-based line number in the script
	Index int
	To    int
	Text  string
	Args  []string
}

// ParseError reports a line that could not be parsed.
type ParseError struct {
	Line int
	Msg  string
}

// Session applies commands to a source list and a view over it.
type Session struct {
	enableSep bool
	filters   *filter.Set
	idgen     line.IDGenerator
	list      *observable.List[line.Line]
	query     string
	view      *liveview.FilteredView[line.Line]
}
