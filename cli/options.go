package cli

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

func (o *Options) parse(args []string) ([]string, error) {
	p := flags.NewParser(o, flags.PassDoubleDash)
	rest, err := p.ParseArgs(args)
	if err != nil {
		return nil, errors.Wrap(err, "invalid command line options")
	}
	if err := o.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid command line arguments")
	}
	return rest, nil
}

// Validate checks the values go-flags cannot check by itself.
func (o Options) Validate() error {
	switch o.OptFormat {
	case FormatText, FormatYAML:
	default:
		return errors.Errorf("unknown format: '%s'", o.OptFormat)
	}
	switch o.OptTUI {
	case TUIAuto, TUIAlways, TUINever:
	default:
		return errors.Errorf("unknown tui mode: '%s'", o.OptTUI)
	}
	if o.OptBufferSize < 0 {
		return errors.Errorf("buffer size must not be negative: %d", o.OptBufferSize)
	}
	if o.OptMaxWidth < 0 {
		return errors.Errorf("max width must not be negative: %d", o.OptMaxWidth)
	}
	return nil
}

func (o Options) help() []byte {
	buf := bytes.Buffer{}

	fmt.Fprintf(&buf, `
Usage: liveview [options] [FILE]

Options:
`)

	t := reflect.TypeOf(o)
	for i := range t.NumField() {
		tag := t.Field(i).Tag

		var name string
		if s := tag.Get("short"); s != "" {
			name = fmt.Sprintf("-%s, --%s", s, tag.Get("long"))
		} else {
			name = fmt.Sprintf("--%s", tag.Get("long"))
		}

		fmt.Fprintf(&buf, "  %-21s %s\n", name, tag.Get("description"))
	}
	return buf.Bytes()
}
