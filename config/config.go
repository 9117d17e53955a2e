// Package config reads the liveview rc file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/maruel/natural"
	"github.com/peco/liveview/internal/util"
	"github.com/pkg/errors"
)

// OnCancelBehavior specifies the exit status used when the user cancels.
type OnCancelBehavior string

const (
	OnCancelSuccess OnCancelBehavior = "success"
	OnCancelError   OnCancelBehavior = "error"
)

// SortOrder orders the visible lines by display string instead of input
// order.
type SortOrder string

const (
	SortNone       SortOrder = ""
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
	SortNatural    SortOrder = "natural"
)

// DefaultQueryExecutionDelay is the delay between the last key press and
// the query being applied, in milliseconds.
const DefaultQueryExecutionDelay = 50

// UnmarshalText accepts "success" (or empty) and "error".
func (o *OnCancelBehavior) UnmarshalText(b []byte) error {
	switch s := string(b); s {
	case "", "success":
		*o = OnCancelSuccess
	case "error":
		*o = OnCancelError
	default:
		return errors.Errorf("invalid OnCancel value %q: must be %q or %q", s, OnCancelSuccess, OnCancelError)
	}
	return nil
}

func (o *SortOrder) unmarshal(s string) error {
	switch v := SortOrder(strings.ToLower(s)); v {
	case SortNone, SortAscending, SortDescending, SortNatural:
		*o = v
	default:
		return errors.Errorf("invalid SortOrder value %q: must be one of %q, %q or %q", s, SortAscending, SortDescending, SortNatural)
	}
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler (JSON and YAML).
func (o *SortOrder) UnmarshalText(b []byte) error {
	return o.unmarshal(string(b))
}

// UnmarshalFlag implements the go-flags Unmarshaler.
func (o *SortOrder) UnmarshalFlag(s string) error {
	return o.unmarshal(s)
}

// Compare orders two display strings according to o. It returns nil for
// SortNone, which keeps input order.
func (o SortOrder) Compare() func(a, b string) int {
	switch o {
	case SortAscending:
		return strings.Compare
	case SortDescending:
		return func(a, b string) int { return strings.Compare(b, a) }
	case SortNatural:
		return compareNatural
	default:
		return nil
	}
}

// compareNatural orders digit runs by numeric value, so "file2" sorts
// before "file10".
func compareNatural(a, b string) int {
	switch {
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	default:
		return 0
	}
}

// Config holds everything that can be set in the rc file
type Config struct {
	InitialFilter   string           `json:"InitialFilter" yaml:"InitialFilter"`
	InitialQuery    string           `json:"InitialQuery" yaml:"InitialQuery"`
	Prompt          string           `json:"Prompt" yaml:"Prompt"`
	OnCancel        OnCancelBehavior `json:"OnCancel" yaml:"OnCancel"`
	StickySelection bool             `json:"StickySelection" yaml:"StickySelection"`
	SortOrder       SortOrder        `json:"SortOrder" yaml:"SortOrder"`
	Style           StyleSet         `json:"Style" yaml:"Style"`

	// BufferSize caps the number of input lines kept. When it is
	// exceeded the oldest lines are dropped. 0 keeps everything.
	BufferSize int `json:"BufferSize" yaml:"BufferSize"`

	// MaxWidth truncates trace output to this many columns. 0 disables
	// truncation.
	MaxWidth int `json:"MaxWidth" yaml:"MaxWidth"`

	// QueryExecutionDelay is how long, in milliseconds, the interactive
	// mode waits after the last key press before applying the query.
	QueryExecutionDelay int `json:"QueryExecutionDelay" yaml:"QueryExecutionDelay"`

	// SelectionPrefix marks the line under the cursor
	SelectionPrefix string `json:"SelectionPrefix" yaml:"SelectionPrefix"`
}

// DefaultPrompt is the default prompt string shown in the query line.
const DefaultPrompt = "QUERY>"

const appName = "liveview"

var homedirFunc = util.Homedir

// Init initializes the Config with default values
func (c *Config) Init() error {
	c.Style.Init()
	c.Prompt = DefaultPrompt
	c.OnCancel = OnCancelSuccess
	c.QueryExecutionDelay = DefaultQueryExecutionDelay
	return nil
}

// ReadFilename reads the config from filename, as YAML for .yaml and .yml
// files and as JSON otherwise.
func (c *Config) ReadFilename(filename string) error {
	if pdebug.Enabled {
		g := pdebug.Marker("Config.ReadFilename %s", filename)
		defer g.End()
	}

	f, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to open file %s", filename)
	}
	defer f.Close()

	switch ext := filepath.Ext(filename); ext {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(f).Decode(c); err != nil {
			return errors.Wrapf(err, "failed to decode YAML in %s", filename)
		}
	default:
		if err := json.NewDecoder(f).Decode(c); err != nil {
			return errors.Wrapf(err, "failed to decode JSON in %s", filename)
		}
	}

	if c.BufferSize < 0 {
		return errors.Errorf("invalid BufferSize %d: must not be negative", c.BufferSize)
	}
	if c.QueryExecutionDelay < 0 {
		return errors.Errorf("invalid QueryExecutionDelay %d: must not be negative", c.QueryExecutionDelay)
	}
	if c.MaxWidth < 0 {
		return errors.Errorf("invalid MaxWidth %d: must not be negative", c.MaxWidth)
	}
	return nil
}

// Locator locates a config file in a given directory.
type Locator interface {
	Locate(string) (string, error)
}

// LocatorFunc is a function that implements Locator.
type LocatorFunc func(string) (string, error)

// Locate calls the underlying function.
func (f LocatorFunc) Locate(dir string) (string, error) {
	return f(dir)
}

var configFilenames = []string{"config.json", "config.yaml", "config.yml"}

// DefaultConfigLocator looks for config.json, config.yaml and config.yml
// in that order.
var DefaultConfigLocator = LocatorFunc(func(dir string) (string, error) {
	for _, basename := range configFilenames {
		file := filepath.Join(dir, basename)
		if _, err := os.Stat(file); err == nil {
			return file, nil
		}
	}
	return "", errors.Errorf("config file not found in %s", dir)
})

// LocateRcfile attempts to find the config file in various locations
func LocateRcfile(locater Locator) (string, error) {
	// http://standards.freedesktop.org/basedir-spec/basedir-spec-latest.html
	//
	// Try in this order:
	//	  $XDG_CONFIG_HOME/liveview (or ~/.config/liveview)
	//	  $XDG_CONFIG_DIRS/*/liveview
	//	  ~/.liveview

	home, uErr := homedirFunc()

	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		if file, err := locater.Locate(filepath.Join(dir, appName)); err == nil {
			return file, nil
		}
	} else if uErr == nil { // silently ignore failure for homedir()
		if file, err := locater.Locate(filepath.Join(home, ".config", appName)); err == nil {
			return file, nil
		}
	}

	if dirs := os.Getenv("XDG_CONFIG_DIRS"); dirs != "" {
		for dir := range strings.SplitSeq(dirs, fmt.Sprintf("%c", filepath.ListSeparator)) {
			if file, err := locater.Locate(filepath.Join(dir, appName)); err == nil {
				return file, nil
			}
		}
	}

	if uErr == nil {
		if file, err := locater.Locate(filepath.Join(home, "."+appName)); err == nil {
			return file, nil
		}
	}

	return "", errors.New("config file not found")
}
