package config

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// StyleSet holds the styles of the interactive screen.
type StyleSet struct {
	Basic          Style `json:"Basic" yaml:"Basic"`
	SavedSelection Style `json:"SavedSelection" yaml:"SavedSelection"`
	Selected       Style `json:"Selected" yaml:"Selected"`
	Query          Style `json:"Query" yaml:"Query"`
	Prompt         Style `json:"Prompt" yaml:"Prompt"`
	Status         Style `json:"Status" yaml:"Status"`
}

// Color is a terminal color. The zero value is the terminal's default
// color.
type Color uint32

const (
	colorPalette Color = 1 << 24
	colorRGB     Color = 1 << 25
	colorValue   Color = 0xffffff
)

// colorNames are the first eight palette entries, in palette order.
var colorNames = []string{"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white"}

// PaletteColor returns entry n of the terminal's 256 color palette.
func PaletteColor(n uint8) Color {
	return colorPalette | Color(n)
}

// RGBColor returns the 24 bit color rgb (0xRRGGBB).
func RGBColor(rgb uint32) Color {
	return colorRGB | Color(rgb)&colorValue
}

// Palette returns the palette entry of c, if c is one.
func (c Color) Palette() (int, bool) {
	return int(c & colorValue), c&colorPalette != 0
}

// RGB returns the 24 bit value of c, if c is one.
func (c Color) RGB() (int32, bool) {
	return int32(c & colorValue), c&colorRGB != 0
}

// Style is how one part of the screen is drawn.
//
// In the rc file a style is a list of words. A color name, a palette
// number or "#rrggbb" sets the foreground, the same with an "on_" prefix
// sets the background, and "bold", "underline" and "reverse" add
// attributes. "on_bold" is accepted as "bold".
type Style struct {
	Fg        Color
	Bg        Color
	Bold      bool
	Underline bool
	Reverse   bool
}

// NewStyleSet returns the default styles.
func NewStyleSet() *StyleSet {
	ss := &StyleSet{}
	ss.Init()
	return ss
}

// Init sets the default styles.
func (ss *StyleSet) Init() {
	*ss = StyleSet{
		SavedSelection: Style{Fg: PaletteColor(0), Bg: PaletteColor(6), Bold: true},
		Selected:       Style{Bg: PaletteColor(5), Underline: true},
		Status:         Style{Reverse: true},
	}
}

// UnmarshalJSON decodes a list of style words.
func (s *Style) UnmarshalJSON(buf []byte) error {
	var words []string
	if err := json.Unmarshal(buf, &words); err != nil {
		return errors.Wrap(err, "failed to unmarshal Style")
	}
	return s.parse(words)
}

// UnmarshalYAML decodes a list of style words.
func (s *Style) UnmarshalYAML(unmarshal func(any) error) error {
	var words []string
	if err := unmarshal(&words); err != nil {
		return errors.Wrap(err, "failed to unmarshal Style")
	}
	return s.parse(words)
}

// ParseStyle builds a Style from rc file words such as "red", "on_blue"
// or "bold".
func ParseStyle(words ...string) (Style, error) {
	var s Style
	err := s.parse(words)
	return s, err
}

func (s *Style) parse(words []string) error {
	*s = Style{}
	for _, word := range words {
		switch word {
		case "bold", "on_bold":
			s.Bold = true
			continue
		case "underline":
			s.Underline = true
			continue
		case "reverse":
			s.Reverse = true
			continue
		}

		target := &s.Fg
		name := word
		if rest, ok := strings.CutPrefix(word, "on_"); ok {
			target = &s.Bg
			name = rest
		}
		c, err := parseColor(name)
		if err != nil {
			return errors.Wrapf(err, "invalid style word %q", word)
		}
		*target = c
	}
	return nil
}

func parseColor(name string) (Color, error) {
	if name == "default" {
		return 0, nil
	}
	if i := slices.Index(colorNames, name); i >= 0 {
		return PaletteColor(uint8(i)), nil
	}
	if hex, ok := strings.CutPrefix(name, "#"); ok {
		if len(hex) != 6 {
			return 0, errors.New("expected #rrggbb")
		}
		rgb, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return 0, errors.Wrap(err, "expected #rrggbb")
		}
		return RGBColor(uint32(rgb)), nil
	}
	n, err := strconv.ParseUint(name, 10, 8)
	if err != nil {
		return 0, errors.New("unknown color")
	}
	return PaletteColor(uint8(n)), nil
}
