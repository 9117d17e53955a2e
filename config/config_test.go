package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// the same settings in both formats
const (
	settingsJSON = `{
	"InitialFilter": "Fuzzy",
	"OnCancel": "error",
	"SortOrder": "natural",
	"BufferSize": 500,
	"QueryExecutionDelay": 120,
	"SelectionPrefix": "*",
	"StickySelection": true,
	"Style": {
		"Status": ["yellow", "on_blue"],
		"Selected": ["#102030", "underline"]
	}
}`
	settingsYAML = `
InitialFilter: Fuzzy
OnCancel: error
SortOrder: natural
BufferSize: 500
QueryExecutionDelay: 120
SelectionPrefix: "*"
StickySelection: true
Style:
  Status: [yellow, on_blue]
  Selected: ["#102030", underline]
`
)

func wantSettings() Config {
	var cfg Config
	_ = cfg.Init()
	cfg.InitialFilter = "Fuzzy"
	cfg.OnCancel = OnCancelError
	cfg.SortOrder = SortNatural
	cfg.BufferSize = 500
	cfg.QueryExecutionDelay = 120
	cfg.SelectionPrefix = "*"
	cfg.StickySelection = true
	cfg.Style.Status = Style{Fg: PaletteColor(3), Bg: PaletteColor(4)}
	cfg.Style.Selected = Style{Fg: RGBColor(0x102030), Underline: true}
	return cfg
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	require.NoError(t, cfg.Init())
	require.Equal(t, DefaultPrompt, cfg.Prompt)
	require.Equal(t, OnCancelSuccess, cfg.OnCancel)
	require.Equal(t, SortNone, cfg.SortOrder)
	require.Equal(t, DefaultQueryExecutionDelay, cfg.QueryExecutionDelay)
	require.Empty(t, cfg.SelectionPrefix)
	require.True(t, cfg.Style.Status.Reverse, "the status line stands out by default")
	require.Equal(t, Style{}, cfg.Style.Basic)
}

func TestReadFilename(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for name, content := range map[string]string{
		"liveview.json": settingsJSON,
		"liveview.yaml": settingsYAML,
		"liveview.yml":  settingsYAML,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			file := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

			var cfg Config
			require.NoError(t, cfg.Init())
			require.NoError(t, cfg.ReadFilename(file))
			require.Equal(t, wantSettings(), cfg)
		})
	}
}

func TestReadFilenameKeepsUnsetDefaults(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(file, []byte("SelectionPrefix: '>'\n"), 0o644))

	var cfg Config
	require.NoError(t, cfg.Init())
	require.NoError(t, cfg.ReadFilename(file))
	require.Equal(t, ">", cfg.SelectionPrefix)
	require.Equal(t, DefaultQueryExecutionDelay, cfg.QueryExecutionDelay)
	require.Equal(t, NewStyleSet().SavedSelection, cfg.Style.SavedSelection)
}

func TestReadFilenameErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, tc := range []struct {
		file    string
		content string
		message string
	}{
		{"truncated.json", `{"SortOrder": `, "failed to decode JSON"},
		{"buffer.json", `{"BufferSize": -10}`, "invalid BufferSize"},
		{"width.yaml", "MaxWidth: -1", "invalid MaxWidth"},
		{"delay.yml", "QueryExecutionDelay: -5", "invalid QueryExecutionDelay"},
		{"cancel.json", `{"OnCancel": "abort"}`, "abort"},
		{"sort.yaml", "SortOrder: random", "random"},
		{"style.json", `{"Style": {"Status": ["purple"]}}`, `"purple"`},
		{"hex.yaml", "Style:\n  Basic: ['#fff']\n", "#rrggbb"},
	} {
		t.Run(tc.file, func(t *testing.T) {
			t.Parallel()

			file := filepath.Join(dir, tc.file)
			require.NoError(t, os.WriteFile(file, []byte(tc.content), 0o644))

			var cfg Config
			require.NoError(t, cfg.Init())
			err := cfg.ReadFilename(file)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.message)
		})
	}

	var cfg Config
	err := cfg.ReadFilename(filepath.Join(dir, "nope.json"))
	require.ErrorContains(t, err, "failed to open file")
}

func TestParseStyle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		words []string
		want  Style
	}{
		{nil, Style{}},
		{[]string{"default", "on_default"}, Style{}},
		{[]string{"cyan", "on_black", "reverse"}, Style{Fg: PaletteColor(6), Bg: PaletteColor(0), Reverse: true}},
		{[]string{"on_bold", "white"}, Style{Fg: PaletteColor(7), Bold: true}},
		{[]string{"255", "on_16"}, Style{Fg: PaletteColor(255), Bg: PaletteColor(16)}},
		{[]string{"on_#abcdef"}, Style{Bg: RGBColor(0xabcdef)}},
		{[]string{"red", "green"}, Style{Fg: PaletteColor(2)}},
	}
	for _, tt := range tests {
		got, err := ParseStyle(tt.words...)
		require.NoError(t, err, "%v", tt.words)
		require.Equal(t, tt.want, got, "%v", tt.words)
	}

	for _, words := range [][]string{{"blink"}, {"256"}, {"#12345"}, {"on_#zzzzzz"}, {"on_"}} {
		_, err := ParseStyle(words...)
		require.Error(t, err, "%v", words)
	}
}

func TestColor(t *testing.T) {
	t.Parallel()

	_, ok := Color(0).Palette()
	require.False(t, ok)
	_, ok = Color(0).RGB()
	require.False(t, ok)

	n, ok := PaletteColor(0).Palette()
	require.True(t, ok)
	require.Zero(t, n, "palette entry 0 is not the default color")

	rgb, ok := RGBColor(0x1ff0000).RGB()
	require.True(t, ok)
	require.Equal(t, int32(0xff0000), rgb)
}

func TestSortOrder(t *testing.T) {
	t.Parallel()

	var cfg Config
	require.NoError(t, json.Unmarshal([]byte(`{"SortOrder":"DESC"}`), &cfg))
	require.Equal(t, SortDescending, cfg.SortOrder)
	require.NoError(t, yaml.Unmarshal([]byte("SortOrder: Natural"), &cfg))
	require.Equal(t, SortNatural, cfg.SortOrder)

	var o SortOrder
	require.NoError(t, o.UnmarshalFlag("natural"))
	require.Equal(t, SortNatural, o)
	require.ErrorContains(t, o.UnmarshalFlag("shuffle"), "shuffle")

	require.Nil(t, SortNone.Compare(), "no comparator keeps input order")

	lines := []string{"v1.10", "v1.9", "v1.10", "V2"}
	for _, tc := range []struct {
		order SortOrder
		a, b  string
		sign  int
	}{
		{SortAscending, lines[0], lines[1], -1},
		{SortAscending, lines[3], lines[0], -1},
		{SortDescending, lines[0], lines[1], 1},
		{SortNatural, lines[1], lines[0], -1},
		{SortNatural, lines[0], lines[2], 0},
	} {
		got := tc.order.Compare()(tc.a, tc.b)
		switch tc.sign {
		case -1:
			require.Negative(t, got, "%s: %s vs %s", tc.order, tc.a, tc.b)
		case 1:
			require.Positive(t, got, "%s: %s vs %s", tc.order, tc.a, tc.b)
		default:
			require.Zero(t, got, "%s: %s vs %s", tc.order, tc.a, tc.b)
		}
	}
}

func TestLocateRcfile(t *testing.T) {
	home := t.TempDir()
	saved := homedirFunc
	homedirFunc = func() (string, error) { return home, nil }
	t.Cleanup(func() { homedirFunc = saved })

	xdgHome := filepath.Join(home, "xdg")
	xdgDirs := []string{filepath.Join(home, "etc1"), filepath.Join(home, "etc2")}

	var visited []string
	notFound := LocatorFunc(func(dir string) (string, error) {
		visited = append(visited, dir)
		return "", errors.New("not found")
	})

	t.Setenv("XDG_CONFIG_HOME", xdgHome)
	t.Setenv("XDG_CONFIG_DIRS", strings.Join(xdgDirs, string(filepath.ListSeparator)))
	_, err := LocateRcfile(notFound)
	require.Error(t, err)
	require.Equal(t, []string{
		filepath.Join(xdgHome, "liveview"),
		filepath.Join(xdgDirs[0], "liveview"),
		filepath.Join(xdgDirs[1], "liveview"),
		filepath.Join(home, ".liveview"),
	}, visited)

	visited = nil
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_DIRS", "")
	_, err = LocateRcfile(notFound)
	require.Error(t, err)
	require.Equal(t, []string{
		filepath.Join(home, ".config", "liveview"),
		filepath.Join(home, ".liveview"),
	}, visited, "without XDG variables ~/.config is searched")

	// the first directory holding a config file wins, preferring JSON
	rcDir := filepath.Join(home, ".liveview")
	require.NoError(t, os.MkdirAll(rcDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(rcDir, "config.yml"), []byte("{}"), 0o644))
	file, err := LocateRcfile(DefaultConfigLocator)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(rcDir, "config.yml"), file)

	require.NoError(t, os.WriteFile(filepath.Join(rcDir, "config.json"), []byte("{}"), 0o644))
	file, err = LocateRcfile(DefaultConfigLocator)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(rcDir, "config.json"), file)
}
