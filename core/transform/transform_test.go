package transform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/krau/RelayAny-Bot/pkg/relayerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyWordsDeterministic(t *testing.T) {
	r := Rules{DeleteWords: []string{"a", "ab"}}
	assert.Equal(t, "c", r.ApplyWords("abc"))

	r = Rules{DeleteWords: []string{"ab", "a"}}
	assert.Equal(t, "c", r.ApplyWords("abc"), "input order must not matter")

	r = Rules{
		DeleteWords:  []string{"[ad]"},
		Replacements: []Replacement{{Old: "cat", New: "dog"}, {Old: "dog", New: "wolf"}},
	}
	assert.Equal(t, "wolf wolf ", r.ApplyWords("cat dog [ad]"))
}

func TestNewName(t *testing.T) {
	tests := []struct {
		name  string
		rules Rules
		want  string
	}{
		{"clip.mkv", Rules{RenameTag: "[x]"}, "clip [x].mp4"},
		{"clip [x].mp4", Rules{RenameTag: "[x]"}, "clip [x].mp4"},
		{"movie.MOV", Rules{RenameTag: "[x]"}, "movie [x].mp4"},
		{"book.pdf", Rules{RenameTag: "@me"}, "book @me.pdf"},
		{"ad_book.pdf", Rules{DeleteWords: []string{"ad_"}}, "book.pdf"},
		{"old name.txt", Rules{Replacements: []Replacement{{"old", "new"}}}, "new name.txt"},
		{"spam.zip", Rules{DeleteWords: []string{"spam"}, RenameTag: "[t]"}, "file [t].zip"},
		{"noext", Rules{RenameTag: "[t]"}, "noext [t]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewName(tt.name, tt.rules))
		})
	}
}

func TestRenameFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "clip.mkv")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0o644))
	rules := Rules{RenameTag: "[x]"}

	got, err := RenameFile(src, rules)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "clip [x].mp4"), got)
	assert.NoFileExists(t, src)
	assert.FileExists(t, got)

	again, err := RenameFile(got, rules)
	require.NoError(t, err)
	assert.Equal(t, got, again, "renaming twice must not stack tags")
}

func TestRenameFileErrors(t *testing.T) {
	dir := t.TempDir()
	rules := Rules{RenameTag: "[x]"}

	_, err := RenameFile(filepath.Join(dir, "missing.txt"), rules)
	assert.ErrorIs(t, err, relayerr.ErrFilesystem)

	src := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(src, nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a [x].txt"), nil, 0o644))
	_, err = RenameFile(src, rules)
	assert.ErrorIs(t, err, relayerr.ErrFilesystem)
	assert.FileExists(t, src, "source must be untouched when target exists")
}

func TestFormatCaption(t *testing.T) {
	got, ok := FormatCaption("hello {ad}", Rules{DeleteWords: []string{"{ad}"}, CustomCaption: "bye"})
	assert.True(t, ok)
	assert.Equal(t, "hello\n\nbye", got)

	got, ok = FormatCaption("{ad}", Rules{DeleteWords: []string{"{ad}"}})
	assert.False(t, ok)
	assert.Empty(t, got)

	got, ok = FormatCaption("  ", Rules{CustomCaption: "only"})
	assert.True(t, ok)
	assert.Equal(t, "only", got)

	got, ok = FormatCaption("plain", Rules{})
	assert.True(t, ok)
	assert.Equal(t, "plain", got)
}

func TestMarkupToHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"**bold** and *also*", "<b>bold</b> and <b>also</b>"},
		{"__it__ _it_", "<i>it</i> <i>it</i>"},
		{"~~gone~~ ||secret||", "<s>gone</s> <tg-spoiler>secret</tg-spoiler>"},
		{"`x < y`", "<code>x &lt; y</code>"},
		{"```go\nfmt.Println()\n```", "<pre>fmt.Println()\n</pre>"},
		{"> one\n> two", "<blockquote>one\ntwo</blockquote>"},
		{"[site](https://example.com)", `<a href="https://example.com">site</a>`},
		{"snake_case_name", "snake_case_name"},
		{"**open", "**open"},
		{"a & b", "a &amp; b"},
		{"`a*b*c`", "<code>a*b*c</code>"},
		{"```\n**x**\n```", "<pre>**x**\n</pre>"},
		{"*see `x_y_z`*", "<b>see <code>x_y_z</code></b>"},
		{"> `q`", "<blockquote><code>q</code></blockquote>"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MarkupToHTML(tt.in))
		})
	}
}
