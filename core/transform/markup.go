package transform

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

type markupRule struct {
	re   *regexp.Regexp
	repl string
}

// Code spans and blocks are cut out before any other rule runs and put
// back at the end, so their content is kept verbatim.
var codeRules = []markupRule{
	{regexp.MustCompile("(?s)```(?:[A-Za-z0-9_+-]*\n)?(.*?)```"), "<pre>$1</pre>"},
	{regexp.MustCompile("`([^`\n]+)`"), "<code>$1</code>"},
}

var markupRules = []markupRule{
	{regexp.MustCompile(`(?m)^&gt; ?(.*)$`), "<blockquote>$1</blockquote>"},
	{regexp.MustCompile(`\*\*(.+?)\*\*`), "<b>$1</b>"},
	{regexp.MustCompile(`\*([^*\n]+)\*`), "<b>$1</b>"},
	{regexp.MustCompile(`__(.+?)__`), "<i>$1</i>"},
	{regexp.MustCompile(`\b_([^_\n]+)_\b`), "<i>$1</i>"},
	{regexp.MustCompile(`~~(.+?)~~`), "<s>$1</s>"},
	{regexp.MustCompile(`\|\|(.+?)\|\|`), "<tg-spoiler>$1</tg-spoiler>"},
	{regexp.MustCompile(`\[([^\]\n]+)\]\((https?://[^\s)]+)\)`), `<a href="$2">$1</a>`},
}

var placeholderRegexp = regexp.MustCompile("\x00([0-9]+)\x00")

// MarkupToHTML converts the lightweight caption markup to the HTML subset
// understood by message/html. Unmatched markers are kept as text.
func MarkupToHTML(s string) string {
	s = htmlEscaper.Replace(s)
	var code []string
	for _, r := range codeRules {
		s = r.re.ReplaceAllStringFunc(s, func(m string) string {
			code = append(code, r.re.ReplaceAllString(m, r.repl))
			return fmt.Sprintf("\x00%d\x00", len(code)-1)
		})
	}
	for _, r := range markupRules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	s = strings.ReplaceAll(s, "</blockquote>\n<blockquote>", "\n")
	return placeholderRegexp.ReplaceAllStringFunc(s, func(m string) string {
		i, err := strconv.Atoi(m[1 : len(m)-1])
		if err != nil || i >= len(code) {
			return m
		}
		return code[i]
	})
}
