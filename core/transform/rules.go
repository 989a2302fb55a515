// Package transform rewrites file names and captions according to the
// per-user rules.
package transform

import (
	"cmp"
	"slices"
	"strings"
)

type Replacement struct {
	Old string `json:"old"`
	New string `json:"new"`
}

type Rules struct {
	DeleteWords  []string
	Replacements []Replacement
	RenameTag    string
	// CustomCaption is appended to every caption after a blank line.
	CustomCaption string
}

// ApplyWords removes every delete word and then applies the replacements in
// order. Delete words are removed longest first, ties broken lexically.
func (r Rules) ApplyWords(s string) string {
	words := slices.Clone(r.DeleteWords)
	slices.SortFunc(words, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	for _, w := range words {
		if w == "" {
			continue
		}
		s = strings.ReplaceAll(s, w, "")
	}
	for _, rep := range r.Replacements {
		if rep.Old == "" {
			continue
		}
		s = strings.ReplaceAll(s, rep.Old, rep.New)
	}
	return s
}
