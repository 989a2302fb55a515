package transform

import "strings"

// FormatCaption applies the word rules to original and appends the custom
// caption. ok is false when nothing is left.
func FormatCaption(original string, r Rules) (caption string, ok bool) {
	text := strings.TrimSpace(r.ApplyWords(original))
	custom := strings.TrimSpace(r.CustomCaption)
	switch {
	case custom == "":
	case text == "":
		text = custom
	default:
		text = text + "\n\n" + custom
	}
	return text, text != ""
}
