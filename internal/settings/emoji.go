package settings

import (
	"fmt"
	"regexp"

	"github.com/forPelevin/gomoji"
	"github.com/rivo/uniseg"
)

var looseCustomEmojiPattern = regexp.MustCompile(`<\s*(a)?\s*:\s*(\w+)\s*:\s*(\d{17,20})\s*>`)

// NormalizeSymbol extracts the first emoji from input. Custom emoji written with stray
// spaces, such as "< a : spin : 123... >", are rewritten to their canonical form.
func NormalizeSymbol(input string) (string, bool) {
	if m := looseCustomEmojiPattern.FindStringSubmatchIndex(input); m != nil {
		// A unicode emoji ahead of the custom one wins.
		if u := firstUnicodeEmoji(input[:m[0]]); u != "" {
			return u, true
		}
		name := input[m[4]:m[5]]
		id := input[m[6]:m[7]]
		if m[2] >= 0 {
			return fmt.Sprintf("<a:%s:%s>", name, id), true
		}
		return fmt.Sprintf("<:%s:%s>", name, id), true
	}
	if u := firstUnicodeEmoji(input); u != "" {
		return u, true
	}
	return "", false
}

// IsSymbol reports whether value is exactly one emoji.
func IsSymbol(value string) bool {
	normalized, ok := NormalizeSymbol(value)
	return ok && normalized == value
}

// firstUnicodeEmoji returns the first grapheme cluster that is a known emoji sequence.
func firstUnicodeEmoji(s string) string {
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		cluster := gr.Str()
		if _, err := gomoji.GetInfo(cluster); err == nil {
			return cluster
		}
	}
	return ""
}
