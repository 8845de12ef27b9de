package board

import "strings"

// WrapNotes breaks text into lines of at most cols runes. Newlines always
// break; long lines break at the last space that fits, or mid-word when a
// word alone exceeds cols.
func WrapNotes(text string, cols int) []string {
	if text == "" {
		return nil
	}
	if cols <= 0 {
		cols = 1
	}
	var out []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		r := []rune(para)
		if len(r) == 0 {
			out = append(out, "")
			continue
		}
		for len(r) > cols {
			cut := cols
			for j := cols; j > 0; j-- {
				if r[j] == ' ' {
					cut = j
					break
				}
			}
			out = append(out, strings.TrimRight(string(r[:cut]), " "))
			r = r[cut:]
			for len(r) > 0 && r[0] == ' ' {
				r = r[1:]
			}
		}
		if len(r) > 0 {
			out = append(out, string(r))
		}
	}
	return out
}
