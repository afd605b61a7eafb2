package receipt

import "strings"

// Wrap breaks text into lines of at most width runes, splitting at word
// boundaries. A run of non-whitespace longer than the width is hard-broken
// into width-sized chunks; nothing is ever dropped.
func Wrap(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	if len([]rune(text)) <= width {
		return []string{text}
	}

	var lines []string
	var current []string
	length := 0

	flush := func() {
		if len(current) > 0 {
			lines = append(lines, strings.Join(current, " "))
			current = current[:0]
			length = 0
		}
	}

	for _, word := range strings.Fields(text) {
		runes := []rune(word)

		// Oversized runs get their own hard-broken lines.
		if len(runes) > width {
			flush()
			for len(runes) > width {
				lines = append(lines, string(runes[:width]))
				runes = runes[width:]
			}
			if len(runes) > 0 {
				current = append(current, string(runes))
				length = len(runes)
			}
			continue
		}

		need := len(runes)
		if len(current) > 0 {
			need++ // joining space
		}
		if length+need > width {
			flush()
			need = len(runes)
		}
		current = append(current, string(runes))
		length += need
	}
	flush()

	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

// twoColumn lays a label/value pair across the full line width: label flush
// left, value flush right. The value column is capped at 45% of the width;
// longer values wrap, preferring to break at a space or after a comma, and
// continuation lines stay right-aligned under the first.
func twoColumn(label, value string, width int) []string {
	if width <= 0 {
		return []string{label + " " + value}
	}
	maxCol := width * 45 / 100
	if maxCol < 1 {
		maxCol = 1
	}

	var valueLines []string
	rest := []rune(strings.TrimSpace(value))
	for len(rest) > maxCol {
		head := rest[:maxCol]
		split := -1
		for i := len(head) - 1; i >= 0; i-- {
			if head[i] == ' ' {
				split = i
				break
			}
			if head[i] == ',' {
				split = i + 1
				break
			}
		}
		if split <= 0 {
			split = maxCol
		}
		valueLines = append(valueLines, strings.TrimRight(string(head[:split]), " "))
		rest = []rune(strings.TrimLeft(string(rest[split:]), " "))
	}
	if len(rest) > 0 {
		valueLines = append(valueLines, string(rest))
	}
	if len(valueLines) == 0 {
		return []string{label}
	}

	gap := width - len([]rune(label)) - len([]rune(valueLines[0]))
	if gap < 1 {
		gap = 1
	}
	lines := []string{label + strings.Repeat(" ", gap) + valueLines[0]}
	for _, vl := range valueLines[1:] {
		pad := width - len([]rune(vl))
		if pad < 0 {
			pad = 0
		}
		lines = append(lines, strings.Repeat(" ", pad)+vl)
	}
	return lines
}

// center left-pads s so the preview's right padding makes it appear
// centered. Overlong input is returned unchanged; wrapping is the caller's
// job.
func center(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s
}
