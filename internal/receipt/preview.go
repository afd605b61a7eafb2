package receipt

import "strings"

// Preview renders a job as a boxed ASCII approximation of the printed
// receipt. It is what the console transport writes and what the operator
// preview stream carries; no printer hardware is involved.
func Preview(job *Job) string {
	width := job.Width
	if width <= 0 {
		width = 48
	}

	var b strings.Builder
	writeLine := func(content string) {
		runes := []rune(content)
		if len(runes) > width {
			runes = runes[:width]
		}
		b.WriteString("|")
		b.WriteString(string(runes))
		b.WriteString(strings.Repeat(" ", width-len(runes)))
		b.WriteString("|\n")
	}

	b.WriteString("+" + strings.Repeat("-", width) + "+\n")
	for _, d := range job.Directives {
		switch d.Kind {
		case DirText:
			writeLine(d.Text)
		case DirRule:
			writeLine(strings.Repeat("-", width))
		case DirImage:
			writeLine(center("[logo]", width))
		case DirFeed:
			for i := 0; i < d.Lines; i++ {
				writeLine("")
			}
		case DirCut:
			// The cut ends the receipt; the closing border stands in
			// for it.
		}
	}
	b.WriteString("+" + strings.Repeat("-", width) + "+\n")
	return b.String()
}
