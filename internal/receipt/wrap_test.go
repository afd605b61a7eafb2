package receipt

import (
	"reflect"
	"strings"
	"testing"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{
			name:  "fits on one line",
			text:  "short title",
			width: 20,
			want:  []string{"short title"},
		},
		{
			name:  "breaks at word boundary",
			text:  "alpha beta gamma",
			width: 11,
			want:  []string{"alpha beta", "gamma"},
		},
		{
			name:  "exact width",
			text:  "12345678",
			width: 8,
			want:  []string{"12345678"},
		},
		{
			name:  "oversized run hard-broken",
			text:  "abcdefghijkl",
			width: 5,
			want:  []string{"abcde", "fghij", "kl"},
		},
		{
			name:  "oversized run between words",
			text:  "see https://example.com/very/long/path now",
			width: 12,
			want:  []string{"see", "https://exam", "ple.com/very", "/long/path", "now"},
		},
		{
			name:  "empty input",
			text:  "",
			width: 10,
			want:  []string{""},
		},
		{
			name:  "zero width passthrough",
			text:  "anything at all",
			width: 0,
			want:  []string{"anything at all"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.text, tt.width)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Wrap(%q, %d) = %v, want %v", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestWrapNeverDropsText(t *testing.T) {
	text := "one twotwotwotwo three four fivefivefivefivefive six"
	for width := 1; width <= 30; width++ {
		joined := strings.Join(Wrap(text, width), "")
		collapsed := strings.ReplaceAll(joined, " ", "")
		original := strings.ReplaceAll(text, " ", "")
		if collapsed != original {
			t.Fatalf("width %d lost characters: %q", width, collapsed)
		}
	}
}

func TestWrapRespectsWidth(t *testing.T) {
	text := "a handful of plain words plus oneextremelylongunbrokenrun at the end"
	for width := 4; width <= 48; width++ {
		for _, line := range Wrap(text, width) {
			if n := len([]rune(line)); n > width {
				t.Fatalf("width %d produced %d-rune line %q", width, n, line)
			}
		}
	}
}

func TestTwoColumn(t *testing.T) {
	t.Run("short value on one line", func(t *testing.T) {
		got := twoColumn("Status", "Open", 20)
		want := []string{"Status" + strings.Repeat(" ", 10) + "Open"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("twoColumn = %q, want %q", got, want)
		}
	})

	t.Run("long value wraps right-aligned", func(t *testing.T) {
		// Column cap at width 20 is 9 runes, so the list wraps after the
		// comma and the continuation stays flush right.
		got := twoColumn("Labels", "bug, mobile, urgent", 20)
		if len(got) < 2 {
			t.Fatalf("twoColumn = %q, want wrapped lines", got)
		}
		if !strings.HasPrefix(got[0], "Labels") {
			t.Errorf("first line = %q, want label on the left", got[0])
		}
		for i, line := range got {
			if n := len([]rune(line)); n != 20 {
				t.Errorf("line %d spans %d runes, want 20: %q", i, n, line)
			}
		}
		for _, line := range got[1:] {
			if !strings.HasPrefix(line, " ") || strings.HasSuffix(line, " ") {
				t.Errorf("continuation %q is not right-aligned", line)
			}
		}
	})

	t.Run("unbreakable value hard-splits", func(t *testing.T) {
		got := twoColumn("URL", "abcdefghijklmnop", 20)
		if len(got) != 2 {
			t.Fatalf("twoColumn = %q, want 2 lines", got)
		}
		joined := strings.ReplaceAll(strings.Join(got, ""), " ", "")
		if joined != "URL"+"abcdefghijklmnop" {
			t.Errorf("characters lost: %q", got)
		}
	})
}

func TestCenter(t *testing.T) {
	if got := center("ab", 6); got != "  ab" {
		t.Errorf("center = %q", got)
	}
	if got := center("abc", 6); got != " abc" {
		t.Errorf("center odd = %q", got)
	}
	if got := center("toolongvalue", 6); got != "toolongvalue" {
		t.Errorf("overlong input changed: %q", got)
	}
}

func TestPreviewBoxing(t *testing.T) {
	job := &Job{
		Width: 10,
		Directives: []Directive{
			text("hello"),
			rule(),
			feed(2),
			cut(),
		},
	}

	got := Preview(job)
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")

	want := []string{
		"+----------+",
		"|hello     |",
		"|----------|",
		"|          |",
		"|          |",
		"+----------+",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Preview:\n%s\nwant:\n%s", got, strings.Join(want, "\n"))
	}
}
