package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
)

func TestPadToWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{
			name:     "no padding when width is 0",
			input:    "Hello",
			width:    0,
			expected: "Hello",
		},
		{
			name:     "no padding when width is negative",
			input:    "Hello",
			width:    -1,
			expected: "Hello",
		},
		{
			name:     "pad short text with spaces",
			input:    "Hi",
			width:    10,
			expected: "Hi        ",
		},
		{
			name:     "exact width unchanged",
			input:    "Hello",
			width:    5,
			expected: "Hello",
		},
		{
			name:     "truncate long text with ellipsis",
			input:    "This is a very long string that needs truncation",
			width:    20,
			expected: "This is a very lo...",
		},
		{
			name:     "handle emoji correctly",
			input:    "🎵 Music",
			width:    15,
			expected: "🎵 Music       ", // emoji is 2 chars wide, so 8 total + 7 spaces
		},
		{
			name:     "truncate emoji text",
			input:    "🎵 This is a very long song title",
			width:    15,
			expected: "🎵 This is a...",
		},
		{
			name:     "handle unicode characters",
			input:    "日本語",
			width:    10,
			expected: "日本語    ",
		},
		{
			name:     "truncate unicode text",
			input:    "日本語とても長いテキスト",
			width:    10,
			expected: "日本語... ", // 日本語 is 6 chars, ... is 3, need 1 space
		},
		{
			name:     "empty string padding",
			input:    "",
			width:    5,
			expected: "     ",
		},
		{
			name:     "single character padding",
			input:    "A",
			width:    5,
			expected: "A    ",
		},
		{
			name:     "minimum width for truncation",
			input:    "Hello",
			width:    3,
			expected: "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := padToWidth(tt.input, tt.width)
			if result != tt.expected {
				t.Errorf("padToWidth(%q, %d) = %q, expected %q",
					tt.input, tt.width, result, tt.expected)
			}

			// Verify the result has the expected display width (if width > 0)
			if tt.width > 0 {
				resultWidth := runewidth.StringWidth(result)
				if resultWidth != tt.width {
					t.Errorf("padToWidth(%q, %d) produced width %d, expected %d",
						tt.input, tt.width, resultWidth, tt.width)
				}
			}
		})
	}
}

func TestFormatTable(t *testing.T) {
	lines := formatTable(30, []string{"Name", "Tracks"}, [][]string{
		{"Morning", "12"},
		{"A playlist with a very long name", "140"},
	})

	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if w := runewidth.StringWidth(line); w > 30 {
			t.Errorf("line %q is %d columns wide", line, w)
		}
	}
	if lines[0] != "Name                    Tracks" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "    12") {
		t.Errorf("expected right aligned count, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "A playlist with a v...") {
		t.Errorf("expected truncated name, got %q", lines[2])
	}
}

func TestFormatTable_DefaultWidth(t *testing.T) {
	lines := formatTable(0, []string{"Name", "N"}, [][]string{{"x", "1"}})
	if w := runewidth.StringWidth(lines[1]); w != defaultTableWidth {
		t.Errorf("expected %d columns, got %d", defaultTableWidth, w)
	}
}

func TestRenderTemplate(t *testing.T) {
	data := struct {
		Name        string
		TotalTracks int
	}{"Morning", 12}

	tests := []struct {
		name        string
		template    string
		want        string
		errContains string
	}{
		{name: "fields", template: "{{.Name}} ({{.TotalTracks}})", want: "Morning (12)"},
		{name: "parse error", template: "{{.Name", errContains: "invalid template"},
		{name: "missing field", template: "{{.Artist}}", errContains: "template execution failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderTemplate(tt.template, data)
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("expected error containing %q, got %v", tt.errContains, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(45 * time.Minute); got != "45:00" {
		t.Errorf("expected 45:00, got %s", got)
	}
	if got := formatDuration(90 * time.Minute); got != "1:30:00" {
		t.Errorf("expected 1:30:00, got %s", got)
	}
	if got := formatDate(time.Time{}); got != "-" {
		t.Errorf("expected -, got %s", got)
	}
}
