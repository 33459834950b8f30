package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Day", "Phase", "Done"}
	rows := [][]string{
		{"1", "1–3", "12/12"},
		{"9", "9", "0/8"},
	}
	rightAlign := map[int]bool{0: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Day  Phase   Done" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "  1  1–3    12/12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "  9  9        0/8" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestDisplayWidthCountsWideGlyphs(t *testing.T) {
	if got := displayWidth("🥇🥇"); got != 4 {
		t.Fatalf("expected width 4, got %d", got)
	}
	if got := displayWidth("1–3"); got != 3 {
		t.Fatalf("expected width 3, got %d", got)
	}
}
