package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"#", "Name", "Score"}
	rows := [][]string{
		{"1", "Sana", "42"},
		{"2", "Star Player", "135"},
	}
	rightAlign := map[int]bool{0: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "# Name        Score" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "1 Sana           42" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "2 Star Player   135" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Name", "Score"}, [][]string{{"星", "1"}, {"ab", "2"}}, map[int]bool{1: true})
	if lines[1] != "星       1" {
		t.Fatalf("wide rune misaligned: %q", lines[1])
	}
	if lines[2] != "ab       2" {
		t.Fatalf("unexpected row: %q", lines[2])
	}
}
