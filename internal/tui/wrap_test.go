package tui

import (
	"reflect"
	"testing"
)

func TestWrapTextShortLineUnchanged(t *testing.T) {
	got := wrapText("Celery juice", 20)
	if !reflect.DeepEqual(got, []string{"Celery juice"}) {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapTextBreaksAtSpaces(t *testing.T) {
	got := wrapText("16 oz celery juice on an empty stomach", 12)
	want := []string{"16 oz celery", "juice on an", "empty", "stomach"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapTextSplitsLongWords(t *testing.T) {
	got := wrapText("abcdefgh ij", 4)
	want := []string{"abcd", "efgh", "ij"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapTextCountsWideRunes(t *testing.T) {
	got := wrapText("🥇🥇🥇 ok", 4)
	want := []string{"🥇🥇", "🥇", "ok"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapTextZeroWidth(t *testing.T) {
	got := wrapText("anything goes", 0)
	if len(got) != 1 || got[0] != "anything goes" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}
