package model

import "testing"

func TestNewHistoryEntry(t *testing.T) {
	entry := NewHistoryEntry("/downloads/My Video.mp4", "/downloads/thumbnails/abc.jpg", "https://youtube.com/watch?v=abc")

	if entry.Filename != "My Video.mp4" {
		t.Errorf("Expected filename 'My Video.mp4', got %q", entry.Filename)
	}
	if entry.CompletedAt.IsZero() {
		t.Error("Expected CompletedAt to be set")
	}
}

func TestHistoryEntry_GetDisplayTitle(t *testing.T) {
	tests := []struct {
		entry    HistoryEntry
		expected string
	}{
		{HistoryEntry{Filename: "Song.mp3"}, "Song"},
		{HistoryEntry{Path: `C:\Videos\Clip.mp4`}, "Clip"},
		{HistoryEntry{Path: "/a/b/c.tar.gz"}, "c.tar"},
		{HistoryEntry{URL: "https://youtube.com/watch?v=1"}, "https://youtube.com/watch?v=1"},
		{HistoryEntry{}, ""},
	}

	for _, test := range tests {
		if got := test.entry.GetDisplayTitle(); got != test.expected {
			t.Errorf("GetDisplayTitle() for %+v = %q, expected %q", test.entry, got, test.expected)
		}
	}
}
