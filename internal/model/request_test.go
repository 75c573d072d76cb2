package model

import (
	"strings"
	"testing"
)

func TestNewRequest(t *testing.T) {
	req := NewRequest("  https://youtube.com/watch?v=abc\n", KindVideo, "720p", false, "/tmp")

	if req.URL != "https://youtube.com/watch?v=abc" {
		t.Errorf("Expected cleaned URL, got %q", req.URL)
	}
	if !strings.HasPrefix(req.ID, RequestIDPrefix) {
		t.Errorf("Expected ID to start with %q, got %q", RequestIDPrefix, req.ID)
	}
	if len(req.ID) != len(RequestIDPrefix)+36 {
		t.Errorf("Expected ID length %d, got %d for ID: %s", len(RequestIDPrefix)+36, len(req.ID), req.ID)
	}
	if req.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}

	other := NewRequest("https://youtube.com/watch?v=abc", KindVideo, "720p", false, "/tmp")
	if other.ID == req.ID {
		t.Error("Expected different request IDs")
	}
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"valid video", Request{URL: "https://youtube.com/watch?v=1", Kind: KindVideo, Directory: "/tmp"}, false},
		{"valid audio", Request{URL: "http://youtu.be/1", Kind: KindAudio, Directory: "/tmp"}, false},
		{"empty url", Request{Kind: KindVideo, Directory: "/tmp"}, true},
		{"bad scheme", Request{URL: "ftp://host/x", Kind: KindVideo, Directory: "/tmp"}, true},
		{"no host", Request{URL: "https://", Kind: KindVideo, Directory: "/tmp"}, true},
		{"no dir", Request{URL: "https://youtube.com/watch?v=1", Kind: KindVideo}, true},
		{"bad kind", Request{URL: "https://youtube.com/watch?v=1", Kind: "image", Directory: "/tmp"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseMediaKind(t *testing.T) {
	tests := map[string]MediaKind{
		"audio":  KindAudio,
		" AUDIO": KindAudio,
		"video":  KindVideo,
		"":       KindVideo,
		"other":  KindVideo,
	}
	for in, expected := range tests {
		if got := ParseMediaKind(in); got != expected {
			t.Errorf("ParseMediaKind(%q) = %s, expected %s", in, got, expected)
		}
	}
}
