package model

import (
	"strings"
	"testing"
)

func TestLevel_Icon(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelOK, "✓"},
		{LevelErr, "✗"},
		{LevelInfo, "•"},
		{Level("other"), "•"},
	}

	for _, test := range tests {
		if result := test.level.Icon(); result != test.expected {
			t.Errorf("Level(%s).Icon() = %s, expected %s", test.level, result, test.expected)
		}
	}
}

func TestNewActivityID(t *testing.T) {
	a := NewActivityID()
	b := NewActivityID()

	if !strings.HasPrefix(a, ActivityIDPrefix) {
		t.Errorf("Expected prefix %s, got %s", ActivityIDPrefix, a)
	}
	if a == b {
		t.Error("Expected unique activity IDs")
	}
}

func TestCookieOption_String(t *testing.T) {
	tests := []struct {
		opt      CookieOption
		expected string
		set      bool
	}{
		{NoCookies(), "none", false},
		{CookiesFromFile("cookies.txt"), "file", true},
		{CookiesFromBrowser("firefox"), "browser:firefox", true},
	}

	for _, test := range tests {
		if test.opt.String() != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, test.opt.String())
		}
		if test.opt.IsSet() != test.set {
			t.Errorf("Expected IsSet()=%v for %s", test.set, test.expected)
		}
	}
}

func TestPlaylist_AddVideo(t *testing.T) {
	p := NewPlaylist("PL1", "https://www.youtube.com/playlist?list=PL1")
	p.AddVideo(&PlaylistVideo{ID: "a"})
	p.AddVideo(&PlaylistVideo{ID: "b"})
	p.AddVideo(&PlaylistVideo{ID: "c"})

	if p.Len() != 3 {
		t.Fatalf("Expected 3 videos, got %d", p.Len())
	}
	if p.Videos[2].Index != 3 {
		t.Errorf("Expected index 3, got %d", p.Videos[2].Index)
	}
	if len(p.Head(2)) != 2 {
		t.Errorf("Expected 2 videos from Head(2), got %d", len(p.Head(2)))
	}
	if len(p.Head(0)) != 3 {
		t.Errorf("Expected all videos from Head(0), got %d", len(p.Head(0)))
	}
}
