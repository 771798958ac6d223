package random

import (
	"strings"
	"testing"
)

func TestGetNowAndLenRandomString(t *testing.T) {
	s := GetNowAndLenRandomString(10)
	if len(s) != 16 {
		t.Fatalf("len = %d, want 16", len(s))
	}
	for _, c := range s[6:] {
		if !strings.ContainsRune(charset, c) {
			t.Fatalf("unexpected rune %q in %q", c, s)
		}
	}
	if s == GetNowAndLenRandomString(10) {
		t.Fatalf("two calls returned the same string %q", s)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{".PNG", ".png"},
		{"pdf", ".pdf"},
		{"", ""},
		{"./../x", ".x"},
		{".verylongextension", ".verylon"},
	}
	for _, tt := range tests {
		name := FileName(tt.ext)
		if got := name[16:]; got != tt.want {
			t.Errorf("FileName(%q) ext = %q, want %q", tt.ext, got, tt.want)
		}
		if strings.ContainsAny(name, `/\`) {
			t.Errorf("FileName(%q) = %q contains a path separator", tt.ext, name)
		}
	}
}
