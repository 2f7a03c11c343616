package usemin

import "testing"

func TestIsHTMLDocument(t *testing.T) {
	cases := []struct {
		path  string
		first string
		want  bool
	}{
		{"index.html", "", true},
		{"page.HTM", "", true},
		{"site.css", "body {}", false},
		{"page", "<html><body>", true},
		{"page", "\xEF\xBB\xBF<html>", true}, // BOM then markup
		{"page", "plain text", false},
	}

	for _, tc := range cases {
		if got := IsHTMLDocument(tc.path, []byte(tc.first)); got != tc.want {
			t.Errorf("IsHTMLDocument(%q, %q) = %v, want %v", tc.path, tc.first, got, tc.want)
		}
	}
}

func TestIsCSSDocument(t *testing.T) {
	if !IsCSSDocument("styles/site.css") {
		t.Error("site.css should be detected as CSS")
	}
	if IsCSSDocument("index.html") {
		t.Error("index.html should not be detected as CSS")
	}
}
