package sanitize

import "testing"

func TestText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  plain   text ", "plain text"},
		{"<b>bold</b> move", "bold move"},
		{"&lt;script&gt;alert(1)&lt;/script&gt;ok", "alert(1)ok"},
		{"line one\nline two", "line one\nline two"},
	}
	for _, tc := range cases {
		if got := Text(tc.in); got != tc.want {
			t.Fatalf("Text(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestTextPtrBlankIsNil(t *testing.T) {
	blank := "  <i></i> "
	if got := TextPtr(&blank); got != nil {
		t.Fatalf("expected nil, got %q", *got)
	}
	if TextPtr(nil) != nil {
		t.Fatal("expected nil for nil input")
	}
}
