package sanitize

import (
	"strings"
	"testing"
)

func TestObjectKeyPart(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "poster.png", "poster"},
		{"uppercase", "The Godfather.JPEG", "the-godfather"},
		{"spaces collapse", "my   cover  image.png", "my-cover-image"},
		{"path separators stripped", "../../etc/passwd.png", "etc-passwd"},
		{"null bytes stripped", "cov\x00er.png", "cover"},
		{"special chars become dashes", "trailer (final)!.mp4", "trailer-final"},
		{"only junk falls back", "???.png", "file"},
		{"empty falls back", "", "file"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ObjectKeyPart(tc.in); got != tc.want {
				t.Errorf("ObjectKeyPart(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestObjectKeyPartLengthCap(t *testing.T) {
	got := ObjectKeyPart(strings.Repeat("a", 300) + ".png")
	if len(got) > 100 {
		t.Fatalf("expected key part capped at 100 chars, got %d", len(got))
	}
}
