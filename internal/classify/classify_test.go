package classify

import "testing"

func TestExtension(t *testing.T) {
	tests := []struct {
		name      string
		mediaType string
		want      string
	}{
		{"octet-stream fixed mapping", "application/octet-stream", "bin"},
		{"plain text fixed mapping", "text/plain", "txt"},
		{"plain text with charset param", "text/plain; charset=utf-8", "txt"},
		{"derived from subtype", "image/png", "png"},
		{"strips plus suffix", "application/ld+json", "ld"},
		{"strips vendor prefix", "application/vnd.ms-excel", "ms-excel"},
		{"no slash yields bin", "garbage", "bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extension(tt.mediaType)
			if got != tt.want {
				t.Errorf("Extension(%q): expected %q, actual %q", tt.mediaType, tt.want, got)
			}
		})
	}
}

func TestSniff(t *testing.T) {
	pngHeader := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	got := Sniff(pngHeader)
	if got != "image/png" {
		t.Errorf("expected image/png, actual %s", got)
	}
}
