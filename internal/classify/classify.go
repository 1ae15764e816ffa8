// Package classify sniffs a media type from a file's leading bytes and
// derives a filesystem extension from it.
package classify

import (
	"net/http"
	"strings"
)

// sniffLen matches the number of leading bytes net/http.DetectContentType
// itself inspects; reading more than this is wasted work.
const sniffLen = 512

// fixedExtensions maps media types with no obvious extension-shaped
// suffix to the extension they conventionally use on disk.
var fixedExtensions = map[string]string{
	"application/octet-stream": "bin",
	"text/plain":               "txt",
}

// Sniff returns the detected media type of data's first sniffLen bytes (or
// fewer, if data is shorter).
func Sniff(data []byte) string {
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	return http.DetectContentType(data)
}

// Extension derives a filesystem extension from a sniffed media type: any
// trailing "; charset=..." parameter is discarded first, then known types
// are looked up, then the part after the final slash is used with any
// "+suffix" and any "vendor." prefix stripped.
func Extension(mediaType string) string {
	mediaType, _, _ = strings.Cut(mediaType, ";")
	mediaType = strings.TrimSpace(mediaType)

	if ext, ok := fixedExtensions[mediaType]; ok {
		return ext
	}

	_, sub, ok := cutLast(mediaType, "/")
	if !ok || sub == "" {
		return "bin"
	}

	sub, _, _ = strings.Cut(sub, "+")
	sub = stripVendorPrefix(sub)

	if sub == "" {
		return "bin"
	}
	return strings.ToLower(sub)
}

// stripVendorPrefix removes a single leading "alnum+[-.]" vendor prefix,
// e.g. "vnd." in "vnd.ms-excel".
func stripVendorPrefix(s string) string {
	i := 0
	for i < len(s) && isAlnum(s[i]) {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '-' || s[i] == '.') {
		return s[i+1:]
	}
	return s
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func cutLast(s, sep string) (before, after string, found bool) {
	idx := strings.LastIndex(s, sep)
	if idx < 0 {
		return s, "", false
	}
	return s[:idx], s[idx+len(sep):], true
}
