// Package config holds the recovery run's configuration, populated from
// CLI flags by cmd/xfsundelete and consumed by internal/recovery.
package config

import "time"

// defaultIgnoreExt is the out-of-the-box ignore list: octet-stream dumps
// with no further structure are rarely worth recovering on their own.
var defaultIgnoreExt = map[string]struct{}{"bin": {}}

// Config is the full set of knobs a recovery run accepts.
type Config struct {
	ImagePath string
	OutputDir string

	// IgnoreExt and RecoverOnlyExt are mutually exclusive filters keyed by
	// lower-case extension without the leading dot. An empty
	// RecoverOnlyExt means "no restriction"; IgnoreExt is only consulted
	// when RecoverOnlyExt is empty.
	IgnoreExt      map[string]struct{}
	RecoverOnlyExt map[string]struct{}

	// MinCtime is the earliest change time to accept; the zero Time means
	// "absent" (no filter).
	MinCtime time.Time
}

// Default returns a Config with its out-of-the-box defaults, missing only
// ImagePath.
func Default() Config {
	return Config{
		OutputDir:      "xfs_undeleted",
		IgnoreExt:      cloneSet(defaultIgnoreExt),
		RecoverOnlyExt: map[string]struct{}{},
	}
}

// Allows reports whether a recovered file with the given extension (no
// leading dot, already lower-cased) should be written out: a non-empty
// RecoverOnlyExt acts as an exclusive allow-list and overrides IgnoreExt
// entirely.
func (c Config) Allows(ext string) bool {
	if len(c.RecoverOnlyExt) > 0 {
		_, ok := c.RecoverOnlyExt[ext]
		return ok
	}
	_, ignored := c.IgnoreExt[ext]
	return !ignored
}

func cloneSet(src map[string]struct{}) map[string]struct{} {
	dst := make(map[string]struct{}, len(src))
	for k := range src {
		dst[k] = struct{}{}
	}
	return dst
}

// ParseExtList splits a comma-separated --ignore/--recover-only flag value
// into a set, lower-casing and trimming each entry. An empty string yields
// an empty (non-nil) set.
func ParseExtList(raw string) map[string]struct{} {
	set := map[string]struct{}{}
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || raw[i] == ',' {
			if tok := trimLowerASCII(raw[start:i]); tok != "" {
				set[tok] = struct{}{}
			}
			start = i + 1
		}
	}
	return set
}

func trimLowerASCII(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	b := []byte(s[start:end])
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}
