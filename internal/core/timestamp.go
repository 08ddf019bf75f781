package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// fractionalSecondsRe finds a fractional-seconds group in an ISO-8601-ish
// timestamp, e.g. the "123456" in "2025-06-01T10:00:00.123456Z".
var fractionalSecondsRe = regexp.MustCompile(`\.(\d+)`)

// ParseFlexibleTimestamp parses an ISO-8601-ish timestamp whose
// fractional-second precision may be anywhere from 0 to 9 digits — not just
// the 0/3/6-digit forms time.RFC3339Nano expects. Go's time.Parse requires
// a fixed-width layout, so arbitrary fraction widths are normalized to
// exactly 9 digits (nanoseconds) by padding or truncating before parsing.
func ParseFlexibleTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	normalized := value
	if m := fractionalSecondsRe.FindStringSubmatchIndex(value); m != nil {
		frac := value[m[2]:m[3]]
		switch {
		case len(frac) < 9:
			frac = frac + strings.Repeat("0", 9-len(frac))
		case len(frac) > 9:
			frac = frac[:9]
		}
		normalized = value[:m[2]] + frac + value[m[3]:]
	}

	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	var lastErr error
	for _, layout := range layouts {
		if t, err := time.Parse(layout, normalized); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	// Fall back to the un-normalized value in case normalization mis-fired
	// on a non-fractional timestamp that happened to contain a literal dot.
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q: %w", value, lastErr)
}
