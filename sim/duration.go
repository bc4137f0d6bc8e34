package sim

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDuration converts a duration string into seconds. It accepts either a
// bare number of seconds ("90", "12.5") or a human-readable duration such as
// "1m 30s", "1h2min", "250ms".
func ParseDuration(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return v, nil
	}
	compact := strings.ReplaceAll(trimmed, " ", "")
	// "min" is accepted as an alias for minutes ("ms" is unaffected).
	compact = strings.ReplaceAll(compact, "min", "m")
	d, err := time.ParseDuration(compact)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: expected a human-readable duration (e.g. \"1m 30s\") or a number of seconds", s)
	}
	return d.Seconds(), nil
}

// FormatDuration renders a duration in seconds as a human-readable string,
// e.g. "1min 30s", "2h 5s", "250ms". Negative values are clamped to 0.
func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	return strings.Join(durationParts(seconds, false), " ")
}

// FormatDurationFixed renders a duration right-aligned in a 30-character
// field, zero-padding inner components for stable column alignment in the
// event table.
func FormatDurationFixed(seconds float64) string {
	if seconds < 0 {
		return fmt.Sprintf("%30s", "INVALID")
	}
	return fmt.Sprintf("%30s", strings.Join(durationParts(seconds, true), " "))
}

type durationComponent struct {
	value int64
	unit  string
	width int
}

// durationParts splits seconds into day/hour/minute/second/millisecond
// components, dropping leading and trailing zero components. With padded
// set, components after the first are zero-padded so columns line up.
func durationParts(seconds float64, padded bool) []string {
	totalMillis := int64(seconds*1000 + 0.5)

	components := []durationComponent{
		{totalMillis / 86400000, "d", 2},
		{totalMillis / 3600000 % 24, "h", 2},
		{totalMillis / 60000 % 60, "min", 2},
		{totalMillis / 1000 % 60, "s", 2},
		{totalMillis % 1000, "ms", 3},
	}

	first, last := -1, -1
	for i, c := range components {
		if c.value > 0 {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return []string{"0ms"}
	}

	var parts []string
	for i := first; i <= last; i++ {
		c := components[i]
		switch {
		case i == first:
			parts = append(parts, fmt.Sprintf("%d%s", c.value, c.unit))
		case padded:
			parts = append(parts, fmt.Sprintf("%0*d%s", c.width, c.value, c.unit))
		case c.value > 0:
			parts = append(parts, fmt.Sprintf("%d%s", c.value, c.unit))
		}
	}
	return parts
}
