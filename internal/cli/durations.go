package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var daySpanPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)([dw])`)

// parseAge parses a duration in Go syntax extended with "d" (days) and "w"
// (weeks) units, so "7d", "2w", "1d12h" and "36h" all work.
func parseAge(s string) (time.Duration, error) {
	rewritten := daySpanPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := daySpanPattern.FindStringSubmatch(match)
		value, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return match
		}
		hours := value * 24
		if parts[2] == "w" {
			hours = value * 24 * 7
		}
		return strconv.FormatFloat(hours, 'f', -1, 64) + "h"
	})

	d, err := time.ParseDuration(rewritten)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q (Go syntax plus d/w units)", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q must not be negative", s)
	}
	return d, nil
}
