// internal/time_parser.go
// ------------------------
// This internal package provides helper functions for parsing time values that
// services put in throttling headers. Adapters use them to turn a Retry-After
// header into a wait duration for the SDK's rate-limit errors.
//
// Functions:
// - ParseRetryAfter: interpret a Retry-After value as seconds, a Go-style
//   duration string like "1s" or "6m0s", or an HTTP-date.
// - ParseTimeStr: convert strings like "1s", "6m0s" into a duration.
package internal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseRetryAfter interprets a Retry-After header value. It accepts an
// integer number of seconds ("30"), a duration string ("1s", "6m0s"), or an
// HTTP-date, and returns zero for anything it cannot parse or for dates in
// the past.
func ParseRetryAfter(s string) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	if secs, err := strconv.Atoi(s); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}

	if d := ParseTimeStr(s); d > 0 {
		return d
	}

	if t, err := time.Parse(time.RFC1123, s); err == nil {
		d := time.Until(t)
		if d > 0 {
			return d
		}
	}

	return 0
}

// ParseTimeStr converts strings like "1s", "6m0s" into a duration.
func ParseTimeStr(s string) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	if strings.HasSuffix(s, "s") && !strings.Contains(s, "m") {
		val := strings.TrimSuffix(s, "s")
		sec, err := strconv.Atoi(val)
		if err == nil && sec >= 0 {
			return time.Duration(sec) * time.Second
		}
	}

	var minutes, seconds int
	n, err := fmt.Sscanf(s, "%dm%ds", &minutes, &seconds)
	if n == 2 && err == nil {
		return time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
	}

	return 0
}
