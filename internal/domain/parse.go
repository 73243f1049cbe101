package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidInterval reports whether hours is inside [MinIntervalHours, MaxIntervalHours].
func ValidInterval(hours int) bool {
	return hours >= MinIntervalHours && hours <= MaxIntervalHours
}

// ParseInterval parses a whole number of hours between 1 and 24.
// Surrounding spaces are ignored; anything else ("5h", "2.5") is rejected.
func ParseInterval(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &InputError{Field: "interval", Input: s, Err: ErrEmptyInterval}
	}
	h, err := strconv.Atoi(s)
	if err != nil {
		return 0, &InputError{Field: "interval", Input: s, Err: ErrInvalidInterval}
	}
	if !ValidInterval(h) {
		return 0, &InputError{
			Field: "interval",
			Input: s,
			Err:   fmt.Errorf("%w: want %d..%d", ErrIntervalRange, MinIntervalHours, MaxIntervalHours),
		}
	}
	return h, nil
}

// ParseInterests splits comma separated topics and trims each one.
// Blank segments are dropped, so blank input gives an empty (but set) list.
func ParseInterests(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
