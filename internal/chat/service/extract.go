package service

import (
	"regexp"
	"strconv"
)

const defaultTopLimit = 5

var (
	dayWindowRe = regexp.MustCompile(`(?i)(\d+)\s*days?`)
	topLimitRe  = regexp.MustCompile(`(?i)top\s*(\d+)`)
)

// extractDayWindow pulls "<n> day(s)" out of the query. ok is false when no
// window was given, which callers read as year-to-date.
func extractDayWindow(query string) (days int, ok bool) {
	match := dayWindowRe.FindStringSubmatch(query)
	if match == nil {
		return 0, false
	}
	parsed, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// extractTopLimit pulls "top <n>" out of the query, defaulting to 5.
func extractTopLimit(query string) int {
	match := topLimitRe.FindStringSubmatch(query)
	if match == nil {
		return defaultTopLimit
	}
	parsed, err := strconv.Atoi(match[1])
	if err != nil || parsed <= 0 {
		return defaultTopLimit
	}
	return parsed
}
