package utils

import (
	"regexp"
	"strings"
)

var (
	hoursRangeRe        = regexp.MustCompile(`(?i)^(\d{1,2})(am|pm)[–\-](\d{1,2})(am|pm)$`)
	styleURLRe          = regexp.MustCompile(`url\("([^"]+)"\)`)
	whitespaceRe        = regexp.MustCompile(`\s+`)
	busySlotRe          = regexp.MustCompile(`^(\d+)% busy at (.+)$`)
	ratingStarsRe       = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s+star`)
	leadingCountDigitRe = regexp.MustCompile(`([\d,]+)`)
)

// NormalizeText collapses whitespace (including non-breaking spaces) and
// trims the result.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// StripLabelPrefix removes an aria-label prefix like "Address: " or
// "Plus code: " and normalizes the remainder.
func StripLabelPrefix(s, prefix string) string {
	s = NormalizeText(s)
	s = strings.TrimPrefix(s, prefix)
	return strings.TrimSpace(s)
}

// FormatHours rewrites "9am–5pm" into "9:00 AM – 5:00 PM". "Closed" passes
// through; anything unrecognized is returned normalized but unchanged.
func FormatHours(raw string) string {
	compact := strings.ReplaceAll(NormalizeText(raw), " ", "")
	if strings.EqualFold(compact, "closed") {
		return "Closed"
	}
	m := hoursRangeRe.FindStringSubmatch(compact)
	if m == nil {
		return NormalizeText(raw)
	}
	return m[1] + ":00 " + strings.ToUpper(m[2]) + " – " + m[3] + ":00 " + strings.ToUpper(m[4])
}

// ParseBusySlot parses a popularity-bar aria-label like "83% busy at 6 PM"
// into its hour label and percentage. Percentages outside [0,100] are
// rejected.
func ParseBusySlot(ariaLabel string) (timeLabel string, percent int, ok bool) {
	m := busySlotRe.FindStringSubmatch(NormalizeText(ariaLabel))
	if m == nil {
		return "", 0, false
	}
	n := 0
	for _, c := range m[1] {
		n = n*10 + int(c-'0')
	}
	if n < 0 || n > 100 {
		return "", 0, false
	}
	return strings.TrimSpace(m[2]), n, true
}

// ParseRatingStars extracts "5" from an aria-label like "5 stars" or
// "4.5 stars".
func ParseRatingStars(ariaLabel string) (string, bool) {
	m := ratingStarsRe.FindStringSubmatch(NormalizeText(ariaLabel))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseCount pulls the first integer out of text like "1,234 reviews".
func ParseCount(s string) (int, bool) {
	m := leadingCountDigitRe.FindStringSubmatch(NormalizeText(s))
	if m == nil {
		return 0, false
	}
	digits := strings.ReplaceAll(m[1], ",", "")
	n := 0
	for _, c := range digits {
		n = n*10 + int(c-'0')
	}
	return n, true
}

// URLFromStyle extracts the URL from a CSS background-image declaration like
// `background-image: url("https://…")`.
func URLFromStyle(style string) (string, bool) {
	m := styleURLRe.FindStringSubmatch(style)
	if m == nil {
		return "", false
	}
	return m[1], true
}

var weekdays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// DayOrderFrom returns the seven weekdays starting from the named day and
// wrapping the week. An unrecognized day starts from Monday.
func DayOrderFrom(current string) []string {
	current = NormalizeText(current)
	start := 0
	if len(current) >= 3 {
		for i, d := range weekdays {
			if strings.HasPrefix(d, current[:3]) {
				start = i
				break
			}
		}
	}
	out := make([]string, 0, len(weekdays))
	out = append(out, weekdays[start:]...)
	out = append(out, weekdays[:start]...)
	return out
}

// CleanFilename replaces characters unsafe for filenames and bounds length.
func CleanFilename(name string) string {
	for _, c := range `<>:"/\|?*` {
		name = strings.ReplaceAll(name, string(c), "_")
	}
	name = NormalizeText(name)
	if len(name) > 100 {
		name = name[:100]
	}
	if name == "" {
		name = "unknown_business"
	}
	return name
}
