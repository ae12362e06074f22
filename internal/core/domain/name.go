package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var domainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)*\.[a-z]{2,}$`)

const maxDomainLen = 253

// Normalize turns a URL or domain string into a canonical domain name:
// lowercase, no scheme, no www prefix, no path, query, fragment or port.
func Normalize(input string) string {
	d := strings.ToLower(strings.TrimSpace(input))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	for _, sep := range []string{"/", "?", "#", ":"} {
		if i := strings.Index(d, sep); i >= 0 {
			d = d[:i]
		}
	}
	return d
}

// IsValid reports whether the string is a reasonable canonical domain name.
func IsValid(domain string) bool {
	return len(domain) <= maxDomainLen && domainPattern.MatchString(domain)
}

// AgeDays returns the whole days elapsed from birth until now.
func AgeDays(birthAt, now time.Time) int {
	return int(now.Sub(birthAt).Hours() / 24)
}

// AgeYears returns the full calendar years elapsed between birth and end.
func AgeYears(birthAt, end time.Time) int {
	years := end.Year() - birthAt.Year()
	if end.Month() < birthAt.Month() ||
		(end.Month() == birthAt.Month() && end.Day() < birthAt.Day()) {
		years--
	}
	return years
}

// FormatAge renders an age like "5 years, 3 months". Ages below one month
// render as "< 1 month".
func FormatAge(birthAt, end time.Time) string {
	years := end.Year() - birthAt.Year()
	months := int(end.Month()) - int(birthAt.Month())
	if months < 0 {
		years--
		months += 12
	}
	if end.Day() < birthAt.Day() {
		months--
		if months < 0 {
			years--
			months += 12
		}
	}

	var parts []string
	if years > 0 {
		parts = append(parts, plural(years, "year"))
	}
	if months > 0 {
		parts = append(parts, plural(months, "month"))
	}
	if len(parts) == 0 {
		return "< 1 month"
	}
	return strings.Join(parts, ", ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
