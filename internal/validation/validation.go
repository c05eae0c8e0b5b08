// Package validation contains the pure input predicates used by the
// registration flow. All rules operate on raw user input strings.
package validation

import (
	"strconv"
	"strings"
	"unicode/utf8"

	ptime "github.com/yaa110/go-persian-calendar"
)

const (
	minNameLen = 2
	maxNameLen = 50

	minAge = 10
	maxAge = 100
)

// ValidName reports whether the input is an acceptable Persian name:
// 2 to 50 characters, each either a space or within the Arabic/Persian
// letter block (U+0600..U+06FF). No normalization is performed.
func ValidName(name string) bool {
	n := utf8.RuneCountInString(name)
	if n < minNameLen || n > maxNameLen {
		return false
	}
	for _, r := range name {
		if r == ' ' {
			continue
		}
		if r < 0x0600 || r > 0x06FF {
			return false
		}
	}
	return true
}

// ValidNationalID reports whether the input is a valid Iranian national
// id: exactly 10 ASCII digits whose control digit satisfies the mod-11
// checksum.
func ValidNationalID(code string) bool {
	if len(code) != 10 {
		return false
	}
	sum := 0
	for i := 0; i < 9; i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
		sum += int(code[i]-'0') * (10 - i)
	}
	if code[9] < '0' || code[9] > '9' {
		return false
	}
	control := int(code[9] - '0')
	r := sum % 11
	if r < 2 {
		return control == r
	}
	return control == 11-r
}

// ValidBirthDate reports whether the input is a Jalali date in
// year/month/day order that exists on the calendar and yields an age
// between 10 and 100 years inclusive.
func ValidBirthDate(dateStr string) bool {
	parts := strings.Split(strings.TrimSpace(dateStr), "/")
	if len(parts) != 3 {
		return false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}

	// ptime.Date normalizes out-of-range values, so a round-trip
	// comparison is required to reject dates like 1400/12/30.
	pt := ptime.Date(year, ptime.Month(month), day, 12, 0, 0, 0, ptime.Iran())
	if pt.Year() != year || int(pt.Month()) != month || pt.Day() != day {
		return false
	}

	age := Age(year, month, day, ptime.Now())
	return age >= minAge && age <= maxAge
}

// Age computes full years elapsed between a Jalali birth date and now.
func Age(year, month, day int, now ptime.Time) int {
	age := now.Year() - year
	if int(now.Month()) < month || (int(now.Month()) == month && now.Day() < day) {
		age--
	}
	return age
}
