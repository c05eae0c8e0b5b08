package validation

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	ptime "github.com/yaa110/go-persian-calendar"
)

func TestValidName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple persian", "علی", true},
		{"persian with space", "امیر حسین", true},
		{"two chars", "لی", true},
		{"single char", "ع", false},
		{"empty", "", false},
		{"ascii letters", "Ali", false},
		{"mixed persian ascii", "علیa", false},
		{"digits", "علی2", false},
		{"persian digits ok", "علی۱", true}, // U+06F1 is inside the block
		{"only spaces", "  ", true},              // no letter rule beyond the block check
		{"too long", strings.Repeat("ع", 51), false},
		{"max length", strings.Repeat("ع", 50), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidName(tt.input), "input %q", tt.input)
		})
	}
}

// checksumReference recomputes the expected control digit independently.
func checksumReference(code string) bool {
	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(code[i]-'0') * (10 - i)
	}
	r := sum % 11
	control := int(code[9] - '0')
	if r < 2 {
		return control == r
	}
	return control == 11-r
}

func TestValidNationalIDProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		var b strings.Builder
		for j := 0; j < 10; j++ {
			fmt.Fprintf(&b, "%d", rng.Intn(10))
		}
		code := b.String()
		assert.Equal(t, checksumReference(code), ValidNationalID(code), "code %s", code)
	}
}

func TestValidNationalIDShape(t *testing.T) {
	assert.False(t, ValidNationalID(""))
	assert.False(t, ValidNationalID("123"))
	assert.False(t, ValidNationalID("12345678901"))
	assert.False(t, ValidNationalID("12345a7890"))
	// Known-good sample: digits 0068299273 -> checksum holds.
	assert.True(t, ValidNationalID("0068299273"))
}

// birthDateAt builds a Jalali date string with the given age as of today.
// The day is clamped below 30 to stay valid in every month of every year.
func birthDateAt(age int) string {
	now := ptime.Now()
	day := now.Day()
	if day > 29 {
		day = 29
	}
	return fmt.Sprintf("%d/%02d/%02d", now.Year()-age, int(now.Month()), day)
}

func TestValidBirthDateAgeBounds(t *testing.T) {
	assert.True(t, ValidBirthDate(birthDateAt(10)), "age 10 is the lower bound")
	assert.True(t, ValidBirthDate(birthDateAt(100)), "age 100 is the upper bound")
	assert.True(t, ValidBirthDate(birthDateAt(30)))
	assert.False(t, ValidBirthDate(birthDateAt(9)))
	assert.False(t, ValidBirthDate(birthDateAt(101)))
}

func TestValidBirthDateShape(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"1375", false},
		{"1375/05", false},
		{"1375/05/14/2", false},
		{"1375-05-14", false},
		{"سال/پنج/چهارده", false},
		{"1375/13/01", false},
		{"1375/00/10", false},
		{"1375/05/32", false},
		{"1375/05/14", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidBirthDate(tt.input), "input %q", tt.input)
	}
}

func TestValidBirthDateRejectsNonexistentDay(t *testing.T) {
	// 1402 is not a leap year in the Jalali calendar, so Esfand has 29 days.
	assert.False(t, ValidBirthDate("1402/12/30"))
	// 1403 is a leap year.
	assert.True(t, ValidBirthDate("1403/12/30"))
}
