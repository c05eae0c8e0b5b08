// Package steps defines the fixed, ordered registry of registration
// questions. The table is process-wide immutable; every step names its
// successor and the chain terminates at the confirmation sentinel.
package steps

import (
	"github.com/hamrahbot/sabt/internal/validation"
)

// Step identifies a single registration question.
type Step int

const (
	FirstName Step = iota
	LastName
	NationalID
	BirthDate
	Gender

	// Confirmation is the terminal sentinel reached after the last
	// step; it has no entry in the registry table.
	Confirmation
)

// SkipToken is the literal input that skips an optional step.
const SkipToken = "/skip"

// Gender answers accepted by the gender step keyboard.
const (
	GenderMale   = "آقا"
	GenderFemale = "خانم"
)

// Definition holds the static metadata of one registration step.
type Definition struct {
	Prompt   string
	ErrorMsg string
	Validate func(string) bool
	Optional bool
	Next     Step
	Label    string
}

var table = [...]Definition{
	FirstName: {
		Prompt:   "📝 لطفاً نام خود را وارد نمایید:",
		ErrorMsg: "❌ نام وارد شده معتبر نیست. لطفاً یک نام فارسی صحیح وارد کنید.",
		Validate: validation.ValidName,
		Next:     LastName,
		Label:    "نام",
	},
	LastName: {
		Prompt:   "📝 لطفاً نام خانوادگی خود را وارد نمایید:",
		ErrorMsg: "❌ نام خانوادگی وارد شده معتبر نیست. لطفاً یک نام خانوادگی فارسی صحیح وارد کنید.",
		Validate: validation.ValidName,
		Next:     NationalID,
		Label:    "نام خانوادگی",
	},
	NationalID: {
		Prompt:   "📝 لطفاً کد ملی خود را وارد نمایید:\n\n(این بخش اختیاری است، برای رد کردن /skip را تایپ کنید)",
		ErrorMsg: "❌ کد ملی وارد شده نامعتبر است. لطفاً مجدداً تلاش کنید یا /skip را بزنید.",
		Validate: validation.ValidNationalID,
		Optional: true,
		Next:     BirthDate,
		Label:    "کد ملی",
	},
	BirthDate: {
		Prompt:   "📝 لطفاً تاریخ تولد خود را وارد نمایید:\n\n(فرمت: 1375/05/14)",
		ErrorMsg: "❌ فرمت تاریخ تولد اشتباه است.",
		Validate: validation.ValidBirthDate,
		Next:     Gender,
		Label:    "تاریخ تولد",
	},
	Gender: {
		Prompt:   "📝 لطفاً جنسیت خود را انتخاب کنید:",
		ErrorMsg: "❌ لطفاً فقط یکی از گزینه‌های روی کیبورد را انتخاب کنید.",
		Validate: func(g string) bool { return g == GenderMale || g == GenderFemale },
		Next:     Confirmation,
		Label:    "جنسیت",
	},
}

var names = [...]string{
	FirstName:    "first_name",
	LastName:     "last_name",
	NationalID:   "national_id",
	BirthDate:    "birth_date",
	Gender:       "gender",
	Confirmation: "confirmation",
}

// First returns the entry step of the registration chain.
func First() Step { return FirstName }

// All returns the steps in registry order, excluding the sentinel.
func All() []Step {
	return []Step{FirstName, LastName, NationalID, BirthDate, Gender}
}

// Valid reports whether s names a registry entry (not the sentinel).
func (s Step) Valid() bool {
	return s >= FirstName && s < Confirmation
}

// Lookup returns the definition of a step.
func Lookup(s Step) (Definition, bool) {
	if !s.Valid() {
		return Definition{}, false
	}
	return table[s], true
}

// Prev returns the step whose successor is s, if any. The first step
// has no predecessor.
func Prev(s Step) (Step, bool) {
	for _, st := range All() {
		if table[st].Next == s {
			return st, true
		}
	}
	return 0, false
}

// String returns the stable wire name of the step, used in callback
// payloads and session field keys.
func (s Step) String() string {
	if s < FirstName || s > Confirmation {
		return "unknown"
	}
	return names[s]
}

// Parse resolves a wire name back to a Step.
func Parse(name string) (Step, bool) {
	for s := FirstName; s <= Confirmation; s++ {
		if names[s] == name {
			return s, true
		}
	}
	return 0, false
}
