package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainTerminatesAtConfirmation(t *testing.T) {
	seen := map[Step]bool{}
	s := First()
	for i := 0; i < len(All())+1; i++ {
		if s == Confirmation {
			return
		}
		require.True(t, s.Valid(), "step %v must be a registry entry", s)
		require.False(t, seen[s], "cycle detected at %v", s)
		seen[s] = true
		def, ok := Lookup(s)
		require.True(t, ok)
		s = def.Next
	}
	t.Fatalf("successor chain did not terminate at confirmation")
}

func TestPrevMatchesSuccessor(t *testing.T) {
	_, ok := Prev(First())
	assert.False(t, ok, "first step has no predecessor")

	for _, s := range All() {
		def, _ := Lookup(s)
		if def.Next == Confirmation {
			continue
		}
		prev, ok := Prev(def.Next)
		require.True(t, ok)
		assert.Equal(t, s, prev)
	}
}

func TestParseRoundTrip(t *testing.T) {
	for s := FirstName; s <= Confirmation; s++ {
		got, ok := Parse(s.String())
		require.True(t, ok, "parse %q", s.String())
		assert.Equal(t, s, got)
	}
	_, ok := Parse("nope")
	assert.False(t, ok)
}

func TestOnlyNationalIDIsOptional(t *testing.T) {
	for _, s := range All() {
		def, _ := Lookup(s)
		assert.Equal(t, s == NationalID, def.Optional, "step %v", s)
	}
}

func TestGenderValidatorAcceptsKeyboardAnswersOnly(t *testing.T) {
	def, _ := Lookup(Gender)
	assert.True(t, def.Validate(GenderMale))
	assert.True(t, def.Validate(GenderFemale))
	assert.False(t, def.Validate("male"))
	assert.False(t, def.Validate(""))
}
