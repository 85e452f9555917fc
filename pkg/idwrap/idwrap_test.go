package idwrap

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTextRoundTrip(t *testing.T) {
	id := NewNow()
	parsed, err := NewText(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = NewText("not-a-ulid")
	assert.Error(t, err)
}

func TestNewDerivedIsDeterministic(t *testing.T) {
	a := NewDerived("1690000000-ABCDEF")
	b := NewDerived("1690000000-ABCDEF")
	c := NewDerived("1690000000-ABCDEE")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.False(t, a.IsZero())
}

var stepCodePattern = regexp.MustCompile(`^\d{10}-[0-9A-F]{32}$`)

func TestNewStepCodeFormat(t *testing.T) {
	code := NewStepCode()
	assert.Regexp(t, stepCodePattern, code)

	other := NewStepCode()
	assert.NotEqual(t, code, other)
}

func TestCompareAndZero(t *testing.T) {
	var zero IDWrap
	assert.True(t, zero.IsZero())
	assert.False(t, NewNow().IsZero())

	a, b := NewNow(), NewNow()
	assert.Equal(t, 0, a.Compare(a))
	assert.NotEqual(t, a.String(), b.String())
}
