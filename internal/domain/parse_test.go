package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterval(t *testing.T) {
	for _, in := range []string{"1", " 5 ", "24"} {
		h, err := ParseInterval(in)
		require.NoError(t, err, in)
		assert.True(t, ValidInterval(h))
	}

	tests := []struct {
		in   string
		want error
	}{
		{"0", ErrIntervalRange},
		{"25", ErrIntervalRange},
		{"-3", ErrIntervalRange},
		{"abc", ErrInvalidInterval},
		{"5h", ErrInvalidInterval},
		{"2.5", ErrInvalidInterval},
		{"   ", ErrEmptyInterval},
	}
	for _, tt := range tests {
		_, err := ParseInterval(tt.in)
		require.Error(t, err, tt.in)
		assert.ErrorIs(t, err, tt.want, tt.in)

		var inErr *InputError
		assert.True(t, errors.As(err, &inErr), tt.in)
	}
}

func TestParseInterests(t *testing.T) {
	assert.Equal(t, []string{"music", "sports", "history"}, ParseInterests(" music,sports , history"))
	assert.Equal(t, []string{"a", "b"}, ParseInterests("a, ,b,"))

	// blank input means "no particular interests", not one empty topic
	got := ParseInterests("   ")
	require.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, ParseInterests(""))
}

func TestParseLanguage(t *testing.T) {
	for _, l := range Languages {
		got, err := ParseLanguage(l.Label())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}

	got, err := ParseLanguage("Russian")
	require.NoError(t, err)
	assert.Equal(t, LangRussian, got)

	_, err = ParseLanguage("Deutsch")
	assert.ErrorIs(t, err, ErrUnknownLanguage)
}

func TestInterestsPatch_NilBecomesEmpty(t *testing.T) {
	p := InterestsPatch(nil)
	require.NotNil(t, p.Interests)
	assert.NotNil(t, *p.Interests)

	var prof Profile
	prof.Apply(p, prof.UpdatedAt)
	assert.True(t, prof.HasInterests)
	assert.Empty(t, prof.Interests)
}
