package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		expected  string
		expectErr bool
	}{
		{"lowercase", "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c", "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c", false},
		{"checksummed", "0xbB4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c", "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c", false},
		{"no prefix", "bb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c", "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c", false},
		{"too short", "0xbb4c", "", true},
		{"not hex", "0xzz4cdb9cbd36b01bd1cbaebf2de08d9173bc095c", "", true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, err := NormalizeAddress(test.in)
			if test.expectErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidAddress)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, out)
		})
	}
}

func TestTokensKey_Unordered(t *testing.T) {
	a := "0x55d398326f99059ff775485246999027b3197955"
	b := "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c"

	assert.Equal(t, TokensKey(a, b), TokensKey(b, a))
	assert.Equal(t, a+":"+b, TokensKey(b, a))
}

func TestPairSide(t *testing.T) {
	p := &Pair{Token0: "0xa", Token1: "0xb"}
	assert.Equal(t, 0, p.Side("0xa"))
	assert.Equal(t, 1, p.Side("0xb"))
	assert.Equal(t, -1, p.Side("0xc"))
}

func TestDerivedETHOrZero_NilToken(t *testing.T) {
	var tok *Token
	assert.True(t, tok.DerivedETHOrZero().IsZero())
}
