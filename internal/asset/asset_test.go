package asset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	idLow  = "0x" + strings.Repeat("0", 63) + "1"
	idHigh = "0x" + strings.Repeat("0", 62) + "a5"
	// Numerically larger than idHigh despite a lexically smaller hex digit
	// in front, which is exactly what byte-wise comparison would get wrong.
	idTop = "0x1" + strings.Repeat("0", 63)
)

func TestParseID(t *testing.T) {
	id, err := ParseID(idLow)
	require.NoError(t, err)
	assert.Equal(t, ID(idLow), id)

	// Upper case normalizes to lower.
	id, err = ParseID("0x" + strings.Repeat("0", 62) + "A5")
	require.NoError(t, err)
	assert.Equal(t, ID(idHigh), id)

	for _, bad := range []string{
		"",
		"0x123",                             // too short
		strings.Repeat("0", 66),             // missing prefix
		"0x" + strings.Repeat("0", 63) + "g", // non-hex digit
		"0x" + strings.Repeat("0", 65),      // too long
	} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, ErrInvalidID, "input %q", bad)
	}
}

func TestSortIsSymmetricAndTotal(t *testing.T) {
	a := New(MustParseID(idLow), "AAA", 9)
	b := New(MustParseID(idHigh), "BBB", 9)

	a0, a1, err := Sort(a, b)
	require.NoError(t, err)
	b0, b1, err := Sort(b, a)
	require.NoError(t, err)

	// Both argument orders converge on the same canonical order.
	assert.Equal(t, a0, b0)
	assert.Equal(t, a1, b1)
	assert.Equal(t, a.ID, a0.ID)
	assert.Equal(t, b.ID, a1.ID)
}

func TestSortComparesNumerically(t *testing.T) {
	high := New(MustParseID(idHigh), "HIGH", 9)
	top := New(MustParseID(idTop), "TOP", 9)

	a0, a1, err := Sort(top, high)
	require.NoError(t, err)
	assert.Equal(t, high.ID, a0.ID)
	assert.Equal(t, top.ID, a1.ID)
}

func TestSortIdenticalAssetsFailsLoudly(t *testing.T) {
	a := New(MustParseID(idLow), "AAA", 9)
	same := New(MustParseID(idLow), "COPY", 6)

	_, _, err := Sort(a, same)
	assert.ErrorIs(t, err, ErrIdenticalAssets)

	_, err = NewPair(a, same)
	assert.ErrorIs(t, err, ErrIdenticalAssets)
}

func TestNewDefaultsDecimals(t *testing.T) {
	a := New(MustParseID(idLow), "AAA", 0)
	assert.Equal(t, DefaultDecimals, a.Decimals)

	b := New(MustParseID(idLow), "BBB", 6)
	assert.Equal(t, uint8(6), b.Decimals)
}

func TestPairHelpers(t *testing.T) {
	a := New(MustParseID(idLow), "AAA", 9)
	b := New(MustParseID(idHigh), "BBB", 9)

	p, err := NewPair(b, a)
	require.NoError(t, err)

	assert.True(t, p.IsAsset0(a.ID))
	assert.False(t, p.IsAsset0(b.ID))
	assert.Equal(t, b, p.Other(a.ID))
	assert.Equal(t, a, p.Other(b.ID))
	assert.Equal(t, "AAA/BBB", p.String())
}
