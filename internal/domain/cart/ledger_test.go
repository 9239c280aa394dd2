package cart

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_Add(t *testing.T) {
	var l Ledger

	require.NoError(t, l.Add(2, 1))
	require.NoError(t, l.Add(1, 3))
	require.NoError(t, l.Add(2, 4))

	assert.Equal(t, []Entry{
		{ProductID: 2, Quantity: 5},
		{ProductID: 1, Quantity: 3},
	}, l.Entries())
	assert.Equal(t, 8, l.Count())
}

func TestLedger_AddMergesRegardlessOfOrder(t *testing.T) {
	a, err := NewLedger(Entry{ProductID: 1, Quantity: 2}, Entry{ProductID: 1, Quantity: 5})
	require.NoError(t, err)
	b, err := NewLedger(Entry{ProductID: 1, Quantity: 5}, Entry{ProductID: 1, Quantity: 2})
	require.NoError(t, err)

	assert.Equal(t, []Entry{{ProductID: 1, Quantity: 7}}, a.Entries())
	assert.Equal(t, a.Entries(), b.Entries())
}

func TestLedger_AddRejectsNonPositive(t *testing.T) {
	var l Ledger

	for _, q := range []int{0, -3} {
		err := l.Add(1, q)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
	assert.True(t, l.Empty())
}

func TestLedger_AddRejectsAboveMaximum(t *testing.T) {
	var l Ledger

	for _, q := range []int{MaxQuantity + 1, math.MaxInt} {
		assert.ErrorIs(t, l.Add(1, q), ErrInvalidQuantity)
	}
	assert.True(t, l.Empty())
}

func TestLedger_AddMergeBeyondMaximum(t *testing.T) {
	var l Ledger
	require.NoError(t, l.Add(2, 3))
	require.NoError(t, l.Add(1, MaxQuantity))

	err := l.Add(1, 1)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	assert.Equal(t, []Entry{
		{ProductID: 2, Quantity: 3},
		{ProductID: 1, Quantity: MaxQuantity},
	}, l.Entries(), "ledger must be unchanged")
	assert.Equal(t, MaxQuantity+3, l.Count())

	// Merging up to the bound exactly is allowed.
	require.NoError(t, l.Add(2, MaxQuantity-3))
	assert.Equal(t, 2*MaxQuantity, l.Count())
}

func TestLedger_Full(t *testing.T) {
	var l Ledger
	for id := 1; id <= MaxEntries; id++ {
		require.NoError(t, l.Add(id, 1))
	}

	err := l.Add(MaxEntries+1, 1)
	require.ErrorIs(t, err, ErrFull)
	assert.Len(t, l.Entries(), MaxEntries)

	// Existing entries can still grow.
	require.NoError(t, l.Add(1, MaxQuantity-1))
	assert.Equal(t, MaxEntries-1+MaxQuantity, l.Count())
}

func TestNewLedger_RejectsOutOfRange(t *testing.T) {
	_, err := NewLedger(Entry{ProductID: 1, Quantity: MaxQuantity}, Entry{ProductID: 1, Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewLedger(Entry{ProductID: 1, Quantity: -5})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestLedger_AddUnknownProduct(t *testing.T) {
	var l Ledger

	require.NoError(t, l.Add(99, 1))
	assert.Equal(t, []Entry{{ProductID: 99, Quantity: 1}}, l.Entries())
}

func TestLedger_Clear(t *testing.T) {
	l, err := NewLedger(Entry{ProductID: 1, Quantity: 1})
	require.NoError(t, err)

	l.Clear()
	assert.True(t, l.Empty())
	assert.Empty(t, l.Entries())
	assert.Zero(t, l.Count())
}

func TestLedger_Nil(t *testing.T) {
	var l *Ledger

	assert.True(t, l.Empty())
	assert.Nil(t, l.Entries())
	assert.Zero(t, l.Count())
}

func TestLedger_EntriesIsACopy(t *testing.T) {
	l, err := NewLedger(Entry{ProductID: 1, Quantity: 1})
	require.NoError(t, err)

	entries := l.Entries()
	entries[0].Quantity = 100

	assert.Equal(t, 1, l.Count())
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		present bool
		want    int
		wantErr bool
	}{
		{name: "absent defaults to one", raw: "", present: false, want: 1},
		{name: "blank defaults to one", raw: "  ", present: true, want: 1},
		{name: "number", raw: "3", present: true, want: 3},
		{name: "surrounding spaces", raw: " 2 ", present: true, want: 2},
		{name: "zero", raw: "0", present: true, wantErr: true},
		{name: "negative", raw: "-1", present: true, wantErr: true},
		{name: "not a number", raw: "abc", present: true, wantErr: true},
		{name: "fraction", raw: "1.5", present: true, wantErr: true},
		{name: "maximum", raw: "999", present: true, want: MaxQuantity},
		{name: "above maximum", raw: "1000", present: true, wantErr: true},
		{name: "max int", raw: strconv.Itoa(math.MaxInt), present: true, wantErr: true},
		{name: "beyond int", raw: "99999999999999999999", present: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuantity(tt.raw, tt.present)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidQuantity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
