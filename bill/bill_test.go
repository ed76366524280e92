// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package bill

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metonline/hesap-paylas/apperr"
)

func sumShares(b *Breakdown) Kurus {
	var total Kurus
	for _, s := range b.Shares {
		total += s.Total
	}
	return total
}

func TestSplitPersonalSharedExcluded(t *testing.T) {
	b, err := Split(Request{
		Members: []string{"Ali", "Ayşe", "Can"},
		Items: []Item{
			{Member: "Ali", Name: "Köfte", Price: 25000, Quantity: 1, Kind: Personal},
			{Member: "Ayşe", Name: "Salata", Price: 15000, Quantity: 1, Kind: Personal},
			{Member: "Can", Name: "Meze tabağı", Price: 10000, Quantity: 3, Kind: Shared},
			{Member: "Can", Name: "Şarap", Price: 40000, Quantity: 1, Kind: Excluded},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, Kurus(30000), b.SharedTotal)
	assert.Equal(t, Kurus(10000), b.SharedEach)
	assert.Equal(t, Kurus(40000), b.ExcludedTotal)
	assert.Equal(t, Kurus(70000), b.Subtotal)
	assert.Equal(t, b.Subtotal, b.GrandTotal)

	assert.Equal(t, Kurus(35000), b.Shares[0].Total)
	assert.Equal(t, Kurus(25000), b.Shares[1].Total)
	assert.Equal(t, Kurus(10000), b.Shares[2].Total)
	assert.Equal(t, Kurus(40000), b.Shares[2].Excluded)
	assert.Equal(t, b.GrandTotal, sumShares(b))
}

func TestSplitTipAndTaxFollowConsumption(t *testing.T) {
	b, err := Split(Request{
		Members: []string{"A", "B"},
		Items: []Item{
			{Member: "A", Name: "x", Price: 30000, Quantity: 1, Kind: Personal},
			{Member: "B", Name: "y", Price: 10000, Quantity: 1, Kind: Personal},
		},
		TipPercent: 10,
		TaxPercent: 8,
	})
	require.NoError(t, err)

	assert.Equal(t, Kurus(4000), b.Tip)
	assert.Equal(t, Kurus(3200), b.Tax)
	assert.Equal(t, Kurus(3000), b.Shares[0].Tip)
	assert.Equal(t, Kurus(1000), b.Shares[1].Tip)
	assert.Equal(t, Kurus(2400), b.Shares[0].Tax)
	assert.Equal(t, Kurus(800), b.Shares[1].Tax)
	assert.InDelta(t, 0.75, b.Shares[0].Ratio, 1e-9)
	assert.Equal(t, b.GrandTotal, sumShares(b))
}

func TestSplitRemaindersAddUp(t *testing.T) {
	b, err := Split(Request{
		Members: []string{"A", "B", "C"},
		Items: []Item{
			{Member: "A", Name: "Pizza", Price: 10000, Quantity: 1, Kind: Shared},
			{Member: "B", Name: "Çay", Price: 1, Quantity: 1, Kind: Personal},
		},
		TipAmount: 1000,
	})
	require.NoError(t, err)

	// 100,00 over three: 33,34 + 33,33 + 33,33
	assert.Equal(t, Kurus(3334), b.Shares[0].Shared)
	assert.Equal(t, Kurus(3333), b.Shares[1].Shared)
	assert.Equal(t, Kurus(3333), b.Shares[2].Shared)
	assert.Equal(t, b.GrandTotal, sumShares(b))
	assert.Equal(t, Kurus(10001+1000), b.GrandTotal)
}

func TestSplitNothingCharged(t *testing.T) {
	b, err := Split(Request{Members: []string{"A", "B"}, TipAmount: 101})
	require.NoError(t, err)
	assert.Equal(t, Kurus(51), b.Shares[0].Tip)
	assert.Equal(t, Kurus(50), b.Shares[1].Tip)
	assert.Equal(t, b.GrandTotal, sumShares(b))
}

func TestSplitRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{"no members", Request{}, "members"},
		{"duplicate member", Request{Members: []string{"A", "A"}}, "members"},
		{"unknown member", Request{Members: []string{"A"}, Items: []Item{{Member: "Z", Name: "x", Price: 1, Quantity: 1, Kind: Personal}}}, "items[0].member"},
		{"bad kind", Request{Members: []string{"A"}, Items: []Item{{Member: "A", Name: "x", Price: 1, Quantity: 1, Kind: "gift"}}}, "items[0].kind"},
		{"zero quantity", Request{Members: []string{"A"}, Items: []Item{{Member: "A", Name: "x", Price: 1, Kind: Personal}}}, "items[0]"},
		{"both tips", Request{Members: []string{"A"}, TipPercent: 5, TipAmount: 100}, "tip_amount"},
		{"price too large", Request{Members: []string{"A"}, Items: []Item{{Member: "A", Name: "x", Price: 5e18, Quantity: 2, Kind: Personal}}}, "items[0]"},
		{"quantity too large", Request{Members: []string{"A"}, Items: []Item{{Member: "A", Name: "x", Price: 1, Quantity: 1001, Kind: Personal}}}, "items[0]"},
		{"tip too large", Request{Members: []string{"A"}, TipAmount: MaxAmount + 1}, "tip_amount"},
		{"too many items", Request{Members: []string{"A"}, Items: make([]Item, MaxItems+1)}, "items"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(tt.req)
			require.Error(t, err)
			var appErr *apperr.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, apperr.CodeValidation, appErr.Code)
			assert.Contains(t, appErr.Details, tt.field)
		})
	}
}

func TestSplitLargestBillStaysPositive(t *testing.T) {
	members := []string{"Ayşe", "Mehmet", "Zeynep"}
	items := make([]Item, MaxItems)
	for i := range items {
		kind := Personal
		if i%2 == 0 {
			kind = Shared
		}
		items[i] = Item{Member: members[i%3], Name: "x", Price: MaxAmount, Quantity: 1000, Kind: kind}
	}

	b, err := Split(Request{Members: members, Items: items, TipPercent: 100, TaxPercent: 100})
	require.NoError(t, err)

	want := Kurus(MaxItems) * MaxAmount * 1000
	assert.Equal(t, want, b.Subtotal)
	assert.Equal(t, 3*want, b.GrandTotal)
	assert.Equal(t, b.GrandTotal, sumShares(b))
	for _, s := range b.Shares {
		assert.Positive(t, s.Total, s.Member)
	}
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name    string
		total   int64
		weights []int64
		want    []int64
	}{
		{"even", 90, []int64{1, 1, 1}, []int64{30, 30, 30}},
		{"remainder to first", 10, []int64{1, 1, 1}, []int64{4, 3, 3}},
		{"largest fraction wins", 10, []int64{1, 2}, []int64{3, 7}},
		{"zero weights", 5, []int64{0, 0}, []int64{3, 2}},
		{"zero total", 0, []int64{1, 2}, []int64{0, 0}},
		{"product beyond int64", 3e14, []int64{1e14, 2e14}, []int64{1e14, 2e14}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, allocate(tt.total, tt.weights))
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1.234,50 ₺", Format(123450))
	assert.Equal(t, "0,00 ₺", Format(0))
	assert.Equal(t, "12,05 ₺", Format(1205))
	assert.Equal(t, "-3,00 ₺", Format(-300))
}

func TestParseKurus(t *testing.T) {
	tests := []struct {
		in      string
		want    Kurus
		wantErr bool
	}{
		{"45", 4500, false},
		{"12,50", 1250, false},
		{"12.5", 1250, false},
		{"1.234,50 ₺", 123450, false},
		{"₺ 7", 700, false},
		{"1,234", 0, true},
		{"", 0, true},
		{"abc", 0, true},
		{"-5", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKurus(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitMatchesMembersAcrossUnicodeForms(t *testing.T) {
	composed := "Ay\u015fe"
	decomposed := "Ays\u0327e"

	b, err := Split(Request{
		Members: []string{composed, "Can"},
		Items: []Item{
			{Member: decomposed, Name: "Mantı", Price: 20000, Quantity: 1, Kind: Personal},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, Kurus(20000), b.Shares[0].Personal)

	_, err = Split(Request{Members: []string{composed, decomposed}})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}
