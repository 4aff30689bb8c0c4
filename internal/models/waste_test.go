package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWasteItemUnmarshal(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want WasteItem
	}{
		{
			name: "canonical by weight",
			in:   `{"wasteType":"food","byWeight":{"kg":2}}`,
			want: WasteItem{WasteType: WasteFood, ByWeight: &WeightMeasure{Kg: 2}},
		},
		{
			name: "canonical by package",
			in:   `{"wasteType":"cardboard","byPackage":{"size":"large","quantity":3}}`,
			want: WasteItem{WasteType: WasteCardboard, ByPackage: &PackageMeasure{Size: PackageLarge, Quantity: 3}},
		},
		{
			name: "legacy weight",
			in:   `{"wasteType":"polythene","weight":0.5,"totalPrice":75}`,
			want: WasteItem{WasteType: WastePolythene, ByWeight: &WeightMeasure{Kg: 0.5}},
		},
		{
			name: "legacy package without quantity",
			in:   `{"wasteType":"food","packageSize":"small"}`,
			want: WasteItem{WasteType: WasteFood, ByPackage: &PackageMeasure{Size: PackageSmall, Quantity: 1}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got WasteItem
			require.NoError(t, json.Unmarshal([]byte(tc.in), &got))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWasteItemValidate(t *testing.T) {
	ok := WasteItem{WasteType: WasteFood, ByWeight: &WeightMeasure{Kg: 1}}
	assert.NoError(t, ok.Validate())

	bad := []WasteItem{
		{WasteType: "glass", ByWeight: &WeightMeasure{Kg: 1}},
		{WasteType: WasteFood},
		{WasteType: WasteFood, ByWeight: &WeightMeasure{Kg: -1}},
		{WasteType: WasteFood, ByPackage: &PackageMeasure{Size: "huge", Quantity: 1}},
		{WasteType: WasteFood, ByPackage: &PackageMeasure{Size: PackageSmall, Quantity: 0}},
		{WasteType: WasteFood, ByWeight: &WeightMeasure{Kg: 1}, ByPackage: &PackageMeasure{Size: PackageSmall, Quantity: 1}},
	}
	for _, item := range bad {
		assert.Error(t, item.Validate())
	}
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("garbageCollector")
	assert.True(t, ok)
	assert.Equal(t, RoleCollector, r)

	r, ok = ParseRole("user")
	assert.True(t, ok)
	assert.Equal(t, RoleResident, r)

	_, ok = ParseRole("superuser")
	assert.False(t, ok)
}
