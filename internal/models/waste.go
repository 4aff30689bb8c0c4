package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// WasteType is a collected waste category.
type WasteType string

const (
	WasteFood      WasteType = "food"
	WasteCardboard WasteType = "cardboard"
	WastePolythene WasteType = "polythene"
)

// WasteTypes lists the known categories in display order.
var WasteTypes = []WasteType{WasteFood, WasteCardboard, WastePolythene}

func (t WasteType) Valid() bool {
	return t == WasteFood || t == WasteCardboard || t == WastePolythene
}

// PackageSize is the bag size used when waste is measured by package.
type PackageSize string

const (
	PackageSmall  PackageSize = "small"
	PackageMedium PackageSize = "medium"
	PackageLarge  PackageSize = "large"
)

func (s PackageSize) Valid() bool {
	return s == PackageSmall || s == PackageMedium || s == PackageLarge
}

// WeightMeasure measures waste directly in kilograms.
type WeightMeasure struct {
	Kg float64 `bson:"kg" json:"kg"`
}

// PackageMeasure measures waste as a number of bags of one size.
type PackageMeasure struct {
	Size     PackageSize `bson:"size" json:"size"`
	Quantity int         `bson:"quantity" json:"quantity"`
}

// WasteItem is one line of a pickup request or collection entry. Exactly one
// of ByWeight and ByPackage is set. Kilograms, UnitPrice and LineTotal are
// derived by pricing and stored so aggregations do not need the tariff.
type WasteItem struct {
	WasteType WasteType       `bson:"waste_type" json:"wasteType"`
	ByWeight  *WeightMeasure  `bson:"by_weight,omitempty" json:"byWeight,omitempty"`
	ByPackage *PackageMeasure `bson:"by_package,omitempty" json:"byPackage,omitempty"`
	Kilograms float64         `bson:"kilograms" json:"kilograms"`
	UnitPrice float64         `bson:"unit_price" json:"unitPrice"`
	LineTotal float64         `bson:"line_total" json:"lineTotal"`
}

// UnmarshalJSON accepts the canonical form as well as the flat legacy forms
// {"wasteType","weight"} and {"wasteType","packageSize","quantity"}.
func (w *WasteItem) UnmarshalJSON(data []byte) error {
	type canonical WasteItem
	var raw struct {
		canonical
		Weight      *float64    `json:"weight"`
		PackageSize PackageSize `json:"packageSize"`
		Quantity    *int        `json:"quantity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	item := WasteItem(raw.canonical)
	if item.ByWeight == nil && raw.Weight != nil {
		item.ByWeight = &WeightMeasure{Kg: *raw.Weight}
	}
	if item.ByPackage == nil && raw.PackageSize != "" {
		qty := 1
		if raw.Quantity != nil {
			qty = *raw.Quantity
		}
		item.ByPackage = &PackageMeasure{Size: raw.PackageSize, Quantity: qty}
	}
	*w = item
	return nil
}

// Validate checks the item shape independent of any tariff.
func (w WasteItem) Validate() error {
	if !w.WasteType.Valid() {
		return fmt.Errorf("unknown waste type %q", w.WasteType)
	}
	switch {
	case w.ByWeight != nil && w.ByPackage != nil:
		return errors.New("waste item must be measured by weight or by package, not both")
	case w.ByWeight != nil:
		if w.ByWeight.Kg < 0 {
			return errors.New("weight must not be negative")
		}
	case w.ByPackage != nil:
		if !w.ByPackage.Size.Valid() {
			return fmt.Errorf("unknown package size %q", w.ByPackage.Size)
		}
		if w.ByPackage.Quantity <= 0 {
			return errors.New("quantity must be positive")
		}
	default:
		return errors.New("waste item needs a weight or a package size")
	}
	return nil
}
