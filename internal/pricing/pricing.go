// Package pricing prices waste items and holds the rate tables used for
// request pricing and invoicing. Both tables are immutable once built.
package pricing

import (
	"math"

	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
)

// Tariff prices pickup requests: a per-kilogram rate for each waste type and a
// nominal weight for each package size.
type Tariff struct {
	perKg     map[models.WasteType]float64
	packageKg map[models.PackageSize]float64
}

// DefaultTariff is the request pricing used unless overridden.
func DefaultTariff() Tariff {
	return NewTariff(
		map[models.WasteType]float64{
			models.WasteFood:      50,
			models.WasteCardboard: 100,
			models.WastePolythene: 150,
		},
		map[models.PackageSize]float64{
			models.PackageSmall:  2,
			models.PackageMedium: 4,
			models.PackageLarge:  8,
		},
	)
}

// NewTariff copies the given tables.
func NewTariff(perKg map[models.WasteType]float64, packageKg map[models.PackageSize]float64) Tariff {
	t := Tariff{
		perKg:     make(map[models.WasteType]float64, len(perKg)),
		packageKg: make(map[models.PackageSize]float64, len(packageKg)),
	}
	for k, v := range perKg {
		t.perKg[k] = v
	}
	for k, v := range packageKg {
		t.packageKg[k] = v
	}
	return t
}

// RatePerKg returns the request rate for a waste type, 0 if unknown.
func (t Tariff) RatePerKg(wt models.WasteType) float64 { return t.perKg[wt] }

// PackageKg returns the nominal weight of a package size, 0 if unknown.
func (t Tariff) PackageKg(s models.PackageSize) float64 { return t.packageKg[s] }

// Kilograms returns the weight an item stands for under this tariff.
func (t Tariff) Kilograms(item models.WasteItem) float64 {
	switch {
	case item.ByWeight != nil:
		return item.ByWeight.Kg
	case item.ByPackage != nil:
		return t.PackageKg(item.ByPackage.Size) * float64(item.ByPackage.Quantity)
	}
	return 0
}

// Price fills in the derived fields of item. The item must already be valid.
func (t Tariff) Price(item models.WasteItem) models.WasteItem {
	rate := t.RatePerKg(item.WasteType)
	item.Kilograms = t.Kilograms(item)
	item.UnitPrice = rate
	if item.ByPackage != nil {
		item.UnitPrice = Round2(rate * t.PackageKg(item.ByPackage.Size))
	}
	item.LineTotal = Round2(rate * item.Kilograms)
	return item
}

// PriceAll prices every item and returns the priced copies and their sum.
func (t Tariff) PriceAll(items []models.WasteItem) ([]models.WasteItem, float64) {
	priced := make([]models.WasteItem, len(items))
	var total float64
	for i, item := range items {
		priced[i] = t.Price(item)
		total += priced[i].LineTotal
	}
	return priced, Round2(total)
}

// RateTable holds the per-kilogram invoice rates. They are separate from the
// request tariff and must not be mixed with it.
type RateTable struct {
	perKg map[models.WasteType]float64
}

// DefaultInvoiceRates is the invoice rate table used unless overridden.
func DefaultInvoiceRates() RateTable {
	return NewRateTable(map[models.WasteType]float64{
		models.WasteFood:      10,
		models.WasteCardboard: 20,
		models.WastePolythene: 50,
	})
}

func NewRateTable(perKg map[models.WasteType]float64) RateTable {
	r := RateTable{perKg: make(map[models.WasteType]float64, len(perKg))}
	for k, v := range perKg {
		r.perKg[k] = v
	}
	return r
}

// Rate returns the invoice rate; unknown waste types bill at 0.
func (r RateTable) Rate(wt models.WasteType) float64 { return r.perKg[wt] }

// Round2 rounds a currency amount to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MinorUnits converts an amount to the smallest currency unit.
func MinorUnits(v float64) int64 {
	return int64(math.Round(v * 100))
}
