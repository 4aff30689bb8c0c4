package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
)

func byWeight(wt models.WasteType, kg float64) models.WasteItem {
	return models.WasteItem{WasteType: wt, ByWeight: &models.WeightMeasure{Kg: kg}}
}

func TestTariffPriceByWeight(t *testing.T) {
	tariff := DefaultTariff()

	items, total := tariff.PriceAll([]models.WasteItem{
		byWeight(models.WasteFood, 2),
		byWeight(models.WasteCardboard, 1.5),
		byWeight(models.WastePolythene, 0.5),
	})

	assert.Equal(t, 100.0, items[0].LineTotal)
	assert.Equal(t, 150.0, items[1].LineTotal)
	assert.Equal(t, 75.0, items[2].LineTotal)
	assert.Equal(t, 50.0, items[0].UnitPrice)
	assert.Equal(t, 2.0, items[0].Kilograms)
	assert.Equal(t, 325.0, total)
}

func TestTariffPriceByPackage(t *testing.T) {
	tariff := DefaultTariff()
	item := tariff.Price(models.WasteItem{
		WasteType: models.WasteCardboard,
		ByPackage: &models.PackageMeasure{Size: models.PackageMedium, Quantity: 3},
	})

	// 4 kg per medium bag, 100 per kg.
	assert.Equal(t, 12.0, item.Kilograms)
	assert.Equal(t, 400.0, item.UnitPrice)
	assert.Equal(t, 1200.0, item.LineTotal)
}

func TestTotalIsSumOfLines(t *testing.T) {
	tariff := DefaultTariff()
	items, total := tariff.PriceAll([]models.WasteItem{
		byWeight(models.WasteFood, 0.33),
		byWeight(models.WasteFood, 0.33),
		{WasteType: models.WastePolythene, ByPackage: &models.PackageMeasure{Size: models.PackageSmall, Quantity: 2}},
	})
	var sum float64
	for _, it := range items {
		sum += it.LineTotal
	}
	assert.Equal(t, Round2(sum), total)
}

func TestTablesAreCopied(t *testing.T) {
	src := map[models.WasteType]float64{models.WasteFood: 10}
	rates := NewRateTable(src)
	src[models.WasteFood] = 99

	assert.Equal(t, 10.0, rates.Rate(models.WasteFood))
	assert.Equal(t, 0.0, rates.Rate("glass"))
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(10050), MinorUnits(100.5))
	assert.Equal(t, int64(50), MinorUnits(0.5))
}
