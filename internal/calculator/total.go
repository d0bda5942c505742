package calculator

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tally/internal/models"
)

// Total sums the prices of all items.
// Summing in decimal keeps totals such as 3.50 + 2.25 exact instead of
// accumulating binary floating point error across many rows.
// Non-finite prices cannot be represented and count as zero.
func Total(items []models.LineItem) float64 {
	sum := decimal.Zero
	for _, item := range items {
		if math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(item.Price))
	}
	return sum.InexactFloat64()
}

// DisplayRows converts items to display rows and appends the total row.
func DisplayRows(items []models.LineItem) []models.DisplayRow {
	rows := make([]models.DisplayRow, 0, len(items)+1)
	for _, item := range items {
		rows = append(rows, models.ItemRow{Item: item})
	}
	return append(rows, models.TotalRow{Total: Total(items)})
}
