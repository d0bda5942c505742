package models

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the on-disk and on-screen format of LineItem.DateAdded.
const DateLayout = "2006-01-02"

// LineItem represents a single priced entry in the list.
type LineItem struct {
	// ID is assigned by the store on insert and never changes.
	ID int64

	// Name is the label entered by the user (e.g., "Coffee").
	Name string

	// Price is the amount entered by the user.
	Price float64

	// DateAdded is the calendar date the item was created.
	DateAdded time.Time
}

// DisplayRow is one line of the rendered list.
// Implemented only by ItemRow and TotalRow.
type DisplayRow interface {
	// Columns returns the row rendered as display cells.
	Columns() []string

	displayRow()
}

// ItemRow is a DisplayRow backed by a persisted LineItem.
type ItemRow struct {
	Item LineItem
}

// TotalRow is the synthetic row holding the sum of all prices.
// It has no backing identifier and cannot be deleted.
type TotalRow struct {
	Total float64
}

// TotalLabel is the first column of a TotalRow.
const TotalLabel = "Total Price"

func (ItemRow) displayRow()  {}
func (TotalRow) displayRow() {}

// Columns renders the item as (id, name, price, date).
func (r ItemRow) Columns() []string {
	return []string{
		strconv.FormatInt(r.Item.ID, 10),
		r.Item.Name,
		FormatPrice(r.Item.Price),
		r.Item.DateAdded.Format(DateLayout),
	}
}

// Columns renders the total as ("Total Price", "", sum).
func (r TotalRow) Columns() []string {
	return []string{TotalLabel, "", FormatPrice(r.Total)}
}

// FormatPrice renders the shortest decimal that round-trips v, so listed
// prices add up to the displayed total without rounding.
func FormatPrice(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	return decimal.NewFromFloat(v).String()
}
