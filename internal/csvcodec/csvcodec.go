// Package csvcodec reads and writes the service-record interchange file.
//
// The file has a fixed twelve-column layout, one service visit per row:
//
//	date,mileage,cost,items,itemsCost,provider,contactInfo,vehicle,year,vin,license,imageFilename
//
// Fields are quoted per RFC 4180 only when they contain a comma, quote or
// newline. Input written by older versions of the app was never quoted, so
// the reader tolerates stray quotes and short rows.
package csvcodec

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
)

// DateLayout is the format of the date column.
const DateLayout = "2006-01-02"

// ListSeparator joins the item names and item costs inside a single column.
const ListSeparator = domain.ItemListSeparator

// Header is the literal first row of every export, in column order.
var Header = []string{
	"date", "mileage", "cost", "items", "itemsCost",
	"provider", "contactInfo", "vehicle", "year", "vin", "license",
	"imageFilename",
}

// Column positions within a record.
const (
	colDate = iota
	colMileage
	colCost
	colItems
	colItemsCost
	colProvider
	colContactInfo
	colVehicle
	colYear
	colVIN
	colLicense
	colImageFilename

	numColumns
)

// FormatMoney renders an amount with exactly two decimal places.
func FormatMoney(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

// splitList splits a ;-joined column. An empty column yields no elements.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ListSeparator)
}
