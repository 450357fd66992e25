package packlist

import (
	"proforma/internal"
	"proforma/internal/util"
)

const (
	colName = iota
	colTracking
	colProduct
	colAmount
	colSKU
	colBatch
)

// GroupOrders folds packlist rows into orders. A row with a name or tracking
// code opens a new order, even when the same key was seen before; a row with
// neither continues the current order and is dropped when there is none.
func GroupOrders(rows [][]string) []internal.Order {
	orders := make([]internal.Order, 0)
	current := -1
	for _, row := range rows {
		name := Field(row, colName)
		tracking := Field(row, colTracking)
		if name != "" || tracking != "" {
			orders = append(orders, internal.Order{Name: name, Tracking: tracking, Lines: []internal.OrderLine{}})
			current = len(orders) - 1
		}
		if current < 0 {
			continue
		}

		product := Field(row, colProduct)
		sku := Field(row, colSKU)
		if product == "" && sku == "" {
			continue
		}
		orders[current].Lines = append(orders[current].Lines, internal.OrderLine{
			Product: product,
			SKU:     sku,
			Amount:  util.ParseIntPrefix(Field(row, colAmount)),
			Batch:   Field(row, colBatch),
		})
	}
	return orders
}

// ParseOrders parses delimited packlist text into orders.
func ParseOrders(raw string) []internal.Order {
	return GroupOrders(ParseRows(raw))
}

// LineCount is the number of lines across all orders.
func LineCount(orders []internal.Order) int {
	n := 0
	for _, o := range orders {
		n += len(o.Lines)
	}
	return n
}
