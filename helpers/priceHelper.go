package helpers

import (
	"go-restaurant-ordering/models"

	"github.com/shopspring/decimal"
)

// DeliveryCosts is the fixed surcharge for orders that are delivered.
var DeliveryCosts = decimal.RequireFromString("2.50")

// CalculateItemPrice is unit price times quantity plus every selection
// surcharge times quantity. A selection price already covers all chosen options.
func CalculateItemPrice(item models.CartLineItem) decimal.Decimal {
	quantity := decimal.NewFromInt(int64(item.Quantity))
	total := decimal.NewFromFloat(item.MenuItem.Price).Mul(quantity)
	for _, selection := range item.KeuzemenuSelections {
		if selection.Price == nil || *selection.Price <= 0 {
			continue
		}
		total = total.Add(decimal.NewFromFloat(*selection.Price).Mul(quantity))
	}
	return total
}

func CalculateTotalPrice(items []models.CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(CalculateItemPrice(item))
	}
	return total
}

func CalculateSubtotal(items []models.CartLineItem) decimal.Decimal {
	return CalculateTotalPrice(items)
}

func CalculateDeliveryCosts(method models.DeliveryMethod) decimal.Decimal {
	if method == models.DeliveryDelivery {
		return DeliveryCosts
	}
	return decimal.Zero
}

func CalculateFinalTotal(items []models.CartLineItem, method models.DeliveryMethod) decimal.Decimal {
	return CalculateSubtotal(items).Add(CalculateDeliveryCosts(method))
}

func GetTotalItems(items []models.CartLineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// GetDeliveryEstimate gives the shopper a rough preparation window.
func GetDeliveryEstimate(items []models.CartLineItem) string {
	totalItems := GetTotalItems(items)
	switch {
	case totalItems == 0:
		return ""
	case totalItems <= 2:
		return "15-20 min"
	case totalItems <= 5:
		return "20-25 min"
	}
	return "25-30 min"
}

// ToAmount rounds a money value to cents for storage.
func ToAmount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
