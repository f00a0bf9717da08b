package helpers

import (
	"testing"

	"go-restaurant-ordering/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func surcharge(v float64) *float64 { return &v }

func line(price float64, quantity int, surcharges ...*float64) models.CartLineItem {
	item := models.CartLineItem{
		MenuItem: models.CartMenuItem{ID: primitive.NewObjectID(), Title: "Pizza", Price: price},
		Quantity: quantity,
	}
	for i, s := range surcharges {
		item.KeuzemenuSelections = append(item.KeuzemenuSelections, models.Selection{
			QuestionID: string(rune('a' + i)),
			Question:   "Vraag",
			Answer:     "Antwoord",
			Price:      s,
		})
	}
	return item
}

func TestCalculateItemPrice(t *testing.T) {
	t.Run("base price times quantity", func(t *testing.T) {
		assert.True(t, decimal.RequireFromString("19").Equal(CalculateItemPrice(line(9.5, 2))))
	})

	t.Run("surcharges are multiplied by quantity", func(t *testing.T) {
		item := line(9.5, 2, surcharge(1.25), nil, surcharge(0.5))
		assert.True(t, decimal.RequireFromString("22.5").Equal(CalculateItemPrice(item)), CalculateItemPrice(item).String())
	})

	t.Run("multi-select surcharge is already aggregated", func(t *testing.T) {
		item := line(10, 1)
		item.KeuzemenuSelections = []models.Selection{{
			QuestionID: "extra", Question: "Extra?", Multiple: true,
			Answers: []string{"Kaas", "Ui", "Salami"}, Price: surcharge(3),
		}}
		assert.True(t, decimal.RequireFromString("13").Equal(CalculateItemPrice(item)))
	})

	t.Run("never below base price", func(t *testing.T) {
		items := []models.CartLineItem{
			line(0, 1), line(4.2, 3, surcharge(0)), line(7.95, 5, surcharge(0.35), surcharge(1)),
		}
		for _, item := range items {
			base := decimal.NewFromFloat(item.MenuItem.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
			assert.True(t, CalculateItemPrice(item).GreaterThanOrEqual(base))
		}
	})
}

func TestCalculateTotals(t *testing.T) {
	items := []models.CartLineItem{line(8, 2), line(4, 1)}

	assert.True(t, decimal.Zero.Equal(CalculateTotalPrice(nil)))

	sum := CalculateItemPrice(items[0]).Add(CalculateItemPrice(items[1]))
	assert.True(t, sum.Equal(CalculateTotalPrice(items)))
	assert.True(t, decimal.RequireFromString("20").Equal(CalculateSubtotal(items)))

	assert.Equal(t, 22.5, ToAmount(CalculateFinalTotal(items, models.DeliveryDelivery)))
	assert.Equal(t, 20.0, ToAmount(CalculateFinalTotal(items, models.DeliveryPickup)))
	assert.True(t, decimal.Zero.Equal(CalculateDeliveryCosts(models.DeliveryPickup)))

	first := CalculateFinalTotal(items, models.DeliveryDelivery)
	assert.True(t, first.Equal(CalculateFinalTotal(items, models.DeliveryDelivery)))
}

func TestGetDeliveryEstimate(t *testing.T) {
	assert.Equal(t, "", GetDeliveryEstimate(nil))
	assert.Equal(t, "15-20 min", GetDeliveryEstimate([]models.CartLineItem{line(1, 2)}))
	assert.Equal(t, "20-25 min", GetDeliveryEstimate([]models.CartLineItem{line(1, 2), line(1, 3)}))
	assert.Equal(t, "25-30 min", GetDeliveryEstimate([]models.CartLineItem{line(1, 6)}))
	assert.Equal(t, 6, GetTotalItems([]models.CartLineItem{line(1, 2), line(1, 4)}))
}
