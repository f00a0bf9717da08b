package helpers

import (
	"time"

	"go-restaurant-ordering/models"
)

type Urgency string

const (
	UrgencySettled   Urgency = "delivered"
	UrgencyHurry     Urgency = "hurry"
	UrgencyLate      Urgency = "late"
	UrgencyCancelled Urgency = "cancelled"
	UrgencyOpen      Urgency = "open"
)

// HurryWindow is how close to the deadline an order counts as imminent.
const HurryWindow = 15 * time.Minute

// ClassifyUrgency labels an order card. It depends only on its arguments and
// must be re-evaluated as now advances. Calendar days are compared in now's
// location.
func ClassifyUrgency(orderDate time.Time, durationMinutes int, status models.OrderStatus, now time.Time) Urgency {
	deadline := orderDate.Add(time.Duration(durationMinutes) * time.Minute)

	if beforeDay(orderDate.In(now.Location()), now) || status == models.StatusDelivered {
		return UrgencySettled
	}
	remaining := deadline.Sub(now)
	if remaining <= HurryWindow && deadline.After(now) {
		return UrgencyHurry
	}
	if deadline.Before(now) {
		return UrgencyLate
	}
	if status == models.StatusCancelled {
		return UrgencyCancelled
	}
	return UrgencyOpen
}

func ClassifyOrder(order models.Order, now time.Time) Urgency {
	return ClassifyUrgency(order.OrderDate, order.DeliveryDuration, order.OrderStatus, now)
}

func beforeDay(t, ref time.Time) bool {
	ty, tm, td := t.Date()
	ry, rm, rd := ref.Date()
	if ty != ry {
		return ty < ry
	}
	if tm != rm {
		return tm < rm
	}
	return td < rd
}

// DayBounds returns [start, end) of the calendar day containing t in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := t.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
