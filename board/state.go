package board

import (
	"sort"
	"time"

	"go-restaurant-ordering/helpers"
	"go-restaurant-ordering/models"
)

// ColumnTitles are the headings shown above each status column.
var ColumnTitles = map[models.OrderStatus]string{
	models.StatusOpen:      "Open",
	models.StatusKitchen:   "Keuken",
	models.StatusDelivered: "Afgehaald",
	models.StatusCancelled: "Geannuleerd",
}

// State is an immutable set of orders keyed by order id. Every transition
// returns a new State; orders are never shared between states by reference.
type State struct {
	orders map[string]models.Order
}

func NewState(orders []models.Order) State {
	return State{}.WithOrders(orders)
}

// WithOrders replaces the whole set.
func (s State) WithOrders(orders []models.Order) State {
	next := State{orders: make(map[string]models.Order, len(orders))}
	for _, o := range orders {
		next.orders[o.OrderID] = o
	}
	return next
}

// WithOrder inserts or replaces one order.
func (s State) WithOrder(order models.Order) State {
	next := s.clone()
	next.orders[order.OrderID] = order
	return next
}

func (s State) WithoutOrder(orderID string) State {
	if _, ok := s.orders[orderID]; !ok {
		return s
	}
	next := s.clone()
	delete(next.orders, orderID)
	return next
}

// WithStatus changes the status of one order. Unknown ids leave s as is.
func (s State) WithStatus(orderID string, status models.OrderStatus) State {
	order, ok := s.orders[orderID]
	if !ok || order.OrderStatus == status {
		return s
	}
	order.OrderStatus = status
	return s.WithOrder(order)
}

func (s State) clone() State {
	next := State{orders: make(map[string]models.Order, len(s.orders)+1)}
	for id, o := range s.orders {
		next.orders[id] = o
	}
	return next
}

func (s State) Order(orderID string) (models.Order, bool) {
	o, ok := s.orders[orderID]
	return o, ok
}

func (s State) Len() int { return len(s.orders) }

// Orders lists the orders newest first.
func (s State) Orders() []models.Order {
	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderID < out[j].OrderID
		}
		return out[i].OrderDate.After(out[j].OrderDate)
	})
	return out
}

type Card struct {
	Order      models.Order
	Urgency    helpers.Urgency
	Deadline   time.Time
	TotalItems int
}

type Column struct {
	Status models.OrderStatus
	Title  string
	Cards  []Card
}

// Columns groups the orders by status. Urgency is computed against now on
// every call. Orders with an unknown status land in the open column.
func (s State) Columns(now time.Time) []Column {
	index := make(map[models.OrderStatus]int, len(models.BoardStatuses))
	columns := make([]Column, len(models.BoardStatuses))
	for i, status := range models.BoardStatuses {
		index[status] = i
		columns[i] = Column{Status: status, Title: ColumnTitles[status], Cards: []Card{}}
	}
	for _, o := range s.Orders() {
		i, ok := index[o.OrderStatus]
		if !ok {
			i = index[models.StatusOpen]
		}
		columns[i].Cards = append(columns[i].Cards, Card{
			Order:      o,
			Urgency:    helpers.ClassifyOrder(o, now),
			Deadline:   o.DeliveryDeadline(),
			TotalItems: o.TotalItems(),
		})
	}
	return columns
}
