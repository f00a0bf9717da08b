package models

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	StatusOpen      OrderStatus = "open"
	StatusKitchen   OrderStatus = "kitchen"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// BoardStatuses is the column order of the kitchen board.
var BoardStatuses = []OrderStatus{StatusOpen, StatusKitchen, StatusDelivered, StatusCancelled}

type PaymentStatus string

const (
	PaymentPaid       PaymentStatus = "paid"
	PaymentNotPaid    PaymentStatus = "not_paid"
	PaymentProcessing PaymentStatus = "processing"
)

type PaymentMethod string

const (
	PaymentOnline  PaymentMethod = "online"
	PaymentCash    PaymentMethod = "cash"
	PaymentCashPin PaymentMethod = "cash_pin"
)

type DeliveryMethod string

const (
	DeliveryDelivery DeliveryMethod = "delivery"
	DeliveryPickup   DeliveryMethod = "pickup"
)

// PickupAddress is stored as delivery address for pickup orders.
const PickupAddress = "pickup"

var (
	ErrInvalidStatus  = errors.New("invalid order status")
	ErrTerminalStatus = errors.New("order is delivered or cancelled and can no longer change")
	ErrInvalidPatch   = errors.New("invalid order update")
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusKitchen, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether an order in status s may be moved to next.
// Terminal orders are frozen; everything else may move to any known status.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	return !s.Terminal()
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPaid, PaymentNotPaid, PaymentProcessing:
		return true
	}
	return false
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentOnline, PaymentCash, PaymentCashPin:
		return true
	}
	return false
}

func (m DeliveryMethod) Valid() bool {
	return m == DeliveryDelivery || m == DeliveryPickup
}

type Answer struct {
	Question string `bson:"question" json:"question"`
	Answer   string `bson:"answer" json:"answer"`
}

type OrderItem struct {
	MenuItem  primitive.ObjectID `bson:"menu_item" json:"menuItem"`
	Title     string             `bson:"title" json:"title"`
	UnitPrice float64            `bson:"unit_price" json:"unitPrice"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Answers   []Answer           `bson:"answers" json:"answers"`
}

type Order struct {
	ID               primitive.ObjectID `bson:"_id" json:"id"`
	OrderID          string             `bson:"order_id" json:"orderId"`
	OrderDate        time.Time          `bson:"order_date" json:"orderDate"`
	OrderItems       []OrderItem        `bson:"order_items" json:"orderItems"`
	OrderStatus      OrderStatus        `bson:"order_status" json:"orderStatus"`
	OrderTotal       float64            `bson:"order_total" json:"orderTotal"`
	CustomerName     string             `bson:"customer_name" json:"customerName"`
	CustomerEmail    string             `bson:"customer_email" json:"customerEmail"`
	CustomerPhone    string             `bson:"customer_phone" json:"customerPhone"`
	DeliveryAddress  string             `bson:"delivery_address" json:"deliveryAddress"`
	DeliveryDuration int                `bson:"delivery_duration" json:"deliveryDuration"` // minutes
	DeliveryCosts    float64            `bson:"delivery_costs" json:"deliveryCosts"`
	DeliveryMethod   DeliveryMethod     `bson:"delivery_method" json:"deliveryMethod"`
	PaymentMethod    PaymentMethod      `bson:"payment_method" json:"paymentMethod"`
	PaymentStatus    PaymentStatus      `bson:"payment_status" json:"paymentStatus"`
	PaymentID        string             `bson:"payment_id,omitempty" json:"paymentId,omitempty"`
	CreatedAt        time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updatedAt"`
}

// DeliveryDeadline is the promised time: order date plus delivery duration.
func (o Order) DeliveryDeadline() time.Time {
	return o.OrderDate.Add(time.Duration(o.DeliveryDuration) * time.Minute)
}

// PublicOrder is what an anonymous visitor may see of an order: no customer
// details and no delivery address.
type PublicOrder struct {
	OrderID          string         `json:"orderId"`
	OrderDate        time.Time      `json:"orderDate"`
	OrderItems       []OrderItem    `json:"orderItems"`
	OrderStatus      OrderStatus    `json:"orderStatus"`
	OrderTotal       float64        `json:"orderTotal"`
	DeliveryDuration int            `json:"deliveryDuration"`
	DeliveryCosts    float64        `json:"deliveryCosts"`
	DeliveryMethod   DeliveryMethod `json:"deliveryMethod"`
	PaymentMethod    PaymentMethod  `json:"paymentMethod"`
	PaymentStatus    PaymentStatus  `json:"paymentStatus"`
}

func (o Order) Public() PublicOrder {
	items := o.OrderItems
	if items == nil {
		items = []OrderItem{}
	}
	return PublicOrder{
		OrderID:          o.OrderID,
		OrderDate:        o.OrderDate,
		OrderItems:       items,
		OrderStatus:      o.OrderStatus,
		OrderTotal:       o.OrderTotal,
		DeliveryDuration: o.DeliveryDuration,
		DeliveryCosts:    o.DeliveryCosts,
		DeliveryMethod:   o.DeliveryMethod,
		PaymentMethod:    o.PaymentMethod,
		PaymentStatus:    o.PaymentStatus,
	}
}

// TotalItems sums item quantities; items recorded without a quantity count once.
func (o Order) TotalItems() int {
	total := 0
	for _, item := range o.OrderItems {
		if item.Quantity > 0 {
			total += item.Quantity
		} else {
			total++
		}
	}
	return total
}

type PatchType string

const (
	PatchSetStatus          PatchType = "set_status"
	PatchAdjustDeliveryTime PatchType = "adjust_delivery_time"
	PatchSetPaymentStatus   PatchType = "set_payment_status"
	PatchSetPaymentID       PatchType = "set_payment_id"
)

// DeliveryTimeStep is the increment operations staff add to a promised time.
const DeliveryTimeStep = 10

// OrderPatch is one auditable change to an order. Only the fields belonging to
// Type are read.
type OrderPatch struct {
	Type          PatchType     `json:"type" validate:"required"`
	OrderStatus   OrderStatus   `json:"orderStatus,omitempty"`
	Minutes       int           `json:"minutes,omitempty"`
	PaymentStatus PaymentStatus `json:"paymentStatus,omitempty"`
	PaymentID     string        `json:"paymentId,omitempty"`
}

func SetStatus(status OrderStatus) OrderPatch {
	return OrderPatch{Type: PatchSetStatus, OrderStatus: status}
}

// AdjustDeliveryTime moves the order date forward; the promised time follows it.
// Only DeliveryTimeStep is accepted.
func AdjustDeliveryTime(minutes int) OrderPatch {
	return OrderPatch{Type: PatchAdjustDeliveryTime, Minutes: minutes}
}

func SetPaymentStatus(status PaymentStatus) OrderPatch {
	return OrderPatch{Type: PatchSetPaymentStatus, PaymentStatus: status}
}

func SetPaymentID(id string) OrderPatch {
	return OrderPatch{Type: PatchSetPaymentID, PaymentID: id}
}

func (p OrderPatch) Validate() error {
	switch p.Type {
	case PatchSetStatus:
		if !p.OrderStatus.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidStatus, p.OrderStatus)
		}
	case PatchAdjustDeliveryTime:
		if p.Minutes != DeliveryTimeStep {
			return fmt.Errorf("%w: delivery time moves in steps of %d minutes", ErrInvalidPatch, DeliveryTimeStep)
		}
	case PatchSetPaymentStatus:
		if !p.PaymentStatus.Valid() {
			return fmt.Errorf("%w: payment status %q", ErrInvalidPatch, p.PaymentStatus)
		}
	case PatchSetPaymentID:
		if p.PaymentID == "" {
			return fmt.Errorf("%w: empty payment id", ErrInvalidPatch)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidPatch, p.Type)
	}
	return nil
}

// Apply returns a copy of o with the patch applied. The original is untouched.
func (p OrderPatch) Apply(o Order) (Order, error) {
	if err := p.Validate(); err != nil {
		return o, err
	}
	switch p.Type {
	case PatchSetStatus:
		if !o.OrderStatus.CanTransitionTo(p.OrderStatus) {
			return o, fmt.Errorf("%w: %s -> %s", ErrTerminalStatus, o.OrderStatus, p.OrderStatus)
		}
		o.OrderStatus = p.OrderStatus
	case PatchAdjustDeliveryTime:
		if o.OrderStatus.Terminal() {
			return o, ErrTerminalStatus
		}
		o.OrderDate = o.OrderDate.Add(time.Duration(p.Minutes) * time.Minute)
	case PatchSetPaymentStatus:
		o.PaymentStatus = p.PaymentStatus
	case PatchSetPaymentID:
		o.PaymentID = p.PaymentID
	}
	return o, nil
}
