package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"go-restaurant-ordering/helpers"
	"go-restaurant-ordering/models"
	"go-restaurant-ordering/payment"
	"go-restaurant-ordering/store"

	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// FailureMessage is all a shopper is told when placing an order fails.
const FailureMessage = "Er is een fout opgetreden bij het plaatsen van je bestelling. Probeer het opnieuw."

const (
	OrderIDPrefix         = "ORD-"
	SpecialWishesQuestion = "Speciale wensen"
	ErrorPath             = "/order/error"
	ConfirmationPath      = "/order/confirmation"
	maxOrderIDAttempts    = 5
)

// ValidationError names the submission field that was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

// SubmitError hides the cause of a failed submission behind FailureMessage.
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string { return FailureMessage }
func (e *SubmitError) Unwrap() error { return e.Err }

type Request struct {
	Items    []models.CartLineItem
	Customer models.CustomerInfo
}

// Result tells the caller where to send the shopper next.
type Result struct {
	Order       models.Order
	RedirectURL string
}

type Options struct {
	AppURL         string
	RestaurantName string
	Logger         *log.Logger
	Now            func() time.Time
	// NewOrderID overrides the random order id generator.
	NewOrderID func() string
}

type Service struct {
	orders   store.OrderStore
	areas    store.DeliveryAreaStore
	payments payment.Provider
	opts     Options
}

// NewService wires the workflow. payments may be nil when only cash orders
// are accepted.
func NewService(orders store.OrderStore, areas store.DeliveryAreaStore, payments payment.Provider, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewOrderID == nil {
		opts.NewOrderID = randomOrderID()
	}
	opts.AppURL = strings.TrimRight(opts.AppURL, "/")
	return &Service{orders: orders, areas: areas, payments: payments, opts: opts}
}

func randomOrderID() func() string {
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		return fmt.Sprintf("%s%d", OrderIDPrefix, 100000+rng.Intn(900000))
	}
}

// Submit turns the cart into a persisted order and decides the redirect.
// Validation problems come back as *ValidationError, everything else as
// *SubmitError.
func (s *Service) Submit(ctx context.Context, req Request) (Result, error) {
	if err := validateRequest(req); err != nil {
		return Result{}, err
	}
	customer := req.Customer

	subtotal := helpers.CalculateSubtotal(req.Items)
	deliveryCosts := helpers.CalculateDeliveryCosts(customer.DeliveryMethod)
	total := subtotal.Add(deliveryCosts)

	order := models.Order{
		OrderDate:        s.opts.Now().UTC(),
		OrderItems:       orderItems(req.Items),
		OrderStatus:      models.StatusOpen,
		OrderTotal:       helpers.ToAmount(total),
		CustomerName:     strings.TrimSpace(customer.Name),
		CustomerEmail:    strings.TrimSpace(customer.Email),
		CustomerPhone:    strings.TrimSpace(customer.Phone),
		DeliveryAddress:  deliveryAddress(customer),
		DeliveryDuration: s.deliveryDuration(ctx, customer),
		DeliveryCosts:    helpers.ToAmount(deliveryCosts),
		DeliveryMethod:   customer.DeliveryMethod,
		PaymentMethod:    customer.PaymentMethod,
		PaymentStatus:    models.PaymentNotPaid,
	}
	if customer.PaymentMethod == models.PaymentOnline {
		order.PaymentStatus = models.PaymentProcessing
		if s.payments == nil || s.opts.AppURL == "" {
			return Result{}, s.fail("online payment requested", errors.New("payment provider or APP_URL not configured"))
		}
	}

	if err := s.persist(ctx, &order); err != nil {
		return Result{}, s.fail("order creation", err)
	}
	s.opts.Logger.Printf("order %s created: total %s, %s, %s", order.OrderID, total.StringFixed(2), order.DeliveryMethod, order.PaymentMethod)

	if order.PaymentMethod != models.PaymentOnline {
		return Result{Order: order, RedirectURL: ConfirmationPath + "?orderId=" + url.QueryEscape(order.OrderID)}, nil
	}

	p, err := s.payments.CreatePayment(ctx, payment.PaymentRequest{
		Amount:      payment.EUR(total),
		Description: fmt.Sprintf("Bestelling %s - %s", order.OrderID, s.opts.RestaurantName),
		RedirectURL: s.opts.AppURL + "/order/success?orderId=" + url.QueryEscape(order.OrderID),
		WebhookURL:  s.opts.AppURL + "/api/webhook",
		Metadata:    payment.Metadata{OrderID: order.OrderID, OrderDbID: order.ID.Hex()},
	})
	if err != nil {
		return Result{}, s.fail("payment creation for "+order.OrderID, err)
	}
	if p.ID != "" {
		if updated, err := s.orders.UpdateOrderByID(ctx, order.ID, models.SetPaymentID(p.ID)); err != nil {
			s.opts.Logger.Printf("recording payment %s on order %s failed: %v", p.ID, order.OrderID, err)
		} else {
			order = updated
		}
	}

	redirect := p.CheckoutURL()
	if redirect == "" {
		redirect = ErrorPath
	}
	return Result{Order: order, RedirectURL: redirect}, nil
}

// persist retries with a fresh order id when the generated one is taken.
func (s *Service) persist(ctx context.Context, order *models.Order) error {
	var err error
	for attempt := 0; attempt < maxOrderIDAttempts; attempt++ {
		order.OrderID = s.opts.NewOrderID()
		err = s.orders.CreateOrder(ctx, order)
		if !errors.Is(err, store.ErrDuplicateOrderID) {
			return err
		}
		s.opts.Logger.Printf("order id %s already taken, generating another", order.OrderID)
	}
	return err
}

// deliveryDuration resolves the promised minutes; pickup and unknown areas use the default.
func (s *Service) deliveryDuration(ctx context.Context, customer models.CustomerInfo) int {
	if customer.DeliveryMethod != models.DeliveryDelivery || s.areas == nil {
		return models.DefaultDeliveryDuration
	}
	area, err := s.areas.FindActiveDeliveryArea(ctx, strings.TrimSpace(customer.PostalCode))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.opts.Logger.Printf("delivery area lookup for %q failed: %v", customer.PostalCode, err)
		}
		return models.DefaultDeliveryDuration
	}
	if area.DeliveryTime == nil || *area.DeliveryTime <= 0 {
		return models.DefaultDeliveryDuration
	}
	return *area.DeliveryTime
}

func (s *Service) fail(step string, err error) error {
	s.opts.Logger.Printf("%s failed: %v", step, err)
	return &SubmitError{Err: err}
}

func orderItems(items []models.CartLineItem) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		unit := helpers.CalculateItemPrice(item).Div(decimal.NewFromInt(int64(item.Quantity)))
		out = append(out, models.OrderItem{
			MenuItem:  item.MenuItem.ID,
			Title:     item.MenuItem.Title,
			UnitPrice: helpers.ToAmount(unit),
			Quantity:  item.Quantity,
			Answers:   answers(item),
		})
	}
	return out
}

// answers flattens the selections of a line, multi-select joined by ", ".
func answers(item models.CartLineItem) []models.Answer {
	out := make([]models.Answer, 0, len(item.KeuzemenuSelections)+1)
	for _, sel := range item.KeuzemenuSelections {
		out = append(out, models.Answer{
			Question: sel.Question,
			Answer:   strings.Join(sel.AnswerValues(), ", "),
		})
	}
	if wishes := strings.TrimSpace(item.CustomWishes); wishes != "" {
		out = append(out, models.Answer{Question: SpecialWishesQuestion, Answer: wishes})
	}
	return out
}

func deliveryAddress(c models.CustomerInfo) string {
	if c.DeliveryMethod != models.DeliveryDelivery {
		return models.PickupAddress
	}
	return fmt.Sprintf("%s %s, %s %s",
		strings.TrimSpace(c.Address), strings.TrimSpace(c.HouseNumber),
		strings.TrimSpace(c.PostalCode), strings.TrimSpace(c.City))
}

func validateRequest(req Request) error {
	if len(req.Items) == 0 {
		return &ValidationError{Field: "cartItems", Message: "cart is empty"}
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return &ValidationError{Field: "quantity", Message: "must be at least 1"}
		}
	}
	c := req.Customer
	if !c.DeliveryMethod.Valid() {
		return &ValidationError{Field: "deliveryMethod", Message: "unknown delivery method"}
	}
	if !c.PaymentMethod.Valid() {
		return &ValidationError{Field: "paymentMethod", Message: "unknown payment method"}
	}
	required := []struct{ field, value string }{
		{"name", c.Name}, {"phone", c.Phone}, {"email", c.Email},
	}
	if c.DeliveryMethod == models.DeliveryDelivery {
		required = append(required,
			struct{ field, value string }{"address", c.Address},
			struct{ field, value string }{"houseNumber", c.HouseNumber},
			struct{ field, value string }{"postalCode", c.PostalCode},
			struct{ field, value string }{"city", c.City},
		)
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field, Message: "is required"}
		}
	}
	if err := validate.Var(strings.TrimSpace(c.Email), "email"); err != nil {
		return &ValidationError{Field: "email", Message: "is not a valid email address"}
	}
	return nil
}
