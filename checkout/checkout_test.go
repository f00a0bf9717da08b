package checkout

import (
	"context"
	"errors"
	"io"
	"log"
	"strconv"
	"strings"
	"testing"
	"time"

	"go-restaurant-ordering/models"
	"go-restaurant-ordering/payment"
	"go-restaurant-ordering/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeProvider struct {
	requests []payment.PaymentRequest
	checkout string
	err      error
}

func (f *fakeProvider) CreatePayment(_ context.Context, req payment.PaymentRequest) (payment.Payment, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return payment.Payment{}, f.err
	}
	p := payment.Payment{ID: "tr_test", Status: payment.StatusOpen}
	if f.checkout != "" {
		p.Links.Checkout = &payment.Link{Href: f.checkout}
	}
	return p, nil
}

func (f *fakeProvider) GetPayment(context.Context, string) (payment.Payment, error) {
	return payment.Payment{}, errors.New("not used")
}

type failingOrders struct {
	store.OrderStore
}

func (failingOrders) CreateOrder(context.Context, *models.Order) error {
	return errors.New("connection refused")
}

var placedAt = time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

func sequence(ids ...string) func() string {
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

func newService(orders store.OrderStore, areas store.DeliveryAreaStore, provider payment.Provider) *Service {
	return NewService(orders, areas, provider, Options{
		AppURL:         "https://pizza.example/",
		RestaurantName: "La Pizza Zevenaar",
		Logger:         log.New(io.Discard, "", 0),
		Now:            func() time.Time { return placedAt },
		NewOrderID:     sequence("ORD-123456", "ORD-654321"),
	})
}

// twenty euros of food: 2 x (8.50 + 1.50 surcharge)
func cartOfTwenty() []models.CartLineItem {
	surcharge := 1.5
	return []models.CartLineItem{{
		MenuItem: models.CartMenuItem{ID: primitive.NewObjectID(), Title: "Salami", Price: 8.5},
		Quantity: 2,
		KeuzemenuSelections: []models.Selection{
			{QuestionID: "size", Question: "Formaat", Answer: "Groot", Price: &surcharge},
			{QuestionID: "sauce", Question: "Sauzen", Multiple: true, Answers: []string{"Knoflook", "Chili"}},
		},
		CustomWishes: "goed doorbakken",
	}}
}

func customer(delivery models.DeliveryMethod, pay models.PaymentMethod) models.CustomerInfo {
	return models.CustomerInfo{
		Name: "Sanne de Vries", Email: "sanne@example.com", Phone: "0612345678",
		Address: "Markt", HouseNumber: "12", PostalCode: "6901AA", City: "Zevenaar",
		DeliveryMethod: delivery, PaymentMethod: pay,
	}
}

func TestSubmitCashDelivery(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	svc := newService(mem, mem, nil)

	result, err := svc.Submit(ctx, Request{Items: cartOfTwenty(), Customer: customer(models.DeliveryDelivery, models.PaymentCash)})
	require.NoError(t, err)
	assert.Equal(t, "/order/confirmation?orderId=ORD-123456", result.RedirectURL)

	order, err := mem.FindOrder(ctx, "ORD-123456")
	require.NoError(t, err)
	assert.Equal(t, 22.5, order.OrderTotal)
	assert.Equal(t, 2.5, order.DeliveryCosts)
	assert.Equal(t, models.StatusOpen, order.OrderStatus)
	assert.Equal(t, models.PaymentNotPaid, order.PaymentStatus)
	assert.Equal(t, "Markt 12, 6901AA Zevenaar", order.DeliveryAddress)
	assert.Equal(t, models.DefaultDeliveryDuration, order.DeliveryDuration)
	assert.Equal(t, placedAt, order.OrderDate)

	require.Len(t, order.OrderItems, 1)
	item := order.OrderItems[0]
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, 10.0, item.UnitPrice)
	assert.Equal(t, []models.Answer{
		{Question: "Formaat", Answer: "Groot"},
		{Question: "Sauzen", Answer: "Knoflook, Chili"},
		{Question: "Speciale wensen", Answer: "goed doorbakken"},
	}, item.Answers)
}

func TestSubmitOnlinePayment(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	provider := &fakeProvider{checkout: "https://pay.example/tr_test"}
	svc := newService(mem, mem, provider)

	result, err := svc.Submit(ctx, Request{Items: cartOfTwenty(), Customer: customer(models.DeliveryDelivery, models.PaymentOnline)})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/tr_test", result.RedirectURL)

	require.Len(t, provider.requests, 1)
	req := provider.requests[0]
	assert.Equal(t, "22.50", req.Amount.Value)
	assert.Equal(t, "EUR", req.Amount.Currency)
	assert.Equal(t, "Bestelling ORD-123456 - La Pizza Zevenaar", req.Description)
	assert.Equal(t, "https://pizza.example/order/success?orderId=ORD-123456", req.RedirectURL)
	assert.Equal(t, "https://pizza.example/api/webhook", req.WebhookURL)
	assert.Equal(t, result.Order.ID.Hex(), req.Metadata.OrderDbID)

	order, err := mem.FindOrder(ctx, "ORD-123456")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentProcessing, order.PaymentStatus)
	assert.Equal(t, "tr_test", order.PaymentID)
}

func TestSubmitOnlineWithoutCheckoutURL(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := newService(mem, mem, &fakeProvider{})

	result, err := svc.Submit(context.Background(), Request{Items: cartOfTwenty(), Customer: customer(models.DeliveryPickup, models.PaymentOnline)})
	require.NoError(t, err)
	assert.Equal(t, ErrorPath, result.RedirectURL)
}

func TestSubmitPickup(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	minutes := 20
	require.NoError(t, mem.SaveDeliveryArea(ctx, &models.DeliveryArea{ZipCode: "6901AA", DeliveryTime: &minutes, Active: true}))
	svc := newService(mem, mem, nil)

	c := customer(models.DeliveryPickup, models.PaymentCashPin)
	c.Address = ""
	result, err := svc.Submit(ctx, Request{Items: cartOfTwenty(), Customer: c})
	require.NoError(t, err)
	assert.Equal(t, 20.0, result.Order.OrderTotal)
	assert.Equal(t, 0.0, result.Order.DeliveryCosts)
	assert.Equal(t, models.PickupAddress, result.Order.DeliveryAddress)
	assert.Equal(t, 45, result.Order.DeliveryDuration)
}

func TestDeliveryDurationFromArea(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	minutes := 30
	require.NoError(t, mem.SaveDeliveryArea(ctx, &models.DeliveryArea{ZipCode: "6901AA", DeliveryTime: &minutes, Active: true}))
	require.NoError(t, mem.SaveDeliveryArea(ctx, &models.DeliveryArea{ZipCode: "6902BB", DeliveryTime: &minutes, Active: false}))
	svc := newService(mem, mem, nil)

	assert.Equal(t, 30, svc.deliveryDuration(ctx, customer(models.DeliveryDelivery, models.PaymentCash)))

	other := customer(models.DeliveryDelivery, models.PaymentCash)
	other.PostalCode = "6902BB"
	assert.Equal(t, 45, svc.deliveryDuration(ctx, other))

	other.PostalCode = "1000AA"
	assert.Equal(t, 45, svc.deliveryDuration(ctx, other))
}

func TestSubmitRetriesTakenOrderID(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.CreateOrder(ctx, &models.Order{OrderID: "ORD-123456"}))
	svc := newService(mem, mem, nil)

	result, err := svc.Submit(ctx, Request{Items: cartOfTwenty(), Customer: customer(models.DeliveryPickup, models.PaymentCash)})
	require.NoError(t, err)
	assert.Equal(t, "ORD-654321", result.Order.OrderID)
}

func TestSubmitValidation(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := newService(mem, mem, nil)

	_, err := svc.Submit(context.Background(), Request{Customer: customer(models.DeliveryDelivery, models.PaymentCash)})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "cartItems", verr.Field)

	c := customer(models.DeliveryDelivery, models.PaymentCash)
	c.PostalCode = " "
	_, err = svc.Submit(context.Background(), Request{Items: cartOfTwenty(), Customer: c})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "postalCode", verr.Field)

	c = customer(models.DeliveryDelivery, models.PaymentCash)
	c.Email = "not-an-email"
	_, err = svc.Submit(context.Background(), Request{Items: cartOfTwenty(), Customer: c})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "email", verr.Field)

	_, total, _ := mem.ListOrders(context.Background(), store.OrderFilter{})
	assert.Zero(t, total)
}

func TestSubmitFailuresUseGenericMessage(t *testing.T) {
	mem := store.NewMemoryStore()

	svc := newService(failingOrders{mem}, mem, nil)
	_, err := svc.Submit(context.Background(), Request{Items: cartOfTwenty(), Customer: customer(models.DeliveryPickup, models.PaymentCash)})
	var serr *SubmitError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, FailureMessage, err.Error())

	svc = newService(mem, mem, &fakeProvider{err: errors.New("mollie down")})
	_, err = svc.Submit(context.Background(), Request{Items: cartOfTwenty(), Customer: customer(models.DeliveryPickup, models.PaymentOnline)})
	require.True(t, errors.As(err, &serr))
	assert.EqualError(t, serr.Err, "mollie down")
}

func TestRandomOrderID(t *testing.T) {
	next := randomOrderID()
	for i := 0; i < 5000; i++ {
		id := next()
		require.True(t, strings.HasPrefix(id, OrderIDPrefix), id)
		digits := strings.TrimPrefix(id, OrderIDPrefix)
		require.Len(t, digits, 6, id)
		n, err := strconv.Atoi(digits)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
	}
}
