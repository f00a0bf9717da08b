package board

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"go-restaurant-ordering/helpers"
	"go-restaurant-ordering/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	amsterdam = time.FixedZone("CET", 3600)
	today     = time.Date(2025, 3, 1, 0, 0, 0, 0, amsterdam)
	noon      = today.Add(12 * time.Hour)
)

type fakeAPI struct {
	mu       sync.Mutex
	orders   map[string]models.Order
	gate     chan error
	listErr  error
	listDays []time.Time
	updates  []models.OrderStatus
}

func newFakeAPI(orders ...models.Order) *fakeAPI {
	api := &fakeAPI{orders: make(map[string]models.Order)}
	for _, o := range orders {
		api.orders[o.OrderID] = o
	}
	return api
}

func (f *fakeAPI) ListOrders(_ context.Context, day time.Time) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listDays = append(f.listDays, day)
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeAPI) UpdateStatus(_ context.Context, orderID string, status models.OrderStatus) (models.Order, error) {
	if f.gate != nil {
		if err := <-f.gate; err != nil {
			return models.Order{}, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, status)
	o := f.orders[orderID]
	o.OrderStatus = status
	o.UpdatedAt = noon
	f.orders[orderID] = o
	return o, nil
}

func (f *fakeAPI) UpdateOrder(_ context.Context, orderID string, patch models.OrderPatch) (models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	updated, err := patch.Apply(f.orders[orderID])
	if err != nil {
		return models.Order{}, err
	}
	f.orders[orderID] = updated
	return updated, nil
}

func order(id string, placed time.Time, status models.OrderStatus) models.Order {
	return models.Order{OrderID: id, OrderDate: placed, OrderStatus: status, DeliveryDuration: 30}
}

func newBoard(t *testing.T, api OrderAPI, opts Options) *Board {
	t.Helper()
	opts.Location = amsterdam
	opts.Now = func() time.Time { return noon }
	opts.Logger = log.New(io.Discard, "", 0)
	b := New(api, opts)
	require.NoError(t, b.Load(context.Background()))
	return b
}

func statusOf(t *testing.T, b *Board, id string) models.OrderStatus {
	t.Helper()
	o, ok := b.State().Order(id)
	require.True(t, ok, "order %s missing", id)
	return o.OrderStatus
}

func TestDropFailureRevertsToStatusAtDragStart(t *testing.T) {
	api := newFakeAPI(
		order("ORD-100001", noon.Add(-10*time.Minute), models.StatusOpen),
		order("ORD-100002", noon.Add(-20*time.Minute), models.StatusKitchen),
	)
	api.gate = make(chan error)
	var failed []string
	b := newBoard(t, api, Options{OnError: func(id string, err error) { failed = append(failed, id) }})

	drag, err := b.BeginDrag("ORD-100001")
	require.NoError(t, err)
	require.NoError(t, drag.Drop(context.Background(), models.StatusKitchen))

	assert.Equal(t, models.StatusKitchen, statusOf(t, b, "ORD-100001"))

	api.gate <- errors.New("server unavailable")
	b.Wait()

	assert.Equal(t, models.StatusOpen, statusOf(t, b, "ORD-100001"))
	assert.Equal(t, models.StatusKitchen, statusOf(t, b, "ORD-100002"))
	assert.Equal(t, []string{"ORD-100001"}, failed)
}

func TestDropSuccessTakesServerOrder(t *testing.T) {
	api := newFakeAPI(order("ORD-100001", noon.Add(-10*time.Minute), models.StatusOpen))
	b := newBoard(t, api, Options{})

	require.NoError(t, b.Move(context.Background(), "ORD-100001", models.StatusKitchen))
	b.Wait()

	o, ok := b.State().Order("ORD-100001")
	require.True(t, ok)
	assert.Equal(t, models.StatusKitchen, o.OrderStatus)
	assert.Equal(t, noon, o.UpdatedAt)
}

func TestSupersededDragIsNotReverted(t *testing.T) {
	api := newFakeAPI(order("ORD-100001", noon.Add(-10*time.Minute), models.StatusOpen))
	api.gate = make(chan error, 2)
	b := newBoard(t, api, Options{})

	require.NoError(t, b.Move(context.Background(), "ORD-100001", models.StatusKitchen))
	require.NoError(t, b.Move(context.Background(), "ORD-100001", models.StatusDelivered))
	assert.Equal(t, models.StatusDelivered, statusOf(t, b, "ORD-100001"))

	api.gate <- errors.New("timeout")
	api.gate <- nil
	b.Wait()

	assert.NotEqual(t, models.StatusOpen, statusOf(t, b, "ORD-100001"))
}

func TestDropAfterPushedCancellationIsRefused(t *testing.T) {
	api := newFakeAPI(order("ORD-100001", noon.Add(-10*time.Minute), models.StatusOpen))
	b := newBoard(t, api, Options{})

	drag, err := b.BeginDrag("ORD-100001")
	require.NoError(t, err)
	b.ApplyEvent(models.BoardEvent{Event: models.EventOrderUpdated, Payload: order("ORD-100001", noon.Add(-10*time.Minute), models.StatusCancelled)})

	err = drag.Drop(context.Background(), models.StatusKitchen)
	assert.ErrorIs(t, err, models.ErrTerminalStatus)
	b.Wait()
	assert.Equal(t, models.StatusCancelled, statusOf(t, b, "ORD-100001"))
	assert.Empty(t, api.updates)
}

func TestDropOnOrderUsesItsColumn(t *testing.T) {
	api := newFakeAPI(
		order("ORD-100001", noon.Add(-10*time.Minute), models.StatusOpen),
		order("ORD-100002", noon.Add(-20*time.Minute), models.StatusKitchen),
	)
	b := newBoard(t, api, Options{})

	drag, err := b.BeginDrag("ORD-100001")
	require.NoError(t, err)
	require.NoError(t, drag.DropOnOrder(context.Background(), "ORD-100002"))
	b.Wait()
	assert.Equal(t, models.StatusKitchen, statusOf(t, b, "ORD-100001"))
}

func TestDropRejectedLocally(t *testing.T) {
	api := newFakeAPI(order("ORD-100001", noon.Add(-10*time.Minute), models.StatusDelivered))
	b := newBoard(t, api, Options{})

	err := b.Move(context.Background(), "ORD-100001", models.StatusOpen)
	assert.True(t, errors.Is(err, models.ErrTerminalStatus))

	err = b.Move(context.Background(), "ORD-100001", models.OrderStatus("ready"))
	assert.True(t, errors.Is(err, models.ErrInvalidStatus))

	_, err = b.BeginDrag("ORD-999999")
	assert.True(t, errors.Is(err, ErrUnknownOrder))

	assert.Empty(t, api.updates)
}

func TestRefetchAfterSuccessfulMove(t *testing.T) {
	api := newFakeAPI(order("ORD-100001", noon.Add(-10*time.Minute), models.StatusOpen))
	b := newBoard(t, api, Options{Refetch: true})

	api.mu.Lock()
	api.orders["ORD-100002"] = order("ORD-100002", noon.Add(-5*time.Minute), models.StatusOpen)
	api.mu.Unlock()

	require.NoError(t, b.Move(context.Background(), "ORD-100001", models.StatusKitchen))
	b.Wait()

	assert.Equal(t, 2, b.State().Len())
	assert.Len(t, api.listDays, 2)
}

func TestColumnsGroupAndClassify(t *testing.T) {
	api := newFakeAPI(
		order("ORD-100001", noon.Add(-16*time.Minute), models.StatusOpen),
		order("ORD-100002", noon.Add(-35*time.Minute), models.StatusKitchen),
		order("ORD-100003", noon.Add(-5*time.Minute), models.StatusOpen),
		order("ORD-100004", noon.Add(-50*time.Minute), models.StatusDelivered),
		order("ORD-100005", noon.Add(-1*time.Minute), models.StatusCancelled),
	)
	b := newBoard(t, api, Options{})

	cols := b.Columns()
	require.Len(t, cols, 4)
	assert.Equal(t, "Open", cols[0].Title)
	assert.Equal(t, "Keuken", cols[1].Title)

	require.Len(t, cols[0].Cards, 2)
	assert.Equal(t, "ORD-100003", cols[0].Cards[0].Order.OrderID)
	assert.Equal(t, helpers.UrgencyOpen, cols[0].Cards[0].Urgency)
	assert.Equal(t, helpers.UrgencyHurry, cols[0].Cards[1].Urgency)

	require.Len(t, cols[1].Cards, 1)
	assert.Equal(t, helpers.UrgencyLate, cols[1].Cards[0].Urgency)
	assert.Equal(t, helpers.UrgencySettled, cols[2].Cards[0].Urgency)
	assert.Equal(t, helpers.UrgencyCancelled, cols[3].Cards[0].Urgency)
}

func TestLoadScopesToSelectedDay(t *testing.T) {
	api := newFakeAPI(
		order("ORD-100001", noon, models.StatusOpen),
		order("ORD-100002", today.Add(-time.Minute), models.StatusOpen),
		order("ORD-100003", today.Add(24*time.Hour), models.StatusOpen),
	)
	b := newBoard(t, api, Options{})
	assert.Equal(t, today, b.Day())
	assert.Equal(t, 1, b.State().Len())

	yesterday := today.Add(-2 * time.Hour)
	require.NoError(t, b.SelectDate(context.Background(), yesterday))
	assert.Equal(t, today.AddDate(0, 0, -1), b.Day())
	_, ok := b.State().Order("ORD-100002")
	assert.True(t, ok)
	assert.Equal(t, 1, b.State().Len())
}

func TestLoadFailureKeepsBoard(t *testing.T) {
	api := newFakeAPI(order("ORD-100001", noon, models.StatusOpen))
	b := newBoard(t, api, Options{})

	api.listErr = errors.New("offline")
	assert.Error(t, b.Load(context.Background()))
	assert.Equal(t, 1, b.State().Len())
}

func TestDelayDelivery(t *testing.T) {
	placed := noon.Add(-10 * time.Minute)
	api := newFakeAPI(order("ORD-100001", placed, models.StatusKitchen), order("ORD-100002", placed, models.StatusCancelled))
	b := newBoard(t, api, Options{})

	saved, err := b.DelayDelivery(context.Background(), "ORD-100001")
	require.NoError(t, err)
	assert.Equal(t, placed.Add(10*time.Minute), saved.OrderDate)
	o, _ := b.State().Order("ORD-100001")
	assert.Equal(t, placed.Add(40*time.Minute), o.DeliveryDeadline())

	_, err = b.DelayDelivery(context.Background(), "ORD-100002")
	assert.True(t, errors.Is(err, models.ErrTerminalStatus))
}

func TestCancelNeedsConfirmation(t *testing.T) {
	api := newFakeAPI(order("ORD-100001", noon, models.StatusOpen))
	b := newBoard(t, api, Options{})

	var shown string
	issued, err := b.Cancel(context.Background(), "ORD-100001", func(prompt string) bool {
		shown = prompt
		return false
	})
	require.NoError(t, err)
	assert.False(t, issued)
	assert.Contains(t, shown, "terugbetaald")
	assert.Equal(t, models.StatusOpen, statusOf(t, b, "ORD-100001"))

	issued, err = b.Cancel(context.Background(), "ORD-100001", func(string) bool { return true })
	require.NoError(t, err)
	assert.True(t, issued)
	b.Wait()
	assert.Equal(t, models.StatusCancelled, statusOf(t, b, "ORD-100001"))
}

func TestApplyEvent(t *testing.T) {
	api := newFakeAPI(order("ORD-100001", noon, models.StatusOpen))
	b := newBoard(t, api, Options{})

	b.ApplyEvent(models.BoardEvent{Event: models.EventNewOrder, Payload: order("ORD-100002", noon.Add(time.Minute), models.StatusOpen)})
	assert.Equal(t, 2, b.State().Len())

	b.ApplyEvent(models.BoardEvent{Event: models.EventOrderUpdated, Payload: order("ORD-100001", noon, models.StatusKitchen)})
	assert.Equal(t, models.StatusKitchen, statusOf(t, b, "ORD-100001"))

	b.ApplyEvent(models.BoardEvent{Event: models.EventNewOrder, Payload: order("ORD-100003", today.AddDate(0, 0, 1), models.StatusOpen)})
	assert.Equal(t, 2, b.State().Len())

	b.ApplyEvent(models.BoardEvent{Event: models.EventOrderUpdated, Payload: order("ORD-100002", today.AddDate(0, 0, 1), models.StatusOpen)})
	assert.Equal(t, 1, b.State().Len())
}

func TestStateTransitionsDoNotShare(t *testing.T) {
	before := NewState([]models.Order{order("ORD-100001", noon, models.StatusOpen)})
	after := before.WithStatus("ORD-100001", models.StatusKitchen)

	o, _ := before.Order("ORD-100001")
	assert.Equal(t, models.StatusOpen, o.OrderStatus)
	o, _ = after.Order("ORD-100001")
	assert.Equal(t, models.StatusKitchen, o.OrderStatus)

	assert.Equal(t, before, before.WithStatus("ORD-404", models.StatusKitchen))
	assert.Equal(t, 0, after.WithoutOrder("ORD-100001").Len())
	assert.Equal(t, 1, after.Len())
}
