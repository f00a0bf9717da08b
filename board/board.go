package board

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go-restaurant-ordering/helpers"
	"go-restaurant-ordering/models"
)

// CancelPrompt is shown to the operator before an order is cancelled.
const CancelPrompt = "Weet je zeker dat je deze order wilt annuleren? Indien er een betaling is gedaan, dan wordt deze terugbetaald."

var ErrUnknownOrder = errors.New("order is not on the board")

// OrderAPI is the order service as seen by the board.
type OrderAPI interface {
	// ListOrders returns the orders placed on the calendar day of day, in day's location.
	ListOrders(ctx context.Context, day time.Time) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (models.Order, error)
	UpdateOrder(ctx context.Context, orderID string, patch models.OrderPatch) (models.Order, error)
}

type Options struct {
	// Location is the kitchen time zone; it defaults to UTC. It has to be a
	// named zone since the server cuts days by its name.
	Location *time.Location
	Now      func() time.Time
	Logger   *log.Logger
	// Refetch reloads the day after every successful move.
	Refetch bool
	// OnError receives failures of background persistence.
	OnError func(orderID string, err error)
	// OnChange is called after the state changed.
	OnChange func()
}

// Board is the kitchen view of one calendar day.
type Board struct {
	api  OrderAPI
	opts Options

	mu      sync.Mutex
	state   State
	day     time.Time
	loadSeq int
	wg      sync.WaitGroup
}

func New(api OrderAPI, opts Options) *Board {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	b := &Board{api: api, opts: opts}
	b.day, _ = helpers.DayBounds(opts.Now(), opts.Location)
	return b
}

// Day is the start of the selected calendar day.
func (b *Board) Day() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.day
}

func (b *Board) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Columns renders the board as of now.
func (b *Board) Columns() []Column {
	return b.State().Columns(b.opts.Now())
}

// Load fetches the orders of the selected day. A response for a day that is
// no longer selected, or overtaken by a newer load, is dropped.
func (b *Board) Load(ctx context.Context) error {
	b.mu.Lock()
	b.loadSeq++
	seq, day := b.loadSeq, b.day
	b.mu.Unlock()

	orders, err := b.api.ListOrders(ctx, day)
	if err != nil {
		return fmt.Errorf("load orders for %s: %w", day.Format("2006-01-02"), err)
	}

	b.mu.Lock()
	if seq != b.loadSeq {
		b.mu.Unlock()
		return nil
	}
	scoped := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if b.onDayLocked(o) {
			scoped = append(scoped, o)
		}
	}
	b.state = b.state.WithOrders(scoped)
	b.mu.Unlock()
	b.changed()
	return nil
}

// SelectDate switches to the calendar day of day and loads it.
func (b *Board) SelectDate(ctx context.Context, day time.Time) error {
	start, _ := helpers.DayBounds(day, b.opts.Location)
	b.mu.Lock()
	b.day = start
	b.state = State{}
	b.mu.Unlock()
	return b.Load(ctx)
}

func (b *Board) onDayLocked(o models.Order) bool {
	start, end := helpers.DayBounds(b.day, b.opts.Location)
	return !o.OrderDate.Before(start) && o.OrderDate.Before(end)
}

// Drag is an order picked up from its column. It remembers the status the
// order had when the drag started.
type Drag struct {
	board   *Board
	orderID string
	from    models.OrderStatus
}

func (b *Board) BeginDrag(orderID string) (*Drag, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	order, ok := b.state.Order(orderID)
	if !ok {
		return nil, ErrUnknownOrder
	}
	return &Drag{board: b, orderID: orderID, from: order.OrderStatus}, nil
}

func (d *Drag) OrderID() string           { return d.orderID }
func (d *Drag) From() models.OrderStatus { return d.from }

// Drop moves the order to the target column. The board shows the new status
// before Drop returns; persistence runs in the background and a failure puts
// the order back in the column it was dragged from.
func (d *Drag) Drop(ctx context.Context, target models.OrderStatus) error {
	if !target.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidStatus, target)
	}
	if target == d.from {
		return nil
	}
	if !d.from.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", models.ErrTerminalStatus, d.from, target)
	}

	b := d.board
	b.mu.Lock()
	current, ok := b.state.Order(d.orderID)
	if !ok {
		b.mu.Unlock()
		return ErrUnknownOrder
	}
	// a pushed update may have closed the order while it was being dragged
	if !current.OrderStatus.CanTransitionTo(target) {
		b.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", models.ErrTerminalStatus, current.OrderStatus, target)
	}
	b.state = b.state.WithStatus(d.orderID, target)
	b.wg.Add(1)
	b.mu.Unlock()
	b.changed()

	go d.persist(ctx, target)
	return nil
}

// DropOnOrder drops onto the column that holds another order.
func (d *Drag) DropOnOrder(ctx context.Context, targetOrderID string) error {
	target, ok := d.board.State().Order(targetOrderID)
	if !ok {
		return ErrUnknownOrder
	}
	return d.Drop(ctx, target.OrderStatus)
}

func (d *Drag) persist(ctx context.Context, target models.OrderStatus) {
	b := d.board
	defer b.wg.Done()

	saved, err := b.api.UpdateStatus(ctx, d.orderID, target)

	b.mu.Lock()
	current, onBoard := b.state.Order(d.orderID)
	stillOptimistic := onBoard && current.OrderStatus == target
	switch {
	case err != nil && stillOptimistic:
		b.state = b.state.WithStatus(d.orderID, d.from)
	case err == nil && stillOptimistic:
		b.state = b.state.WithOrder(saved)
	}
	b.mu.Unlock()

	if err != nil {
		b.opts.Logger.Printf("moving order %s to %s failed: %v", d.orderID, target, err)
		if b.opts.OnError != nil {
			b.opts.OnError(d.orderID, err)
		}
		b.changed()
		return
	}
	b.changed()
	if b.opts.Refetch {
		if err := b.Load(ctx); err != nil {
			b.opts.Logger.Printf("refreshing board failed: %v", err)
		}
	}
}

// Move is a drag and drop in one call.
func (b *Board) Move(ctx context.Context, orderID string, target models.OrderStatus) error {
	drag, err := b.BeginDrag(orderID)
	if err != nil {
		return err
	}
	return drag.Drop(ctx, target)
}

// DelayDelivery pushes the promised time of an order back by ten minutes.
func (b *Board) DelayDelivery(ctx context.Context, orderID string) (models.Order, error) {
	order, ok := b.State().Order(orderID)
	if !ok {
		return models.Order{}, ErrUnknownOrder
	}
	if order.OrderStatus.Terminal() {
		return order, models.ErrTerminalStatus
	}
	saved, err := b.api.UpdateOrder(ctx, orderID, models.AdjustDeliveryTime(models.DeliveryTimeStep))
	if err != nil {
		return order, err
	}
	b.mu.Lock()
	b.state = b.state.WithOrder(saved)
	b.mu.Unlock()
	b.changed()
	return saved, nil
}

// Cancel asks confirm with CancelPrompt and cancels the order when it agrees.
// It reports whether the cancellation was issued.
func (b *Board) Cancel(ctx context.Context, orderID string, confirm func(prompt string) bool) (bool, error) {
	if _, ok := b.State().Order(orderID); !ok {
		return false, ErrUnknownOrder
	}
	if confirm == nil || !confirm(CancelPrompt) {
		return false, nil
	}
	if err := b.Move(ctx, orderID, models.StatusCancelled); err != nil {
		return false, err
	}
	return true, nil
}

// ApplyEvent merges a pushed order into the board when it belongs to the
// selected day, and drops it when it moved to another day.
func (b *Board) ApplyEvent(event models.BoardEvent) {
	if event.Event != models.EventNewOrder && event.Event != models.EventOrderUpdated {
		return
	}
	order := event.Payload
	if order.OrderID == "" {
		return
	}
	b.mu.Lock()
	if b.onDayLocked(order) {
		b.state = b.state.WithOrder(order)
	} else {
		b.state = b.state.WithoutOrder(order.OrderID)
	}
	b.mu.Unlock()
	b.changed()
}

// Wait blocks until background persistence has finished.
func (b *Board) Wait() {
	b.wg.Wait()
}

func (b *Board) changed() {
	if b.opts.OnChange != nil {
		b.opts.OnChange()
	}
}
