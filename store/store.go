package store

import (
	"context"
	"errors"
	"time"

	"go-restaurant-ordering/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicateOrderID = errors.New("order id already exists")
	ErrDuplicateEmail   = errors.New("email already exists")
)

// MaxOrderPage caps how many orders a single listing returns.
const MaxOrderPage = 1000

// OrderFilter selects orders with OrderDate in [From, To). Zero bounds are open.
type OrderFilter struct {
	From  time.Time
	To    time.Time
	Limit int
}

func (f OrderFilter) limit() int {
	if f.Limit <= 0 || f.Limit > MaxOrderPage {
		return MaxOrderPage
	}
	return f.Limit
}

func (f OrderFilter) matches(o models.Order) bool {
	if !f.From.IsZero() && o.OrderDate.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !o.OrderDate.Before(f.To) {
		return false
	}
	return true
}

type OrderStore interface {
	// CreateOrder assigns an internal id when missing and fails with
	// ErrDuplicateOrderID when the human-readable id is taken.
	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, orderID string) (models.Order, error)
	// ListOrders returns matching orders newest first plus the total match count.
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	UpdateOrder(ctx context.Context, orderID string, patch models.OrderPatch) (models.Order, error)
	UpdateOrderByID(ctx context.Context, id primitive.ObjectID, patch models.OrderPatch) (models.Order, error)
}

type DeliveryAreaStore interface {
	FindActiveDeliveryArea(ctx context.Context, zipCode string) (models.DeliveryArea, error)
	SaveDeliveryArea(ctx context.Context, area *models.DeliveryArea) error
}

type MenuStore interface {
	ListMenuItems(ctx context.Context) ([]models.MenuItem, error)
	SearchMenuItems(ctx context.Context, query string, limit int) ([]models.MenuItem, error)
	FindMenuItem(ctx context.Context, id primitive.ObjectID) (models.MenuItem, error)
	CreateMenuItem(ctx context.Context, item *models.MenuItem) error
	CreateOptionGroup(ctx context.Context, group *models.OptionGroup) error
	FindOptionGroups(ctx context.Context, ids []primitive.ObjectID) ([]models.OptionGroup, error)
}

type CartStore interface {
	LoadCart(ctx context.Context, sessionID string) (models.CartSnapshot, error)
	SaveCart(ctx context.Context, snapshot models.CartSnapshot) error
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// Store is everything the service persists.
type Store interface {
	OrderStore
	DeliveryAreaStore
	MenuStore
	CartStore
	UserStore
}

// maxPatchAttempts bounds optimistic-concurrency retries on order updates.
const maxPatchAttempts = 3

var errConflict = errors.New("order changed concurrently")

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*MongoStore)(nil)
)
