package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go-restaurant-ordering/models"
)

var (
	// ErrNotLoaded guards against persisting an empty cart over stored data
	// before Load has run.
	ErrNotLoaded       = errors.New("cart has not been loaded")
	ErrIndexOutOfRange = errors.New("cart line index out of range")
)

// ValidationError reports a rejected shopper input and the field it concerns.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

func newValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is caused by shopper input.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Backend is the durable storage of one cart snapshot.
type Backend interface {
	// Load returns found=false when nothing was stored yet.
	Load(ctx context.Context) (snapshot models.CartSnapshot, found bool, err error)
	Save(ctx context.Context, snapshot models.CartSnapshot) error
}

// Store holds one shopper's cart and customer details. A mutation is only
// committed in memory once the backend accepted it.
type Store struct {
	mu        sync.Mutex
	backend   Backend
	sessionID string
	loaded    bool
	items     []models.CartLineItem
	customer  models.CustomerInfo
}

func New(backend Backend) *Store {
	return &Store{backend: backend, customer: models.DefaultCustomerInfo()}
}

// Load reads the stored state. Calling it again is a no-op.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}
	snapshot, found, err := s.backend.Load(ctx)
	if err != nil {
		return err
	}
	if found {
		s.sessionID = snapshot.SessionID
		s.items = append([]models.CartLineItem(nil), snapshot.Items...)
		s.customer = withDefaults(snapshot.Customer)
	}
	s.loaded = true
	return nil
}

func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Items returns a copy of the cart lines.
func (s *Store) Items() []models.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CartLineItem{}, s.items...)
}

func (s *Store) Customer() models.CustomerInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customer
}

// AddItem merges item into an equally configured line or appends it.
func (s *Store) AddItem(ctx context.Context, item models.CartLineItem) error {
	if item.Quantity <= 0 {
		return newValidationError("quantity", "must be at least 1")
	}
	return s.mutate(ctx, func(items []models.CartLineItem, customer models.CustomerInfo) ([]models.CartLineItem, models.CustomerInfo, error) {
		for i := range items {
			if items[i].SameConfiguration(item) {
				items[i].Quantity += item.Quantity
				return items, customer, nil
			}
		}
		return append(items, item), customer, nil
	})
}

// UpdateQuantity sets the quantity of line index; zero or less removes it.
func (s *Store) UpdateQuantity(ctx context.Context, index, quantity int) error {
	return s.mutate(ctx, func(items []models.CartLineItem, customer models.CustomerInfo) ([]models.CartLineItem, models.CustomerInfo, error) {
		if index < 0 || index >= len(items) {
			return nil, customer, ErrIndexOutOfRange
		}
		if quantity <= 0 {
			return append(items[:index], items[index+1:]...), customer, nil
		}
		items[index].Quantity = quantity
		return items, customer, nil
	})
}

func (s *Store) RemoveItem(ctx context.Context, index int) error {
	return s.mutate(ctx, func(items []models.CartLineItem, customer models.CustomerInfo) ([]models.CartLineItem, models.CustomerInfo, error) {
		if index < 0 || index >= len(items) {
			return nil, customer, ErrIndexOutOfRange
		}
		return append(items[:index], items[index+1:]...), customer, nil
	})
}

func (s *Store) ClearCart(ctx context.Context) error {
	return s.mutate(ctx, func(_ []models.CartLineItem, customer models.CustomerInfo) ([]models.CartLineItem, models.CustomerInfo, error) {
		return nil, customer, nil
	})
}

func (s *Store) UpdateCustomerInfo(ctx context.Context, patch models.CustomerPatch) error {
	if patch.DeliveryMethod != nil && !patch.DeliveryMethod.Valid() {
		return newValidationError("deliveryMethod", "unknown delivery method %q", *patch.DeliveryMethod)
	}
	if patch.PaymentMethod != nil && !patch.PaymentMethod.Valid() {
		return newValidationError("paymentMethod", "unknown payment method %q", *patch.PaymentMethod)
	}
	return s.mutate(ctx, func(items []models.CartLineItem, customer models.CustomerInfo) ([]models.CartLineItem, models.CustomerInfo, error) {
		return items, patch.Merge(customer), nil
	})
}

func (s *Store) ClearCustomerInfo(ctx context.Context) error {
	return s.mutate(ctx, func(items []models.CartLineItem, _ models.CustomerInfo) ([]models.CartLineItem, models.CustomerInfo, error) {
		return items, models.DefaultCustomerInfo(), nil
	})
}

// ClearAll empties the cart and resets the customer details in one write.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.mutate(ctx, func(_ []models.CartLineItem, _ models.CustomerInfo) ([]models.CartLineItem, models.CustomerInfo, error) {
		return nil, models.DefaultCustomerInfo(), nil
	})
}

type mutation func(items []models.CartLineItem, customer models.CustomerInfo) ([]models.CartLineItem, models.CustomerInfo, error)

func (s *Store) mutate(ctx context.Context, fn mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	items, customer, err := fn(append([]models.CartLineItem(nil), s.items...), s.customer)
	if err != nil {
		return err
	}
	snapshot := models.CartSnapshot{SessionID: s.sessionID, Items: items, Customer: customer}
	if snapshot.Items == nil {
		snapshot.Items = []models.CartLineItem{}
	}
	if err := s.backend.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	s.items = items
	s.customer = customer
	return nil
}

func withDefaults(c models.CustomerInfo) models.CustomerInfo {
	defaults := models.DefaultCustomerInfo()
	if !c.DeliveryMethod.Valid() {
		c.DeliveryMethod = defaults.DeliveryMethod
	}
	if !c.PaymentMethod.Valid() {
		c.PaymentMethod = defaults.PaymentMethod
	}
	return c
}
