package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go-restaurant-ordering/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps everything in process. It backs tests and STORE=memory.
type MemoryStore struct {
	mu           sync.RWMutex
	now          func() time.Time
	orders       map[primitive.ObjectID]models.Order
	orderIDs     map[string]primitive.ObjectID
	areas        map[primitive.ObjectID]models.DeliveryArea
	menuItems    map[primitive.ObjectID]models.MenuItem
	optionGroups map[primitive.ObjectID]models.OptionGroup
	carts        map[string]models.CartSnapshot
	users        map[string]models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:          time.Now,
		orders:       make(map[primitive.ObjectID]models.Order),
		orderIDs:     make(map[string]primitive.ObjectID),
		areas:        make(map[primitive.ObjectID]models.DeliveryArea),
		menuItems:    make(map[primitive.ObjectID]models.MenuItem),
		optionGroups: make(map[primitive.ObjectID]models.OptionGroup),
		carts:        make(map[string]models.CartSnapshot),
		users:        make(map[string]models.User),
	}
}

func (s *MemoryStore) CreateOrder(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.orderIDs[order.OrderID]; taken {
		return ErrDuplicateOrderID
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	now := s.now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	s.orders[order.ID] = cloneOrder(*order)
	s.orderIDs[order.OrderID] = order.ID
	return nil
}

func (s *MemoryStore) FindOrder(_ context.Context, orderID string) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.orderIDs[orderID]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	return cloneOrder(s.orders[id]), nil
}

func (s *MemoryStore) ListOrders(_ context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]models.Order, 0)
	for _, o := range s.orders {
		if filter.matches(o) {
			matched = append(matched, cloneOrder(o))
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].OrderDate.After(matched[j].OrderDate)
	})
	total := int64(len(matched))
	if limit := filter.limit(); len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (s *MemoryStore) UpdateOrder(_ context.Context, orderID string, patch models.OrderPatch) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.orderIDs[orderID]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	return s.applyLocked(id, patch)
}

func (s *MemoryStore) UpdateOrderByID(_ context.Context, id primitive.ObjectID, patch models.OrderPatch) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return models.Order{}, ErrNotFound
	}
	return s.applyLocked(id, patch)
}

func (s *MemoryStore) applyLocked(id primitive.ObjectID, patch models.OrderPatch) (models.Order, error) {
	updated, err := patch.Apply(s.orders[id])
	if err != nil {
		return models.Order{}, err
	}
	updated.UpdatedAt = s.now().UTC()
	s.orders[id] = updated
	return cloneOrder(updated), nil
}

func (s *MemoryStore) FindActiveDeliveryArea(_ context.Context, zipCode string) (models.DeliveryArea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, area := range s.areas {
		if area.Active && area.ZipCode == zipCode {
			return area, nil
		}
	}
	return models.DeliveryArea{}, ErrNotFound
}

func (s *MemoryStore) SaveDeliveryArea(_ context.Context, area *models.DeliveryArea) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if area.ID.IsZero() {
		area.ID = primitive.NewObjectID()
	}
	s.areas[area.ID] = *area
	return nil
}

func (s *MemoryStore) ListMenuItems(_ context.Context) ([]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]models.MenuItem, 0, len(s.menuItems))
	for _, item := range s.menuItems {
		items = append(items, item)
	}
	sortMenu(items)
	return items, nil
}

func (s *MemoryStore) SearchMenuItems(_ context.Context, query string, limit int) ([]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(query))
	items := make([]models.MenuItem, 0)
	for _, item := range s.menuItems {
		if strings.Contains(strings.ToLower(item.Title), needle) ||
			strings.Contains(strings.ToLower(item.Description), needle) {
			items = append(items, item)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Title < items[j].Title })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *MemoryStore) FindMenuItem(_ context.Context, id primitive.ObjectID) (models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.menuItems[id]
	if !ok {
		return models.MenuItem{}, ErrNotFound
	}
	return item, nil
}

func (s *MemoryStore) CreateMenuItem(_ context.Context, item *models.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	now := s.now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	s.menuItems[item.ID] = *item
	return nil
}

func (s *MemoryStore) CreateOptionGroup(_ context.Context, group *models.OptionGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if group.ID.IsZero() {
		group.ID = primitive.NewObjectID()
	}
	s.optionGroups[group.ID] = *group
	return nil
}

// FindOptionGroups returns the groups in the order of ids, skipping unknown ids.
func (s *MemoryStore) FindOptionGroups(_ context.Context, ids []primitive.ObjectID) ([]models.OptionGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make([]models.OptionGroup, 0, len(ids))
	for _, id := range ids {
		if group, ok := s.optionGroups[id]; ok {
			groups = append(groups, group)
		}
	}
	return groups, nil
}

func (s *MemoryStore) LoadCart(_ context.Context, sessionID string) (models.CartSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.carts[sessionID]
	if !ok {
		return models.CartSnapshot{}, ErrNotFound
	}
	snapshot.Items = append([]models.CartLineItem(nil), snapshot.Items...)
	return snapshot, nil
}

func (s *MemoryStore) SaveCart(_ context.Context, snapshot models.CartSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot.Items = append([]models.CartLineItem(nil), snapshot.Items...)
	snapshot.UpdatedAt = s.now().UTC()
	s.carts[snapshot.SessionID] = snapshot
	return nil
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, taken := s.users[key]; taken {
		return ErrDuplicateEmail
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := s.now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[key] = *user
	return nil
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[strings.ToLower(email)]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

func (s *MemoryStore) CountUsers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func cloneOrder(o models.Order) models.Order {
	items := make([]models.OrderItem, len(o.OrderItems))
	for i, item := range o.OrderItems {
		item.Answers = append([]models.Answer(nil), item.Answers...)
		items[i] = item
	}
	o.OrderItems = items
	return o
}

func sortMenu(items []models.MenuItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Category.Title != items[j].Category.Title {
			return items[i].Category.Title < items[j].Category.Title
		}
		return items[i].Title < items[j].Title
	})
}
