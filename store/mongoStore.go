package store

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go-restaurant-ordering/database"
	"go-restaurant-ordering/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists everything in one MongoDB database.
type MongoStore struct {
	orders       *mongo.Collection
	menuItems    *mongo.Collection
	optionGroups *mongo.Collection
	areas        *mongo.Collection
	carts        *mongo.Collection
	users        *mongo.Collection
	now          func() time.Time
}

func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	return &MongoStore{
		orders:       database.OpenCollection(client, dbName, database.OrderCollection),
		menuItems:    database.OpenCollection(client, dbName, database.MenuItemCollection),
		optionGroups: database.OpenCollection(client, dbName, database.OptionGroupCollection),
		areas:        database.OpenCollection(client, dbName, database.DeliveryAreaCollection),
		carts:        database.OpenCollection(client, dbName, database.CartCollection),
		users:        database.OpenCollection(client, dbName, database.UserCollection),
		now:          time.Now,
	}
}

// timestamp matches the millisecond precision BSON dates are stored with.
func (s *MongoStore) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func (s *MongoStore) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	now := s.timestamp()
	order.CreatedAt = now
	order.UpdatedAt = now
	if _, err := s.orders.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateOrderID
		}
		return err
	}
	return nil
}

func (s *MongoStore) FindOrder(ctx context.Context, orderID string) (models.Order, error) {
	var order models.Order
	err := s.orders.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&order)
	return order, notFound(err)
}

func orderQuery(filter OrderFilter) bson.M {
	query := bson.M{}
	dateRange := bson.M{}
	if !filter.From.IsZero() {
		dateRange["$gte"] = filter.From
	}
	if !filter.To.IsZero() {
		dateRange["$lt"] = filter.To
	}
	if len(dateRange) > 0 {
		query["order_date"] = dateRange
	}
	return query
}

func (s *MongoStore) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	query := orderQuery(filter)
	total, err := s.orders.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "order_date", Value: -1}}).
		SetLimit(int64(filter.limit()))
	cursor, err := s.orders.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (s *MongoStore) UpdateOrder(ctx context.Context, orderID string, patch models.OrderPatch) (models.Order, error) {
	return s.patchOrder(ctx, bson.M{"order_id": orderID}, patch)
}

func (s *MongoStore) UpdateOrderByID(ctx context.Context, id primitive.ObjectID, patch models.OrderPatch) (models.Order, error) {
	return s.patchOrder(ctx, bson.M{"_id": id}, patch)
}

// patchOrder reads the order, applies the patch in memory and writes it back
// only if nobody touched the order in between.
func (s *MongoStore) patchOrder(ctx context.Context, filter bson.M, patch models.OrderPatch) (models.Order, error) {
	if err := patch.Validate(); err != nil {
		return models.Order{}, err
	}
	for attempt := 0; attempt < maxPatchAttempts; attempt++ {
		var current models.Order
		if err := s.orders.FindOne(ctx, filter).Decode(&current); err != nil {
			return models.Order{}, notFound(err)
		}
		updated, err := patch.Apply(current)
		if err != nil {
			return models.Order{}, err
		}
		updated.UpdatedAt = s.timestamp()

		result, err := s.orders.ReplaceOne(ctx, bson.M{"_id": current.ID, "updated_at": current.UpdatedAt}, updated)
		if err != nil {
			return models.Order{}, err
		}
		if result.MatchedCount == 1 {
			return updated, nil
		}
	}
	return models.Order{}, errConflict
}

func (s *MongoStore) FindActiveDeliveryArea(ctx context.Context, zipCode string) (models.DeliveryArea, error) {
	var area models.DeliveryArea
	err := s.areas.FindOne(ctx, bson.M{"zip_code": zipCode, "active": true}).Decode(&area)
	return area, notFound(err)
}

func (s *MongoStore) SaveDeliveryArea(ctx context.Context, area *models.DeliveryArea) error {
	if area.ID.IsZero() {
		area.ID = primitive.NewObjectID()
	}
	_, err := s.areas.ReplaceOne(ctx, bson.M{"_id": area.ID}, area, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "category.title", Value: 1}, {Key: "title", Value: 1}})
	return s.findMenuItems(ctx, bson.M{}, opts)
}

func (s *MongoStore) SearchMenuItems(ctx context.Context, query string, limit int) ([]models.MenuItem, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"title": pattern},
		bson.M{"description": pattern},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "title", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return s.findMenuItems(ctx, filter, opts)
}

func (s *MongoStore) findMenuItems(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.MenuItem, error) {
	cursor, err := s.menuItems.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	items := make([]models.MenuItem, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *MongoStore) FindMenuItem(ctx context.Context, id primitive.ObjectID) (models.MenuItem, error) {
	var item models.MenuItem
	err := s.menuItems.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	return item, notFound(err)
}

func (s *MongoStore) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	now := s.timestamp()
	item.CreatedAt = now
	item.UpdatedAt = now
	_, err := s.menuItems.InsertOne(ctx, item)
	return err
}

func (s *MongoStore) CreateOptionGroup(ctx context.Context, group *models.OptionGroup) error {
	if group.ID.IsZero() {
		group.ID = primitive.NewObjectID()
	}
	_, err := s.optionGroups.InsertOne(ctx, group)
	return err
}

func (s *MongoStore) FindOptionGroups(ctx context.Context, ids []primitive.ObjectID) ([]models.OptionGroup, error) {
	if len(ids) == 0 {
		return []models.OptionGroup{}, nil
	}
	cursor, err := s.optionGroups.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var found []models.OptionGroup
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.OptionGroup, len(found))
	for _, group := range found {
		byID[group.ID] = group
	}
	groups := make([]models.OptionGroup, 0, len(ids))
	for _, id := range ids {
		if group, ok := byID[id]; ok {
			groups = append(groups, group)
		}
	}
	return groups, nil
}

func (s *MongoStore) LoadCart(ctx context.Context, sessionID string) (models.CartSnapshot, error) {
	var snapshot models.CartSnapshot
	err := s.carts.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&snapshot)
	return snapshot, notFound(err)
}

func (s *MongoStore) SaveCart(ctx context.Context, snapshot models.CartSnapshot) error {
	snapshot.UpdatedAt = s.timestamp()
	_, err := s.carts.ReplaceOne(ctx, bson.M{"_id": snapshot.SessionID}, snapshot, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := s.timestamp()
	user.CreatedAt = now
	user.UpdatedAt = now
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	return user, notFound(err)
}

func (s *MongoStore) CountUsers(ctx context.Context) (int64, error) {
	return s.users.CountDocuments(ctx, bson.M{})
}
