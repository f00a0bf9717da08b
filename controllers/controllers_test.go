package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go-restaurant-ordering/checkout"
	"go-restaurant-ordering/helpers"
	"go-restaurant-ordering/middleware"
	"go-restaurant-ordering/models"
	"go-restaurant-ordering/payment"
	"go-restaurant-ordering/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	passwordCost = bcrypt.MinCost
}

type recordingNotifier struct {
	mu      sync.Mutex
	created []models.Order
	updated []models.Order
}

func (n *recordingNotifier) NotifyNewOrder(o models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, o)
}

func (n *recordingNotifier) NotifyOrderUpdated(o models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updated = append(n.updated, o)
}

type testEnv struct {
	router   *gin.Engine
	store    *store.MemoryStore
	notifier *recordingNotifier
	tokens   *helpers.TokenIssuer
}

func setupTestRouter(t *testing.T, payments payment.Provider) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		store:    store.NewMemoryStore(),
		notifier: &recordingNotifier{},
		tokens:   helpers.NewTokenIssuer("test-secret"),
	}
	service := checkout.NewService(env.store, env.store, payments, checkout.Options{
		AppURL:         "https://shop.example",
		RestaurantName: "La Pizza",
	})

	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/users/signup", SignUp(env.store, env.tokens))
	r.POST("/users/login", Login(env.store, env.tokens))

	r.GET("/api/menu", GetMenu(env.store))
	r.GET("/api/menu/search", SearchMenu(env.store))
	r.GET("/api/menu/items/:id", GetMenuItem(env.store))
	r.GET("/api/delivery-areas/:postal_code", GetDeliveryArea(env.store))
	admin := r.Group("/api", middleware.Authentication(env.tokens), middleware.RequireRole(models.RoleAdmin))
	admin.POST("/menu/items", CreateMenuItem(env.store))
	admin.POST("/option-groups", CreateOptionGroup(env.store))
	admin.POST("/delivery-areas", CreateDeliveryArea(env.store))

	shop := r.Group("/api", sessions.Sessions(CartSessionName, cookie.NewStore([]byte("session-secret"))))
	shop.GET("/cart", GetCart(env.store))
	shop.POST("/cart/items", AddCartItem(env.store, env.store))
	shop.PATCH("/cart/items/:index", UpdateCartItem(env.store))
	shop.DELETE("/cart/items/:index", RemoveCartItem(env.store))
	shop.DELETE("/cart", ClearCart(env.store))
	shop.PATCH("/cart/customer", UpdateCustomer(env.store))
	shop.POST("/checkout", Checkout(env.store, service, env.notifier))

	r.GET("/api/orders/by-id/:order_id", GetOrder(env.store))
	r.POST("/api/webhook", PaymentWebhook(payments, env.store, env.notifier))
	staff := r.Group("/api", middleware.Authentication(env.tokens), middleware.RequireRole(models.RoleAdmin, models.RoleKitchen))
	staff.GET("/orders", GetOrders(env.store, time.UTC))
	staff.PATCH("/orders/update-status", UpdateOrderStatus(env.store, env.notifier))
	staff.PATCH("/orders/update", UpdateOrder(env.store, env.notifier))

	env.router = r
	return env
}

func (env *testEnv) token(t *testing.T, role string) string {
	t.Helper()
	token, err := env.tokens.GenerateToken("staff@example.com", "Staff", "u1", role)
	require.NoError(t, err)
	return token
}

// browser carries the session cookie from one request to the next.
type browser struct {
	env     *testEnv
	cookies map[string]*http.Cookie
	token   string
}

func (env *testEnv) browser() *browser {
	return &browser{env: env, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, _ := json.Marshal(v)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		req.Header.Set("token", b.token)
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	b.env.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func postForm(env *testEnv, path, form string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func price(v float64) *float64 { return &v }

// seedMenu adds a margherita with a size question (Groot +1.50) and an
// extras question.
func seedMenu(t *testing.T, env *testEnv) models.MenuItem {
	t.Helper()
	ctx := context.Background()
	group := models.OptionGroup{
		Title: "Pizza opties",
		Questions: []models.Question{
			{ID: "size", Question: "Formaat", QuestionType: models.QuestionSingle, Options: []models.Option{
				{Label: "Normaal"}, {Label: "Groot", Price: price(1.5)},
			}},
			{ID: "extras", Question: "Extra's", QuestionType: models.QuestionMultiple, Options: []models.Option{
				{Label: "Kaas", Price: price(1)}, {Label: "Ui", Price: price(0.3)},
			}},
		},
	}
	require.NoError(t, env.store.CreateOptionGroup(ctx, &group))
	item := models.MenuItem{
		Title:        "Pizza Margherita",
		Slug:         "pizza-margherita",
		Description:  "Tomaat en mozzarella",
		Price:        8.5,
		Category:     models.Category{Title: "Pizza", Slug: "pizza"},
		OptionGroups: []primitive.ObjectID{group.ID},
	}
	require.NoError(t, env.store.CreateMenuItem(ctx, &item))
	drink := models.MenuItem{
		Title:    "Cola",
		Slug:     "cola",
		Price:    2.5,
		Category: models.Category{Title: "Dranken", Slug: "dranken"},
	}
	require.NoError(t, env.store.CreateMenuItem(ctx, &drink))
	return item
}
