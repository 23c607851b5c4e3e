package order

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"biblio_back_end/internal/database"
	"biblio_back_end/internal/middleware"
	"biblio_back_end/internal/models"
	"biblio_back_end/internal/store"
	"biblio_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestServer branche les handlers sur un store en mémoire, comme le ferait
// routes.RegisterRoutes mais sans CORS ni rate limit.
func newTestServer(t *testing.T) (*gin.Engine, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	mem.EnsureUnique("reviews", "bookId", "email")
	prev := database.Docs
	database.Docs = mem
	t.Cleanup(func() { database.Docs = prev })

	r := gin.New()
	auth := r.Group("/", middleware.AuthRequired())
	auth.POST("/orders", PlaceOrder)
	auth.GET("/orders/:email", GetOrdersByEmail)
	auth.GET("/orders/id/:id", GetOrderByID)
	auth.PATCH("/orders/cancel/:id", CancelOrder)
	auth.PATCH("/orders/pay/:id", PayOrder)
	admin := r.Group("/admin", middleware.AuthRequired(), middleware.RequireAdmin)
	admin.GET("/orders", GetAllOrders)
	admin.PATCH("/orders/status/:id", AdvanceStatus)
	admin.DELETE("/orders/:id", DeleteOrder)
	return r, mem
}

func bearer(t *testing.T, email, role string) string {
	t.Helper()
	token, err := utils.GenerateJWT(models.User{Email: email, Name: "Test", Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

func jsonReq(t *testing.T, r *gin.Engine, method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPlaceOrderEndpoint(t *testing.T) {
	t.Setenv("AUTH_REQUIRED", "")
	r, mem := newTestServer(t)
	auth := bearer(t, "a@x.com", "user")

	w := jsonReq(t, r, http.MethodPost, "/orders", auth, gin.H{
		"book_title": "Le Petit Prince",
		"price":      9.90,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		OrderID    string `json:"order_id"`
		DeliveryID string `json:"delivery_id"`
		Status     string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.OrderStatusPending, resp.Status)
	assert.NotEmpty(t, resp.DeliveryID)

	// L'email du token prime, même si le body en fournit un autre.
	var saved models.Order
	oid, err := store.ParseID(resp.OrderID)
	require.NoError(t, err)
	require.NoError(t, mem.FindOne(context.Background(), "orders", bson.M{"_id": oid}, &saved))
	assert.Equal(t, "a@x.com", saved.Email)
}

func TestPlaceOrderEndpointBodyEmailWhenAuthDisabled(t *testing.T) {
	t.Setenv("AUTH_REQUIRED", "false")
	r, mem := newTestServer(t)

	w := jsonReq(t, r, http.MethodPost, "/orders", "", gin.H{
		"email":      "body@x.com",
		"book_title": "X",
		"price":      5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var saved models.Order
	require.NoError(t, mem.FindOne(context.Background(), "orders", bson.M{"email": "body@x.com"}, &saved))
	assert.Equal(t, "X", saved.BookTitle)
}

func TestPlaceOrderEndpointRejectsBadPayload(t *testing.T) {
	t.Setenv("AUTH_REQUIRED", "")
	r, _ := newTestServer(t)
	auth := bearer(t, "a@x.com", "user")

	w := jsonReq(t, r, http.MethodPost, "/orders", auth, gin.H{"book_title": "X", "price": -3})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPayAndCancelEndpoints(t *testing.T) {
	t.Setenv("AUTH_REQUIRED", "")
	r, _ := newTestServer(t)
	auth := bearer(t, "a@x.com", "user")

	w := jsonReq(t, r, http.MethodPost, "/orders", auth, gin.H{"book_title": "X", "price": 5})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		OrderID string `json:"order_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = jsonReq(t, r, http.MethodPatch, "/orders/pay/"+created.OrderID, auth, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "payment_id")

	// Second paiement : 409.
	w = jsonReq(t, r, http.MethodPatch, "/orders/pay/"+created.OrderID, auth, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Annulation d'une commande payée : permise pour le propriétaire.
	w = jsonReq(t, r, http.MethodPatch, "/orders/cancel/"+created.OrderID, auth, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Puis conflit sur la seconde annulation.
	w = jsonReq(t, r, http.MethodPatch, "/orders/cancel/"+created.OrderID, auth, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPayCancelledOrderEndpoint(t *testing.T) {
	t.Setenv("AUTH_REQUIRED", "")
	r, mem := newTestServer(t)
	auth := bearer(t, "a@x.com", "user")

	w := jsonReq(t, r, http.MethodPost, "/orders", auth, gin.H{"book_title": "X", "price": 5})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		OrderID string `json:"order_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = jsonReq(t, r, http.MethodPatch, "/orders/cancel/"+created.OrderID, auth, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Payer une commande annulée : 409, et la commande reste annulée.
	w = jsonReq(t, r, http.MethodPatch, "/orders/pay/"+created.OrderID, auth, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	oid, err := store.ParseID(created.OrderID)
	require.NoError(t, err)
	var saved models.Order
	require.NoError(t, mem.FindOne(context.Background(), "orders", bson.M{"_id": oid}, &saved))
	assert.Equal(t, models.OrderStatusCancelled, saved.Status)

	n, err := mem.Count(context.Background(), "invoices", bson.M{"orderId": oid})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCancelEndpointOwnership(t *testing.T) {
	t.Setenv("AUTH_REQUIRED", "")
	r, _ := newTestServer(t)

	w := jsonReq(t, r, http.MethodPost, "/orders", bearer(t, "a@x.com", "user"), gin.H{"book_title": "X", "price": 5})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		OrderID string `json:"order_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// Un autre utilisateur : 403.
	w = jsonReq(t, r, http.MethodPatch, "/orders/cancel/"+created.OrderID, bearer(t, "b@x.com", "user"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// L'admin passe outre le contrôle de propriété.
	w = jsonReq(t, r, http.MethodPatch, "/orders/cancel/"+created.OrderID, bearer(t, "admin@x.com", "admin"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdvanceStatusEndpoint(t *testing.T) {
	t.Setenv("AUTH_REQUIRED", "")
	r, _ := newTestServer(t)
	user := bearer(t, "a@x.com", "user")
	admin := bearer(t, "admin@x.com", "admin")

	w := jsonReq(t, r, http.MethodPost, "/orders", user, gin.H{"book_title": "X", "price": 5})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		OrderID string `json:"order_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = jsonReq(t, r, http.MethodPatch, "/orders/pay/"+created.OrderID, user, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = jsonReq(t, r, http.MethodPatch, "/admin/orders/status/"+created.OrderID, admin, gin.H{"status": "shipped"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Statut hors énumération : 400.
	w = jsonReq(t, r, http.MethodPatch, "/admin/orders/status/"+created.OrderID, admin, gin.H{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Transition interdite : 409.
	w = jsonReq(t, r, http.MethodPatch, "/admin/orders/status/"+created.OrderID, admin, gin.H{"status": "paid"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Un simple utilisateur n'atteint pas la route admin.
	w = jsonReq(t, r, http.MethodPatch, "/admin/orders/status/"+created.OrderID, user, gin.H{"status": "delivered"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetOrdersByEmailEndpoint(t *testing.T) {
	t.Setenv("AUTH_REQUIRED", "")
	r, mem := newTestServer(t)
	auth := bearer(t, "a@x.com", "user")

	w := jsonReq(t, r, http.MethodPost, "/orders", auth, gin.H{"book_title": "X", "price": 5})
	require.Equal(t, http.StatusCreated, w.Code)

	// Document hérité : retrouvé par le même endpoint.
	_, err := mem.InsertOne(context.Background(), "orders", models.Order{
		LegacyEmail: "a@x.com",
		BookTitle:   "Ancien",
		Status:      models.OrderStatusDelivered,
	})
	require.NoError(t, err)

	w = jsonReq(t, r, http.MethodGet, "/orders/a@x.com", auth, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)
}

func TestDeleteOrderEndpoint(t *testing.T) {
	t.Setenv("AUTH_REQUIRED", "")
	r, _ := newTestServer(t)
	admin := bearer(t, "admin@x.com", "admin")

	w := jsonReq(t, r, http.MethodPost, "/orders", bearer(t, "a@x.com", "user"), gin.H{"book_title": "X", "price": 5})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		OrderID string `json:"order_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = jsonReq(t, r, http.MethodDelete, "/admin/orders/"+created.OrderID, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = jsonReq(t, r, http.MethodDelete, "/admin/orders/"+created.OrderID, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = jsonReq(t, r, http.MethodGet, "/orders/id/"+created.OrderID, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
