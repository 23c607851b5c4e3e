package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"biblio_back_end/internal/database"
	"biblio_back_end/internal/models"
	"biblio_back_end/internal/orders"
	"biblio_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newDeliveryServer(t *testing.T) (*gin.Engine, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	prev := database.Docs
	database.Docs = mem
	t.Cleanup(func() { database.Docs = prev })

	r := gin.New()
	r.GET("/delivery-requests", GetDeliveryRequests)
	r.PATCH("/delivery-requests/approve/:id", Approve)
	r.PATCH("/delivery-requests/reject/:id", Reject)
	r.PATCH("/delivery-requests/return/:id", Return)
	r.PATCH("/delivery-requests/receive/:id", Receive)
	r.GET("/delivery-requests/:id/qr", PickupQR)
	return r, mem
}

func placeOrder(t *testing.T, email string) *models.DeliveryRequest {
	t.Helper()
	_, request, err := orders.NewManager(database.Docs).Place(context.Background(),
		orders.PlaceInput{Email: email, BookTitle: "X", Price: 5})
	require.NoError(t, err)
	return request
}

func patch(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, path, bytes.NewReader(nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDeliveryStatusEndpoints(t *testing.T) {
	r, _ := newDeliveryServer(t)
	request := placeOrder(t, "a@x.com")
	id := request.ID.Hex()

	w := patch(t, r, "/delivery-requests/approve/"+id)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got models.DeliveryRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.DeliveryStatusApproved, got.Status)

	for _, step := range []struct{ path, want string }{
		{"/delivery-requests/receive/" + id, models.DeliveryStatusReceived},
		{"/delivery-requests/return/" + id, models.DeliveryStatusReturned},
		{"/delivery-requests/reject/" + id, models.DeliveryStatusRejected},
	} {
		w = patch(t, r, step.path)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, step.want, got.Status)
	}

	w = patch(t, r, "/delivery-requests/approve/65b2f1c4e8a9b63f2d000001")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPickupQREndpoint(t *testing.T) {
	r, _ := newDeliveryServer(t)
	request := placeOrder(t, "a@x.com")
	id := request.ID.Hex()

	// Demande encore pending : pas de QR.
	req := httptest.NewRequest(http.MethodGet, "/delivery-requests/"+id+"/qr", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	patchW := patch(t, r, "/delivery-requests/approve/"+id)
	require.Equal(t, http.StatusOK, patchW.Code)

	req = httptest.NewRequest(http.MethodGet, "/delivery-requests/"+id+"/qr", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte{0x89, 'P', 'N', 'G'}))
}

func TestListDeliveryRequestsEndpoint(t *testing.T) {
	r, _ := newDeliveryServer(t)
	placeOrder(t, "a@x.com")
	placeOrder(t, "b@x.com")

	req := httptest.NewRequest(http.MethodGet, "/delivery-requests", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var list []models.DeliveryRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)
}
