package orders

import (
	"context"
	"testing"
	"time"

	"biblio_back_end/internal/models"
	"biblio_back_end/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func newTestManager() (*Manager, *store.MemoryStore) {
	mem := store.NewMemoryStore()
	mem.EnsureUnique("reviews", "bookId", "email")
	return NewManager(mem), mem
}

func seedBook(t *testing.T, mem *store.MemoryStore, title string, price float64) models.Book {
	t.Helper()
	book := models.Book{Title: title, Author: "Test", Price: price, CreatedAt: time.Now().UTC()}
	id, err := mem.InsertOne(context.Background(), "books", book)
	require.NoError(t, err)
	book.ID = id
	return book
}

func TestPlaceOrderCreatesDeliveryRequest(t *testing.T) {
	m, mem := newTestManager()
	book := seedBook(t, mem, "X", 12.50)
	ctx := context.Background()

	order, request, err := m.Place(ctx, PlaceInput{
		Email:  "a@x.com",
		BookID: book.ID.Hex(),
		Price:  12.50,
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, "X", order.BookTitle)
	assert.False(t, order.ID.IsZero())

	// Exactement une demande de livraison, avec la bonne référence retour.
	require.NotNil(t, request)
	assert.Equal(t, order.ID, request.OrderID)
	assert.Equal(t, models.DeliveryStatusPending, request.Status)

	n, err := mem.Count(ctx, "deliveryRequests", bson.M{"orderId": order.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestPlaceOrderValidation(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	_, _, err := m.Place(ctx, PlaceInput{BookTitle: "X", Price: 10})
	assert.ErrorIs(t, err, ErrValidation) // email manquant

	_, _, err = m.Place(ctx, PlaceInput{Email: "a@x.com", Price: 10})
	assert.ErrorIs(t, err, ErrValidation) // aucune référence de livre

	_, _, err = m.Place(ctx, PlaceInput{Email: "a@x.com", BookTitle: "X", Price: -1})
	assert.ErrorIs(t, err, ErrValidation) // prix négatif

	_, _, err = m.Place(ctx, PlaceInput{Email: "a@x.com", BookID: "pas-un-id", Price: 10})
	assert.ErrorIs(t, err, store.ErrInvalidID)
}

func TestPlaceOrderUnknownBook(t *testing.T) {
	m, _ := newTestManager()

	_, _, err := m.Place(context.Background(), PlaceInput{
		Email:  "a@x.com",
		BookID: "65b2f1c4e8a9b63f2d000001",
		Price:  10,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPayOrder(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	order, _, err := m.Place(ctx, PlaceInput{Email: "a@x.com", BookTitle: "X", Price: 9.90})
	require.NoError(t, err)

	invoice, err := m.Pay(ctx, order.ID.Hex())
	require.NoError(t, err)

	assert.NotEmpty(t, invoice.PaymentID)
	assert.Contains(t, invoice.PaymentID, "PAY-")
	assert.Equal(t, order.ID, invoice.OrderID)
	assert.Equal(t, "a@x.com", invoice.Email)
	assert.Equal(t, 9.90, invoice.Price)

	paid, err := m.Get(ctx, order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, paid.Status)
	assert.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, invoice.PaymentID, paid.PaymentID)
}

func TestPayOrderTwiceConflictsAndKeepsOneInvoice(t *testing.T) {
	m, mem := newTestManager()
	ctx := context.Background()

	order, _, err := m.Place(ctx, PlaceInput{Email: "a@x.com", BookTitle: "X", Price: 5})
	require.NoError(t, err)

	first, err := m.Pay(ctx, order.ID.Hex())
	require.NoError(t, err)

	_, err = m.Pay(ctx, order.ID.Hex())
	assert.ErrorIs(t, err, ErrConflict)

	// Un seul paymentId, une seule facture.
	paid, err := m.Get(ctx, order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, first.PaymentID, paid.PaymentID)

	n, err := mem.Count(ctx, "invoices", bson.M{"orderId": order.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestPayCancelledOrderConflicts(t *testing.T) {
	m, mem := newTestManager()
	ctx := context.Background()

	order, _, err := m.Place(ctx, PlaceInput{Email: "a@x.com", BookTitle: "X", Price: 5})
	require.NoError(t, err)
	require.NoError(t, m.Cancel(ctx, order.ID.Hex(), "a@x.com"))

	// cancelled est terminal : le paiement ne doit jamais en faire sortir la
	// commande, ni produire de facture.
	_, err = m.Pay(ctx, order.ID.Hex())
	assert.ErrorIs(t, err, ErrConflict)

	got, err := m.Get(ctx, order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)
	assert.Equal(t, models.PaymentStatusPending, got.PaymentStatus)
	assert.Empty(t, got.PaymentID)

	n, err := mem.Count(ctx, "invoices", bson.M{"orderId": order.ID})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPayUnknownOrder(t *testing.T) {
	m, _ := newTestManager()

	_, err := m.Pay(context.Background(), "65b2f1c4e8a9b63f2d000001")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Pay(context.Background(), "n'importe quoi")
	assert.ErrorIs(t, err, store.ErrInvalidID)
}

func TestCancelOrder(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	order, _, err := m.Place(ctx, PlaceInput{Email: "a@x.com", BookTitle: "X", Price: 5})
	require.NoError(t, err)

	require.NoError(t, m.Cancel(ctx, order.ID.Hex(), "a@x.com"))

	got, err := m.Get(ctx, order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)

	// Annuler deux fois : conflit, jamais de sortie de l'état cancelled.
	err = m.Cancel(ctx, order.ID.Hex(), "a@x.com")
	assert.ErrorIs(t, err, ErrConflict)

	got, err = m.Get(ctx, order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)
}

func TestCancelOwnership(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	order, _, err := m.Place(ctx, PlaceInput{Email: "a@x.com", BookTitle: "X", Price: 5})
	require.NoError(t, err)

	err = m.Cancel(ctx, order.ID.Hex(), "b@x.com")
	assert.ErrorIs(t, err, ErrForbidden)

	// requester vide = pas de contrôle (admin ou auth désactivée).
	require.NoError(t, m.Cancel(ctx, order.ID.Hex(), ""))
}

func TestCancelUnknownOrder(t *testing.T) {
	m, _ := newTestManager()

	err := m.Cancel(context.Background(), "65b2f1c4e8a9b63f2d000001", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdvanceStatus(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	order, _, err := m.Place(ctx, PlaceInput{Email: "a@x.com", BookTitle: "X", Price: 5})
	require.NoError(t, err)
	_, err = m.Pay(ctx, order.ID.Hex())
	require.NoError(t, err)

	// paid → shipped → delivered, chaque statut stocké vaut exactement la
	// valeur demandée.
	got, err := m.Advance(ctx, order.ID.Hex(), models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, got.Status)

	got, err = m.Advance(ctx, order.ID.Hex(), models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, got.Status)

	// delivered est terminal.
	_, err = m.Advance(ctx, order.ID.Hex(), models.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAdvanceStatusRejectsUnknownValue(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	order, _, err := m.Place(ctx, PlaceInput{Email: "a@x.com", BookTitle: "X", Price: 5})
	require.NoError(t, err)

	_, err = m.Advance(ctx, order.ID.Hex(), "en-route-vers-la-lune")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = m.Advance(ctx, order.ID.Hex(), models.OrderStatusDelivered)
	assert.ErrorIs(t, err, ErrConflict) // pending → delivered absent de la table
}

func TestDeleteOrderKeepsDeliveryRequest(t *testing.T) {
	m, mem := newTestManager()
	ctx := context.Background()

	order, request, err := m.Place(ctx, PlaceInput{Email: "a@x.com", BookTitle: "X", Price: 5})
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, order.ID.Hex()))

	_, err = m.Get(ctx, order.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	// Pas de suppression en cascade : la demande devient orpheline.
	n, err := mem.Count(ctx, "deliveryRequests", bson.M{"_id": request.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	assert.ErrorIs(t, m.Delete(ctx, order.ID.Hex()), ErrNotFound)
}

func TestListByEmailMatchesLegacyField(t *testing.T) {
	m, mem := newTestManager()
	ctx := context.Background()

	_, _, err := m.Place(ctx, PlaceInput{Email: "a@x.com", BookTitle: "X", Price: 5})
	require.NoError(t, err)

	// Document hérité de l'ancienne application : userEmail au lieu d'email.
	legacy := models.Order{
		LegacyEmail:   "a@x.com",
		BookTitle:     "Y",
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	_, err = mem.InsertOne(ctx, "orders", legacy)
	require.NoError(t, err)

	list, err := m.ListByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
