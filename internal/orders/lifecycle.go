package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"biblio_back_end/internal/models"
	"biblio_back_end/internal/store"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Manager porte tout le cycle de vie des commandes : placement (commande +
// demande de livraison), annulation, paiement (mise à jour conditionnelle +
// facture), avancement de statut, suppression, et le garde-fou des avis.
type Manager struct {
	store store.Store
	now   func() time.Time
}

func NewManager(s store.Store) *Manager {
	return &Manager{store: s, now: time.Now}
}

// PlaceInput décrit une demande d'achat : référence du livre par identifiant
// et/ou par titre, comme dans l'ancienne application.
type PlaceInput struct {
	Email     string
	UserName  string
	BookID    string
	BookTitle string
	Price     float64
}

// Place insère la commande puis, de façon synchrone, la demande de livraison
// liée. Les deux insertions ne sont pas atomiques : si la seconde échoue, la
// balayeuse (sweep.go) recrée la demande manquante.
func (m *Manager) Place(ctx context.Context, in PlaceInput) (*models.Order, *models.DeliveryRequest, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, nil, fmt.Errorf("%w: email requis", ErrValidation)
	}
	if in.Price < 0 {
		return nil, nil, fmt.Errorf("%w: prix négatif", ErrValidation)
	}

	order := models.Order{
		Email:         email,
		UserName:      strings.TrimSpace(in.UserName),
		BookTitle:     strings.TrimSpace(in.BookTitle),
		Price:         in.Price,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		CreatedAt:     m.now().UTC(),
	}

	if in.BookID != "" {
		oid, err := store.ParseID(in.BookID)
		if err != nil {
			return nil, nil, err
		}
		var book models.Book
		if err := m.store.FindOne(ctx, "books", bson.M{"_id": oid}, &book); err != nil {
			if errors.Is(err, store.ErrNoDocument) {
				return nil, nil, fmt.Errorf("%w: livre inconnu", ErrNotFound)
			}
			return nil, nil, err
		}
		order.BookID = book.ID
		if order.BookTitle == "" {
			order.BookTitle = book.Title
		}
	}
	if order.BookTitle == "" {
		return nil, nil, fmt.Errorf("%w: référence de livre requise", ErrValidation)
	}

	orderID, err := m.store.InsertOne(ctx, "orders", order)
	if err != nil {
		return nil, nil, err
	}
	order.ID = orderID

	request := models.DeliveryRequest{
		OrderID:   orderID,
		Email:     order.Email,
		BookTitle: order.BookTitle,
		Status:    models.DeliveryStatusPending,
		CreatedAt: m.now().UTC(),
	}
	requestID, err := m.store.InsertOne(ctx, "deliveryRequests", request)
	if err != nil {
		// La commande existe déjà : incohérence récupérable, résorbée par la
		// balayeuse. On remonte quand même l'échec à l'appelant.
		return &order, nil, err
	}
	request.ID = requestID

	return &order, &request, nil
}

// Cancel passe la commande en cancelled. requester non vide = contrôle de
// propriété (le détenteur du token doit posséder la commande). Une commande
// déjà terminale n'est jamais re-transitionnée : conflit.
func (m *Manager) Cancel(ctx context.Context, id, requester string) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}

	var order models.Order
	if err := m.store.FindOne(ctx, "orders", bson.M{"_id": oid}, &order); err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return fmt.Errorf("%w: commande inconnue", ErrNotFound)
		}
		return err
	}
	if requester != "" && !strings.EqualFold(order.RequesterEmail(), requester) {
		return fmt.Errorf("%w: cette commande appartient à un autre utilisateur", ErrForbidden)
	}
	if IsTerminal(order.Status) {
		return fmt.Errorf("%w: commande déjà %s", ErrConflict, order.Status)
	}

	// Conditionné sur le statut courant : si une autre requête a transitionné
	// entre-temps, on ne matche rien et on signale le conflit.
	matched, _, err := m.store.UpdateOne(ctx, "orders",
		bson.M{"_id": oid, "status": order.Status},
		bson.M{"status": models.OrderStatusCancelled})
	if err != nil {
		return err
	}
	if matched == 0 {
		return fmt.Errorf("%w: la commande a changé d'état entre-temps", ErrConflict)
	}
	return nil
}

// Pay enregistre le paiement. La mise à jour est conditionnée sur
// status=pending ET paymentStatus=pending : un seul appel concurrent peut
// matcher (un seul paymentId, une seule facture par commande, même sous
// retry), et une commande annulée ne peut jamais redevenir payée.
func (m *Manager) Pay(ctx context.Context, id string) (*models.Invoice, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}

	paymentID := newPaymentID()
	matched, _, err := m.store.UpdateOne(ctx, "orders",
		bson.M{
			"_id":           oid,
			"status":        models.OrderStatusPending,
			"paymentStatus": models.PaymentStatusPending,
		},
		bson.M{
			"paymentStatus": models.PaymentStatusPaid,
			"status":        models.OrderStatusPaid,
			"paymentId":     paymentID,
		})
	if err != nil {
		return nil, err
	}

	var order models.Order
	if err := m.store.FindOne(ctx, "orders", bson.M{"_id": oid}, &order); err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, fmt.Errorf("%w: commande inconnue", ErrNotFound)
		}
		return nil, err
	}
	if matched == 0 {
		// La commande existe mais n'était plus payable.
		if IsTerminal(order.Status) {
			return nil, fmt.Errorf("%w: commande %s", ErrConflict, order.Status)
		}
		return nil, fmt.Errorf("%w: commande déjà payée", ErrConflict)
	}

	orderDate := order.CreatedAt
	if orderDate.IsZero() {
		orderDate = m.now().UTC()
	}
	invoice := models.Invoice{
		OrderID:   order.ID,
		Email:     order.RequesterEmail(),
		UserName:  order.UserName,
		BookTitle: order.BookTitle,
		Price:     order.Price,
		PaymentID: paymentID,
		OrderDate: orderDate,
		PaidAt:    m.now().UTC(),
	}
	invoiceID, err := m.store.InsertOne(ctx, "invoices", invoice)
	if err != nil {
		return nil, err
	}
	invoice.ID = invoiceID

	return &invoice, nil
}

// Advance applique une transition administrative. Statut hors énumération :
// requête invalide. Transition absente de la table : conflit.
func (m *Manager) Advance(ctx context.Context, id, target string) (*models.Order, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	if !KnownStatus(target) {
		return nil, fmt.Errorf("%w: statut inconnu %q", ErrValidation, target)
	}

	var order models.Order
	if err := m.store.FindOne(ctx, "orders", bson.M{"_id": oid}, &order); err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, fmt.Errorf("%w: commande inconnue", ErrNotFound)
		}
		return nil, err
	}
	if !CanTransition(order.Status, target) {
		return nil, fmt.Errorf("%w: transition %s → %s interdite", ErrConflict, order.Status, target)
	}

	matched, _, err := m.store.UpdateOne(ctx, "orders",
		bson.M{"_id": oid, "status": order.Status},
		bson.M{"status": target})
	if err != nil {
		return nil, err
	}
	if matched == 0 {
		return nil, fmt.Errorf("%w: la commande a changé d'état entre-temps", ErrConflict)
	}
	order.Status = target
	return &order, nil
}

// Delete supprime la commande. La demande de livraison liée est volontairement
// conservée (comportement historique) : elle devient orpheline.
func (m *Manager) Delete(ctx context.Context, id string) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}
	deleted, err := m.store.DeleteOne(ctx, "orders", bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return fmt.Errorf("%w: commande inconnue", ErrNotFound)
	}
	return nil
}

// Get retourne une commande par identifiant.
func (m *Manager) Get(ctx context.Context, id string) (*models.Order, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	var order models.Order
	if err := m.store.FindOne(ctx, "orders", bson.M{"_id": oid}, &order); err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, fmt.Errorf("%w: commande inconnue", ErrNotFound)
		}
		return nil, err
	}
	return &order, nil
}

// ListByEmail retourne les commandes d'un utilisateur, champ canonique et
// champ hérité confondus.
func (m *Manager) ListByEmail(ctx context.Context, email string) ([]models.Order, error) {
	var list []models.Order
	err := m.store.Find(ctx, "orders", emailFilter(email), &list)
	return list, err
}

// ListAll retourne toutes les commandes (vue administrateur).
func (m *Manager) ListAll(ctx context.Context) ([]models.Order, error) {
	var list []models.Order
	err := m.store.Find(ctx, "orders", bson.M{}, &list)
	return list, err
}

// ListInvoices retourne les factures d'un utilisateur.
func (m *Manager) ListInvoices(ctx context.Context, email string) ([]models.Invoice, error) {
	var list []models.Invoice
	err := m.store.Find(ctx, "invoices", emailFilter(email), &list)
	return list, err
}

// emailFilter interroge les deux noms de champ historiques. Seul "email" est
// écrit par ce backend, "userEmail" ne sert qu'à lire les anciens documents.
func emailFilter(email string) bson.M {
	return bson.M{"$or": []bson.M{{"email": email}, {"userEmail": email}}}
}

// newPaymentID garde le format historique PAY-<timestamp>-<aléa>, mais avec
// un suffixe UUID : résistant aux collisions, assigné une seule fois.
func newPaymentID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("PAY-%d-%s", time.Now().UnixMilli(), suffix)
}
