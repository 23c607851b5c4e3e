package orders

import (
	"context"
	"errors"
	"fmt"

	"biblio_back_end/internal/models"
	"biblio_back_end/internal/store"

	"go.mongodb.org/mongo-driver/bson"
)

var deliveryStatuses = map[string]bool{
	models.DeliveryStatusPending:  true,
	models.DeliveryStatusApproved: true,
	models.DeliveryStatusRejected: true,
	models.DeliveryStatusReturned: true,
	models.DeliveryStatusReceived: true,
}

// SetDeliveryStatus écrase le statut d'une demande de livraison. Seules les
// valeurs de l'énumération sont acceptées, tout le reste est rejeté avant
// d'atteindre le store.
func (m *Manager) SetDeliveryStatus(ctx context.Context, id, status string) (*models.DeliveryRequest, error) {
	if !deliveryStatuses[status] {
		return nil, fmt.Errorf("%w: statut de livraison inconnu %q", ErrValidation, status)
	}
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}

	matched, _, err := m.store.UpdateOne(ctx, "deliveryRequests",
		bson.M{"_id": oid}, bson.M{"status": status})
	if err != nil {
		return nil, err
	}
	if matched == 0 {
		return nil, fmt.Errorf("%w: demande de livraison inconnue", ErrNotFound)
	}

	var request models.DeliveryRequest
	if err := m.store.FindOne(ctx, "deliveryRequests", bson.M{"_id": oid}, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

// GetDelivery retourne une demande de livraison par identifiant.
func (m *Manager) GetDelivery(ctx context.Context, id string) (*models.DeliveryRequest, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	var request models.DeliveryRequest
	if err := m.store.FindOne(ctx, "deliveryRequests", bson.M{"_id": oid}, &request); err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, fmt.Errorf("%w: demande de livraison inconnue", ErrNotFound)
		}
		return nil, err
	}
	return &request, nil
}

// ListDeliveries retourne toutes les demandes de livraison (vue admin).
func (m *Manager) ListDeliveries(ctx context.Context) ([]models.DeliveryRequest, error) {
	var list []models.DeliveryRequest
	err := m.store.Find(ctx, "deliveryRequests", bson.M{}, &list)
	return list, err
}
