package orders

import (
	"context"
	"log"
	"time"

	"biblio_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

// SweepOrphans recrée la demande de livraison manquante pour toute commande
// qui n'en a pas : c'est l'incohérence laissée par un crash entre les deux
// insertions du placement. Les commandes annulées sont ignorées, il n'y a
// plus rien à livrer. Retourne le nombre de demandes recréées.
func (m *Manager) SweepOrphans(ctx context.Context) (int, error) {
	var all []models.Order
	if err := m.store.Find(ctx, "orders", bson.M{}, &all); err != nil {
		return 0, err
	}

	created := 0
	for _, order := range all {
		if order.Status == models.OrderStatusCancelled {
			continue
		}
		n, err := m.store.Count(ctx, "deliveryRequests", bson.M{"orderId": order.ID})
		if err != nil {
			return created, err
		}
		if n > 0 {
			continue
		}
		request := models.DeliveryRequest{
			OrderID:   order.ID,
			Email:     order.RequesterEmail(),
			BookTitle: order.BookTitle,
			Status:    models.DeliveryStatusPending,
			CreatedAt: m.now().UTC(),
		}
		if _, err := m.store.InsertOne(ctx, "deliveryRequests", request); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// RunSweeper lance la réconciliation périodique jusqu'à annulation du
// contexte. À appeler dans une goroutine au démarrage du serveur.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("🧹 Balayeuse de livraisons orphelines lancée (intervalle %s)", interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("🧹 Balayeuse arrêtée")
			return
		case <-ticker.C:
			created, err := m.SweepOrphans(ctx)
			if err != nil {
				log.Printf("⚠️ Balayage incomplet: %v", err)
				continue
			}
			if created > 0 {
				log.Printf("✅ %d demande(s) de livraison recréée(s)", created)
			}
		}
	}
}
