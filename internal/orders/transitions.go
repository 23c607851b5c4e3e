package orders

import "biblio_back_end/internal/models"

// Table des transitions autorisées. L'ancien backend acceptait n'importe
// quelle chaîne comme statut ; ici l'énumération est fermée et chaque
// transition est vérifiée contre cette table.
var transitions = map[string][]string{
	models.OrderStatusPending:   {models.OrderStatusPaid, models.OrderStatusCancelled},
	models.OrderStatusPaid:      {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:   {models.OrderStatusDelivered, models.OrderStatusCancelled},
	models.OrderStatusDelivered: {},
	models.OrderStatusCancelled: {},
}

// KnownStatus indique si s fait partie de l'énumération des statuts.
func KnownStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal indique si aucune transition ne part de s.
func IsTerminal(s string) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransition vérifie que from → to figure dans la table.
func CanTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
