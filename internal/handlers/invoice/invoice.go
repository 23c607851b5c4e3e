package invoice

import (
	"net/http"

	"biblio_back_end/internal/database"
	"biblio_back_end/internal/orders"

	"github.com/gin-gonic/gin"
)

// GET /invoices/:email — les factures sont immuables, il n'existe aucune
// opération d'écriture sur cette collection en dehors du paiement.
func GetInvoicesByEmail(c *gin.Context) {
	m := orders.NewManager(database.Docs)

	list, err := m.ListInvoices(c.Request.Context(), c.Param("email"))
	if err != nil {
		c.JSON(orders.HTTPStatus(err), gin.H{"error": "Erreur récupération des factures"})
		return
	}
	c.JSON(http.StatusOK, list)
}
