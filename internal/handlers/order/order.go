package order

import (
	"log"
	"net/http"

	"biblio_back_end/internal/database"
	"biblio_back_end/internal/models"
	"biblio_back_end/internal/orders"
	"biblio_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

func manager() *orders.Manager {
	return orders.NewManager(database.Docs)
}

// requester retourne l'email à opposer au contrôle de propriété : celui du
// token, sauf pour un admin (ou quand l'auth est désactivée) où le contrôle
// saute.
func requester(c *gin.Context) string {
	if c.GetString("role") == "admin" {
		return ""
	}
	return c.GetString("email")
}

// POST /orders
func PlaceOrder(c *gin.Context) {
	var req struct {
		Email     string  `json:"email"`
		BookID    string  `json:"book_id"`
		BookTitle string  `json:"book_title"`
		Price     float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	// L'email vérifié du token prime sur celui du body.
	email := c.GetString("email")
	if email == "" {
		email = req.Email
	}

	order, request, err := manager().Place(c.Request.Context(), orders.PlaceInput{
		Email:     email,
		UserName:  c.GetString("name"),
		BookID:    req.BookID,
		BookTitle: req.BookTitle,
		Price:     req.Price,
	})
	if err != nil {
		if order != nil {
			// Commande insérée mais demande de livraison manquante : la
			// balayeuse la recréera, on signale quand même l'échec.
			log.Printf("⚠️ Commande %s sans demande de livraison: %v", order.ID.Hex(), err)
		}
		c.JSON(orders.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	log.Printf("🛒 Commande placée: %s (%s)", order.ID.Hex(), order.BookTitle)
	c.JSON(http.StatusCreated, gin.H{
		"order_id":    order.ID.Hex(),
		"delivery_id": request.ID.Hex(),
		"status":      order.Status,
	})
}

// GET /orders (admin)
func GetAllOrders(c *gin.Context) {
	list, err := manager().ListAll(c.Request.Context())
	if err != nil {
		c.JSON(orders.HTTPStatus(err), gin.H{"error": "Erreur récupération des commandes"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /orders/:email
func GetOrdersByEmail(c *gin.Context) {
	email := c.Param("email")

	list, err := manager().ListByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(orders.HTTPStatus(err), gin.H{"error": "Erreur récupération des commandes"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /orders/id/:id
func GetOrderByID(c *gin.Context) {
	order, err := manager().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(orders.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

// PATCH /orders/status/:id (admin)
func AdvanceStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champ status requis"})
		return
	}

	order, err := manager().Advance(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		c.JSON(orders.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

// PATCH /orders/cancel/:id
func CancelOrder(c *gin.Context) {
	id := c.Param("id")
	if err := manager().Cancel(c.Request.Context(), id, requester(c)); err != nil {
		c.JSON(orders.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	log.Printf("🚫 Commande annulée: %s", id)
	c.JSON(http.StatusOK, gin.H{"message": "Commande annulée"})
}

// PATCH /orders/pay/:id
func PayOrder(c *gin.Context) {
	invoice, err := manager().Pay(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(orders.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	// Reçu par mail en best effort : un SMTP en panne ne doit pas faire
	// échouer un paiement déjà enregistré.
	go func(inv models.Invoice) {
		if err := utils.SendInvoiceEmail(inv); err != nil {
			log.Printf("⚠️ Reçu non envoyé à %s: %v", inv.Email, err)
		}
	}(*invoice)

	log.Printf("💳 Paiement enregistré: %s (%s)", invoice.PaymentID, invoice.OrderID.Hex())
	c.JSON(http.StatusOK, gin.H{
		"message":    "Paiement enregistré",
		"payment_id": invoice.PaymentID,
		"invoice_id": invoice.ID.Hex(),
	})
}

// DELETE /orders/:id (admin)
func DeleteOrder(c *gin.Context) {
	id := c.Param("id")
	if err := manager().Delete(c.Request.Context(), id); err != nil {
		c.JSON(orders.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	log.Printf("🗑️ Commande supprimée: %s", id)
	c.JSON(http.StatusOK, gin.H{"message": "Commande supprimée"})
}
