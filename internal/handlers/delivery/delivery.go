package delivery

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

// GET /delivery-requests (admin)
func GetDeliveryRequests(c *gin.Context) {
	list, err := manager().ListDeliveries(c.Request.Context())
	if err != nil {
		c.JSON(orders.HTTPStatus(err), gin.H{"error": "Erreur récupération des demandes"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// PATCH /delivery-requests/approve/:id (admin)
func Approve(c *gin.Context) {
	setStatus(c, models.DeliveryStatusApproved)
}

// PATCH /delivery-requests/reject/:id (admin)
func Reject(c *gin.Context) {
	setStatus(c, models.DeliveryStatusRejected)
}

// PATCH /delivery-requests/return/:id (admin)
func Return(c *gin.Context) {
	setStatus(c, models.DeliveryStatusReturned)
}

// PATCH /delivery-requests/receive/:id (admin)
func Receive(c *gin.Context) {
	setStatus(c, models.DeliveryStatusReceived)
}

func setStatus(c *gin.Context, status string) {
	request, err := manager().SetDeliveryStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		c.JSON(orders.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	log.Printf("🚚 Demande %s → %s", request.ID.Hex(), status)
	c.JSON(http.StatusOK, request)
}

// GET /delivery-requests/:id/qr — QR de retrait, réservé aux demandes
// approuvées.
func PickupQR(c *gin.Context) {
	request, err := manager().GetDelivery(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(orders.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	if request.Status != models.DeliveryStatusApproved {
		c.JSON(http.StatusConflict, gin.H{"error": "La demande n'est pas approuvée"})
		return
	}

	png, err := utils.GeneratePickupQR(request.ID.Hex())
	if err != nil {
		log.Printf("❌ Erreur QR retrait: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Génération du QR impossible"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
