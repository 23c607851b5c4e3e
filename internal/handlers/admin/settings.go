package admin

import (
	"errors"
	"log"
	"net/http"
	"time"

	"biblio_back_end/internal/database"
	"biblio_back_end/internal/models"
	"biblio_back_end/internal/orders"
	"biblio_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// Les réglages du site vivaient en mémoire dans l'ancienne application et
// disparaissaient à chaque redémarrage. Ils sont maintenant un document
// unique de la collection settings, lu et écrit comme le reste.

// GET /settings
func GetSettings(c *gin.Context) {
	var settings models.SiteSettings
	err := database.Docs.FindOne(c.Request.Context(), "settings",
		bson.M{"_id": models.SiteSettingsID}, &settings)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			// Valeurs par défaut tant que rien n'a été configuré.
			c.JSON(http.StatusOK, models.SiteSettings{
				SiteName:   "Bibliothèque",
				OrdersOpen: true,
			})
			return
		}
		c.JSON(orders.HTTPStatus(err), gin.H{"error": "Erreur lecture des réglages"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// PUT /settings (admin)
func UpdateSettings(c *gin.Context) {
	var req struct {
		SiteName     string `json:"site_name" binding:"required"`
		ContactEmail string `json:"contact_email"`
		Announcement string `json:"announcement"`
		OrdersOpen   *bool  `json:"orders_open" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	matched, _, err := database.Docs.UpdateOne(c.Request.Context(), "settings",
		bson.M{"_id": models.SiteSettingsID},
		bson.M{
			"siteName":     req.SiteName,
			"contactEmail": req.ContactEmail,
			"announcement": req.Announcement,
			"ordersOpen":   *req.OrdersOpen,
			"updatedAt":    time.Now().UTC(),
		})
	if err != nil {
		c.JSON(orders.HTTPStatus(err), gin.H{"error": "Erreur écriture des réglages"})
		return
	}
	if matched == 0 {
		settings := models.SiteSettings{
			ID:           models.SiteSettingsID,
			SiteName:     req.SiteName,
			ContactEmail: req.ContactEmail,
			Announcement: req.Announcement,
			OrdersOpen:   *req.OrdersOpen,
			UpdatedAt:    time.Now().UTC(),
		}
		if _, err := database.Docs.InsertOne(c.Request.Context(), "settings", settings); err != nil {
			c.JSON(orders.HTTPStatus(err), gin.H{"error": "Erreur écriture des réglages"})
			return
		}
	}

	log.Println("⚙️ Réglages du site mis à jour")
	c.JSON(http.StatusOK, gin.H{"message": "Réglages enregistrés"})
}
