package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin vérifie que l'utilisateur a le rôle "admin". Quand
// l'authentification est désactivée (AUTH_REQUIRED=false), il n'y a pas de
// rôle à vérifier et les routes d'administration restent ouvertes, comme
// dans les déploiements historiques sans auth.
func RequireAdmin(c *gin.Context) {
	if !AuthEnabled() {
		c.Next()
		return
	}
	role, exists := c.Get("role")
	if !exists || role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès réservé aux administrateurs"})
		c.Abort()
		return
	}
	c.Next()
}
