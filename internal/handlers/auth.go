package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"biblio_back_end/internal/database"
	"biblio_back_end/internal/models"
	"biblio_back_end/internal/orders"
	"biblio_back_end/internal/store"
	"biblio_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// POST /register
func Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	var existing models.User
	err := database.Docs.FindOne(c.Request.Context(), "users", bson.M{"email": req.Email}, &existing)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte existe déjà avec cet email"})
		return
	}
	if !errors.Is(err, store.ErrNoDocument) {
		c.JSON(orders.HTTPStatus(err), gin.H{"error": "Erreur base de données"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		log.Printf("❌ Erreur hash mot de passe: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création du compte"})
		return
	}

	user := models.User{
		Name:      req.Name,
		Email:     req.Email,
		Password:  hash,
		Role:      "user",
		CreatedAt: time.Now().UTC(),
	}
	if _, err := database.Docs.InsertOne(c.Request.Context(), "users", user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "Un compte existe déjà avec cet email"})
			return
		}
		log.Printf("❌ Erreur création compte: %v", err)
		c.JSON(orders.HTTPStatus(err), gin.H{"error": "Erreur création du compte"})
		return
	}

	log.Printf("✅ Compte créé: %s", user.Email)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Compte créé avec succès",
		"user": gin.H{
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// POST /login
func Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	var user models.User
	err := database.Docs.FindOne(c.Request.Context(), "users", bson.M{"email": req.Email}, &user)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants incorrects"})
			return
		}
		c.JSON(orders.HTTPStatus(err), gin.H{"error": "Erreur base de données"})
		return
	}

	ok, err := utils.VerifyPassword(req.Password, user.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants incorrects"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		log.Printf("❌ Erreur génération token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération du token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Connexion réussie",
		"token":   token,
		"user": gin.H{
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// GET /users/info/:email
func GetUserInfo(c *gin.Context) {
	email := c.Param("email")

	var user models.User
	err := database.Docs.FindOne(c.Request.Context(), "users", bson.M{"email": email}, &user)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
			return
		}
		c.JSON(orders.HTTPStatus(err), gin.H{"error": "Erreur base de données"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})
}

// GET /dashboard/:role
func Dashboard(c *gin.Context) {
	role := c.Param("role")

	var users []models.User
	if err := database.Docs.Find(c.Request.Context(), "users", bson.M{"role": role}, &users); err != nil {
		c.JSON(orders.HTTPStatus(err), gin.H{"error": "Erreur base de données"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Données du tableau de bord pour " + role,
		"data":    users,
	})
}
