package user

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"biblio_back_end/internal/cache"
	"biblio_back_end/internal/database"
	"biblio_back_end/internal/models"
	"biblio_back_end/internal/orders"
	"biblio_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// currentEmail retourne l'email du token, ou celui de la query quand
// l'authentification est désactivée.
func currentEmail(c *gin.Context) string {
	if email := c.GetString("email"); email != "" {
		return email
	}
	return c.Query("email")
}

// GET /wishlist
func GetWishlist(c *gin.Context) {
	email := currentEmail(c)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	cacheKey := cache.WishlistPrefix + email
	if cached := cache.Get(cacheKey); cached != "" {
		var wishlist models.Wishlist
		if json.Unmarshal([]byte(cached), &wishlist) == nil {
			c.JSON(http.StatusOK, wishlist)
			return
		}
	}

	var items []models.WishlistItem
	if err := database.Docs.Find(c.Request.Context(), "wishlists", bson.M{"email": email}, &items); err != nil {
		c.JSON(orders.HTTPStatus(err), gin.H{"error": "Erreur lecture wishlist"})
		return
	}

	// Enrichir avec les fiches livres.
	var books []models.Book
	for _, item := range items {
		var book models.Book
		err := database.Docs.FindOne(c.Request.Context(), "books", bson.M{"_id": item.BookID}, &book)
		if err == nil {
			books = append(books, book)
		}
	}

	wishlist := models.Wishlist{Email: email, Items: books}
	if data, err := json.Marshal(wishlist); err == nil {
		cache.Set(cacheKey, data, cache.WishlistTTL)
	}
	c.JSON(http.StatusOK, wishlist)
}

// POST /wishlist
func AddToWishlist(c *gin.Context) {
	email := currentEmail(c)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	var req struct {
		BookID string `json:"book_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	oid, err := store.ParseID(req.BookID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID livre invalide"})
		return
	}

	var book models.Book
	if err := database.Docs.FindOne(c.Request.Context(), "books", bson.M{"_id": oid}, &book); err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Livre introuvable"})
			return
		}
		c.JSON(orders.HTTPStatus(err), gin.H{"error": "Erreur base de données"})
		return
	}

	item := models.WishlistItem{
		Email:   email,
		BookID:  oid,
		AddedAt: time.Now().UTC(),
	}
	if _, err := database.Docs.InsertOne(c.Request.Context(), "wishlists", item); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "Livre déjà dans la wishlist"})
			return
		}
		c.JSON(orders.HTTPStatus(err), gin.H{"error": "Erreur ajout à la wishlist"})
		return
	}

	cache.Delete(cache.WishlistPrefix + email)
	log.Printf("💚 %s ajouté à la wishlist de %s", book.Title, email)
	c.JSON(http.StatusCreated, gin.H{"message": "Livre ajouté à la wishlist"})
}

// DELETE /wishlist/:bookId
func RemoveFromWishlist(c *gin.Context) {
	email := currentEmail(c)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	oid, err := store.ParseID(c.Param("bookId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID livre invalide"})
		return
	}

	deleted, err := database.Docs.DeleteOne(c.Request.Context(), "wishlists",
		bson.M{"email": email, "bookId": oid})
	if err != nil {
		c.JSON(orders.HTTPStatus(err), gin.H{"error": "Erreur suppression"})
		return
	}
	if deleted == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Livre absent de la wishlist"})
		return
	}

	cache.Delete(cache.WishlistPrefix + email)
	c.JSON(http.StatusOK, gin.H{"message": "Livre retiré de la wishlist"})
}
