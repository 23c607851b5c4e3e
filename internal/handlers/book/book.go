package book

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
	"biblio_back_end/internal/services"
	"biblio_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// GET /books
func GetBooks(c *gin.Context) {
	if cached := cache.Get(cache.KeyBooks); cached != "" {
		var books []models.Book
		if json.Unmarshal([]byte(cached), &books) == nil {
			c.JSON(http.StatusOK, books)
			return
		}
	}

	var books []models.Book
	if err := database.Docs.Find(c.Request.Context(), "books", bson.M{}, &books); err != nil {
		c.JSON(orders.HTTPStatus(err), gin.H{"error": "Erreur récupération des livres"})
		return
	}

	if data, err := json.Marshal(books); err == nil {
		cache.Set(cache.KeyBooks, data, cache.BooksTTL)
	}
	c.JSON(http.StatusOK, books)
}

// GET /books/:id — l'ancienne application acceptait aussi des _id en chaîne
// libre, on garde le repli pour ces documents-là.
func GetBook(c *gin.Context) {
	id := c.Param("id")

	var book models.Book
	if oid, err := store.ParseID(id); err == nil {
		err = database.Docs.FindOne(c.Request.Context(), "books", bson.M{"_id": oid}, &book)
		if err == nil {
			c.JSON(http.StatusOK, book)
			return
		}
		if !errors.Is(err, store.ErrNoDocument) {
			c.JSON(orders.HTTPStatus(err), gin.H{"error": "Erreur base de données"})
			return
		}
	}

	err := database.Docs.FindOne(c.Request.Context(), "books", bson.M{"_id": id}, &book)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Livre introuvable"})
			return
		}
		c.JSON(orders.HTTPStatus(err), gin.H{"error": "Erreur base de données"})
		return
	}
	c.JSON(http.StatusOK, book)
}

// POST /books (admin)
func CreateBook(c *gin.Context) {
	var req struct {
		Title       string  `json:"title" binding:"required"`
		Author      string  `json:"author" binding:"required"`
		Category    string  `json:"category"`
		Description string  `json:"description"`
		Price       float64 `json:"price" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	book := models.Book{
		Title:       req.Title,
		Author:      req.Author,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
		CreatedAt:   time.Now().UTC(),
	}
	id, err := database.Docs.InsertOne(c.Request.Context(), "books", book)
	if err != nil {
		c.JSON(orders.HTTPStatus(err), gin.H{"error": "Erreur création du livre"})
		return
	}
	book.ID = id

	cache.Delete(cache.KeyBooks)
	services.IndexBook(book)

	log.Printf("📚 Livre créé: %s (%s)", book.Title, book.ID.Hex())
	c.JSON(http.StatusCreated, book)
}

// GET /books/search?q=
func SearchBooks(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q requis"})
		return
	}

	results, err := services.SearchBooks(query)
	if err != nil {
		log.Printf("❌ Erreur recherche Elastic: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Recherche indisponible"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "total": len(results)})
}

// GET /books/:id/cover — URL présignée de lecture, valable une heure. Le
// bucket des couvertures n'est pas public, les clients passent par ici.
func CoverLink(c *gin.Context) {
	id := c.Param("id")
	oid, err := store.ParseID(id)
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
	if book.CoverURL == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ce livre n'a pas de couverture"})
		return
	}

	signed, err := services.CoverSignedURL(id)
	if err != nil {
		log.Printf("⚠️ URL présignée indisponible: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Couverture indisponible"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cover_url": signed})
}

// POST /books/:id/cover (admin)
func UploadCover(c *gin.Context) {
	id := c.Param("id")
	oid, err := store.ParseID(id)
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

	file, err := c.FormFile("cover")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier 'cover' requis"})
		return
	}

	url, err := services.UploadCover(id, file)
	if err != nil {
		log.Printf("❌ Erreur upload couverture: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload impossible"})
		return
	}

	if _, _, err := database.Docs.UpdateOne(c.Request.Context(), "books",
		bson.M{"_id": oid}, bson.M{"coverUrl": url}); err != nil {
		c.JSON(orders.HTTPStatus(err), gin.H{"error": "Erreur mise à jour du livre"})
		return
	}
	cache.Delete(cache.KeyBooks)

	c.JSON(http.StatusOK, gin.H{"cover_url": url})
}
