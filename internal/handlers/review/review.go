package review

import (
	"log"
	"net/http"

	"biblio_back_end/internal/database"
	"biblio_back_end/internal/orders"

	"github.com/gin-gonic/gin"
)

func manager() *orders.Manager {
	return orders.NewManager(database.Docs)
}

// POST /reviews
func CreateReview(c *gin.Context) {
	var req struct {
		BookID  string `json:"book_id" binding:"required"`
		Email   string `json:"email"`
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
		Comment string `json:"comment" binding:"required,min=10,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	email := c.GetString("email")
	if email == "" {
		email = req.Email
	}

	created, err := manager().SubmitReview(c.Request.Context(), orders.ReviewInput{
		BookID:   req.BookID,
		Email:    email,
		UserName: c.GetString("name"),
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		c.JSON(orders.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	log.Printf("⭐ Avis créé: %s pour livre %s (note: %d/5)", created.ID.Hex(), req.BookID, req.Rating)
	c.JSON(http.StatusCreated, gin.H{"message": "Avis créé avec succès", "review": created})
}

// GET /reviews/:bookId
func GetBookReviews(c *gin.Context) {
	reviews, rating, err := manager().BookReviews(c.Request.Context(), c.Param("bookId"))
	if err != nil {
		c.JSON(orders.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":        reviews,
		"total_reviews":  rating.TotalReviews,
		"average_rating": rating.AverageRating,
		"book_id":        rating.BookID,
	})
}
