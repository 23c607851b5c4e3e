package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"biblio_back_end/internal/models"
	"biblio_back_end/internal/store"

	"go.mongodb.org/mongo-driver/bson"
)

type ReviewInput struct {
	BookID   string
	Email    string
	UserName string
	Rating   int
	Comment  string
}

// SubmitReview applique le garde-fou des avis : il faut une commande livrée
// pour le couple (livre, utilisateur), et au plus un avis par couple. Les
// deux vérifications précèdent l'insertion mais ne sont pas atomiques avec
// elle ; l'index d'unicité du store reste l'arbitre final.
func (m *Manager) SubmitReview(ctx context.Context, in ReviewInput) (*models.Review, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email requis", ErrValidation)
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("%w: la note doit être entre 1 et 5", ErrValidation)
	}
	bookID, err := store.ParseID(in.BookID)
	if err != nil {
		return nil, err
	}

	// Une commande livrée pour ce livre et cet utilisateur ?
	qualifying := emailFilter(email)
	qualifying["bookId"] = bookID
	qualifying["status"] = models.OrderStatusDelivered

	var order models.Order
	if err := m.store.FindOne(ctx, "orders", qualifying, &order); err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, fmt.Errorf("%w: aucune commande livrée pour ce livre", ErrPrecondition)
		}
		return nil, err
	}

	// Déjà un avis ? Vérification consultative, l'index unique fait foi.
	existing, err := m.store.Count(ctx, "reviews", bson.M{"bookId": bookID, "email": email})
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: avis déjà déposé pour ce livre", ErrConflict)
	}

	review := models.Review{
		BookID:    bookID,
		Email:     email,
		UserName:  strings.TrimSpace(in.UserName),
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
		CreatedAt: m.now().UTC(),
	}
	id, err := m.store.InsertOne(ctx, "reviews", review)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: avis déjà déposé pour ce livre", ErrConflict)
		}
		return nil, err
	}
	review.ID = id
	return &review, nil
}

// BookReviews retourne les avis d'un livre et son agrégat de notation.
func (m *Manager) BookReviews(ctx context.Context, bookID string) ([]models.Review, models.BookRating, error) {
	oid, err := store.ParseID(bookID)
	if err != nil {
		return nil, models.BookRating{}, err
	}

	var reviews []models.Review
	if err := m.store.Find(ctx, "reviews", bson.M{"bookId": oid}, &reviews); err != nil {
		return nil, models.BookRating{}, err
	}

	rating := models.BookRating{BookID: oid, TotalReviews: len(reviews)}
	if len(reviews) > 0 {
		var total int
		for _, r := range reviews {
			total += r.Rating
		}
		rating.AverageRating = float64(total) / float64(len(reviews))
	}
	return reviews, rating, nil
}
