package routes

import (
	"biblio_back_end/internal/handlers"
	"biblio_back_end/internal/handlers/admin"
	"biblio_back_end/internal/handlers/book"
	"biblio_back_end/internal/handlers/delivery"
	"biblio_back_end/internal/handlers/invoice"
	"biblio_back_end/internal/handlers/order"
	"biblio_back_end/internal/handlers/review"
	"biblio_back_end/internal/handlers/user"
	"biblio_back_end/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	r.Use(cors.Default())
	r.Use(middleware.APIRateLimit())

	// Santé
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Library API running"})
	})

	// Public
	r.POST("/register", handlers.Register)
	r.POST("/login", handlers.Login)
	r.GET("/books", book.GetBooks)
	r.GET("/books/search", book.SearchBooks)
	r.GET("/books/:id", book.GetBook)
	r.GET("/books/:id/cover", book.CoverLink)
	r.GET("/reviews/:bookId", review.GetBookReviews)
	r.GET("/settings", admin.GetSettings)

	// Authentifié (passthrough si AUTH_REQUIRED=false)
	auth := r.Group("/")
	auth.Use(middleware.AuthRequired())
	{
		auth.GET("/users/info/:email", handlers.GetUserInfo)

		auth.POST("/orders", order.PlaceOrder)
		auth.GET("/orders/:email", order.GetOrdersByEmail)
		auth.GET("/orders/id/:id", order.GetOrderByID)
		auth.PATCH("/orders/cancel/:id", order.CancelOrder)
		auth.PATCH("/orders/pay/:id", order.PayOrder)

		auth.GET("/invoices/:email", invoice.GetInvoicesByEmail)

		auth.POST("/reviews", review.CreateReview)

		auth.GET("/wishlist", user.GetWishlist)
		auth.POST("/wishlist", user.AddToWishlist)
		auth.DELETE("/wishlist/:bookId", user.RemoveFromWishlist)

		auth.GET("/delivery-requests/:id/qr", delivery.PickupQR)
	}

	// Administration
	adm := r.Group("/")
	adm.Use(middleware.AuthRequired(), middleware.RequireAdmin)
	{
		adm.GET("/dashboard/:role", handlers.Dashboard)

		adm.POST("/books", book.CreateBook)
		adm.POST("/books/:id/cover", book.UploadCover)

		adm.GET("/orders", order.GetAllOrders)
		adm.PATCH("/orders/status/:id", order.AdvanceStatus)
		adm.DELETE("/orders/:id", order.DeleteOrder)

		adm.GET("/delivery-requests", delivery.GetDeliveryRequests)
		adm.PATCH("/delivery-requests/approve/:id", delivery.Approve)
		adm.PATCH("/delivery-requests/reject/:id", delivery.Reject)
		adm.PATCH("/delivery-requests/return/:id", delivery.Return)
		adm.PATCH("/delivery-requests/receive/:id", delivery.Receive)

		adm.PUT("/settings", admin.UpdateSettings)
	}
}
