package main

import (
	"context"
	"log"
	"os"
	"time"

	"biblio_back_end/internal/config"
	"biblio_back_end/internal/database"
	"biblio_back_end/internal/orders"
	"biblio_back_end/internal/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	config.Load()

	database.ConnectDatabases()
	defer database.CloseMongo()

	// Balayeuse : recrée les demandes de livraison orphelines laissées par
	// un crash entre les deux insertions du placement.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go orders.NewManager(database.Docs).RunSweeper(ctx, sweepInterval())

	r := gin.Default()
	routes.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Serveur Biblio lancé sur le port", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("❌ Serveur arrêté: %v", err)
	}
}

func sweepInterval() time.Duration {
	raw := os.Getenv("SWEEP_INTERVAL")
	if raw == "" {
		return 10 * time.Minute
	}
	interval, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("⚠️ SWEEP_INTERVAL invalide (%q), 10m par défaut", raw)
		return 10 * time.Minute
	}
	return interval
}
